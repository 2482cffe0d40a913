package lifecycle

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/envlay/envlay/internal/fsops"
)

func allocateTestGuard(t *testing.T, parent string) *Guard {
	t.Helper()
	guard, err := Allocate(fsops.NewRealFS(), parent, zerolog.Nop())
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return guard
}

func TestAllocate(t *testing.T) {
	t.Run("creates a uniquely named directory under the parent", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "overlays")

		first := allocateTestGuard(t, parent)
		second := allocateTestGuard(t, parent)

		for _, guard := range []*Guard{first, second} {
			info, err := os.Stat(guard.Dir())
			if err != nil {
				t.Fatalf("overlay dir should exist: %v", err)
			}
			if !info.IsDir() {
				t.Error("overlay path should be a directory")
			}
			if !strings.HasPrefix(filepath.Base(guard.Dir()), OverlayPrefix) {
				t.Errorf("overlay dir %s should carry the %q prefix", guard.Dir(), OverlayPrefix)
			}
			if filepath.Dir(guard.Dir()) != parent {
				t.Errorf("overlay dir should sit directly under %s, got %s", parent, guard.Dir())
			}
		}
		if first.Dir() == second.Dir() {
			t.Error("two allocations should not collide")
		}
	})

	t.Run("starts in the allocated state", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())
		if guard.State() != StateAllocated {
			t.Errorf("State() = %s, want %s", guard.State(), StateAllocated)
		}
	})
}

func TestGuard_Transitions(t *testing.T) {
	t.Run("allocated -> populated -> active", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())

		if err := guard.MarkPopulated(); err != nil {
			t.Fatalf("MarkPopulated failed: %v", err)
		}
		if guard.State() != StatePopulated {
			t.Errorf("State() = %s, want %s", guard.State(), StatePopulated)
		}

		if err := guard.Activate(); err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if guard.State() != StateActive {
			t.Errorf("State() = %s, want %s", guard.State(), StateActive)
		}
	})

	t.Run("rejects skipping populated", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())
		if err := guard.Activate(); err == nil {
			t.Error("Activate from allocated should fail")
		}
	})

	t.Run("rejects re-populating after release", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())
		if err := guard.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if err := guard.MarkPopulated(); err == nil {
			t.Error("MarkPopulated after release should fail")
		}
	})
}

func TestGuard_Release(t *testing.T) {
	t.Run("removes the directory and is idempotent", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())
		dir := guard.Dir()

		if err := guard.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("overlay dir should be removed")
		}
		if guard.State() != StateCleanedUp {
			t.Errorf("State() = %s, want %s", guard.State(), StateCleanedUp)
		}

		if err := guard.Release(); err != nil {
			t.Errorf("second Release should be a no-op, got %v", err)
		}
	})

	t.Run("tolerates a partially populated tree", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())

		// Simulate a merge interrupted mid-walk: some nested content,
		// no populated/active transition.
		nested := filepath.Join(guard.Dir(), "kernels", "python3")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatalf("failed to create nested dirs: %v", err)
		}
		if err := os.WriteFile(filepath.Join(nested, "kernel.json"), []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if err := guard.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if _, err := os.Stat(guard.Dir()); !os.IsNotExist(err) {
			t.Error("partially populated overlay dir should be removed")
		}
	})
}

func TestGuard_Watch(t *testing.T) {
	t.Run("signal releases the guard and exits zero", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())
		dir := guard.Dir()

		sigc := make(chan os.Signal, 1)
		exited := make(chan int, 1)
		guard.Watch(sigc, func(code int) { exited <- code })

		sigc <- syscall.SIGTERM

		select {
		case code := <-exited:
			if code != 0 {
				t.Errorf("exit code = %d, want 0", code)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("signal handler did not run")
		}

		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("overlay dir should be removed after the signal")
		}
		if guard.State() != StateCleanedUp {
			t.Errorf("State() = %s, want %s", guard.State(), StateCleanedUp)
		}
	})

	t.Run("closing the channel detaches without releasing", func(t *testing.T) {
		guard := allocateTestGuard(t, t.TempDir())

		sigc := make(chan os.Signal)
		guard.Watch(sigc, func(int) { t.Error("exit must not be called") })
		close(sigc)

		// Give the goroutine a moment to observe the close.
		time.Sleep(50 * time.Millisecond)

		if guard.State() != StateAllocated {
			t.Errorf("State() = %s, want %s", guard.State(), StateAllocated)
		}
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateAllocated, "allocated"},
		{StatePopulated, "populated"},
		{StateActive, "active"},
		{StateCleanedUp, "cleaned-up"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
