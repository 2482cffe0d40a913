// Package lifecycle owns the ephemeral overlay directory for the life of the
// process.
//
// A Guard allocates one uniquely named directory under a persistent parent,
// tracks it through an explicit state machine, and guarantees its removal
// exactly once, whether the process falls through normally or is terminated
// by SIGINT or SIGTERM. Removal is best-effort recursive delete, so it is
// safe against trees that were only partially populated when a signal
// arrived mid-merge.
package lifecycle

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/envlay/envlay/internal/fsops"
)

// State identifies where the guarded directory is in its lifecycle.
type State int

const (
	// StateUninitialized means no directory has been allocated.
	StateUninitialized State = iota

	// StateAllocated means the directory exists and is empty.
	StateAllocated

	// StatePopulated means the merge into the directory completed.
	StatePopulated

	// StateActive means the directory has been published to a consumer.
	StateActive

	// StateCleanedUp means the directory has been removed. Terminal.
	StateCleanedUp
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAllocated:
		return "allocated"
	case StatePopulated:
		return "populated"
	case StateActive:
		return "active"
	case StateCleanedUp:
		return "cleaned-up"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// OverlayPrefix is the name prefix of every guarded overlay directory.
const OverlayPrefix = "overlay-"

// Guard owns one ephemeral overlay directory.
type Guard struct {
	fs  fsops.FS
	log zerolog.Logger
	dir string

	mu    sync.Mutex
	state State

	releaseOnce sync.Once
	releaseErr  error
}

// Allocate creates the persistent parent directory if absent, then a
// uniquely named overlay directory under it, and returns a Guard in
// StateAllocated.
func Allocate(fs fsops.FS, parent string, log zerolog.Logger) (*Guard, error) {
	if err := fs.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create overlay parent directory: %w", err)
	}

	dir := filepath.Join(parent, OverlayPrefix+uuid.NewString())
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to allocate overlay directory: %w", err)
	}

	return &Guard{
		fs:    fs,
		log:   log,
		dir:   dir,
		state: StateAllocated,
	}, nil
}

// Dir returns the guarded directory's absolute path.
func (g *Guard) Dir() string {
	return g.dir
}

// State returns the current lifecycle state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// MarkPopulated records that the merge into the directory completed.
func (g *Guard) MarkPopulated() error {
	return g.transition(StateAllocated, StatePopulated)
}

// Activate records that the directory has been published to its consumer.
func (g *Guard) Activate() error {
	return g.transition(StatePopulated, StateActive)
}

func (g *Guard) transition(from, to State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != from {
		return fmt.Errorf("invalid lifecycle transition %s -> %s", g.state, to)
	}
	g.state = to
	return nil
}

// Release removes the guarded directory. It is idempotent: every exit path
// converges here, and only the first call performs the removal. Release
// tolerates partially populated trees; a signal may land mid-merge.
func (g *Guard) Release() error {
	g.releaseOnce.Do(func() {
		g.mu.Lock()
		prev := g.state
		g.state = StateCleanedUp
		g.mu.Unlock()

		if prev == StateUninitialized || prev == StateCleanedUp {
			return
		}
		if err := g.fs.RemoveAll(g.dir); err != nil {
			g.releaseErr = fmt.Errorf("failed to remove overlay directory: %w", err)
			return
		}
		g.log.Debug().Str("dir", g.dir).Msg("overlay directory removed")
	})
	return g.releaseErr
}

// Watch releases the guard and exits with status 0 when a value arrives on
// sigc. The exit function is a parameter so tests can observe the exit
// instead of dying. Watch returns immediately; the handling goroutine runs
// until sigc is closed or a signal arrives.
func (g *Guard) Watch(sigc <-chan os.Signal, exit func(code int)) {
	go func() {
		sig, ok := <-sigc
		if !ok {
			return
		}
		g.log.Info().Str("signal", sig.String()).Msg("termination signal received, cleaning up")
		if err := g.Release(); err != nil {
			g.log.Error().Err(err).Msg("overlay cleanup failed")
		}
		exit(0)
	}()
}

// WatchTermination wires Watch to the real process: SIGINT and SIGTERM both
// trigger cleanup followed by exit(0). The returned stop function detaches
// the handler, for callers that complete normally.
func (g *Guard) WatchTermination() (stop func()) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	g.Watch(sigc, os.Exit)
	return func() {
		signal.Stop(sigc)
		close(sigc)
	}
}
