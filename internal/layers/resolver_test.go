package layers

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/envlay/envlay/internal/config"
	"github.com/envlay/envlay/internal/fsops"
)

// makeEnv creates an isolated-environment root with a site-packages entry
// and, optionally, a data subtree. It returns the root and the search path
// entry for the environment.
func makeEnv(t *testing.T, parent, name string, withData bool) (root, sitePackages string) {
	t.Helper()
	root = filepath.Join(parent, name)
	sitePackages = filepath.Join(root, "lib", "python3.12", "site-packages")
	if err := os.MkdirAll(sitePackages, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", sitePackages, err)
	}
	if withData {
		if err := os.MkdirAll(filepath.Join(root, "share", "jupyter"), 0755); err != nil {
			t.Fatalf("failed to create data dir: %v", err)
		}
	}
	return root, sitePackages
}

func newTestResolver() *Resolver {
	return NewResolver(fsops.NewRealFS(), config.DefaultSettings())
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("derives data and config paths from marker entries", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)
		env1, sp1 := makeEnv(t, tmp, "env1", true)

		res := newTestResolver().Resolve([]string{sp1}, prefix)

		wantData := []string{
			filepath.Join(prefix, "share", "jupyter"),
			filepath.Join(env1, "share", "jupyter"),
		}
		if !reflect.DeepEqual(res.DataDirs, wantData) {
			t.Errorf("DataDirs = %v, want %v", res.DataDirs, wantData)
		}

		wantConfig := []string{filepath.Join(env1, "etc", "jupyter")}
		if !reflect.DeepEqual(res.ConfigDirs, wantConfig) {
			t.Errorf("ConfigDirs = %v, want %v", res.ConfigDirs, wantConfig)
		}
	})

	t.Run("skips entries whose last segment is not the marker", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)
		env1, _ := makeEnv(t, tmp, "env1", true)

		// The environment exists but the entry points above site-packages.
		res := newTestResolver().Resolve([]string{filepath.Join(env1, "lib", "python3.12")}, prefix)

		if len(res.DataDirs) != 1 {
			t.Errorf("expected only the canonical data dir, got %v", res.DataDirs)
		}
		if len(res.ConfigDirs) != 0 {
			t.Errorf("non-marker entries must not contribute config dirs, got %v", res.ConfigDirs)
		}
	})

	t.Run("config dir is included even when the data dir is missing", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)
		env1, sp1 := makeEnv(t, tmp, "env1", false)

		res := newTestResolver().Resolve([]string{sp1}, prefix)

		if len(res.DataDirs) != 1 {
			t.Errorf("missing data dir should be skipped, got %v", res.DataDirs)
		}
		wantConfig := []string{filepath.Join(env1, "etc", "jupyter")}
		if !reflect.DeepEqual(res.ConfigDirs, wantConfig) {
			t.Errorf("ConfigDirs = %v, want %v", res.ConfigDirs, wantConfig)
		}
	})

	t.Run("excludes the canonical root's own data dir from discovery", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, spRoot := makeEnv(t, tmp, "root", true)

		res := newTestResolver().Resolve([]string{spRoot}, prefix)

		if len(res.DataDirs) != 1 {
			t.Errorf("canonical data dir must not be duplicated, got %v", res.DataDirs)
		}
		// The canonical root's config dir is still appended: config paths
		// are never deduplicated against the root.
		if len(res.ConfigDirs) != 1 {
			t.Errorf("expected one config dir, got %v", res.ConfigDirs)
		}
	})

	t.Run("drops duplicate environment entries", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)
		_, sp1 := makeEnv(t, tmp, "env1", true)

		res := newTestResolver().Resolve([]string{sp1, sp1}, prefix)

		if len(res.DataDirs) != 2 {
			t.Errorf("duplicate entries must contribute one data dir, got %v", res.DataDirs)
		}
		// Config dirs preserve encounter order without deduplication.
		if len(res.ConfigDirs) != 2 {
			t.Errorf("config dirs are not deduplicated, got %v", res.ConfigDirs)
		}
	})

	t.Run("empty search path yields the degenerate single-layer resolution", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)

		res := newTestResolver().Resolve(nil, prefix)

		if len(res.DataDirs) != 1 || res.DataDirs[0] != filepath.Join(prefix, "share", "jupyter") {
			t.Errorf("DataDirs = %v", res.DataDirs)
		}
		if len(res.ConfigDirs) != 0 {
			t.Errorf("ConfigDirs should be empty, got %v", res.ConfigDirs)
		}
	})

	t.Run("is deterministic across repeated runs", func(t *testing.T) {
		tmp := t.TempDir()
		prefix, _ := makeEnv(t, tmp, "root", true)
		_, sp1 := makeEnv(t, tmp, "env1", true)
		_, sp2 := makeEnv(t, tmp, "env2", true)

		resolver := newTestResolver()
		first := resolver.Resolve([]string{sp1, sp2}, prefix)
		second := resolver.Resolve([]string{sp1, sp2}, prefix)

		if !reflect.DeepEqual(first, second) {
			t.Errorf("resolutions differ: %v vs %v", first, second)
		}
	})
}

func TestResolution_MergeOrder(t *testing.T) {
	res := &Resolution{
		DataDirs: []string{"/root/share/app", "/env1/share/app", "/env2/share/app"},
	}

	want := []string{"/env1/share/app", "/env2/share/app", "/root/share/app"}
	if got := res.MergeOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("MergeOrder() = %v, want %v", got, want)
	}

	// MergeOrder must not mutate the resolution.
	if res.DataDirs[0] != "/root/share/app" {
		t.Error("MergeOrder must not reorder DataDirs")
	}
}
