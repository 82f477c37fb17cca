package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.World.Capacity <= 0 {
		t.Fatalf("expected positive default capacity, got %d", cfg.World.Capacity)
	}
	if cfg.Derived.DT32 != float32(cfg.Physics.DT) {
		t.Fatalf("DT32 = %v, want %v", cfg.Derived.DT32, cfg.Physics.DT)
	}
}

func TestLoadMergesUserFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.yaml")
	if err := os.WriteFile(path, []byte("world:\n  capacity: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}
	if cfg.World.Capacity != 10 {
		t.Fatalf("capacity = %d, want 10 (overridden)", cfg.World.Capacity)
	}
	if cfg.Physics.Gravity == 0 {
		t.Fatalf("expected default gravity to survive the merge, got 0")
	}
}

func TestLoadMissingUserFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Cfg() before Init()")
		}
	}()
	Cfg()
}

func TestInitThenCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Cfg().World.Width <= 0 {
		t.Fatalf("expected positive default width")
	}
}
