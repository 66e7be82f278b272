package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "work"
	cfg.ReplyAPI.APIKey = "k-123"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.ReplyAPI.APIKey != "k-123" {
		t.Errorf("ReplyAPI.APIKey = %q, want k-123", loaded.ReplyAPI.APIKey)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

// TestLoadKeepsDefaultsForAbsentKeys pins that a sparse config file does not
// zero out the simulation timings.
func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"work\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DeliveredDelayMs != Default().DeliveredDelayMs {
		t.Errorf("DeliveredDelayMs = %d, want default %d", loaded.DeliveredDelayMs, Default().DeliveredDelayMs)
	}
	if loaded.ReplyDelayMaxMs != Default().ReplyDelayMaxMs {
		t.Errorf("ReplyDelayMaxMs = %d, want default %d", loaded.ReplyDelayMaxMs, Default().ReplyDelayMaxMs)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
