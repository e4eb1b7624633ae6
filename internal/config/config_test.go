package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docsync/docsync/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.GetDirection() != model.Bidirectional {
		t.Errorf("default direction = %v", cfg.GetDirection())
	}
	if cfg.GetResolution() != model.ResolveManual {
		t.Errorf("default resolution = %v", cfg.GetResolution())
	}
	if !cfg.Sync.AutoBackup {
		t.Error("auto backup should default on")
	}
	if cfg.Watch.Debounce <= 0 || cfg.Watch.PollInterval <= 0 {
		t.Errorf("watch timings = %+v", cfg.Watch)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Format = %q, want table", cfg.Output.Format)
	}
}

func TestLoadFromPathMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
sync:
  default_resolution: local_wins
watch:
  debounce: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.GetResolution() != model.ResolveLocalWins {
		t.Errorf("resolution = %v, want local_wins", cfg.GetResolution())
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("debounce = %v, want 2s", cfg.Watch.Debounce)
	}
	// untouched sections keep their defaults
	if cfg.Backup.MaxBackups != 10 {
		t.Errorf("MaxBackups = %d, want default 10", cfg.Backup.MaxBackups)
	}
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sync: [not a map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(TokenEnvVar, "secret-token")
	t.Setenv("DOCSYNC_SYNC_RESOLUTION", "remote_wins")
	t.Setenv("DOCSYNC_WATCH_POLL_INTERVAL", "5m")
	t.Setenv("DOCSYNC_OUTPUT_VERBOSE", "yes")
	t.Setenv("DOCSYNC_BACKUP_MAX", "3")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Notion.Token != "secret-token" {
		t.Errorf("Token = %q", cfg.Notion.Token)
	}
	if cfg.GetResolution() != model.ResolveRemoteWins {
		t.Errorf("resolution = %v", cfg.GetResolution())
	}
	if cfg.Watch.PollInterval != 5*time.Minute {
		t.Errorf("PollInterval = %v", cfg.Watch.PollInterval)
	}
	if !cfg.Output.Verbose {
		t.Error("Verbose should be overridden on")
	}
	if cfg.Backup.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d", cfg.Backup.MaxBackups)
	}
}

func TestInvalidEnumFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Sync.DefaultDirection = "diagonal"
	cfg.Sync.DefaultResolution = "coinflip"

	if cfg.GetDirection() != model.Bidirectional {
		t.Errorf("direction = %v, want fallback", cfg.GetDirection())
	}
	if cfg.GetResolution() != model.ResolveManual {
		t.Errorf("resolution = %v, want fallback", cfg.GetResolution())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Notion.ParentPageID = "abc123"
	cfg.Output.Format = "json"

	if err := cfg.SaveToPath(path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Notion.ParentPageID != "abc123" {
		t.Errorf("ParentPageID = %q", loaded.Notion.ParentPageID)
	}
	if loaded.Output.Format != "json" {
		t.Errorf("Format = %q", loaded.Output.Format)
	}
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"true", "1", "yes", "on", " TRUE "} {
		if !parseBool(truthy) {
			t.Errorf("parseBool(%q) = false", truthy)
		}
	}
	for _, falsy := range []string{"false", "0", "no", "off", ""} {
		if parseBool(falsy) {
			t.Errorf("parseBool(%q) = true", falsy)
		}
	}
}
