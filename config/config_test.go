package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "lectio"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lectio", name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func resetPaths(t *testing.T) {
	t.Helper()
	configHomePath = ""
	dataHomePath = ""
	stateHomePath = ""
	t.Cleanup(func() {
		configHomePath = ""
		dataHomePath = ""
		stateHomePath = ""
	})
}

func TestLoad(t *testing.T) {
	resetPaths(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeConfig(t, dir, "config.yml", `maxChars: 120
minChars: 80
abbreviations:
  - "Mons."
feedURL: https://example.com/feed.rss
`)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		MaxChars:      120,
		MinChars:      80,
		Abbreviations: []string{"Mons."},
		FeedURL:       "https://example.com/feed.rss",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProfileTakesPrecedence(t *testing.T) {
	resetPaths(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeConfig(t, dir, "config.yml", "maxChars: 120\n")
	writeConfig(t, dir, "config-parroquia.yml", "maxChars: 90\n")

	cfg, err := Load("parroquia")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxChars != 90 {
		t.Errorf("maxChars = %d, want 90 from profile config", cfg.MaxChars)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxChars != 120 {
		t.Errorf("maxChars = %d, want 120 from base config", cfg.MaxChars)
	}
}

func TestLoadMissingConfigIsEmpty(t *testing.T) {
	resetPaths(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestXDGPaths(t *testing.T) {
	resetPaths(t)
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	if got := DataHomePath(); got != "/tmp/xdg-data/lectio" {
		t.Errorf("DataHomePath = %q", got)
	}
	if got := StateHomePath(); got != "/tmp/xdg-state/lectio" {
		t.Errorf("StateHomePath = %q", got)
	}
}
