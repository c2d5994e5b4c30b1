package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	deckDir := filepath.Join(projectDir, DeckDir)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, DeckProjectDir: deckDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.ServerURL() != defaultServerURL {
		t.Fatalf("expected default server url %q, got %q", defaultServerURL, c.ServerURL())
	}
	if c.PollInterval() != defaultPollInterval {
		t.Fatalf("expected default poll interval, got %s", c.PollInterval())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	deckDir := filepath.Join(projectDir, DeckDir)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
server:
  url: http://boardd.internal:9000/
  poll_seconds: 5
`)
	if err := os.WriteFile(filepath.Join(deckDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, DeckProjectDir: deckDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if got := c.ServerURL(); got != "http://boardd.internal:9000" {
		t.Fatalf("server url not normalized: %q", got)
	}
	if got := c.PollInterval(); got != 5*time.Second {
		t.Fatalf("poll interval: got %s want 5s", got)
	}
}

func TestLoadProjectConfigRejectsRelativeURL(t *testing.T) {
	projectDir := t.TempDir()
	deckDir := filepath.Join(projectDir, DeckDir)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deckDir, "config.yaml"), []byte("version: 1\nserver:\n  url: boardd.internal\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, DeckProjectDir: deckDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err == nil {
		t.Fatalf("expected validation error for relative url")
	}
}

func TestInitDeckDirCreatesLayout(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDeckDir(projectDir); err != nil {
		t.Fatalf("init deck dir: %v", err)
	}
	for _, path := range []string{
		filepath.Join(projectDir, DeckDir, "logs"),
		filepath.Join(projectDir, DeckDir, "data"),
		filepath.Join(projectDir, DeckDir, "config.yaml"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
	}
	// Second init must not clobber an existing config.
	custom := "version: 1\nserver:\n  url: http://example.com\n"
	if err := os.WriteFile(filepath.Join(projectDir, DeckDir, "config.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitDeckDir(projectDir); err != nil {
		t.Fatalf("re-init deck dir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, DeckDir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != custom {
		t.Fatalf("re-init overwrote existing config")
	}
}
