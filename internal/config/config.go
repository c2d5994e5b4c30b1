// internal/config/config.go
//
// This package handles configuration and the .sprintdeck directory
// structure. Every project that runs the dashboard gets a .sprintdeck/
// folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DeckDir is the name of the directory we create in each project.
	DeckDir = ".sprintdeck"

	defaultServerURL    = "http://127.0.0.1:8090"
	defaultPollInterval = 2 * time.Second
)

const defaultProjectConfigYAML = `# sprintdeck project configuration
version: 1

server:
  # boardd endpoint the dashboard talks to. When unreachable the client
  # serves a deterministic offline dataset instead.
  url: http://127.0.0.1:8090
  # Realtime poll cadence in seconds.
  poll_seconds: 2
`

// ServerConfig points the dashboard at a boardd instance.
type ServerConfig struct {
	URL         string `yaml:"url"`
	PollSeconds int    `yaml:"poll_seconds"`
}

// ProjectConfig models .sprintdeck/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Server  ServerConfig `yaml:"server"`
}

// Config holds the runtime configuration for the dashboard.
type Config struct {
	// ProjectDir is the directory the user ran `sprintdeck` from.
	ProjectDir string

	// DeckProjectDir is ProjectDir/.sprintdeck.
	DeckProjectDir string

	Project ProjectConfig
}

// InitDeckDir creates the .sprintdeck directory structure in the given
// project directory. Called at TUI startup.
func InitDeckDir(projectDir string) error {
	deckDir := filepath.Join(projectDir, DeckDir)
	dirs := []string{
		filepath.Join(deckDir, "logs"),
		filepath.Join(deckDir, "data"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(deckDir, "config.yaml"))
}

// NewConfig creates a Config populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		DeckProjectDir: filepath.Join(projectDir, DeckDir),
		Project:        defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DeckProjectDir, "logs")
}

// DataDir returns the path to the data directory (boardd's sqlite file lives
// here by default).
func (c *Config) DataDir() string {
	return filepath.Join(c.DeckProjectDir, "data")
}

// PrefsPath returns the on-disk location of the preference file.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.DeckProjectDir, "prefs.yaml")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DeckProjectDir, "config.yaml")
}

// ServerURL returns the configured boardd endpoint.
func (c *Config) ServerURL() string {
	return c.Project.Server.URL
}

// PollInterval returns the realtime poll cadence.
func (c *Config) PollInterval() time.Duration {
	if c.Project.Server.PollSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.Project.Server.PollSeconds) * time.Second
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Server: ServerConfig{
			URL:         defaultServerURL,
			PollSeconds: int(defaultPollInterval / time.Second),
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Server.URL) == "" {
		pc.Server.URL = defaultServerURL
	}
	if pc.Server.PollSeconds <= 0 {
		pc.Server.PollSeconds = int(defaultPollInterval / time.Second)
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Server.URL = strings.TrimRight(strings.TrimSpace(pc.Server.URL), "/")
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.Server.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.url %q is not an absolute URL", pc.Server.URL)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
