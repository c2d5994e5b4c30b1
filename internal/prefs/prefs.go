// internal/prefs/prefs.go
//
// Dashboard preferences persisted between sessions. The file lives at
// .sprintdeck/prefs.yaml and is rewritten whenever a preference changes.

package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sprintdeck/internal/board"
)

// Theme selects the dashboard color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ViewMode selects the board layout.
type ViewMode string

const (
	ViewBoard ViewMode = "board"
	ViewList  ViewMode = "list"
)

// Preferences is the persisted slice of UI state. Only these five fields
// survive a restart; everything else resets to its default.
type Preferences struct {
	Theme       Theme               `yaml:"theme"`
	ViewMode    ViewMode            `yaml:"view_mode"`
	SidebarOpen bool                `yaml:"sidebar_open"`
	Filter      board.FilterOptions `yaml:"filter_options"`
	Sort        board.SortOptions   `yaml:"sort_options"`
}

// Default returns the preferences a fresh install starts with.
func Default() Preferences {
	return Preferences{
		Theme:       ThemeDark,
		ViewMode:    ViewBoard,
		SidebarOpen: true,
		Sort: board.SortOptions{
			Field:     board.SortByCreatedAt,
			Direction: board.SortDesc,
		},
	}
}

// Load reads preferences from path. A missing or unreadable file yields the
// defaults rather than an error so a corrupt prefs file never blocks startup.
func Load(path string) Preferences {
	prefs := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	var parsed Preferences
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return prefs
	}
	parsed.applyDefaults()
	return parsed
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, prefs Preferences) error {
	prefs.applyDefaults()
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prefs: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", path, err)
	}
	return nil
}

func (p *Preferences) applyDefaults() {
	if p.Theme != ThemeDark && p.Theme != ThemeLight {
		p.Theme = ThemeDark
	}
	if p.ViewMode != ViewBoard && p.ViewMode != ViewList {
		p.ViewMode = ViewBoard
	}
	if p.Sort.Field == "" {
		p.Sort.Field = board.SortByCreatedAt
	}
	if p.Sort.Direction != board.SortAsc && p.Sort.Direction != board.SortDesc {
		p.Sort.Direction = board.SortDesc
	}
}
