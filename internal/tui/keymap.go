package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap declares every binding the dashboard understands. The footer hint
// line is derived from the drag state rather than bubbles' help component,
// but the bindings themselves live here so they stay in one place.
type keyMap struct {
	Quit     key.Binding
	Cancel   key.Binding
	Focus    key.Binding
	Reload   key.Binding
	Sidebar  key.Binding
	ViewMode key.Binding
	Theme    key.Binding
	SortBy   key.Binding
	SortDir  key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Accept   key.Binding
	Dismiss  key.Binding
	Read     key.Binding
	ReadAll  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
		Cancel:   key.NewBinding(key.WithKeys("esc")),
		Focus:    key.NewBinding(key.WithKeys("tab")),
		Reload:   key.NewBinding(key.WithKeys("r")),
		Sidebar:  key.NewBinding(key.WithKeys("s")),
		ViewMode: key.NewBinding(key.WithKeys("v")),
		Theme:    key.NewBinding(key.WithKeys("t")),
		SortBy:   key.NewBinding(key.WithKeys("p")),
		SortDir:  key.NewBinding(key.WithKeys("o")),
		Left:     key.NewBinding(key.WithKeys("left", "h")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Select:   key.NewBinding(key.WithKeys("enter", " ")),
		Accept:   key.NewBinding(key.WithKeys("a")),
		Dismiss:  key.NewBinding(key.WithKeys("d")),
		Read:     key.NewBinding(key.WithKeys("n")),
		ReadAll:  key.NewBinding(key.WithKeys("N")),
	}
}
