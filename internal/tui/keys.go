package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Toggle   key.Binding
	Next     key.Binding
	Previous key.Binding
	Back     key.Binding
	Forward  key.Binding
	Switch   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Previous: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		Back:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5%")),
		Forward:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5%")),
		Switch:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Toggle, k.Next, k.Previous, k.Back, k.Forward, k.Switch, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Switch},
		{k.Toggle, k.Next, k.Previous, k.Back, k.Forward, k.Quit},
	}
}
