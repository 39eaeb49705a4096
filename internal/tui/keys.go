package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Forward  key.Binding
	Backward key.Binding
	Move     key.Binding
	Attack   key.Binding
	Confirm  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Forward:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forward in time")),
		Backward: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back in time")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Attack:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "attack")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Attack, k.Forward, k.Backward, k.Confirm, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Forward, k.Backward},
		{k.Move, k.Attack},
		{k.Confirm, k.Help, k.Quit},
	}
}
