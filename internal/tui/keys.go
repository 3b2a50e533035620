package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Earlier key.Binding
	Later   key.Binding
	All     key.Binding
	None    key.Binding
	Table   key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select/toggle")),
		Earlier: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "year -1")),
		Later:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "year +1")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all countries")),
		None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no countries")),
		Table:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle table")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Table, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Select, k.All, k.None},
		{k.Earlier, k.Later, k.Table, k.Reset},
		{k.Help, k.Quit},
	}
}
