package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	More      key.Binding
	Refresh   key.Binding
	Follow    key.Binding
	Delete    key.Binding
	Window    key.Binding
	Search    key.Binding
	ClearTerm key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		NextTab:   key.NewBinding(key.WithKeys("l", "tab", "right"), key.WithHelp("l/tab", "next building")),
		PrevTab:   key.NewBinding(key.WithKeys("h", "shift+tab", "left"), key.WithHelp("h", "prev building")),
		More:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Follow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow thread")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Window:    key.NewBinding(key.WithKeys("7"), key.WithHelp("7", "toggle time window")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearTerm: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextTab, k.More, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.More, k.Refresh, k.Window, k.Search, k.ClearTerm},
		{k.Follow, k.Delete, k.Help, k.Quit},
	}
}
