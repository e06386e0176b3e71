package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Search    key.Binding
	Done      key.Binding
	Pin       key.Binding
	Focus     key.Binding
	CheckItem key.Binding
	Filter    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Done:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done/undone")),
	Pin:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
	Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "checklist")),
	CheckItem: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "check item")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "open/all")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
}

// helpLine lists the bindings shown in the footer for the current focus
func (k keyMap) helpLine(focus Focus) []key.Binding {
	if focus == FocusChecklist {
		return []key.Binding{k.Up, k.Down, k.CheckItem, k.Focus, k.Quit}
	}
	return []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.Search, k.Done, k.Pin, k.Focus, k.Filter, k.Quit}
}
