package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the built-in browser keys. Configured keybindings are
// resolved by KeybindingHandler after these.
type keyMap struct {
	Up                key.Binding
	Down              key.Binding
	PageUp            key.Binding
	PageDown          key.Binding
	NextView          key.Binding
	PrevView          key.Binding
	Search            key.Binding
	Submit            key.Binding
	Clear             key.Binding
	Refresh           key.Binding
	Sort              key.Binding
	ToggleIgnored     key.Binding
	ToggleProvisional key.Binding
	ToggleHistory     key.Binding
	Back              key.Binding
	Quit              key.Binding
	ForceQuit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:                key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:              key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		PageUp:            key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:          key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		NextView:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next list")),
		PrevView:          key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev list")),
		Search:            key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Submit:            key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Clear:             key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Refresh:           key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Sort:              key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		ToggleIgnored:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "held updates")),
		ToggleProvisional: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "new sources")),
		ToggleHistory:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "recent searches")),
		Back:              key.NewBinding(key.WithKeys("esc", "q", "backspace"), key.WithHelp("esc", "back")),
		Quit:              key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:         key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp returns the keys shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextView, k.Refresh, k.Sort, k.Quit}
}
