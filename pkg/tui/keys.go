package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the terminal desktop.
type KeyMap struct {
	// Global
	Quit        key.Binding
	Start       key.Binding
	NextWindow  key.Binding
	Maximize    key.Binding
	Close       key.Binding
	ShowDesktop key.Binding
	Minimize    key.Binding
	Move        key.Binding
	Resize      key.Binding
	Terminal    key.Binding
	Back        key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding

	// Desktop
	QuitDesktop key.Binding

	// Explorer
	Search     key.Binding
	ToggleView key.Binding

	// Terminal
	Complete    key.Binding
	HistoryUp   key.Binding
	HistoryDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Start: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "start"),
		),
		NextWindow: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "next window"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "maximize"),
		),
		Close: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("F4", "close"),
		),
		ShowDesktop: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("F5", "show desktop"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "minimize"),
		),
		Move: key.NewBinding(
			key.WithKeys("f7"),
			key.WithHelp("F7", "move"),
		),
		Resize: key.NewBinding(
			key.WithKeys("f8"),
			key.WithHelp("F8", "resize"),
		),
		Terminal: key.NewBinding(
			key.WithKeys("`"),
			key.WithHelp("`", "terminal"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "desktop"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		QuitDesktop: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "icons/list"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
	}
}

// helpLine is the key summary shown in the taskbar area.
func (k KeyMap) helpLine() []key.Binding {
	return []key.Binding{k.Start, k.NextWindow, k.Maximize, k.Close, k.ShowDesktop, k.Minimize, k.Move, k.Resize, k.Terminal, k.Back}
}
