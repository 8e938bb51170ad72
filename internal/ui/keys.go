package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit        key.Binding
	ForceQuit   key.Binding
	Help        key.Binding
	CycleTheme  key.Binding
	CycleLang   key.Binding
	Activity    key.Binding
	ToggleYear  key.Binding
	ToggleTitle key.Binding
	Escape      key.Binding

	// Scanner
	StartScan key.Binding
	Manual    key.Binding
	Submit    key.Binding

	// Player
	PlayPause   key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Restart     key.Binding
	NextCard    key.Binding
	Close       key.Binding

	// Activity
	Up   key.Binding
	Down key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		CycleLang: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "language"),
		),
		Activity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "activity"),
		),
		ToggleYear: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "show year"),
		),
		ToggleTitle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "show title"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		StartScan: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter", "scan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter url"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),

		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-5s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+5s"),
		),
		Restart: key.NewBinding(
			key.WithKeys("0", "home"),
			key.WithHelp("0", "restart"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "next card"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc", "close"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "scroll down"),
		),
	}
}

// helpKeys adapts the key map to bubbles/help for one screen.
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) scannerHelp(scanning bool) helpKeys {
	if scanning {
		return helpKeys{short: []key.Binding{k.Submit, k.Escape, k.ForceQuit}}
	}
	return helpKeys{short: []key.Binding{k.StartScan, k.Manual, k.ToggleYear, k.ToggleTitle, k.Activity, k.Help, k.Quit}}
}

func (k keyMap) manualHelp() helpKeys {
	return helpKeys{short: []key.Binding{k.Submit, k.Escape, k.ForceQuit}}
}

func (k keyMap) playerHelp() helpKeys {
	return helpKeys{short: []key.Binding{k.PlayPause, k.SeekBack, k.SeekForward, k.NextCard, k.Close, k.Help, k.Quit}}
}

func (k keyMap) activityHelp() helpKeys {
	return helpKeys{short: []key.Binding{k.Up, k.Down, k.Escape, k.Quit}}
}

func (k keyMap) fullHelp() helpKeys {
	return helpKeys{full: [][]key.Binding{
		{k.StartScan, k.Manual, k.Submit, k.Escape},
		{k.PlayPause, k.SeekBack, k.SeekForward, k.Restart, k.NextCard, k.Close},
		{k.ToggleYear, k.ToggleTitle, k.CycleLang, k.CycleTheme},
		{k.Activity, k.Help, k.Quit, k.ForceQuit},
	}}
}
