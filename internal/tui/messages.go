package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// startupMsg carries what the root model needs before showing any screen
type startupMsg struct {
	locked   bool
	darkMode bool
	err      error
}

// lockedMsg reports that the app was locked from inside the TUI
type lockedMsg struct {
	err error
}
