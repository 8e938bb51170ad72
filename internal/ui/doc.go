// Package ui provides the hitcard terminal interface, built on Bubble Tea.
//
// # Architecture Overview
//
// The Model owns the session.Machine. Every key press, scan and collaborator
// result becomes a session.Event that the update loop feeds to
// Machine.Handle. The effects it returns are handed to the runner's
// dispatcher, whose results arrive back on the Events channel together with
// link server requests and transport status polls:
//
//	keys ─┐                      ┌─ dispatcher results
//	      ├─→ Machine.Handle ─→ effects ─→ runner
//	chan ─┘        │
//	               └─→ state.Store (for /api/state)
//
// # Screens
//
//   - Scanner: idle, scanning (a text capture that accepts keyboard-wedge
//     scanners and pasted links) or the manual URL panel
//   - Player: song card filtered by the year and title toggles, transport
//     status and a progress bar
//   - Activity: the tail of the structured log file
//
// # Package Structure
//
//   - app.go: Model, Options, Update and key routing, Run
//   - view.go: header, footer and the scanner and player screens
//   - activity.go: log tail formatting for the activity screen
//   - help.go: shortcut overlay
//   - keys.go: key bindings and per-screen help sets
//   - i18n.go: English and German text catalogs
//   - theme.go: color palettes and Lipgloss styles
//   - format.go: time, progress and song visibility helpers
package ui
