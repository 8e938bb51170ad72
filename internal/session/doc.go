// Package session holds the scan-to-playback state machine.
//
// Machine is a reducer: Handle takes one Event, mutates the State it owns,
// and returns the Effects a runner must perform (catalog lookups, audio
// probes, capture and transport commands, message timers). Results come back
// as events tagged with the attempt or message generation they were issued
// for, so a slow lookup finishing after the user moved on is discarded
// instead of overwriting newer state.
//
// The package does no I/O and starts no goroutines.
package session
