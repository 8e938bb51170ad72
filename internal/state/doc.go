// Package state shares the latest session snapshot between the UI loop and
// other goroutines.
//
// # Overview
//
// The session machine is owned by the Bubble Tea update loop and must not be
// touched from anywhere else. After every transition the UI publishes a copy
// of the machine's state here, and readers such as the link server's
// /api/state handler take snapshots on their own schedule:
//
//	UI loop:                       Readers:
//	┌────────────────┐            ┌──────────────────┐
//	│ machine.Handle │            │ GET /api/state   │
//	│      ↓         │            │ hitcard resolve  │
//	│ store.Update() │───────────→│ store.Snapshot() │
//	└────────────────┘  (mutex)   └──────────────────┘
//
// # Core Types
//
// Store:
//   - sync.RWMutex around a single Snapshot
//   - single writer (the UI loop), many readers
//   - usable as a zero value
//
// Snapshot:
//   - the cloned session.State and its derived Phase
//   - Version increments on every Update so readers can detect change
//   - LastError holds the most recent collaborator failure reported through
//     RecordError, for display only
//
// # Error Semantics
//
// RecordError never changes the session. The error stays visible until the
// page changes, so a failed transport command on the player page does not
// leak onto the next scan.
//
// # Copying
//
// Update and Snapshot clone the session state, including its message
// parameter map, so neither side can mutate what the other sees. Errors are
// flattened to their text.
package state
