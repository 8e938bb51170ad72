// Package app is the composition root for hitcard.
//
// # Overview
//
// Run loads configuration, opens the JSONL log, builds the audio transport,
// the catalog client and the audio validator, and connects them to the
// session machine through the runner. It then starts the optional link
// server and the transport poller and blocks in the TUI until the user
// quits or the context ends.
//
// # Data Flow
//
//	┌────────────┐  effects   ┌────────────────┐
//	│  ui.Model  │──────────→│ runner.Dispatch │
//	│ (machine)  │            └───────┬────────┘
//	└─────▲──────┘                    │ results
//	      │         ┌─────────────────▼──┐
//	      └─────────│       inbox        │←── link server (offer)
//	                │  chan session.Event│←── transport poller (offer)
//	                └────────────────────┘
//
// Effect results are delivered with a blocking send so none are lost. The
// link server and the poller use a non-blocking offer so a stalled UI never
// holds up an HTTP handler or the poll ticker.
//
// # Components
//
//   - app.go: Run, NewMachine, NewRunner and the headless Resolve used by
//     the resolve command
//   - inbox.go: the shared event channel
//   - poller.go: reports transport status changes as session events
package app
