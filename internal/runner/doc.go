// Package runner performs the side effects requested by the session machine.
//
// The machine never does I/O; it returns session.Effect values. Execute
// carries one out against the configured collaborators (catalog resolver,
// audio validator, audio transport, capture device) and converts the outcome
// back into a session.Event. Dispatch runs effects in the background for the
// interactive UI, and Drive runs them inline for headless commands and tests.
package runner
