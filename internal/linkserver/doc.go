// Package linkserver is a small HTTP server that feeds the running session.
//
// Printed cards encode URLs like https://<host>/qr/am/<id>. Pointing such a
// host at this server (or opening http://127.0.0.1:7488/qr/am/<id> directly)
// turns the card into a LinkOpened event. Phone scanner apps and browser
// pages can also post decoded text to /api/scan and camera status to
// /api/camera. Both take application/json only and refuse foreign origins.
//
// Handlers never touch the session machine. They hand events to a Dispatch
// function, which in the app is a non-blocking send to the UI inbox, and read published
// snapshots from a state.Store.
package linkserver
