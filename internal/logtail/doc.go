// Package logtail reads the tail of the hitcard log for the activity view.
//
// # Reading
//
// Read returns the last N lines of a file using a ring buffer, so memory is
// bounded by N rather than by file size. A missing file is not an error and
// yields no lines.
//
//	lines, err := logtail.Read(runtime.Path, 200)
//
// # Parsing
//
// The log is zerolog JSONL. Parse splits a line into the well-known keys
// (time, level, component, message, error) and keeps everything else in
// Fields as strings. Lines that are not JSON objects are returned with only
// Raw set so nothing is silently dropped.
//
//	entries, err := logtail.ReadEntries(runtime.Path, 200)
//	for _, e := range entries {
//		fmt.Println(e.Level, e.Component, e.Message)
//	}
//
// Rendering is left to the ui package.
package logtail
