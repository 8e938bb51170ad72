package audio

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupportedFormat means a backend cannot decode the resource.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrNotLoaded means a command arrived with nothing loaded.
	ErrNotLoaded = errors.New("no audio loaded")
	// ErrNoBackend means no playback backend is available on this system.
	ErrNoBackend = errors.New("no audio backend available")
)

// DefaultStatusInterval is how often callers should poll Status.
const DefaultStatusInterval = 250 * time.Millisecond

// Status is a point-in-time report from a transport. Times are in seconds.
// DidJustFinish is edge-triggered: it is true in exactly one report after the
// track reaches its end.
type Status struct {
	Playing       bool    `json:"playing"`
	CurrentTime   float64 `json:"currentTime"`
	Duration      float64 `json:"duration"`
	IsLoaded      bool    `json:"isLoaded"`
	IsBuffering   bool    `json:"isBuffering"`
	DidJustFinish bool    `json:"didJustFinish"`
}

// Transport is a play/pause/seek device for one track at a time.
type Transport interface {
	// Load replaces the current track and leaves it paused at 0.
	Load(ctx context.Context, url string) error
	Unload() error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Status() Status
	Close() error
}

// Nop is a Transport that accepts every command and never plays.
type Nop struct {
	loaded bool
}

var _ Transport = (*Nop)(nil)

func (n *Nop) Load(context.Context, string) error { n.loaded = true; return nil }
func (n *Nop) Unload() error                      { n.loaded = false; return nil }
func (n *Nop) Play() error                        { return nil }
func (n *Nop) Pause() error                       { return nil }
func (n *Nop) Seek(float64) error                 { return nil }
func (n *Nop) Status() Status                     { return Status{IsLoaded: n.loaded} }
func (n *Nop) Close() error                       { return nil }
