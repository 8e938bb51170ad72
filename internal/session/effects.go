package session

import (
	"time"

	"github.com/five82/hitcard/internal/catalog"
)

// Effect is a side effect requested by Machine.Handle. The machine never
// performs I/O itself; a runner executes effects and feeds results back as
// events.
type Effect interface {
	isEffect()
}

// Resolve asks for a catalog lookup. The result returns as Resolved.
type Resolve struct {
	Attempt     uint64
	ReferenceID string
}

// Validate asks for an audio probe. The result returns as Validated.
type Validate struct {
	Attempt uint64
	Audio   catalog.ResolvedAudio
}

// ClearMessage schedules MessageExpired{Generation} after the delay.
type ClearMessage struct {
	Generation uint64
	After      time.Duration
}

// StartCapture turns the camera on.
type StartCapture struct{}

// StopCapture turns the camera off.
type StopCapture struct{}

// TransportLoad loads url into the audio transport.
type TransportLoad struct {
	URL string
}

// TransportUnload releases the loaded audio.
type TransportUnload struct{}

// TransportPlay resumes playback.
type TransportPlay struct{}

// TransportPause pauses playback.
type TransportPause struct{}

// TransportSeek moves the transport position.
type TransportSeek struct {
	Seconds float64
}

func (Resolve) isEffect()         {}
func (Validate) isEffect()        {}
func (ClearMessage) isEffect()    {}
func (StartCapture) isEffect()    {}
func (StopCapture) isEffect()     {}
func (TransportLoad) isEffect()   {}
func (TransportUnload) isEffect() {}
func (TransportPlay) isEffect()   {}
func (TransportPause) isEffect()  {}
func (TransportSeek) isEffect()   {}
