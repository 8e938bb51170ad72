package probe

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventKind enumerates the load signals a probe can report.
type EventKind int

const (
	EventCanPlay EventKind = iota
	EventDataLoaded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventCanPlay:
		return "canplay"
	case EventDataLoaded:
		return "loadeddata"
	default:
		return "error"
	}
}

// Event is one load signal.
type Event struct {
	Kind EventKind
	Err  error
}

// Probe is a disposable load attempt used only to test playability.
// Start must not block; results are delivered on events. Close releases the
// probe and must return only after the probe stopped sending.
type Probe interface {
	Start(ctx context.Context, url string, events chan<- Event)
	Close() error
}

// Factory creates a fresh probe per validation.
type Factory func() Probe

// DefaultTimeout bounds a single validation.
const DefaultTimeout = 5 * time.Second

// Emit delivers ev unless ctx is done. Probes use it for every send so a
// resolved validation never leaves them blocked.
func Emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Options configure a Validator.
type Options struct {
	Timeout time.Duration
	Factory Factory
	Logger  zerolog.Logger
}

// Validator checks that a URL loads as audio within a timeout.
type Validator struct {
	timeout  time.Duration
	newProbe Factory
	logger   zerolog.Logger
}

// NewValidator returns a Validator. A nil Factory uses HTTP probes.
func NewValidator(opts Options) *Validator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	factory := opts.Factory
	if factory == nil {
		factory = func() Probe { return NewHTTPProbe(nil) }
	}
	return &Validator{
		timeout:  timeout,
		newProbe: factory,
		logger:   opts.Logger.With().Str("component", "validator").Logger(),
	}
}

// Validate resolves exactly once: true on the first can-play or data-loaded
// signal, false on an error signal, timeout, or ctx cancellation. The probe is
// closed and the timer stopped before it returns.
func (v *Validator) Validate(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	p := v.newProbe()
	events := make(chan Event)
	p.Start(ctx, url, events)

	ok, reason := v.await(ctx, events)
	cancel()
	if err := p.Close(); err != nil {
		v.logger.Debug().Err(err).Msg("probe close failed")
	}
	v.logger.Debug().Str("url", url).Bool("playable", ok).Str("reason", reason).Msg("audio validated")
	return ok
}

func (v *Validator) await(ctx context.Context, events <-chan Event) (bool, string) {
	select {
	case ev := <-events:
		switch ev.Kind {
		case EventCanPlay, EventDataLoaded:
			return true, ev.Kind.String()
		default:
			if ev.Err != nil {
				return false, ev.Err.Error()
			}
			return false, ev.Kind.String()
		}
	case <-ctx.Done():
		return false, "timeout"
	}
}
