package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Composite tries the in-process backend first and falls back to an external
// one for formats it cannot decode.
type Composite struct {
	primary  Transport
	fallback Transport
	logger   zerolog.Logger

	mu     sync.Mutex
	active Transport
}

var _ Transport = (*Composite)(nil)

// NewComposite returns a Composite. fallback may be nil.
func NewComposite(primary, fallback Transport, logger zerolog.Logger) *Composite {
	return &Composite{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "transport").Logger(),
	}
}

func (c *Composite) Load(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		_ = c.active.Unload()
		c.active = nil
	}

	err := c.primary.Load(ctx, url)
	if err == nil {
		c.active = c.primary
		return nil
	}
	if c.fallback == nil || !errors.Is(err, ErrUnsupportedFormat) {
		return err
	}
	c.logger.Debug().Err(err).Str("url", url).Msg("primary backend cannot decode, falling back")
	if ferr := c.fallback.Load(ctx, url); ferr != nil {
		return fmt.Errorf("primary: %w; fallback: %w", err, ferr)
	}
	c.active = c.fallback
	return nil
}

func (c *Composite) current() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Composite) Unload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	err := c.active.Unload()
	c.active = nil
	return err
}

func (c *Composite) Play() error {
	if t := c.current(); t != nil {
		return t.Play()
	}
	return ErrNotLoaded
}

func (c *Composite) Pause() error {
	if t := c.current(); t != nil {
		return t.Pause()
	}
	return ErrNotLoaded
}

func (c *Composite) Seek(seconds float64) error {
	if t := c.current(); t != nil {
		return t.Seek(seconds)
	}
	return ErrNotLoaded
}

func (c *Composite) Status() Status {
	if t := c.current(); t != nil {
		return t.Status()
	}
	return Status{}
}

func (c *Composite) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
	err := c.primary.Close()
	if c.fallback != nil {
		err = errors.Join(err, c.fallback.Close())
	}
	return err
}

// Backend names accepted by New.
const (
	BackendAuto = "auto"
	BackendBeep = "beep"
	BackendMPV  = "mpv"
	BackendNone = "none"
)

// Options select and configure a transport.
type Options struct {
	Backend string
	MPVPath string
	Logger  zerolog.Logger
}

// New builds the transport named by opts.Backend. Auto pairs the in-process
// player with mpv when mpv is installed.
func New(opts Options) (Transport, error) {
	switch opts.Backend {
	case "", BackendAuto:
		beep := NewBeepPlayer(BeepOptions{Logger: opts.Logger})
		var fallback Transport
		if MPVAvailable(opts.MPVPath) {
			fallback = NewMPVPlayer(MPVOptions{Path: opts.MPVPath, Logger: opts.Logger})
		} else {
			opts.Logger.Warn().Msg("mpv not found; m4a previews will not play")
		}
		return NewComposite(beep, fallback, opts.Logger), nil
	case BackendBeep:
		return NewBeepPlayer(BeepOptions{Logger: opts.Logger}), nil
	case BackendMPV:
		if !MPVAvailable(opts.MPVPath) {
			return nil, fmt.Errorf("%w: mpv not found", ErrNoBackend)
		}
		return NewMPVPlayer(MPVOptions{Path: opts.MPVPath, Logger: opts.Logger}), nil
	case BackendNone:
		return &Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", opts.Backend)
	}
}
