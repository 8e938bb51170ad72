package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/audio"
	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/session"
)

// Validator reports whether a URL plays as audio.
type Validator interface {
	Validate(ctx context.Context, url string) bool
}

// Camera is the capture device. Start returns a *CameraError when the device
// cannot be opened.
type Camera interface {
	Start(ctx context.Context) error
	Stop() error
}

// CameraError describes why capture could not start.
type CameraError struct {
	Kind session.CameraError
	Err  error
}

func (e *CameraError) Error() string {
	if e.Err == nil {
		return "camera unavailable"
	}
	return "camera unavailable: " + e.Err.Error()
}

func (e *CameraError) Unwrap() error { return e.Err }

// NoopCamera has no device; capture input arrives as events from elsewhere.
type NoopCamera struct{}

func (NoopCamera) Start(context.Context) error { return nil }
func (NoopCamera) Stop() error                 { return nil }

// Options wire a Runner to its collaborators. Nil Camera and Transport use
// no-op implementations.
type Options struct {
	Resolver  catalog.Resolver
	Validator Validator
	Transport audio.Transport
	Camera    Camera
	// OnError, when set, receives collaborator failures that have no event.
	OnError func(error)
	Logger  zerolog.Logger
}

// Runner executes session effects against real collaborators.
type Runner struct {
	resolver  catalog.Resolver
	validator Validator
	transport audio.Transport
	camera    Camera
	onError   func(error)
	logger    zerolog.Logger
}

// New returns a Runner.
func New(opts Options) *Runner {
	camera := opts.Camera
	if camera == nil {
		camera = NoopCamera{}
	}
	transport := opts.Transport
	if transport == nil {
		transport = &audio.Nop{}
	}
	return &Runner{
		resolver:  opts.Resolver,
		validator: opts.Validator,
		transport: transport,
		camera:    camera,
		onError:   opts.OnError,
		logger:    opts.Logger.With().Str("component", "runner").Logger(),
	}
}

// Execute performs one effect. It returns the event the effect produced, or
// nil when the effect has no result to report.
func (r *Runner) Execute(ctx context.Context, eff session.Effect) session.Event {
	switch e := eff.(type) {
	case session.Resolve:
		return r.resolve(ctx, e)
	case session.Validate:
		return r.validate(ctx, e)
	case session.ClearMessage:
		timer := time.NewTimer(e.After)
		defer timer.Stop()
		select {
		case <-timer.C:
			return session.MessageExpired{Generation: e.Generation}
		case <-ctx.Done():
			return nil
		}
	case session.StartCapture:
		if err := r.camera.Start(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("camera start failed")
			return session.CameraFailed{Kind: cameraKind(err)}
		}
	case session.StopCapture:
		r.check("camera stop", r.camera.Stop())
	case session.TransportLoad:
		r.check("transport load", r.transport.Load(ctx, e.URL))
	case session.TransportUnload:
		r.check("transport unload", r.transport.Unload())
	case session.TransportPlay:
		r.check("transport play", r.transport.Play())
	case session.TransportPause:
		r.check("transport pause", r.transport.Pause())
	case session.TransportSeek:
		r.check("transport seek", r.transport.Seek(e.Seconds))
	default:
		r.logger.Warn().Str("effect", fmt.Sprintf("%T", eff)).Msg("unhandled effect")
	}
	return nil
}

func (r *Runner) resolve(ctx context.Context, e session.Resolve) session.Event {
	if r.resolver == nil {
		return session.Resolved{Attempt: e.Attempt, Err: errors.New("no catalog resolver configured")}
	}
	resolved, err := r.resolver.Resolve(ctx, e.ReferenceID)
	return session.Resolved{Attempt: e.Attempt, Audio: resolved, Err: err}
}

func (r *Runner) validate(ctx context.Context, e session.Validate) session.Event {
	playable := true
	if r.validator != nil {
		playable = r.validator.Validate(ctx, e.Audio.URL)
	}
	return session.Validated{Attempt: e.Attempt, Audio: e.Audio, Playable: playable}
}

func (r *Runner) check(op string, err error) {
	if err == nil {
		return
	}
	r.logger.Warn().Err(err).Str("op", op).Msg("effect failed")
	if r.onError != nil {
		r.onError(fmt.Errorf("%s: %w", op, err))
	}
}

func cameraKind(err error) session.CameraError {
	var ce *CameraError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return session.CameraUnknownError
}

// Drive feeds events to m and executes the resulting effects inline until no
// work remains or ctx is done. Message timers are skipped since nothing is
// displayed. It returns the final state.
func (r *Runner) Drive(ctx context.Context, m *session.Machine, events ...session.Event) session.State {
	queue := append([]session.Event(nil), events...)
	for len(queue) > 0 && ctx.Err() == nil {
		ev := queue[0]
		queue = queue[1:]
		for _, eff := range m.Handle(ev) {
			if _, ok := eff.(session.ClearMessage); ok {
				continue
			}
			if next := r.Execute(ctx, eff); next != nil {
				queue = append(queue, next)
			}
		}
	}
	return m.State()
}

// Transport returns the transport effects are executed against.
func (r *Runner) Transport() audio.Transport { return r.transport }
