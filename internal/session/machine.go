package session

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/scan"
)

const (
	// DefaultDedupeWindow suppresses repeated decodes of the same code.
	DefaultDedupeWindow = 2 * time.Second
	// DefaultMessageTTL is how long an invalid-audio message stays visible.
	DefaultMessageTTL = 3 * time.Second
)

// Options configure a Machine. The zero value is usable.
type Options struct {
	Classifier     scan.Classifier
	SkipValidation bool
	// DedupeWindow of zero uses the default; a negative window disables it.
	DedupeWindow time.Duration
	MessageTTL   time.Duration
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Machine is the session reducer. It is not safe for concurrent use; one
// goroutine owns it and feeds it every event.
type Machine struct {
	state State

	classifier     scan.Classifier
	skipValidation bool
	messageTTL     time.Duration
	now            func() time.Time
	logger         zerolog.Logger

	// attempt identifies the current async pipeline; results for older
	// attempts are discarded.
	attempt uint64
	// generation bumps on every message write.
	generation uint64
	recent     scanGuard
}

// New returns a Machine on the scanner page with capture off.
func New(opts Options) *Machine {
	window := opts.DedupeWindow
	if window == 0 {
		window = DefaultDedupeWindow
	}
	ttl := opts.MessageTTL
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		state:          State{Page: PageScanner},
		classifier:     opts.Classifier,
		skipValidation: opts.SkipValidation,
		messageTTL:     ttl,
		now:            now,
		logger:         opts.Logger.With().Str("component", "session").Logger(),
		recent:         scanGuard{window: window},
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.Clone()
}

// Attempt returns the current pipeline attempt number.
func (m *Machine) Attempt() uint64 { return m.attempt }

// Generation returns the current message generation.
func (m *Machine) Generation() uint64 { return m.generation }

// Handle applies one event and returns the effects to run, in order.
func (m *Machine) Handle(ev Event) []Effect {
	var fx effects
	switch ev := ev.(type) {
	case StartScanner:
		m.startScanner(&fx)
	case StopScanner:
		m.stopScanner(&fx)
	case CameraPermissionChanged:
		m.cameraPermissionChanged(&fx, ev.Granted)
	case CameraFailed:
		m.cameraFailed(&fx, ev.Kind)
	case ScanDecoded:
		m.scanDecoded(&fx, ev.Text)
	case LinkOpened:
		m.linkOpened(&fx, ev.Text)
	case ManualDraftChanged:
		m.state.Scanner.ManualURLDraft = ev.Text
	case ManualSubmitted:
		m.manualSubmitted(&fx)
	case ManualEntryRequested:
		m.state.Scanner.ShowHelp = true
	case HelpDismissed:
		m.state.Scanner.ShowHelp = false
	case Resolved:
		m.resolved(&fx, ev)
	case Validated:
		m.validated(&fx, ev)
	case MessageExpired:
		if ev.Generation == m.generation {
			m.clearMessage()
		}
	case GoToScanner:
		m.goToScanner(&fx, ev.Restart)
	case GoToPlayer:
		m.goToPlayer(&fx, ev.Audio)
	case TogglePlayPause:
		m.togglePlayPause(&fx)
	case Seek:
		m.seek(&fx, ev.Seconds)
	case TransportStatus:
		m.transportStatus(&fx, ev)
	default:
		m.logger.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("unhandled event")
	}
	return fx
}

type effects []Effect

func (fx *effects) add(e Effect) { *fx = append(*fx, e) }

func (m *Machine) setMessage(key MessageKey, params map[string]string) {
	m.generation++
	m.state.Scanner.Message = Message{Key: key, Params: params}
}

func (m *Machine) clearMessage() {
	m.generation++
	m.state.Scanner.Message = Message{}
}

// nextAttempt starts a new pipeline, superseding any outstanding one.
func (m *Machine) nextAttempt() uint64 {
	m.attempt++
	return m.attempt
}

// abandonAttempt invalidates any outstanding pipeline.
func (m *Machine) abandonAttempt() {
	m.attempt++
	m.state.InFlight = false
}

func (m *Machine) current(attempt uint64, kind string) bool {
	if attempt != m.attempt || m.state.Page != PageScanner {
		m.logger.Debug().
			Str("result", kind).
			Uint64("attempt", attempt).
			Uint64("current", m.attempt).
			Str("page", m.state.Page.String()).
			Msg("discarding stale result")
		return false
	}
	return true
}

func (m *Machine) startScanner(fx *effects) {
	if m.state.Page != PageScanner {
		return
	}
	m.state.Scanner.IsScanning = true
	m.state.Scanner.ShowHelp = false
	m.clearMessage()
	fx.add(StartCapture{})
}

func (m *Machine) stopScanner(fx *effects) {
	m.state.Scanner.IsScanning = false
	m.clearMessage()
	fx.add(StopCapture{})
}

func (m *Machine) cameraPermissionChanged(fx *effects, granted bool) {
	if granted {
		m.state.Scanner.CameraPermission = PermissionGranted
		m.state.Scanner.ShowHelp = false
		return
	}
	m.state.Scanner.CameraPermission = PermissionDenied
	m.state.Scanner.ShowHelp = true
	if m.state.Scanner.IsScanning {
		m.state.Scanner.IsScanning = false
		fx.add(StopCapture{})
	}
	m.setMessage(MessageCameraPermissionDenied, nil)
}

func (m *Machine) cameraFailed(fx *effects, kind CameraError) {
	if kind == CameraNotAllowed {
		m.state.Scanner.CameraPermission = PermissionDenied
	}
	m.state.Scanner.ShowHelp = true
	if m.state.Scanner.IsScanning {
		m.state.Scanner.IsScanning = false
		fx.add(StopCapture{})
	}
	m.setMessage(cameraMessage(kind), nil)
}

func (m *Machine) goToPlayer(fx *effects, audio catalog.ResolvedAudio) {
	m.abandonAttempt()
	if m.state.Scanner.IsScanning {
		fx.add(StopCapture{})
	}
	m.state.Page = PagePlayer
	m.state.Audio = &audio
	m.state.Player = PlayerState{}
	m.state.Scanner.IsScanning = false
	m.clearMessage()
	fx.add(TransportLoad{URL: audio.URL})
	m.logger.Info().
		Str("url", audio.URL).
		Str("title", audio.Title).
		Str("artist", audio.Artist).
		Msg("player opened")
}

func (m *Machine) goToScanner(fx *effects, restart bool) {
	m.abandonAttempt()
	if m.state.Audio != nil {
		fx.add(TransportUnload{})
	}
	m.state.Audio = nil
	m.state.Player = PlayerState{}
	m.state.Page = PageScanner
	if restart {
		m.startScanner(fx)
		return
	}
	m.clearMessage()
}
