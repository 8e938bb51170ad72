package session

import (
	"fmt"
	"maps"

	"github.com/five82/hitcard/internal/catalog"
)

// Page identifies the active screen. Exactly one is active at a time.
type Page int

const (
	PageScanner Page = iota
	PagePlayer
)

func (p Page) String() string {
	if p == PagePlayer {
		return "player"
	}
	return "scanner"
}

// MarshalText renders the page name in JSON snapshots.
func (p Page) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Permission is the camera permission sub-state.
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// MarshalText renders the permission name in JSON snapshots.
func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Phase is a coarse, derived view of the session for display.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseScanning  Phase = "scanning"
	PhaseResolving Phase = "resolving"
	PhasePlayer    Phase = "player"
)

// Message is a transient, keyed user-facing status. The zero value means none.
type Message struct {
	Key    MessageKey        `json:"key,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// IsZero reports whether no message is set.
func (m Message) IsZero() bool { return m.Key == MessageNone }

func (m Message) String() string {
	if len(m.Params) == 0 {
		return string(m.Key)
	}
	return fmt.Sprintf("%s %v", m.Key, m.Params)
}

// ScannerState is the scanner page sub-state.
type ScannerState struct {
	IsScanning       bool       `json:"isScanning"`
	CameraPermission Permission `json:"cameraPermission"`
	ShowHelp         bool       `json:"showHelp"`
	ManualURLDraft   string     `json:"manualUrlDraft"`
	Message          Message    `json:"message"`
}

// PlayerState mirrors the last transport status. Times are in seconds.
type PlayerState struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	IsLoaded    bool    `json:"isLoaded"`
	IsBuffering bool    `json:"isBuffering"`
}

// State is the whole session. Only Machine mutates it.
type State struct {
	Page    Page                   `json:"page"`
	Scanner ScannerState           `json:"scanner"`
	Player  PlayerState            `json:"player"`
	Audio   *catalog.ResolvedAudio `json:"audio"`
	// InFlight is set while a resolve or validate step is outstanding.
	InFlight bool `json:"inFlight"`
}

// Phase derives the display phase from the state.
func (s State) Phase() Phase {
	switch {
	case s.Page == PagePlayer:
		return PhasePlayer
	case s.InFlight:
		return PhaseResolving
	case s.Scanner.IsScanning:
		return PhaseScanning
	default:
		return PhaseIdle
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s State) Clone() State {
	out := s
	if s.Scanner.Message.Params != nil {
		out.Scanner.Message.Params = maps.Clone(s.Scanner.Message.Params)
	}
	if s.Audio != nil {
		audio := *s.Audio
		out.Audio = &audio
	}
	return out
}
