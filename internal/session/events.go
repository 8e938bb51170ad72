package session

import "github.com/five82/hitcard/internal/catalog"

// Event is any input to Machine.Handle.
type Event interface {
	isEvent()
}

// StartScanner begins camera capture.
type StartScanner struct{}

// StopScanner ends camera capture.
type StopScanner struct{}

// CameraPermissionChanged reports the outcome of a permission prompt.
type CameraPermissionChanged struct {
	Granted bool
}

// CameraError classifies a camera start failure.
type CameraError int

const (
	CameraUnknownError CameraError = iota
	CameraNotAllowed
	CameraNotFound
	CameraNotSupported
)

// ParseCameraError maps a browser media error name to a CameraError.
func ParseCameraError(name string) CameraError {
	switch name {
	case "NotAllowedError", "PermissionDeniedError":
		return CameraNotAllowed
	case "NotFoundError", "DevicesNotFoundError":
		return CameraNotFound
	case "NotSupportedError":
		return CameraNotSupported
	default:
		return CameraUnknownError
	}
}

// CameraFailed reports that capture could not start.
type CameraFailed struct {
	Kind CameraError
}

// ScanDecoded delivers one decoded code from the camera.
type ScanDecoded struct {
	Text string
}

// LinkOpened delivers a deep link opened from outside the app.
type LinkOpened struct {
	Text string
}

// ManualDraftChanged updates the manual entry field.
type ManualDraftChanged struct {
	Text string
}

// ManualSubmitted commits the manual entry field.
type ManualSubmitted struct{}

// ManualEntryRequested opens the help and manual entry panel.
type ManualEntryRequested struct{}

// HelpDismissed closes the help and manual entry panel.
type HelpDismissed struct{}

// Resolved is the outcome of a Resolve effect.
type Resolved struct {
	Attempt uint64
	Audio   catalog.ResolvedAudio
	Err     error
}

// Validated is the outcome of a Validate effect.
type Validated struct {
	Attempt  uint64
	Audio    catalog.ResolvedAudio
	Playable bool
}

// MessageExpired fires when a ClearMessage timer elapses.
type MessageExpired struct {
	Generation uint64
}

// GoToScanner leaves the player. Restart re-enters capture immediately.
type GoToScanner struct {
	Restart bool
}

// GoToPlayer opens the player for audio.
type GoToPlayer struct {
	Audio catalog.ResolvedAudio
}

// TogglePlayPause flips the transport between play and pause.
type TogglePlayPause struct{}

// Seek moves the playback position.
type Seek struct {
	Seconds float64
}

// TransportStatus is a periodic report from the audio transport.
type TransportStatus struct {
	Playing       bool
	CurrentTime   float64
	Duration      float64
	IsLoaded      bool
	IsBuffering   bool
	DidJustFinish bool
}

func (StartScanner) isEvent()            {}
func (StopScanner) isEvent()             {}
func (CameraPermissionChanged) isEvent() {}
func (CameraFailed) isEvent()            {}
func (ScanDecoded) isEvent()             {}
func (LinkOpened) isEvent()              {}
func (ManualDraftChanged) isEvent()      {}
func (ManualSubmitted) isEvent()         {}
func (ManualEntryRequested) isEvent()    {}
func (HelpDismissed) isEvent()           {}
func (Resolved) isEvent()                {}
func (Validated) isEvent()               {}
func (MessageExpired) isEvent()          {}
func (GoToScanner) isEvent()             {}
func (GoToPlayer) isEvent()              {}
func (TogglePlayPause) isEvent()         {}
func (Seek) isEvent()                    {}
func (TransportStatus) isEvent()         {}
