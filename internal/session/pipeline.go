package session

import (
	"time"

	"github.com/five82/hitcard/internal/catalog"
	"github.com/five82/hitcard/internal/scan"
)

// scanGuard remembers the last accepted decode so consecutive camera frames
// of the same code run the pipeline once.
type scanGuard struct {
	window time.Duration
	text   string
	at     time.Time
	seen   bool
}

func (g *scanGuard) duplicate(text string, now time.Time) bool {
	if g.window <= 0 {
		return false
	}
	if g.seen && g.text == text && now.Sub(g.at) < g.window {
		return true
	}
	g.text, g.at, g.seen = text, now, true
	return false
}

func (m *Machine) scanDecoded(fx *effects, text string) {
	if m.state.Page != PageScanner {
		m.logger.Debug().Str("data", text).Msg("ignoring scan outside scanner page")
		return
	}
	if m.recent.duplicate(text, m.now()) {
		m.logger.Debug().Str("data", text).Msg("ignoring duplicate scan")
		return
	}
	m.logger.Info().Str("data", text).Msg("code scanned")
	m.process(fx, text)
}

func (m *Machine) linkOpened(fx *effects, text string) {
	if m.state.Page != PageScanner {
		m.goToScanner(fx, false)
	}
	m.logger.Info().Str("data", text).Msg("link opened")
	m.process(fx, text)
}

// process runs classification and starts the matching pipeline.
func (m *Machine) process(fx *effects, text string) {
	res := m.classifier.Classify(text)
	switch res.Kind {
	case scan.KindCatalogReference:
		m.setMessage(MessageCatalogReferenceDetected, nil)
		m.resolve(fx, res.ReferenceID)
	case scan.KindDirectAudio:
		m.setMessage(MessageURLDetected, nil)
		m.nextAttempt()
		m.loadAudio(fx, catalog.ResolvedAudio{URL: res.URL})
	default:
		key := MessageScannedInvalidURL
		if res.Reason == scan.ReasonNotAudio {
			key = MessageScannedInvalidAudioURL
		}
		m.setMessage(key, map[string]string{ParamData: text})
	}
}

func (m *Machine) manualSubmitted(fx *effects) {
	if m.state.Page != PageScanner {
		return
	}
	res, rejection := m.classifier.CheckManual(m.state.Scanner.ManualURLDraft)
	if rejection != scan.RejectNone {
		m.setMessage(rejectionMessage(rejection), nil)
		return
	}
	m.logger.Info().Str("url", res.URL).Msg("manual entry submitted")
	m.setMessage(MessageLoadingFromURL, nil)
	m.resolve(fx, res.ReferenceID)
}

func (m *Machine) resolve(fx *effects, referenceID string) {
	attempt := m.nextAttempt()
	m.state.InFlight = true
	fx.add(Resolve{Attempt: attempt, ReferenceID: referenceID})
}

func (m *Machine) resolved(fx *effects, ev Resolved) {
	if !m.current(ev.Attempt, "resolve") {
		return
	}
	if ev.Err != nil {
		m.state.InFlight = false
		m.logger.Warn().Err(ev.Err).Uint64("attempt", ev.Attempt).Msg("resolution failed")
		m.setMessage(MessageErrorLoading, nil)
		return
	}
	m.loadAudio(fx, ev.Audio)
}

// loadAudio stops capture, then validates or opens the player.
func (m *Machine) loadAudio(fx *effects, audio catalog.ResolvedAudio) {
	m.stopScanner(fx)
	m.setMessage(MessageValidating, nil)
	if m.skipValidation {
		m.goToPlayer(fx, audio)
		return
	}
	m.state.InFlight = true
	fx.add(Validate{Attempt: m.attempt, Audio: audio})
}

func (m *Machine) validated(fx *effects, ev Validated) {
	if !m.current(ev.Attempt, "validate") {
		return
	}
	if !ev.Playable {
		m.state.InFlight = false
		m.logger.Warn().Str("url", ev.Audio.URL).Msg("audio failed validation")
		m.setMessage(MessageInvalidAudio, nil)
		fx.add(ClearMessage{Generation: m.generation, After: m.messageTTL})
		return
	}
	m.goToPlayer(fx, ev.Audio)
}
