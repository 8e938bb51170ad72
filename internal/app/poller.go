package app

import (
	"context"
	"time"

	"github.com/five82/hitcard/internal/audio"
	"github.com/five82/hitcard/internal/session"
)

// StartPoller launches a background goroutine that reports transport status
// to send at a fixed cadence. Unchanged reports are skipped. send returns
// false when it dropped the event; the report is then retried on the next
// tick, still carrying a finish edge the transport will not repeat. It returns
// immediately.
func StartPoller(ctx context.Context, transport audio.Transport, send func(session.Event) bool, interval time.Duration) {
	if interval <= 0 {
		interval = audio.DefaultStatusInterval
	}
	p := &poller{transport: transport, send: send}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()
}

type poller struct {
	transport audio.Transport
	send      func(session.Event) bool
	last      audio.Status
	primed    bool
	// finishPending holds a finish edge whose report was dropped.
	finishPending bool
}

func (p *poller) poll() {
	st := p.transport.Status()
	if p.finishPending {
		st.DidJustFinish = true
	}
	if p.primed && st == p.last {
		return
	}
	if !p.send(statusEvent(st)) {
		p.finishPending = st.DidJustFinish
		return
	}
	p.last, p.primed, p.finishPending = st, true, false
}

func statusEvent(st audio.Status) session.TransportStatus {
	return session.TransportStatus{
		Playing:       st.Playing,
		CurrentTime:   st.CurrentTime,
		Duration:      st.Duration,
		IsLoaded:      st.IsLoaded,
		IsBuffering:   st.IsBuffering,
		DidJustFinish: st.DidJustFinish,
	}
}
