package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/hitcard/internal/session"
)

// inbox is the single channel the UI loop reads events from.
type inbox struct {
	ch     chan session.Event
	done   <-chan struct{}
	logger zerolog.Logger
}

func newInbox(ctx context.Context, size int, logger zerolog.Logger) *inbox {
	return &inbox{
		ch:     make(chan session.Event, size),
		done:   ctx.Done(),
		logger: logger.With().Str("component", "inbox").Logger(),
	}
}

// send waits for room. Effect results use it so none are lost.
func (b *inbox) send(ev session.Event) {
	select {
	case b.ch <- ev:
	case <-b.done:
	}
}

// offer never blocks; the event is dropped when the inbox is full, and
// offer reports whether it was queued.
func (b *inbox) offer(ev session.Event) bool {
	select {
	case b.ch <- ev:
		return true
	default:
		b.logger.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("inbox full; event dropped")
		return false
	}
}
