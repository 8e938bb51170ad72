package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/five82/hitcard/internal/audio"
	"github.com/five82/hitcard/internal/session"
)

type scriptedTransport struct {
	audio.Nop
	mu     sync.Mutex
	status audio.Status
}

func (s *scriptedTransport) set(st audio.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *scriptedTransport) Status() audio.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func collect(got *[]session.Event) func(session.Event) bool {
	return func(ev session.Event) bool {
		*got = append(*got, ev)
		return true
	}
}

func TestPoller_SkipsUnchangedStatus(t *testing.T) {
	transport := &scriptedTransport{}
	var got []session.Event
	p := &poller{transport: transport, send: collect(&got)}

	p.poll()
	p.poll()
	if len(got) != 1 || got[0] != (session.TransportStatus{}) {
		t.Fatalf("events = %+v, want one zero status", got)
	}

	want := session.TransportStatus{Playing: true, CurrentTime: 1.5, Duration: 30, IsLoaded: true}
	transport.set(audio.Status{Playing: true, CurrentTime: 1.5, Duration: 30, IsLoaded: true})
	p.poll()
	p.poll()
	if len(got) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(got))
	}
	if got[1] != want {
		t.Fatalf("events[1] = %+v, want %+v", got[1], want)
	}
}

func TestPoller_ForwardsFinishEdge(t *testing.T) {
	transport := &scriptedTransport{}
	var got []session.Event
	p := &poller{transport: transport, send: collect(&got)}

	transport.set(audio.Status{CurrentTime: 30, Duration: 30, IsLoaded: true})
	p.poll()
	transport.set(audio.Status{CurrentTime: 30, Duration: 30, IsLoaded: true, DidJustFinish: true})
	p.poll()
	transport.set(audio.Status{CurrentTime: 30, Duration: 30, IsLoaded: true})
	p.poll()

	if len(got) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(got))
	}
	if !got[1].(session.TransportStatus).DidJustFinish {
		t.Fatalf("events[1] = %+v, want finish edge", got[1])
	}
	if got[2].(session.TransportStatus).DidJustFinish {
		t.Fatalf("events[2] = %+v, want edge cleared", got[2])
	}
}

func TestPoller_RetriesDroppedFinishEdge(t *testing.T) {
	transport := &scriptedTransport{}
	var got []session.Event
	accept := false
	p := &poller{transport: transport, send: func(ev session.Event) bool {
		if !accept {
			return false
		}
		got = append(got, ev)
		return true
	}}

	// The transport reports the edge once while the inbox is full.
	transport.set(audio.Status{CurrentTime: 30, Duration: 30, IsLoaded: true, DidJustFinish: true})
	p.poll()
	transport.set(audio.Status{CurrentTime: 30, Duration: 30, IsLoaded: true})
	p.poll()
	if len(got) != 0 {
		t.Fatalf("events = %+v, want none while full", got)
	}

	accept = true
	p.poll()
	want := session.TransportStatus{CurrentTime: 30, Duration: 30, IsLoaded: true, DidJustFinish: true}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("events = %+v, want [%+v]", got, want)
	}

	p.poll()
	p.poll()
	if len(got) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(got))
	}
	if got[1].(session.TransportStatus).DidJustFinish {
		t.Fatalf("events[1] = %+v, want edge cleared", got[1])
	}
}

func TestPoller_RetriesDroppedReport(t *testing.T) {
	transport := &scriptedTransport{}
	transport.set(audio.Status{Playing: true, IsLoaded: true})
	sends := 0
	var got []session.Event
	p := &poller{transport: transport, send: func(ev session.Event) bool {
		sends++
		if sends == 1 {
			return false
		}
		got = append(got, ev)
		return true
	}}

	p.poll()
	p.poll()
	want := session.TransportStatus{Playing: true, IsLoaded: true}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("events = %+v, want [%+v]", got, want)
	}
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	transport := &scriptedTransport{}
	events := make(chan session.Event, 8)
	ctx, cancel := context.WithCancel(context.Background())

	StartPoller(ctx, transport, func(ev session.Event) bool {
		events <- ev
		return true
	}, 5*time.Millisecond)

	select {
	case ev := <-events:
		if ev != (session.TransportStatus{}) {
			t.Fatalf("first event = %+v, want zero status", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller never reported")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	transport.set(audio.Status{Playing: true})
	time.Sleep(30 * time.Millisecond)
	for len(events) > 0 {
		ev := <-events
		if ev.(session.TransportStatus).Playing {
			t.Fatal("poller reported after cancel")
		}
	}
}
