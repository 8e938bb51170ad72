package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/five82/hitcard/internal/audio"
)

// sniffBytes is how much of the resource a probe downloads.
const sniffBytes = 64 << 10

var (
	errEmptyBody   = errors.New("empty response body")
	errNotAudio    = errors.New("resource is not audio")
	errProbeClosed = errors.New("probe closed")
)

// HTTPProbe fetches the head of a URL and sniffs it for an audio container.
type HTTPProbe struct {
	client *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

var _ Probe = (*HTTPProbe)(nil)

// NewHTTPProbe returns a probe using client, or http.DefaultClient when nil.
func NewHTTPProbe(client *http.Client) *HTTPProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProbe{client: client}
}

// Start begins the fetch in the background.
func (p *HTTPProbe) Start(ctx context.Context, url string, events chan<- Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	if p.closed {
		cancel()
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		Emit(ctx, events, p.load(ctx, url))
	}()
}

// Close aborts an in-flight fetch and waits for it to finish.
func (p *HTTPProbe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errProbeClosed
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

func (p *HTTPProbe) load(ctx context.Context, url string) Event {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Event{Kind: EventError, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", sniffBytes-1))

	resp, err := p.client.Do(req)
	if err != nil {
		return Event{Kind: EventError, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Event{Kind: EventError, Err: fmt.Errorf("probe returned status %d", resp.StatusCode)}
	}
	head, err := io.ReadAll(io.LimitReader(resp.Body, sniffBytes))
	if err != nil {
		return Event{Kind: EventError, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(head) == 0 {
		return Event{Kind: EventError, Err: errEmptyBody}
	}
	if audio.Sniff(head) != audio.FormatUnknown {
		return Event{Kind: EventCanPlay}
	}
	if isAudioContentType(resp.Header.Get("Content-Type")) {
		return Event{Kind: EventDataLoaded}
	}
	return Event{Kind: EventError, Err: errNotAudio}
}

func isAudioContentType(value string) bool {
	if value == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "audio/") && mediaType != "audio/"
}
