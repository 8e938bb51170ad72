package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog"
)

const (
	speakerRate     = beep.SampleRate(44100)
	resampleQuality = 4
	maxDownload     = 32 << 20
	sniffLen        = 512
)

// sink is the audio output device.
type sink interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// speakerSink drives the process-wide beep speaker. It is initialized once.
type speakerSink struct {
	once sync.Once
	err  error
}

func (s *speakerSink) Init(rate beep.SampleRate) error {
	s.once.Do(func() {
		s.err = speaker.Init(rate, rate.N(time.Second/10))
	})
	return s.err
}

func (s *speakerSink) Play(st beep.Streamer) { speaker.Play(st) }
func (s *speakerSink) Clear()                { speaker.Clear() }
func (s *speakerSink) Lock()                 { speaker.Lock() }
func (s *speakerSink) Unlock()               { speaker.Unlock() }

// BeepOptions configure a BeepPlayer.
type BeepOptions struct {
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// BeepPlayer decodes mp3, flac, wav and ogg/vorbis in-process and plays them
// through the system speaker. Tracks are downloaded fully before playback.
type BeepPlayer struct {
	client *http.Client
	out    sink
	logger zerolog.Logger

	loading atomic.Bool
	mu      sync.Mutex
	track   *beepTrack
}

var _ Transport = (*BeepPlayer)(nil)

// NewBeepPlayer returns a player using the system speaker.
func NewBeepPlayer(opts BeepOptions) *BeepPlayer {
	return newBeepPlayer(opts, &speakerSink{})
}

func newBeepPlayer(opts BeepOptions, out sink) *BeepPlayer {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &BeepPlayer{
		client: client,
		out:    out,
		logger: opts.Logger.With().Str("component", "beep").Logger(),
	}
}

// beepTrack fields other than source and format are guarded by the sink lock.
type beepTrack struct {
	source   beep.StreamSeekCloser
	format   beep.Format
	end      *endGuard
	ctrl     *beep.Ctrl
	reported bool
}

// endGuard feeds silence once the source is exhausted so the output keeps
// running, and remembers that the end was reached.
type endGuard struct {
	src      beep.Streamer
	finished bool
}

func (g *endGuard) Stream(samples [][2]float64) (int, bool) {
	if g.finished {
		clear(samples)
		return len(samples), true
	}
	n, ok := g.src.Stream(samples)
	if !ok || n < len(samples) {
		clear(samples[n:])
		g.finished = true
	}
	return len(samples), true
}

func (g *endGuard) Err() error { return g.src.Err() }

// Load downloads and decodes url, replacing the current track.
func (p *BeepPlayer) Load(ctx context.Context, url string) error {
	p.loading.Store(true)
	defer p.loading.Store(false)

	data, contentType, err := p.fetch(ctx, url)
	if err != nil {
		return err
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	format := DetectFormat(head, contentType, url)
	source, decoded, err := decode(format, data)
	if err != nil {
		return err
	}
	if err := p.out.Init(speakerRate); err != nil {
		_ = source.Close()
		return fmt.Errorf("init speaker: %w", err)
	}

	end := &endGuard{src: source}
	track := &beepTrack{
		source: source,
		format: decoded,
		end:    end,
		ctrl:   &beep.Ctrl{Streamer: end, Paused: true},
	}
	var out beep.Streamer = track.ctrl
	if decoded.SampleRate != speakerRate {
		out = beep.Resample(resampleQuality, decoded.SampleRate, speakerRate, track.ctrl)
	}

	p.out.Clear()
	p.mu.Lock()
	old := p.track
	p.track = track
	p.mu.Unlock()
	if old != nil {
		_ = old.source.Close()
	}
	p.out.Play(out)

	p.logger.Info().
		Str("url", url).
		Str("format", format.String()).
		Float64("duration", decoded.SampleRate.D(source.Len()).Seconds()).
		Msg("track loaded")
	return nil
}

func (p *BeepPlayer) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download audio: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("download audio: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if len(data) > maxDownload {
		return nil, "", fmt.Errorf("audio exceeds %d bytes", maxDownload)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// memFile adapts an in-memory buffer to the ReadCloser and Seeker the
// decoders want.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func decode(format Format, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := memFile{Reader: bytes.NewReader(data)}
	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch format {
	case FormatMP3:
		s, f, err = mp3.Decode(r)
	case FormatFLAC:
		s, f, err = flac.Decode(r)
	case FormatWAV:
		s, f, err = wav.Decode(r)
	case FormatOgg:
		s, f, err = vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w (%w)", format, ErrUnsupportedFormat, err)
	}
	return s, f, nil
}

func (p *BeepPlayer) current() *beepTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Unload stops output and releases the track.
func (p *BeepPlayer) Unload() error {
	p.out.Clear()
	p.mu.Lock()
	old := p.track
	p.track = nil
	p.mu.Unlock()
	if old == nil {
		return nil
	}
	return old.source.Close()
}

// Play resumes playback, rewinding first if the track had finished.
func (p *BeepPlayer) Play() error {
	t := p.current()
	if t == nil {
		return ErrNotLoaded
	}
	p.out.Lock()
	defer p.out.Unlock()
	if t.end.finished {
		if err := t.source.Seek(0); err != nil {
			return fmt.Errorf("rewind: %w", err)
		}
		t.end.finished = false
		t.reported = false
	}
	t.ctrl.Paused = false
	return nil
}

func (p *BeepPlayer) Pause() error {
	t := p.current()
	if t == nil {
		return ErrNotLoaded
	}
	p.out.Lock()
	t.ctrl.Paused = true
	p.out.Unlock()
	return nil
}

// Seek moves to seconds, clamped to the track length.
func (p *BeepPlayer) Seek(seconds float64) error {
	t := p.current()
	if t == nil {
		return ErrNotLoaded
	}
	p.out.Lock()
	defer p.out.Unlock()
	n := t.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	n = max(0, min(n, t.source.Len()))
	if err := t.source.Seek(n); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if t.end.finished {
		t.ctrl.Paused = true
	}
	t.end.finished = false
	t.reported = false
	return nil
}

// Status reports position and state. Reaching the end pauses the track.
func (p *BeepPlayer) Status() Status {
	t := p.current()
	if t == nil {
		return Status{IsBuffering: p.loading.Load()}
	}
	p.out.Lock()
	defer p.out.Unlock()
	finished := t.end.finished
	if finished {
		t.ctrl.Paused = true
	}
	st := Status{
		Playing:       !t.ctrl.Paused,
		CurrentTime:   t.format.SampleRate.D(t.source.Position()).Seconds(),
		Duration:      t.format.SampleRate.D(t.source.Len()).Seconds(),
		IsLoaded:      true,
		IsBuffering:   p.loading.Load(),
		DidJustFinish: finished && !t.reported,
	}
	if finished {
		t.reported = true
	}
	return st
}

// Close releases the current track. The speaker stays initialized.
func (p *BeepPlayer) Close() error {
	return p.Unload()
}
