package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/require"
)

// fakeSink pulls samples on demand instead of driving a sound card.
type fakeSink struct {
	mu        sync.Mutex
	streamers []beep.Streamer
	inits     int
}

func (f *fakeSink) Init(beep.SampleRate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	return nil
}

func (f *fakeSink) Play(s beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamers = append(f.streamers, s)
}

func (f *fakeSink) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamers = nil
}

func (f *fakeSink) Lock()   { f.mu.Lock() }
func (f *fakeSink) Unlock() { f.mu.Unlock() }

func (f *fakeSink) pull(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([][2]float64, 512)
	for n > 0 {
		chunk := min(n, len(buf))
		for _, s := range f.streamers {
			s.Stream(buf[:chunk])
		}
		n -= chunk
	}
}

// pcmWAV builds a mono 16-bit PCM WAV file of the given length.
func pcmWAV(rate, samples int) []byte {
	var b bytes.Buffer
	dataLen := samples * 2
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+dataLen))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(dataLen))
	for i := 0; i < samples; i++ {
		_ = binary.Write(&b, binary.LittleEndian, int16(i%200*100))
	}
	return b.Bytes()
}

func serveBytes(t *testing.T, contentType string, body []byte) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/track"
}

func loadedPlayer(t *testing.T) (*BeepPlayer, *fakeSink) {
	t.Helper()
	out := &fakeSink{}
	p := newBeepPlayer(BeepOptions{}, out)
	url := serveBytes(t, "audio/wav", pcmWAV(8000, 8000))
	require.NoError(t, p.Load(context.Background(), url))
	t.Cleanup(func() { _ = p.Close() })
	return p, out
}

func TestBeepLoadStartsPaused(t *testing.T) {
	p, out := loadedPlayer(t)
	st := p.Status()
	require.True(t, st.IsLoaded)
	require.False(t, st.Playing)
	require.Zero(t, st.CurrentTime)
	require.InDelta(t, 1.0, st.Duration, 0.001)
	require.Equal(t, 1, out.inits)

	out.pull(4410)
	require.Zero(t, p.Status().CurrentTime)
}

func TestBeepPlayPauseAdvancesPosition(t *testing.T) {
	p, out := loadedPlayer(t)
	require.NoError(t, p.Play())
	out.pull(22050)

	st := p.Status()
	require.True(t, st.Playing)
	require.Greater(t, st.CurrentTime, 0.4)
	require.Less(t, st.CurrentTime, 0.6)

	require.NoError(t, p.Pause())
	paused := p.Status().CurrentTime
	out.pull(22050)
	st = p.Status()
	require.False(t, st.Playing)
	require.Equal(t, paused, st.CurrentTime)
}

func TestBeepFinishIsEdgeTriggered(t *testing.T) {
	p, out := loadedPlayer(t)
	require.NoError(t, p.Play())
	out.pull(60000)

	st := p.Status()
	require.True(t, st.DidJustFinish)
	require.False(t, st.Playing)

	st = p.Status()
	require.False(t, st.DidJustFinish)
	require.False(t, st.Playing)

	require.NoError(t, p.Seek(0))
	st = p.Status()
	require.Zero(t, st.CurrentTime)
	require.False(t, st.Playing)
	require.False(t, st.DidJustFinish)
}

func TestBeepSeekClamps(t *testing.T) {
	p, _ := loadedPlayer(t)
	require.NoError(t, p.Seek(0.5))
	require.InDelta(t, 0.5, p.Status().CurrentTime, 0.001)

	require.NoError(t, p.Seek(99))
	require.InDelta(t, 1.0, p.Status().CurrentTime, 0.001)
}

func TestBeepCommandsWithoutTrack(t *testing.T) {
	p := newBeepPlayer(BeepOptions{}, &fakeSink{})
	require.ErrorIs(t, p.Play(), ErrNotLoaded)
	require.ErrorIs(t, p.Pause(), ErrNotLoaded)
	require.ErrorIs(t, p.Seek(1), ErrNotLoaded)
	require.Equal(t, Status{}, p.Status())
	require.NoError(t, p.Unload())
}

func TestBeepRejectsUnsupportedAndMissing(t *testing.T) {
	p := newBeepPlayer(BeepOptions{}, &fakeSink{})
	m4a := serveBytes(t, "audio/mp4", padded("\x00\x00\x00\x20ftypM4A "))
	require.ErrorIs(t, p.Load(context.Background(), m4a), ErrUnsupportedFormat)

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	err := p.Load(context.Background(), server.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBeepUnloadClearsOutput(t *testing.T) {
	p, out := loadedPlayer(t)
	require.NoError(t, p.Unload())
	require.Empty(t, out.streamers)
	require.False(t, p.Status().IsLoaded)
}
