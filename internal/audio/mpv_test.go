package audio

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeMPV answers JSON IPC requests from an in-memory property table.
type fakeMPV struct {
	mu       sync.Mutex
	props    map[string]any
	commands [][]any
}

func (f *fakeMPV) set(name string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[name] = v
}

func (f *fakeMPV) sent() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]any
	for _, c := range f.commands {
		if c[0] != "get_property" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	enc := json.NewEncoder(conn)
	_ = enc.Encode(map[string]any{"event": "idle"})
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			return
		}
		resp := map[string]any{"request_id": req.RequestID, "error": "success"}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		switch req.Command[0] {
		case "get_property":
			if v, ok := f.props[req.Command[1].(string)]; ok {
				resp["data"] = v
			} else {
				resp["error"] = "property unavailable"
			}
		case "set_property":
			f.props[req.Command[1].(string)] = req.Command[2]
		}
		f.mu.Unlock()
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func newFakeMPVPlayer(t *testing.T) (*MPVPlayer, *fakeMPV) {
	t.Helper()
	client, server := net.Pipe()
	fake := &fakeMPV{props: map[string]any{"pause": true}}
	go fake.serve(server)

	p := NewMPVPlayer(MPVOptions{})
	p.ipc = newIPCClient(client)
	t.Cleanup(func() { _ = p.Close() })
	return p, fake
}

func TestMPVLoadStartsPaused(t *testing.T) {
	p, fake := newFakeMPVPlayer(t)
	require.NoError(t, p.Load(context.Background(), "https://audio.test/p.m4a"))

	require.Equal(t, [][]any{
		{"set_property", "pause", true},
		{"loadfile", "https://audio.test/p.m4a", "replace"},
	}, fake.sent())

	st := p.Status()
	require.False(t, st.Playing)
	require.False(t, st.IsLoaded)
	require.True(t, st.IsBuffering)
}

func TestMPVStatusReadsProperties(t *testing.T) {
	p, fake := newFakeMPVPlayer(t)
	require.NoError(t, p.Load(context.Background(), "https://audio.test/p.m4a"))
	fake.set("duration", 29.98)
	fake.set("time-pos", 12.5)

	require.NoError(t, p.Play())
	st := p.Status()
	require.Equal(t, Status{Playing: true, CurrentTime: 12.5, Duration: 29.98, IsLoaded: true}, st)

	require.NoError(t, p.Pause())
	require.False(t, p.Status().Playing)
}

func TestMPVFinishIsEdgeTriggered(t *testing.T) {
	p, fake := newFakeMPVPlayer(t)
	require.NoError(t, p.Load(context.Background(), "https://audio.test/p.m4a"))
	fake.set("duration", 30.0)
	fake.set("time-pos", 30.0)
	fake.set("eof-reached", true)
	fake.set("pause", false)

	st := p.Status()
	require.True(t, st.DidJustFinish)
	require.False(t, st.Playing)
	require.False(t, p.Status().DidJustFinish)

	require.NoError(t, p.Play())
	cmds := fake.sent()
	require.Equal(t, []any{"seek", float64(0), "absolute"}, cmds[len(cmds)-2])
	require.Equal(t, []any{"set_property", "pause", false}, cmds[len(cmds)-1])
}

func TestMPVUnloadStops(t *testing.T) {
	p, fake := newFakeMPVPlayer(t)
	require.NoError(t, p.Load(context.Background(), "https://audio.test/p.m4a"))
	require.NoError(t, p.Seek(3.5))
	require.NoError(t, p.Unload())

	cmds := fake.sent()
	require.Equal(t, []any{"seek", 3.5, "absolute"}, cmds[len(cmds)-2])
	require.Equal(t, []any{"stop"}, cmds[len(cmds)-1])
	require.Equal(t, Status{}, p.Status())
	require.ErrorIs(t, p.Play(), ErrNotLoaded)
}

func TestMPVReportsCommandErrors(t *testing.T) {
	client, server := net.Pipe()
	go func() {
		defer func() { _ = server.Close() }()
		scanner := bufio.NewScanner(server)
		enc := json.NewEncoder(server)
		for scanner.Scan() {
			var req ipcRequest
			_ = json.Unmarshal(scanner.Bytes(), &req)
			_ = enc.Encode(map[string]any{"request_id": req.RequestID, "error": "invalid parameter"})
		}
	}()
	p := NewMPVPlayer(MPVOptions{})
	p.ipc = newIPCClient(client)
	t.Cleanup(func() { _ = p.Close() })

	err := p.Load(context.Background(), "https://audio.test/p.m4a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid parameter")
}

func TestMPVMissingBinary(t *testing.T) {
	require.False(t, MPVAvailable("hitcard-no-such-player"))
	p := NewMPVPlayer(MPVOptions{Path: "hitcard-no-such-player", SocketDir: t.TempDir()})
	require.ErrorIs(t, p.Load(context.Background(), "https://audio.test/p.m4a"), ErrNoBackend)
	require.NoError(t, p.Close())
}
