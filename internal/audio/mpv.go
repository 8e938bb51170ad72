package audio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMPVPath      = "mpv"
	defaultStartTimeout = 3 * time.Second
	ipcCallTimeout      = 500 * time.Millisecond
)

var errIPCClosed = errors.New("mpv ipc closed")

// MPVOptions configure an MPVPlayer.
type MPVOptions struct {
	Path         string
	SocketDir    string
	StartTimeout time.Duration
	Logger       zerolog.Logger
}

// MPVAvailable reports whether the mpv binary can be found.
func MPVAvailable(path string) bool {
	if path == "" {
		path = defaultMPVPath
	}
	_, err := exec.LookPath(path)
	return err == nil
}

// MPVPlayer drives an external mpv process over its JSON IPC socket. It
// covers the AAC/m4a previews the in-process decoders cannot handle.
type MPVPlayer struct {
	path         string
	socketDir    string
	startTimeout time.Duration
	logger       zerolog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	socket   string
	ipc      *ipcClient
	loaded   bool
	reported bool
}

var _ Transport = (*MPVPlayer)(nil)

// NewMPVPlayer returns a player. mpv is started on the first Load.
func NewMPVPlayer(opts MPVOptions) *MPVPlayer {
	path := opts.Path
	if path == "" {
		path = defaultMPVPath
	}
	dir := opts.SocketDir
	if dir == "" {
		dir = os.TempDir()
	}
	timeout := opts.StartTimeout
	if timeout <= 0 {
		timeout = defaultStartTimeout
	}
	return &MPVPlayer{
		path:         path,
		socketDir:    dir,
		startTimeout: timeout,
		logger:       opts.Logger.With().Str("component", "mpv").Logger(),
	}
}

func (p *MPVPlayer) ensureStarted(ctx context.Context) (*ipcClient, error) {
	if p.ipc != nil && !p.ipc.closed() {
		return p.ipc, nil
	}
	bin, err := exec.LookPath(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBackend, err)
	}
	socket := filepath.Join(p.socketDir, "hitcard-mpv-"+strconv.Itoa(os.Getpid())+".sock")
	_ = os.Remove(socket)

	cmd := exec.Command(bin,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--keep-open=yes",
		"--pause=yes",
		"--input-ipc-server="+socket,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	conn, err := dialRetry(ctx, socket, p.startTimeout)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("connect mpv ipc: %w", err)
	}
	p.cmd = cmd
	p.socket = socket
	p.ipc = newIPCClient(conn)
	p.logger.Info().Str("binary", bin).Str("socket", socket).Int("pid", cmd.Process.Pid).Msg("mpv started")
	return p.ipc, nil
}

func dialRetry(ctx context.Context, socket string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Load replaces the current file and leaves it paused.
func (p *MPVPlayer) Load(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ipc, err := p.ensureStarted(ctx)
	if err != nil {
		return err
	}
	if _, err := ipc.call(ctx, "set_property", "pause", true); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}
	if _, err := ipc.call(ctx, "loadfile", url, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	p.loaded = true
	p.reported = false
	p.logger.Info().Str("url", url).Msg("track loaded")
	return nil
}

func (p *MPVPlayer) command(args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ipc == nil || !p.loaded {
		return ErrNotLoaded
	}
	ctx, cancel := context.WithTimeout(context.Background(), ipcCallTimeout)
	defer cancel()
	_, err := p.ipc.call(ctx, args...)
	return err
}

func (p *MPVPlayer) Unload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ipc == nil || !p.loaded {
		return nil
	}
	p.loaded = false
	ctx, cancel := context.WithTimeout(context.Background(), ipcCallTimeout)
	defer cancel()
	_, err := p.ipc.call(ctx, "stop")
	return err
}

// Play resumes playback, rewinding first if the file is at its end.
func (p *MPVPlayer) Play() error {
	if p.boolProperty("eof-reached") {
		if err := p.command("seek", 0, "absolute"); err != nil {
			return err
		}
		p.mu.Lock()
		p.reported = false
		p.mu.Unlock()
	}
	return p.command("set_property", "pause", false)
}

func (p *MPVPlayer) Pause() error {
	return p.command("set_property", "pause", true)
}

func (p *MPVPlayer) Seek(seconds float64) error {
	if err := p.command("seek", seconds, "absolute"); err != nil {
		return err
	}
	p.mu.Lock()
	p.reported = false
	p.mu.Unlock()
	return nil
}

// Status queries mpv properties. Unavailable properties read as zero.
func (p *MPVPlayer) Status() Status {
	p.mu.Lock()
	loaded := p.loaded && p.ipc != nil
	p.mu.Unlock()
	if !loaded {
		return Status{}
	}
	duration, hasDuration := p.floatProperty("duration")
	st := Status{
		Playing:     !p.boolProperty("pause"),
		IsLoaded:    hasDuration,
		IsBuffering: p.boolProperty("paused-for-cache") || !hasDuration,
		Duration:    duration,
	}
	st.CurrentTime, _ = p.floatProperty("time-pos")
	if p.boolProperty("eof-reached") {
		st.Playing = false
		p.mu.Lock()
		st.DidJustFinish = !p.reported
		p.reported = true
		p.mu.Unlock()
	}
	return st
}

func (p *MPVPlayer) property(name string) (json.RawMessage, bool) {
	p.mu.Lock()
	ipc := p.ipc
	p.mu.Unlock()
	if ipc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), ipcCallTimeout)
	defer cancel()
	data, err := ipc.call(ctx, "get_property", name)
	if err != nil || len(data) == 0 || string(data) == "null" {
		return nil, false
	}
	return data, true
}

func (p *MPVPlayer) boolProperty(name string) bool {
	data, ok := p.property(name)
	if !ok {
		return false
	}
	var v bool
	return json.Unmarshal(data, &v) == nil && v
}

func (p *MPVPlayer) floatProperty(name string) (float64, bool) {
	data, ok := p.property(name)
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Close quits mpv and removes its socket.
func (p *MPVPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ipc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ipcCallTimeout)
	_, _ = p.ipc.call(ctx, "quit")
	cancel()
	err := p.ipc.close()
	p.ipc = nil
	p.loaded = false
	if p.cmd != nil {
		done := make(chan struct{})
		go func() {
			_ = p.cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			_ = p.cmd.Process.Kill()
			<-done
		}
		p.cmd = nil
	}
	if p.socket != "" {
		_ = os.Remove(p.socket)
	}
	return err
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
}

// ipcClient multiplexes mpv JSON IPC requests over one connection.
type ipcClient struct {
	conn   net.Conn
	nextID atomic.Int64

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[int64]chan ipcResponse
	done    chan struct{}
}

func newIPCClient(conn net.Conn) *ipcClient {
	c := &ipcClient{
		conn:    conn,
		pending: make(map[int64]chan ipcResponse),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *ipcClient) readLoop() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID == 0 {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.RequestID]
		delete(c.pending, resp.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *ipcClient) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *ipcClient) call(ctx context.Context, args ...any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch := make(chan ipcResponse, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	c.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	_, err = c.conn.Write(append(payload, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], resp.Error)
		}
		return resp.Data, nil
	case <-c.done:
		return nil, errIPCClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ipcClient) close() error {
	err := c.conn.Close()
	<-c.done
	return err
}
