// Package player drives mpv over its JSON-IPC socket as the playback surface.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond

	// positions closer than this to the last delivered one are not pushed
	positionGranularity = 250 * time.Millisecond
)

// Options configure the mpv process.
type Options struct {
	// Binary defaults to "mpv" from PATH.
	Binary string
	Title  string
	Args   []string
}

// MPV implements engine.Surface on top of a single idle mpv process.
type MPV struct {
	opts       Options
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *EventListener
	mu         sync.Mutex // Protects socket writes

	state     sync.Mutex
	started   bool
	closed    bool
	loaded    bool
	paused    bool
	buffering bool
	seeking   bool
	eof       bool
	position  time.Duration
	duration  time.Duration
	emitted   time.Duration
	loading   chan error
	handlers  map[int]engine.Handlers
	next      int
}

var _ engine.Surface = (*MPV)(nil)

// NewMPV creates a new MPV player instance (does not start the process).
func NewMPV(opts Options) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}

	return &MPV{
		opts:       opts,
		socketPath: filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.sock", constant.App, uuid.NewString())),
		exited:     make(chan struct{}),
		handlers:   make(map[int]engine.Handlers),
		paused:     true,
	}
}

func (m *MPV) args() []string {
	title := sanitizeTitle(m.opts.Title)
	if title == "" {
		title = constant.App
	}

	// Only what the surface needs; everything else is left to the user's mpv.conf
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
	}

	return append(args, m.opts.Args...)
}

// start spawns mpv unless it is already running and attaches the event listener.
// After mpv exits the next call spawns a new process.
func (m *MPV) start(ctx context.Context) error {
	m.state.Lock()
	if m.started {
		m.state.Unlock()
		return nil
	}
	if m.closed {
		m.state.Unlock()
		return errors.New("mpv: closed")
	}

	cmd := exec.Command(m.opts.Binary, m.args()...)

	// Detach from parent process group to prevent cascading shell panics.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		m.state.Unlock()
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.cmd = cmd
	m.exited = exited
	m.started = true
	m.state.Unlock()

	// reap the process and prevent zombies
	go func() {
		_ = cmd.Wait()
		close(exited)
		m.onExit()
	}()

	if err := m.waitForSocket(ctx, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener := NewEventListener(m.socketPath, m.handle)
	if err := listener.Start(); err != nil {
		_ = killProcess(cmd)
		return err
	}

	m.state.Lock()
	m.listener = listener
	m.state.Unlock()

	log.Infof("mpv started (pid %d, socket %s)", cmd.Process.Pid, m.socketPath)
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}

	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) onExit() {
	m.state.Lock()
	closed := m.closed
	loading := m.loading
	listener := m.listener
	m.loading = nil
	m.listener = nil
	m.started = false
	m.loaded = false
	m.state.Unlock()

	if listener != nil {
		listener.Stop()
	}

	if closed {
		return
	}

	err := fmt.Errorf("%w: mpv exited", engine.ErrUnresolvable)
	if loading != nil {
		loading <- err
		return
	}

	m.fail(err)
}

// Open loads uri into the running mpv and waits until it is decoded or rejected.
func (m *MPV) Open(ctx context.Context, uri string) error {
	target, err := sanitizeMediaTarget(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrUnresolvable, err)
	}

	if err := m.start(ctx); err != nil {
		return fmt.Errorf("%w: %w", engine.ErrUnresolvable, err)
	}

	loading := make(chan error, 1)

	m.state.Lock()
	m.loading = loading
	m.loaded = false
	m.eof = false
	m.position = 0
	m.duration = 0
	m.emitted = 0
	m.state.Unlock()

	abandon := func() {
		m.state.Lock()
		if m.loading == loading {
			m.loading = nil
		}
		m.state.Unlock()
	}

	if _, err := m.sendCommand(ctx, "loadfile", target, "replace"); err != nil {
		abandon()
		return fmt.Errorf("%w: %w", engine.ErrUnresolvable, err)
	}

	select {
	case err := <-loading:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		abandon()
		return ctx.Err()
	}

	m.emit(false)
	return nil
}

func (m *MPV) Play(ctx context.Context) error {
	return m.SetProperty(ctx, "pause", false)
}

func (m *MPV) Pause(ctx context.Context) error {
	return m.SetProperty(ctx, "pause", true)
}

// Seek moves playback to the given absolute position.
func (m *MPV) Seek(ctx context.Context, pos time.Duration) error {
	_, err := m.sendCommand(ctx, "seek", pos.Seconds(), "absolute+exact")
	if err != nil {
		return err
	}

	m.state.Lock()
	m.position = pos
	m.emitted = pos
	m.eof = false
	m.state.Unlock()

	return nil
}

func (m *MPV) SetRate(ctx context.Context, rate float64) error {
	return m.SetProperty(ctx, "speed", rate)
}

// SetVolume maps [0, 1] onto mpv's percent scale.
func (m *MPV) SetVolume(ctx context.Context, volume float64) error {
	return m.SetProperty(ctx, "volume", math.Round(volume*100))
}

func (m *MPV) SetSubtitle(ctx context.Context, uri string) error {
	if uri == "" {
		return m.SetProperty(ctx, "sid", "no")
	}

	target, err := sanitizeMediaTarget(uri)
	if err != nil {
		return fmt.Errorf("invalid subtitle target: %w", err)
	}

	_, err = m.sendCommand(ctx, "sub-add", target, "select")
	return err
}

// SetProperty sets an mpv property.
func (m *MPV) SetProperty(ctx context.Context, name string, value any) error {
	_, err := m.sendCommand(ctx, "set_property", name, value)
	return err
}

// GetProperty reads an mpv property.
func (m *MPV) GetProperty(ctx context.Context, name string) (any, error) {
	return m.sendCommand(ctx, "get_property", name)
}

// GetFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) GetFloatProperty(ctx context.Context, name string) (float64, error) {
	data, err := m.GetProperty(ctx, name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

func (m *MPV) Subscribe(h engine.Handlers) func() {
	m.state.Lock()
	id := m.next
	m.next++
	m.handlers[id] = h
	m.state.Unlock()

	return func() {
		m.state.Lock()
		delete(m.handlers, id)
		m.state.Unlock()
	}
}

// handle folds a single mpv event into the surface state.
func (m *MPV) handle(msg ipcMessage) {
	switch msg.Event {
	case "property-change":
		m.property(msg.Name, msg.Data)
	case "file-loaded":
		m.state.Lock()
		m.loaded = true
		loading := m.loading
		m.loading = nil
		m.state.Unlock()

		if loading != nil {
			loading <- nil
		}
	case "end-file":
		if msg.Reason != "error" {
			return
		}

		err := classifyFileError(msg.FileError)

		m.state.Lock()
		loading := m.loading
		m.loading = nil
		m.state.Unlock()

		if loading != nil {
			loading <- err
			return
		}

		m.fail(err)
	}
}

func (m *MPV) property(name string, data any) {
	m.state.Lock()

	finished := false
	force := true

	switch name {
	case "time-pos":
		seconds, ok := data.(float64)
		if !ok {
			m.state.Unlock()
			return
		}
		m.position = secondsToDuration(seconds)
		delta := m.position - m.emitted
		force = delta >= positionGranularity || delta < 0
	case "duration":
		seconds, _ := data.(float64)
		m.duration = secondsToDuration(seconds)
	case "pause":
		m.paused, _ = data.(bool)
	case "paused-for-cache":
		m.buffering, _ = data.(bool)
	case "seeking":
		m.seeking, _ = data.(bool)
	case "eof-reached":
		eof, _ := data.(bool)
		finished = eof && !m.eof
		m.eof = eof
		if finished && m.duration > 0 {
			m.position = m.duration
		}
	default:
		m.state.Unlock()
		return
	}

	loaded := m.loaded
	m.state.Unlock()

	if loaded && (force || finished) {
		m.emit(finished)
	}
}

func (m *MPV) snapshot(finished bool) engine.Status {
	return engine.Status{
		IsLoaded:      m.loaded,
		IsPlaying:     m.loaded && !m.paused && !m.eof,
		IsBuffering:   m.buffering || m.seeking,
		IsSeeking:     m.seeking,
		Position:      m.position,
		Duration:      m.duration,
		DidJustFinish: finished,
	}
}

func (m *MPV) emit(finished bool) {
	m.state.Lock()
	st := m.snapshot(finished)
	m.emitted = m.position
	handlers := m.listeners()
	m.state.Unlock()

	for _, h := range handlers {
		if h.OnStatus != nil {
			h.OnStatus(st)
		}
	}
}

func (m *MPV) fail(err error) {
	m.state.Lock()
	handlers := m.listeners()
	m.state.Unlock()

	for _, h := range handlers {
		if h.OnError != nil {
			h.OnError(err)
		}
	}
}

// listeners must be called with m.state held.
func (m *MPV) listeners() []engine.Handlers {
	handlers := make([]engine.Handlers, 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	return handlers
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.state.Lock()
	if m.closed {
		m.state.Unlock()
		return nil
	}
	m.closed = true
	started := m.started
	listener := m.listener
	exited := m.exited
	cmd := m.cmd
	m.listener = nil
	m.state.Unlock()

	if !started {
		return nil
	}

	if listener != nil {
		listener.Stop()
	}

	// Try graceful quit via IPC
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	_, _ = m.sendCommand(ctx, "quit")
	cancel()

	select {
	case <-exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// classifyFileError maps mpv's end-file error onto the engine errors.
func classifyFileError(fileError string) error {
	switch strings.ToLower(fileError) {
	case "unrecognized file format", "no audio or video data played", "audio output initialization failed",
		"video output initialization failed", "no video or audio streams selected":
		return fmt.Errorf("%w: %s", engine.ErrDecodeFailure, fileError)
	case "":
		return engine.ErrUnresolvable
	default:
		return fmt.Errorf("%w: %s", engine.ErrUnresolvable, fileError)
	}
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
// Prevents flag injection from API supplied links.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title for mpv
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
