package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is either a command response or an event.
type ipcMessage struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
	Event     string `json:"event"`

	// property-change
	ID   int    `json:"id"`
	Name string `json:"name"`

	// end-file
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
)

// errPropertyUnavailable is returned by mpv for properties of media that is not loaded yet.
var errPropertyUnavailable = errors.New("mpv error: property unavailable")

var requestID atomic.Int64

// sendCommand sends a JSON-IPC command to mpv with retries for transient connection errors.
func (m *MPV) sendCommand(ctx context.Context, command ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		result, err := doSendCommand(ctx, m.socketPath, command)
		if err == nil {
			return result, nil
		}

		// mpv answered, retrying will not help
		var mpvErr *mpvError
		if errors.As(err, &mpvErr) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

type mpvError struct {
	msg string
}

func (e *mpvError) Error() string {
	return "mpv error: " + e.msg
}

func (e *mpvError) Is(target error) bool {
	return target == errPropertyUnavailable && e.msg == "property unavailable"
}

// doSendCommand performs a single IPC round trip. Events broadcast to the connection
// before the response are skipped.
func doSendCommand(ctx context.Context, socketPath string, command []any) (any, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := requestID.Add(1)
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	deadline := time.Now().Add(readDeadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}

		if msg.Event != "" || msg.RequestID != id {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &mpvError{msg: msg.Error}
		}

		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return nil, fmt.Errorf("read: connection closed")
}
