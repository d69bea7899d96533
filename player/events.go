package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/reelplay/reelplay/log"
)

// observed lists the properties mpv reports changes of.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"paused-for-cache",
	"seeking",
	"eof-reached",
}

// EventListener holds a persistent connection to mpv and dispatches the events it receives.
type EventListener struct {
	socketPath string
	handle     func(ipcMessage)

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	done      chan struct{}
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, handle func(ipcMessage)) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		handle:     handle,
	}
}

// Start connects and asks mpv to observe the properties in observed.
// Observers are per client, so they are registered on the listening connection.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{
			Command:   []any{"observe_property", i + 1, name},
			RequestID: requestID.Add(1),
		})
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}

		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	el.done = make(chan struct{})

	go el.readLoop(conn, el.done)

	log.Debugf("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to return.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}

	el.listening = false
	_ = el.conn.Close()
	done := el.done
	el.mu.Unlock()

	<-done
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			// skip unparseable lines
			continue
		}

		if msg.Event == "" {
			continue
		}

		el.handle(msg)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}
