package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketNotifier broadcasts events to every connected websocket client.
type WebSocketNotifier struct {
	id         string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	// onClientChange, when set, observes the client count after each
	// register/unregister. Used for metrics.
	onClientChange func(count int)
}

func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// SetClientObserver registers a callback invoked with the client count
// whenever a client connects or disconnects.
func (n *WebSocketNotifier) SetClientObserver(fn func(count int)) {
	n.mu.Lock()
	n.onClientChange = fn
	n.mu.Unlock()
}

func (n *WebSocketNotifier) ID() string {
	return n.id
}

func (n *WebSocketNotifier) Type() string {
	return "websocket"
}

// HandleUpgrade upgrades an HTTP request to a websocket connection and
// registers it for broadcasts. The connection lives until the client
// disconnects or the notifier closes.
func (n *WebSocketNotifier) HandleUpgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	n.RegisterClient(conn)

	// Drain client frames so pings and close handshakes are processed.
	go func() {
		defer n.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (n *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	select {
	case n.register <- conn:
	case <-n.done:
	}
}

func (n *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	select {
	case n.unregister <- conn:
	case <-n.done:
	}
}

func (n *WebSocketNotifier) Notify(ctx context.Context, event Event) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.done:
		return fmt.Errorf("notifier closed")
	}
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return

		case conn := <-n.register:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			n.clients[conn] = true
			count := len(n.clients)
			observer := n.onClientChange
			n.mu.Unlock()
			if observer != nil {
				observer(count)
			}

		case conn := <-n.unregister:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			if _, ok := n.clients[conn]; ok {
				delete(n.clients, conn)
				conn.Close()
			}
			count := len(n.clients)
			observer := n.onClientChange
			n.mu.Unlock()
			if observer != nil {
				observer(count)
			}

		case event := <-n.broadcast:
			payload, err := event.JSON()
			if err != nil {
				continue
			}

			n.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(n.clients))
			for conn := range n.clients {
				conns = append(conns, conn)
			}
			n.mu.RUnlock()

			var stale []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					stale = append(stale, conn)
				}
			}
			for _, conn := range stale {
				n.mu.Lock()
				if _, ok := n.clients[conn]; ok {
					delete(n.clients, conn)
					conn.Close()
				}
				n.mu.Unlock()
			}
		}
	}
}

func (n *WebSocketNotifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.done)
	})
	n.wg.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	for conn := range n.clients {
		conn.Close()
		delete(n.clients, conn)
	}
	return nil
}
