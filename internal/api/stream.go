package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RefreshEvent describes websocket payloads emitted during catalog refresh runs.
type RefreshEvent struct {
	Type      string    `json:"type"`
	JobID     string    `json:"job_id"`
	Query     string    `json:"query,omitempty"`
	Total     int       `json:"total,omitempty"`
	Persisted int       `json:"persisted,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// RefreshNotifier keeps track of active websocket clients and broadcasts
// refresh events.
type RefreshNotifier struct {
	mu         sync.Mutex
	clients    map[*wsClient]struct{}
	lastStatus *RefreshEvent
}

// NewRefreshNotifier constructs a notifier instance.
func NewRefreshNotifier() *RefreshNotifier {
	return &RefreshNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and returns a client handle.
func (n *RefreshNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	status := n.lastStatus
	n.mu.Unlock()

	if status != nil {
		_ = client.writeJSON(*status)
	}
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *RefreshNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the supplied event to all registered websocket clients.
func (n *RefreshNotifier) Broadcast(event RefreshEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	if event.Type == "started" || event.Type == "progress" {
		snapshot := event
		n.lastStatus = &snapshot
	}

	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

// LastStatus returns a copy of the most recent status-bearing event.
func (n *RefreshNotifier) LastStatus() *RefreshEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastStatus == nil {
		return nil
	}
	copy := *n.lastStatus
	return &copy
}
