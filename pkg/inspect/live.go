package inspect

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write to a live client.
	writeWait = 10 * time.Second

	// pongWait is how long a client may stay silent before it is
	// considered gone. Pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-client event queue. A client whose queue
	// fills up is dropped instead of blocking the engine's goroutine.
	sendBuffer = 64
)

// client is one live stream subscriber.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// handleLive upgrades the request and registers a live stream client.
func (ins *Inspector) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := ins.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ins.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, sendBuffer)}

	ins.clientsMu.Lock()
	ins.clients[c] = struct{}{}
	ins.clientsMu.Unlock()

	ins.logger.Debug("live client connected", "remote", conn.RemoteAddr().String())

	go ins.writePump(c)
	go ins.readPump(c)
}

// ClientCount reports the number of connected live stream clients.
func (ins *Inspector) ClientCount() int {
	ins.clientsMu.Lock()
	defer ins.clientsMu.Unlock()
	return len(ins.clients)
}

// broadcast fans an event out to every live client. Sends never block:
// a client that cannot keep up loses its slot, not the engine's time.
func (ins *Inspector) broadcast(event Event) {
	ins.clientsMu.Lock()
	var slow []*client
	for c := range ins.clients {
		select {
		case c.send <- event:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(ins.clients, c)
	}
	ins.clientsMu.Unlock()

	for _, c := range slow {
		close(c.send)
		c.conn.Close()
		ins.logger.Warn("live client dropped", "reason", "send buffer full")
	}
}

// readPump discards inbound messages and detects disconnects. The stream
// is one-way, but reading is required to process control frames.
func (ins *Inspector) readPump(c *client) {
	defer ins.dropClient(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump streams queued events and pings the client on an interval.
func (ins *Inspector) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ins.dropClient(c)
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				// Dropped by broadcast.
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				ins.logger.Debug("live write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dropClient unregisters a client and closes its connection. Only
// broadcast closes the send channel, so calling this from both pumps is
// safe.
func (ins *Inspector) dropClient(c *client) {
	ins.clientsMu.Lock()
	_, present := ins.clients[c]
	if present {
		delete(ins.clients, c)
	}
	ins.clientsMu.Unlock()

	if present {
		c.conn.Close()
		ins.logger.Debug("live client disconnected")
	}
}
