package transport

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	writeWait        = 5 * time.Second
	clientSendBuffer = 64
	clientReadLimit  = 4 << 10 // replay clients only send control frames
)

// Relay receives GSI posts on the POV PC and fans them out unchanged to
// every connected websocket client. A client that cannot keep up is dropped
// rather than slowing the game's webhook.
type Relay struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*relayClient]struct{}
}

type relayClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewRelay creates a Relay with no clients.
func NewRelay() *Relay {
	return &Relay{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*relayClient]struct{}),
	}
}

// HandleGSI accepts a GSI post and broadcasts it.
func (rl *Relay) HandleGSI(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), bodyErrorStatus(err))
		return
	}
	if !gjson.ValidBytes(body) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	n := rl.Broadcast(body)
	logrus.Debugf("relayed %d bytes to %d clients", len(body), n)
	_, _ = io.WriteString(w, "ok")
}

// HandleWS upgrades a replay client connection and registers it.
func (rl *Relay) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	c := &relayClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	rl.mu.Lock()
	rl.clients[c] = struct{}{}
	rl.mu.Unlock()
	logrus.Infof("Replay client connected: %s", r.RemoteAddr)

	go rl.writePump(c)
	rl.readPump(c)
	logrus.Infof("Replay client disconnected: %s", r.RemoteAddr)
}

// Broadcast queues msg for every client and returns how many received it.
func (rl *Relay) Broadcast(msg []byte) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	sent := 0
	for c := range rl.clients {
		select {
		case c.send <- msg:
			sent++
		default:
			logrus.Warnf("dropping slow replay client %s", c.conn.RemoteAddr())
			rl.removeLocked(c)
		}
	}
	return sent
}

// Clients returns the number of connected clients.
func (rl *Relay) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Close disconnects every client.
func (rl *Relay) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for c := range rl.clients {
		rl.removeLocked(c)
	}
}

// Handler routes GSI posts on / and websocket clients on /ws.
func (rl *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", rl.HandleGSI)
	mux.HandleFunc("GET /ws", rl.HandleWS)
	return mux
}

func (rl *Relay) removeLocked(c *relayClient) {
	if _, ok := rl.clients[c]; !ok {
		return
	}
	delete(rl.clients, c)
	close(c.send)
}

// readPump discards client frames and unregisters the client when it goes away.
func (rl *Relay) readPump(c *relayClient) {
	defer func() {
		rl.mu.Lock()
		rl.removeLocked(c)
		rl.mu.Unlock()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(clientReadLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (rl *Relay) writePump(c *relayClient) {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
