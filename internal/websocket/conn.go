package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait bounds how long a silent client is kept.
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Conn serialises writes on a gorilla connection. gorilla allows one
// concurrent writer; the reader loop and the timer loop both write here.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewConn wraps ws and arms the read deadline, which every pong extends.
func NewConn(ws *websocket.Conn) *Conn {
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &Conn{ws: ws}
}

// Send writes one event.
func (c *Conn) Send(ev Event, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(Message{Event: ev, Data: data})
}

// SendError writes an error event.
func (c *Conn) SendError(code, message string) error {
	return c.Send(EventError, ErrorPayload{Code: code, Message: message})
}

// Ping sends a control ping.
func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Read decodes the next client message into v. Any client message extends the
// read deadline.
func (c *Conn) Read(v any) error {
	if err := c.ws.ReadJSON(v); err != nil {
		return err
	}
	return c.ws.SetReadDeadline(time.Now().Add(pongWait))
}

// Close sends a close frame with reason and closes the connection.
func (c *Conn) Close(code int, reason string) error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}

// PingPeriod is how often Ping should be called to keep the read deadline alive.
func PingPeriod() time.Duration {
	return pingPeriod
}
