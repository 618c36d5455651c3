package server

import (
	"bytes"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/flate"
)

// compressionThreshold is the marshaled-frame size above which writePump
// reaches for klauspost/compress/flate instead of sending raw JSON. World2
// gameState frames (31 hazards plus up to 4 players, every tick) are the
// common case that crosses it.
const compressionThreshold = 2048

// compressedFramePrefix/rawFramePrefix are the one-byte tags writePump
// prepends so the client-side transport (out of scope for this spec) knows
// whether to inflate before parsing JSON.
const (
	rawFramePrefix        byte = 0x00
	compressedFramePrefix byte = 0x01
)

// ClientConn wraps one accepted websocket connection: a buffered outbound
// queue drained by writePump, and the (roomCode, playerID) binding that
// ConnectionRegistry.Bind fills in once the connection's first
// createRoom/joinRoom command succeeds. id is a per-connection uuid; it is
// not included in any log line and never appears on the wire.
type ClientConn struct {
	id       string
	ws       *websocket.Conn
	send     chan []byte
	roomCode string
	playerID PlayerID

	compressionOK bool
	// metrics is assigned once the connection joins a room, from whichever
	// goroutine handles that (the Manager or a room's own goroutine), while
	// writePump may already be reading it for every outbound frame — an
	// atomic.Pointer makes that handoff safe without a mutex.
	metrics atomic.Pointer[RoomMetrics]
}

// SetMetrics records which room's metrics this connection's traffic counts
// against. Safe to call concurrently with frame().
func (c *ClientConn) SetMetrics(m *RoomMetrics) {
	c.metrics.Store(m)
}

// NewClientConn wraps ws, assigning a fresh connection id.
func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		id:            uuid.NewString(),
		ws:            ws,
		send:          make(chan []byte, 64),
		compressionOK: true,
	}
}

// Enqueue queues a pre-marshaled JSON payload for delivery; the queue is
// non-blocking and drops the frame if full rather than stalling the
// simulation that produced it.
func (c *ClientConn) Enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// Close shuts down the outbound queue and the underlying socket.
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	_ = c.ws.Close()
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		frame := c.frame(msg)
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

// frame prepends the raw/compressed tag byte, compressing with flate when
// the payload is large enough and this connection has signaled support.
func (c *ClientConn) frame(payload []byte) []byte {
	m := c.metrics.Load()
	if !c.compressionOK || len(payload) <= compressionThreshold {
		if m != nil {
			m.AddBroadcast(len(payload)+1, false)
		}
		return append([]byte{rawFramePrefix}, payload...)
	}

	var buf bytes.Buffer
	buf.WriteByte(compressedFramePrefix)
	fw, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		if m != nil {
			m.AddBroadcast(len(payload)+1, false)
		}
		return append([]byte{rawFramePrefix}, payload...)
	}
	if _, err := fw.Write(payload); err != nil {
		if m != nil {
			m.AddBroadcast(len(payload)+1, false)
		}
		return append([]byte{rawFramePrefix}, payload...)
	}
	_ = fw.Close()
	if m != nil {
		m.AddBroadcast(buf.Len(), true)
	}
	return buf.Bytes()
}

// inflateEnvelope is the client-side counterpart's responsibility in
// principle, but kept here too so tests can round-trip a compressed frame
// without needing a browser.
func inflateEnvelope(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	tag, body := frame[0], frame[1:]
	if tag == rawFramePrefix {
		return body, nil
	}
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	return io.ReadAll(r)
}
