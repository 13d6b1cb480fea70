package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a write to a viewer that stopped reading
const DefaultWriteTimeout = 100 * time.Millisecond

// SafeWriter serializes the writes to a websocket connection.
// The engine draws into it while the server answers control messages.
type SafeWriter struct {
	conn    *websocket.Conn
	mutex   sync.Mutex
	timeout time.Duration
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn, timeout: DefaultWriteTimeout}
}

// SetTimeout changes the write deadline applied to each write
func (w *SafeWriter) SetTimeout(timeout time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.timeout = timeout
}

// WriteJSON fails once the deadline is exceeded; the connection is unusable afterwards
func (w *SafeWriter) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
		return err
	}

	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) Close() error {
	return w.conn.Close()
}
