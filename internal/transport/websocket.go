package transport

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danmuck/framectl/internal/config"
)

type WebSocketOptions struct {
	ConnectTimeout time.Duration
	// ReadTimeout is an idle limit: a chunked read that waits longer
	// fails with ErrIdleTimeout and the connection is unusable after it.
	ReadTimeout time.Duration
	// ReadLimit caps one message; larger messages fail the read before
	// they are buffered. Zero means no cap.
	ReadLimit int64
}

// WebSocket treats each binary message as the next slice of the packet
// stream; message boundaries carry no meaning.
type WebSocket struct {
	url     string
	opts    WebSocketOptions
	conn    *websocket.Conn
	pending []byte
}

func NewWebSocket(rawURL string, opts WebSocketOptions) *WebSocket {
	return &WebSocket{url: rawURL, opts: opts}
}

func WebSocketURL(cfg config.Server) string {
	u := url.URL{Scheme: "ws", Host: cfg.Address(), Path: cfg.WSPath}
	return u.String()
}

func (w *WebSocket) Connect() error {
	if w.conn != nil {
		return nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: w.opts.ConnectTimeout}
	conn, _, err := dialer.Dial(w.url, nil)
	if err != nil {
		return fmt.Errorf("transport: websocket dial %s: %w", w.url, err)
	}
	if w.opts.ReadLimit > 0 {
		conn.SetReadLimit(w.opts.ReadLimit)
	}
	w.conn = conn
	w.pending = nil
	return nil
}

func (w *WebSocket) Receive(max int) ([]byte, error) {
	if len(w.pending) == 0 {
		var deadline time.Time
		if w.opts.ReadTimeout > 0 {
			deadline = time.Now().Add(w.opts.ReadTimeout)
		}
		if err := w.nextMessage(deadline); err != nil {
			return nil, err
		}
	}
	n := min(max, len(w.pending))
	out := make([]byte, n)
	copy(out, w.pending[:n])
	w.pending = w.pending[n:]
	return out, nil
}

func (w *WebSocket) ReceiveExact(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if len(w.pending) == 0 {
			if err := w.nextMessage(time.Time{}); err != nil {
				return nil, err
			}
		}
		take := min(n-len(out), len(w.pending))
		out = append(out, w.pending[:take]...)
		w.pending = w.pending[take:]
	}
	return out, nil
}

// nextMessage reads until a non-empty binary message arrives. A zero
// deadline blocks.
func (w *WebSocket) nextMessage(deadline time.Time) error {
	if w.conn == nil {
		return ErrNotConnected
	}
	if err := w.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return io.EOF
			}
			// gorilla poisons the connection after a deadline, so this must
			// not look like a recoverable read timeout
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				return fmt.Errorf("%w after %s", ErrIdleTimeout, w.opts.ReadTimeout)
			}
			return err
		}
		if mt != websocket.BinaryMessage {
			return fmt.Errorf("%w: %d", ErrUnexpectedMessage, mt)
		}
		if len(data) == 0 {
			continue
		}
		w.pending = data
		return nil
	}
}

func (w *WebSocket) Close() error {
	if w.conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	_ = w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	err := w.conn.Close()
	w.conn = nil
	w.pending = nil
	return err
}
