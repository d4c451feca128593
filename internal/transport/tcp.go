package transport

import (
	"io"
	"net"
	"time"
)

type TCPOptions struct {
	ConnectTimeout time.Duration
	// ReadTimeout bounds Receive only; ReceiveExact always blocks so a
	// partially read packet is never abandoned.
	ReadTimeout time.Duration
}

// TCP reads the packet stream from a plain TCP connection.
type TCP struct {
	addr string
	opts TCPOptions
	conn net.Conn
}

func NewTCP(addr string, opts TCPOptions) *TCP {
	return &TCP{addr: addr, opts: opts}
}

func (t *TCP) Connect() error {
	if t.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: t.opts.ConnectTimeout}
	conn, err := dialer.Dial("tcp", t.addr)
	if err != nil {
		return err
	}
	t.conn = conn
	return nil
}

func (t *TCP) Receive(max int) ([]byte, error) {
	if t.conn == nil {
		return nil, ErrNotConnected
	}
	if t.opts.ReadTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.opts.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, max)
	n, err := t.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (t *TCP) ReceiveExact(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, ErrNotConnected
	}
	if err := t.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
