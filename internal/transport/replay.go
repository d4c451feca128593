package transport

import (
	"bufio"
	"io"
	"os"
)

// Replay feeds a captured raw byte stream, e.g. a file written by
// `tee`-ing the telemetry socket.
type Replay struct {
	r      io.Reader
	closer io.Closer
	closed bool
}

func NewReplay(r io.Reader) *Replay {
	rp := &Replay{r: r}
	if c, ok := r.(io.Closer); ok {
		rp.closer = c
	}
	return rp
}

func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Replay{r: bufio.NewReader(f), closer: f}, nil
}

func (r *Replay) Connect() error {
	if r.closed {
		return os.ErrClosed
	}
	return nil
}

func (r *Replay) Receive(max int) ([]byte, error) {
	if r.closed {
		return nil, os.ErrClosed
	}
	buf := make([]byte, max)
	n, err := r.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (r *Replay) ReceiveExact(n int) ([]byte, error) {
	if r.closed {
		return nil, os.ErrClosed
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Replay) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
