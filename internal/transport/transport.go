// Package transport provides byte sources for stream.Stream.
//
// Transports are not safe for concurrent use.
package transport

import (
	"errors"
	"fmt"

	"github.com/danmuck/framectl/internal/config"
	"github.com/danmuck/framectl/internal/protocol/stream"
)

var (
	ErrNotConnected      = errors.New("transport: not connected")
	ErrUnexpectedMessage = errors.New("transport: unexpected websocket message type")
	ErrIdleTimeout       = errors.New("transport: websocket idle timeout")
)

// New builds the transport selected by cfg.Server.Transport. A websocket
// message may not exceed the protocol's max packet size.
func New(cfg config.Config) (stream.Transport, error) {
	srv := cfg.Server
	switch srv.Transport {
	case config.TransportTCP, "":
		return NewTCP(srv.Address(), TCPOptions{
			ConnectTimeout: srv.ConnectTimeout,
			ReadTimeout:    srv.ReadTimeout,
		}), nil
	case config.TransportWebSocket:
		return NewWebSocket(WebSocketURL(srv), WebSocketOptions{
			ConnectTimeout: srv.ConnectTimeout,
			ReadTimeout:    srv.ReadTimeout,
			ReadLimit:      int64(cfg.Protocol.MaxPacketSize),
		}), nil
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", srv.Transport)
	}
}
