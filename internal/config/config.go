package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"

	DefaultAddr          = "127.0.0.1"
	DefaultPort          = 6198
	DefaultMagicNumber   = 0x7F3B29D1
	DefaultMaxPacketSize = 10 * 1024 * 1024
	DefaultMaxAttempts   = 10
	DefaultLogFile       = "app.log"

	// packet header (8) plus at least one body byte
	minPacketSize = 9
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the resolved framectl configuration.
type Config struct {
	Server    Server
	Protocol  Protocol
	Log       Log
	Metrics   Metrics
	Reconnect Reconnect
}

// Server locates the telemetry source.
type Server struct {
	Addr           string
	Port           int
	Transport      string
	WSPath         string
	ConnectTimeout time.Duration
	// ReadTimeout bounds each chunked read; zero blocks until data or EOF.
	ReadTimeout time.Duration
}

func (s Server) Address() string {
	return net.JoinHostPort(s.Addr, strconv.Itoa(s.Port))
}

// Protocol holds the out-of-band stream parameters.
type Protocol struct {
	MagicNumber   uint32
	MaxPacketSize uint32
	MaxAttempts   int
}

type Log struct {
	Level string
	File  string
}

type Metrics struct {
	Addr string
}

// Reconnect controls how watch redials after the source goes away.
type Reconnect struct {
	Enabled      bool
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	// MaxAttempts caps consecutive failed redials; zero retries forever.
	MaxAttempts int
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:           DefaultAddr,
			Port:           DefaultPort,
			Transport:      TransportTCP,
			WSPath:         "/frames",
			ConnectTimeout: 5 * time.Second,
		},
		Protocol: Protocol{
			MagicNumber:   DefaultMagicNumber,
			MaxPacketSize: DefaultMaxPacketSize,
			MaxAttempts:   DefaultMaxAttempts,
		},
		Log: Log{
			Level: "info",
			File:  DefaultLogFile,
		},
		Reconnect: Reconnect{
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, cfg.Server.Port)
	}
	switch cfg.Server.Transport {
	case TransportTCP:
	case TransportWebSocket:
		if !strings.HasPrefix(cfg.Server.WSPath, "/") {
			return fmt.Errorf("%w: server.ws_path must start with /", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown server.transport %q", ErrInvalidConfig, cfg.Server.Transport)
	}
	if cfg.Server.ConnectTimeout < 0 || cfg.Server.ReadTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if cfg.Protocol.MaxPacketSize < minPacketSize {
		return fmt.Errorf("%w: protocol.max_packet_size must be at least %d", ErrInvalidConfig, minPacketSize)
	}
	if cfg.Protocol.MaxAttempts < 1 {
		return fmt.Errorf("%w: protocol.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if cfg.Reconnect.InitialDelay < 0 || cfg.Reconnect.MaxDelay < 0 || cfg.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("%w: reconnect delays and attempts must not be negative", ErrInvalidConfig)
	}
	if cfg.Reconnect.Multiplier < 1 {
		return fmt.Errorf("%w: reconnect.multiplier must be at least 1", ErrInvalidConfig)
	}
	return nil
}
