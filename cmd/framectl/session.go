package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/framectl/internal/config"
	"github.com/danmuck/framectl/internal/framedump"
	"github.com/danmuck/framectl/internal/logging"
	"github.com/danmuck/framectl/internal/observability"
	"github.com/danmuck/framectl/internal/protocol/frame"
	"github.com/danmuck/framectl/internal/protocol/stream"
)

const (
	modeOne = "one"
	modeAll = "all"
)

var (
	errStreamEnded   = errors.New("stream ended")
	errConnectFailed = errors.New("connect failed")
)

// sessionFlags are shared by watch and replay.
type sessionFlags struct {
	configPath  string
	mode        string
	count       int
	format      string
	metricsAddr string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (defaults apply when empty)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", modeOne, "retrieval mode: one|all")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "stop after N frames (0 runs until the stream ends)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "json", "output format: json|text|cbor|msgpack")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz here (overrides config)")
}

type session struct {
	cfg    config.Config
	flags  sessionFlags
	format framedump.Format
	logger zerolog.Logger

	written int
}

func newSession(flags sessionFlags, out io.Writer) (*session, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if flags.mode != modeOne && flags.mode != modeAll {
		return nil, fmt.Errorf("unknown mode %q (want %s|%s)", flags.mode, modeOne, modeAll)
	}
	if flags.count < 0 {
		return nil, fmt.Errorf("count must not be negative")
	}
	format, err := framedump.ParseFormat(flags.format)
	if err != nil {
		return nil, err
	}
	if err := checkOutput(out, format); err != nil {
		return nil, err
	}

	logging.Configure(logging.ProfileRuntime, cfg.Log.File)
	if os.Getenv(logging.EnvLogLevel) == "" {
		logging.SetLevel(cfg.Log.Level)
	}
	return &session{
		cfg:    cfg,
		flags:  flags,
		format: format,
		logger: observability.Component("framectl", "session"),
	}, nil
}

// checkOutput refuses binary formats on an interactive terminal.
func checkOutput(w io.Writer, format framedump.Format) error {
	if !format.Binary() {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return fmt.Errorf("refusing to write %s to a terminal, redirect stdout", format)
	}
	return nil
}

func (s *session) streamConfig() stream.Config {
	return stream.Config{
		Magic:         s.cfg.Protocol.MagicNumber,
		MaxPacketSize: s.cfg.Protocol.MaxPacketSize,
	}
}

func (s *session) done() bool {
	return s.flags.count > 0 && s.written >= s.flags.count
}

// run connects st and writes frames to out until the frame budget is
// spent or ctx is cancelled, both reported as nil. A lost source is
// reported as errStreamEnded.
func (s *session) run(ctx context.Context, out io.Writer, st *stream.Stream) error {
	if err := st.Connect(); err != nil {
		return fmt.Errorf("%w: %w", errConnectFailed, err)
	}
	defer func() { _ = st.Disconnect() }()

	for ctx.Err() == nil {
		frames, err := s.retrieve(st)
		for _, f := range frames {
			if werr := framedump.Write(out, s.format, f); werr != nil {
				return fmt.Errorf("write frame: %w", werr)
			}
			s.written++
			if s.done() {
				return nil
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, stream.ErrSizeViolation):
			return err
		case errors.Is(err, stream.ErrTransportClosed):
		case errors.Is(err, frame.ErrFormat):
			s.logger.Warn().Err(err).Msg("session.run dropped malformed packet")
		case errors.Is(err, stream.ErrNoFrame):
		default:
			return err
		}
		if !st.Connected() {
			s.logger.Info().Int("frames", s.written).Msg("session.run stream ended")
			return errStreamEnded
		}
	}
	return nil
}

func (s *session) retrieve(st *stream.Stream) ([]frame.Frame, error) {
	if s.flags.mode == modeAll {
		return st.RetrieveAll(s.cfg.Protocol.MaxAttempts)
	}
	f, err := st.RetrieveFrame(s.cfg.Protocol.MaxAttempts)
	if err != nil {
		return nil, err
	}
	return []frame.Frame{f}, nil
}

// serveMetrics starts the status listener when configured and returns
// its shutdown func.
func (s *session) serveMetrics(st *stream.Stream) func() {
	if s.cfg.Metrics.Addr == "" {
		return func() {}
	}
	srv := &http.Server{
		Addr:              s.cfg.Metrics.Addr,
		Handler:           observability.NewStatusRouter(log.Logger, st.Status),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Str("addr", srv.Addr).Msg("session.serveMetrics listener failed")
		}
	}()
	s.logger.Info().Str("addr", srv.Addr).Msg("session.serveMetrics listening")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
