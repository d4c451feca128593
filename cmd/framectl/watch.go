package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/framectl/internal/protocol/stream"
	"github.com/danmuck/framectl/internal/transport"
)

func watchCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Decode frames from a live telemetry source",
		Long: `Connect to the configured server (tcp or ws) and print frames as they
arrive. With [reconnect] enabled the source is redialed with backoff
whenever it goes away. The first interrupt stops after the current
retrieval; a second one exits immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			tr, err := transport.New(s.cfg)
			if err != nil {
				return err
			}
			st, err := stream.New(tr, s.streamConfig(),
				stream.WithEndpoint(s.cfg.Server.Address()),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stop()
			}()

			stopMetrics := s.serveMetrics(st)
			defer stopMetrics()
			return s.watch(ctx, cmd.OutOrStdout(), st)
		},
	}
	flags.register(cmd)
	return cmd
}

// watch runs sessions against st until one ends for good.
func (s *session) watch(ctx context.Context, out io.Writer, st *stream.Stream) error {
	backoff := transport.BackoffFrom(s.cfg.Reconnect)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	failures := 0

	for {
		err := s.run(ctx, out, st)
		lost := errors.Is(err, errStreamEnded)
		if !lost && !errors.Is(err, errConnectFailed) {
			return err
		}
		if !s.cfg.Reconnect.Enabled {
			if lost {
				return nil
			}
			return err
		}
		if lost {
			failures = 0
		}
		failures++
		if limit := s.cfg.Reconnect.MaxAttempts; limit > 0 && failures > limit {
			return fmt.Errorf("giving up after %d reconnect attempts: %w", limit, err)
		}

		delay := backoff.Delay(failures, rng)
		s.logger.Warn().Err(err).Int("attempt", failures).Dur("delay", delay).Msg("session.watch reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
