package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/danmuck/framectl/internal/protocol/stream"
	"github.com/danmuck/framectl/internal/transport"
)

func replayCmd() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "replay <capture>",
		Short: "Decode frames from a captured byte stream",
		Long: `Feed a raw capture of the telemetry socket through the same reassembler
used by watch. Server settings in the config file are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			tr, err := transport.OpenReplay(args[0])
			if err != nil {
				return err
			}
			st, err := stream.New(tr, s.streamConfig(), stream.WithEndpoint(args[0]))
			if err != nil {
				_ = tr.Close()
				return err
			}
			stopMetrics := s.serveMetrics(st)
			defer stopMetrics()

			err = s.run(cmd.Context(), cmd.OutOrStdout(), st)
			if errors.Is(err, errStreamEnded) {
				return nil
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
