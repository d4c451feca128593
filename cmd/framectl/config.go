package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/framectl/internal/config"
)

const defaultConfigPath = "framectl.toml"

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check a framectl config file",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config template with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote config template to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Load and validate a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config %s ok: %s via %s, magic=%#08x max_packet_size=%d\n",
				path, cfg.Server.Address(), cfg.Server.Transport, cfg.Protocol.MagicNumber, cfg.Protocol.MaxPacketSize)
			return nil
		},
	}
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return defaultConfigPath
	}
	return args[0]
}
