package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/framectl/internal/logging"
)

// Set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	if cerr := logging.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "framectl: close log file: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "framectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "framectl",
		Short: "Decode a live game-telemetry frame stream",
		Long: `framectl connects to a telemetry source, reassembles the packet stream
and prints every decoded frame.

Examples:
  framectl watch --config framectl.toml --format text
  framectl replay capture.bin --mode all --format json
  framectl config init framectl.toml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(
		watchCmd(),
		replayCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}
