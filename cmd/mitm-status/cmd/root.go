package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mitm-detector/internal/config"
	"github.com/oshokin/mitm-detector/internal/render"
	"github.com/oshokin/mitm-detector/internal/service/status"
	"github.com/oshokin/mitm-detector/internal/version"
)

var (
	// options collects flag values for the status query.
	options status.Options
	// format is the output format name.
	format string

	// rootCmd represents the base command for querying the watcher.
	rootCmd = &cobra.Command{
		Use:   "mitm-status [server-address]",
		Short: "Print the latest ARP spoofing report once.",
		Long: `Fetches the latest report of a running mitm-detector and prints it once.

The report is read from the watcher gRPC status service, or from its status
file when --file is given. Server address can be provided as argument or
loaded from configuration file.

An unreachable watcher is printed as an error state so status bars never
mistake it for a clean network.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			if len(args) > 0 {
				options.ServerAddress = args[0]
			}

			parsed, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			options.Format = parsed

			return status.Run(ctx, &options)
		},
	}
)

// Execute runs the mitm-status CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&options.File, "file", "", "read the report from a status file")
	rootCmd.Flags().StringVarP(&format, "format", "f", string(render.FormatWaybar), "output format")
	rootCmd.Flags().StringVar(&options.ColorMode, "color", "auto", "console colors: auto, on or off")
}
