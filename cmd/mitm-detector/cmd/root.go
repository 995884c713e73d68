package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mitm-detector/internal/config"
	"github.com/oshokin/mitm-detector/internal/render"
	"github.com/oshokin/mitm-detector/internal/service/watcher"
	"github.com/oshokin/mitm-detector/internal/version"
)

var (
	// options collects flag values for the watcher.
	options watcher.Options
	// format is the output format name.
	format string

	// rootCmd represents the base command for watching the neighbor table.
	rootCmd = &cobra.Command{
		Use:   "mitm-detector [neighbor-table]",
		Short: "Detect ARP spoofing by watching the neighbor table.",
		Long: `Polls the operating system neighbor (ARP) table and reports every host whose
hardware address changed while the previous one was still remembered.

A remembered address is forgotten once it has not been seen for the retention
window; a change after that is not reported. Unresolved entries
(00:00:00:00:00:00) are never reported as spoofing.

Reports are printed on every poll in the selected format: console, waybar,
polybar or log. The latest report can also be served over gRPC for
mitm-status and written to a JSON status file.

The watcher exits after too many consecutive failed polls.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use neighbor table argument if provided, otherwise rely on config.
			if len(args) > 0 {
				options.NeighborTable = args[0]
			}

			parsed, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			options.Format = parsed

			return watcher.Run(ctx, &options)
		},
	}
)

// Execute runs the mitm-detector CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	formats := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		formats = append(formats, string(f))
	}

	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.StatusAddress, "status-address", "l", "", "serve the latest report over gRPC on this address")
	flags.DurationVarP(&options.PollInterval, "interval", "i", 0, "interval between two polls (default from config, 10s)")
	flags.DurationVarP(&options.RetentionWindow, "retention", "r", 0, "how long a MAC address is remembered (default from config, 5m0s)")
	flags.IntVar(&options.MaxFailures, "max-failures", 0, "consecutive failed polls tolerated before exiting (default from config, 5)")
	flags.StringVarP(&format, "format", "f", string(render.FormatConsole),
		fmt.Sprintf("output format: %s", strings.Join(formats, ", ")))
	flags.StringVar(&options.ColorMode, "color", "auto", "console colors: auto, on or off")
	flags.BoolVar(&options.AllowMultiple, "allow-multiple", false, "do not refuse to start when another watcher is running")
}
