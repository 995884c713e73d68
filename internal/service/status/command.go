package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/mitm-detector/internal/config"
	domain "github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/logger"
	"github.com/oshokin/mitm-detector/internal/render"
	repository "github.com/oshokin/mitm-detector/internal/repository/report"
	"github.com/oshokin/mitm-detector/internal/service/common"
)

// Options configures a status query.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the status address from config when specified.
	ServerAddress string
	// File reads the report from a status file instead of the status service.
	File string
	// Format selects the output renderer.
	Format render.Format
	// ColorMode is "auto", "on" or "off" for the console renderer.
	ColorMode string
	// Output receives the rendered report; os.Stdout when nil.
	Output io.Writer
}

// staleAfterPolls is how many poll intervals a status file may go without an update.
const staleAfterPolls = 3

var (
	// errNoSource is returned when neither a status address nor a status file is known.
	errNoSource = errors.New("no status address or status file configured")
	// ErrStaleReport is returned when the status file is no longer being updated.
	ErrStaleReport = errors.New("watcher stopped updating the status file")
)

// Run fetches the latest report and renders it. A report that cannot be
// fetched is rendered as a degraded (error) report, never as OK; the fetch
// error is logged and Run still succeeds so status bars display it.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "status")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	colored, err := render.ParseColorMode(opts.ColorMode)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = render.FormatConsole
	}

	renderer, err := render.New(format, colored)
	if err != nil {
		return err
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	report, err := fetch(ctx, cfg, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to fetch report", "error", err)

		report = domain.New(time.Now(), nil, err)
	}

	return renderer.Render(ctx, output, report)
}

// fetch loads the report from the status file or the status service.
// Explicit options win over configuration, and a file wins over an address.
func fetch(ctx context.Context, cfg *config.Config, opts *Options) (*domain.Report, error) {
	file := opts.File
	address := opts.ServerAddress

	if file == "" && address == "" {
		file, address = cfg.StatusFile, cfg.StatusAddress
	}

	switch {
	case file != "":
		return loadFresh(ctx, file, staleAfterPolls*cfg.PollInterval, time.Now())
	case address != "":
		client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}

		// Close connection on function exit.
		defer func() {
			_ = client.Close()
		}()

		return client.GetReport(ctx)
	default:
		return nil, errNoSource
	}
}

// loadFresh reads the status file and rejects a report older than maxAge.
func loadFresh(ctx context.Context, path string, maxAge time.Duration, now time.Time) (*domain.Report, error) {
	report, err := repository.NewFileRepository(path).Load(ctx)
	if err != nil {
		return nil, err
	}

	if age := now.Sub(report.Timestamp); age > maxAge {
		return nil, fmt.Errorf("%w: last report %s ago", ErrStaleReport, age.Truncate(time.Second))
	}

	return report, nil
}
