package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/mitm-detector/internal/config"
	"github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/logger"
	"github.com/oshokin/mitm-detector/internal/render"
	repository "github.com/oshokin/mitm-detector/internal/repository/report"
	"github.com/oshokin/mitm-detector/internal/repository/table"
	"github.com/oshokin/mitm-detector/internal/service/common"
	"github.com/oshokin/mitm-detector/internal/service/detector"
	"github.com/oshokin/mitm-detector/internal/service/server"
)

// Options controls the watcher polling behavior and configuration.
// Non-zero fields override the configuration file.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// NeighborTable overrides the neighbor table path.
	NeighborTable string
	// StatusAddress overrides the gRPC status listen address.
	StatusAddress string
	// PollInterval overrides the interval between updates.
	PollInterval time.Duration
	// RetentionWindow overrides the engine retention window.
	RetentionWindow time.Duration
	// MaxFailures overrides the number of tolerated consecutive failures.
	MaxFailures int
	// Format selects the output renderer.
	Format render.Format
	// ColorMode is "auto", "on" or "off" for the console renderer.
	ColorMode string
	// Output receives rendered reports; os.Stdout when nil.
	Output io.Writer
	// AllowMultiple skips the single instance guard.
	AllowMultiple bool
}

var (
	// ErrTooManyFailures is returned when consecutive failed updates exceed the configured limit.
	ErrTooManyFailures = errors.New("too many failed updates in a row")
	// ErrStopped is the error of the report published when the watcher exits.
	ErrStopped = errors.New("watcher stopped")
)

// watcher holds the state of one polling loop.
type watcher struct {
	// engine detects MAC changes.
	engine *detector.Engine
	// renderer formats reports for output.
	renderer render.Renderer
	// output receives rendered reports.
	output io.Writer
	// status keeps the latest report for the status service.
	status *server.Service
	// changeLog records change descriptions; nil when disabled.
	changeLog *changeLog
	// observer names this machine in reports.
	observer string
	// maxFailures is the number of tolerated consecutive failures.
	maxFailures int
	// failures counts consecutive failed updates.
	failures int
}

// Run loads configuration, seeds the detector and polls until ctx is canceled
// or too many consecutive updates fail.
//
//nolint:cyclop,funlen // Setup is a straight sequence of steps.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "watcher")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	if !opts.AllowMultiple {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
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

	observer, err := common.DetectObserver()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect observer", "error", err)
	}

	reader := table.NewProcReader(cfg.NeighborTable)

	// A broken initial snapshot is fatal: there is nothing to compare against.
	engine, err := detector.Initialize(ctx, reader, cfg.RetentionWindow, time.Now())
	if err != nil {
		return fmt.Errorf("initialize detector: %w", err)
	}

	var reportRepository repository.Repository
	if cfg.StatusFile != "" {
		reportRepository = repository.NewFileRepository(cfg.StatusFile)
	}

	status, err := server.NewService(ctx, reportRepository)
	if err != nil {
		return fmt.Errorf("initialise status service: %w", err)
	}

	serveErr := make(chan error, 1)

	if cfg.StatusAddress != "" {
		lis, err := server.Listen(ctx, cfg.StatusAddress)
		if err != nil {
			return err
		}

		serveCtx, cancelServe := context.WithCancel(ctx)
		served := make(chan struct{})

		go func() {
			defer close(served)

			serveErr <- server.Serve(serveCtx, lis, status)
		}()

		// Stop the status server before returning, whatever the reason.
		defer func() {
			cancelServe()
			<-served
		}()
	}

	w := &watcher{
		engine:      engine,
		renderer:    renderer,
		output:      output,
		status:      status,
		changeLog:   newChangeLog(cfg.ChangeLog),
		observer:    observer,
		maxFailures: cfg.MaxFailures,
	}

	logger.InfoKV(
		ctx,
		"Watching neighbor table",
		"table", reader.Path(),
		"hosts", engine.History().Len(),
		"interval", cfg.PollInterval.String(),
		"retention_window", cfg.RetentionWindow.String(),
	)

	// Show a state right away instead of waiting for the first tick.
	w.emit(ctx, report.New(time.Now(), nil, nil))

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			w.publishStopped(ctx)

			return nil
		case err = <-serveErr:
			if err != nil {
				return err
			}

			return nil
		case <-ticker.C:
			if err = w.poll(ctx, time.Now()); err != nil {
				return err
			}
		}
	}
}

// loadConfig reads the configuration file and applies option overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.NeighborTable != "" {
		cfg.NeighborTable = opts.NeighborTable
	}

	if opts.StatusAddress != "" {
		cfg.StatusAddress = opts.StatusAddress
	}

	if opts.PollInterval > 0 {
		cfg.PollInterval = opts.PollInterval
	}

	if opts.RetentionWindow > 0 {
		cfg.RetentionWindow = opts.RetentionWindow
	}

	if opts.MaxFailures > 0 {
		cfg.MaxFailures = opts.MaxFailures
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

// poll runs one detector update and hands its report to every output.
// It fails only when the consecutive failure limit is exceeded.
func (w *watcher) poll(ctx context.Context, now time.Time) error {
	changes, err := w.engine.Update(ctx, now)
	if err != nil {
		w.failures++
		logger.WarnKV(ctx, "Update failed", "error", err, "failures", w.failures)
	} else {
		w.failures = 0
	}

	w.emit(ctx, report.New(now, changes, err))

	if w.failures > w.maxFailures {
		return fmt.Errorf("%w: %d failed updates", ErrTooManyFailures, w.failures)
	}

	return nil
}

// emit renders, publishes and logs a report. Output errors are logged, not returned.
func (w *watcher) emit(ctx context.Context, r *report.Report) {
	r.Observer = w.observer

	if err := w.renderer.Render(ctx, w.output, r); err != nil {
		logger.ErrorKV(ctx, "Render report failed", "error", err)
	}

	if err := w.status.Publish(ctx, r); err != nil {
		logger.ErrorKV(ctx, "Publish report failed", "error", err)
	}

	if err := w.changeLog.Append(r); err != nil {
		logger.ErrorKV(ctx, "Append change log failed", "error", err)
	}
}

// publishStopped leaves an error report behind so status readers never keep
// showing the last state of a watcher that is gone.
func (w *watcher) publishStopped(ctx context.Context) {
	r := report.New(time.Now(), nil, ErrStopped)
	r.Observer = w.observer

	if err := w.status.Publish(context.WithoutCancel(ctx), r); err != nil {
		logger.ErrorKV(ctx, "Publish stop report failed", "error", err)
	}
}
