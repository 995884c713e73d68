package render

import (
	"context"
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/logger"
)

// Log reports through the context logger and ignores the writer.
// Reports are logged at info and above even when the configured log level is higher.
type Log struct{}

// Render implements Renderer.
func (Log) Render(ctx context.Context, _ io.Writer, r *report.Report) error {
	ctx = logger.WithMinLevel(ctx, zapcore.InfoLevel)

	switch r.Level {
	case report.LevelError:
		logger.ErrorKV(ctx, "Neighbor table unavailable", "error", r.Error)
	case report.LevelWarning:
		for _, change := range r.Changes {
			logger.WarnKV(
				ctx,
				"Neighbor hardware address changed",
				"host", change.Host.String(),
				"previous_mac", change.Previous.MAC.String(),
				"current_mac", change.Current.String(),
				"previous_age", change.Previous.Age(r.Timestamp).String(),
			)
		}
	default:
		logger.Info(ctx, "Neighbor table OK")
	}

	return nil
}
