package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thresholdCore replaces the level check of the core it wraps, so a scoped
// logger can be louder or quieter than the runtime level.
type thresholdCore struct {
	zapcore.Core

	// threshold is the lowest level written.
	threshold zapcore.Level
}

// Enabled reports whether l reaches the threshold.
func (c *thresholdCore) Enabled(l zapcore.Level) bool {
	return c.threshold.Enabled(l)
}

// Check registers c for entries at or above the threshold.
//
//nolint:gocritic // zapcore.Core passes entries by value.
func (c *thresholdCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the threshold on the derived core.
//
//nolint:ireturn // zapcore.Core is the required return type.
func (c *thresholdCore) With(fields []zapcore.Field) zapcore.Core {
	return &thresholdCore{Core: c.Core.With(fields), threshold: c.threshold}
}

// withThreshold wraps a logger core in a thresholdCore.
//
//nolint:ireturn // zap.Option is the required return type.
func withThreshold(threshold zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &thresholdCore{Core: core, threshold: threshold}
	})
}
