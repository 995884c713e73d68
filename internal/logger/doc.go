// Package logger wraps zap for mitm-detector.
//
// Loggers travel in the context: each service names its own with WithName,
// and the package level helpers (InfoKV, WarnKV, ...) log through whatever
// logger the context carries, falling back to a shared stderr logger whose
// level follows the log_level setting.
package logger
