package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/mitm-detector/internal/domain/report"
)

// Format names an output format.
type Format string

const (
	// FormatConsole prints colored human readable lines.
	FormatConsole Format = "console"
	// FormatWaybar prints one waybar custom module JSON object per report.
	FormatWaybar Format = "waybar"
	// FormatPolybar prints one polybar formatted line per report.
	FormatPolybar Format = "polybar"
	// FormatLog writes reports through the structured logger only.
	FormatLog Format = "log"
)

const (
	// attackText is the short status-bar label for a report with changes.
	attackText = "MITM attack"
	// okText is the short label for a clean report.
	okText = "OK"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes a report in one output format.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, r *report.Report) error
}

// Formats lists the supported format names.
func Formats() []Format {
	return []Format{FormatConsole, FormatWaybar, FormatPolybar, FormatLog}
}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if format == known {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// New returns the renderer for format. colored only affects FormatConsole.
//
//nolint:ireturn // Callers pick the format at runtime.
func New(format Format, colored bool) (Renderer, error) {
	switch format {
	case FormatConsole:
		return NewConsole(colored), nil
	case FormatWaybar:
		return new(Waybar), nil
	case FormatPolybar:
		return new(Polybar), nil
	case FormatLog:
		return new(Log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
