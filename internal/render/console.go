package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/oshokin/mitm-detector/internal/domain/report"
)

// ErrUnknownColorMode is returned by ParseColorMode for values other than auto, on and off.
var ErrUnknownColorMode = errors.New("unknown color mode")

// ParseColorMode resolves "auto", "on" or "off" into whether console output is colored.
// "auto" colors only when stdout is a terminal.
func ParseColorMode(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !color.NoColor, nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownColorMode, mode)
	}
}

// Console prints reports as colored lines for an interactive terminal.
type Console struct {
	// ok paints clean reports.
	ok *color.Color
	// warning paints detected changes.
	warning *color.Color
	// failure paints degraded reports.
	failure *color.Color
}

// NewConsole creates a console renderer.
func NewConsole(colored bool) *Console {
	c := &Console{
		ok:      color.New(color.FgGreen),
		warning: color.New(color.FgYellow, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
	}

	for _, paint := range []*color.Color{c.ok, c.warning, c.failure} {
		if colored {
			paint.EnableColor()
		} else {
			paint.DisableColor()
		}
	}

	return c
}

// Render implements Renderer.
func (c *Console) Render(_ context.Context, w io.Writer, r *report.Report) error {
	stamp := r.Timestamp.Format(time.DateTime)

	switch r.Level {
	case report.LevelError:
		_, err := c.failure.Fprintf(w, "[%s] ARP table unavailable: %s\n", stamp, r.Error)

		return err
	case report.LevelWarning:
		for _, line := range r.Lines() {
			if _, err := c.warning.Fprintf(w, "[%s] ⚠ %s\n", stamp, line); err != nil {
				return err
			}
		}

		return nil
	default:
		_, err := c.ok.Fprintf(w, "[%s] %s\n", stamp, okText)

		return err
	}
}
