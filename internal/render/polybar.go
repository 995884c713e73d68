package render

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/mitm-detector/internal/domain/report"
)

// Polybar format tags.
const (
	polybarColorNone   = ""
	polybarColorOrange = "%{F#ff9d00}"
	polybarColorRed    = "%{F#ff0000}"
	polybarColorReset  = "%{F-}"
)

// Polybar prints one line per report for a polybar custom/script module
// running with tail = true.
type Polybar struct{}

// Render implements Renderer.
func (Polybar) Render(_ context.Context, w io.Writer, r *report.Report) error {
	var text, paint string

	switch r.Level {
	case report.LevelError:
		text, paint = r.Error, polybarColorRed
	case report.LevelWarning:
		text, paint = "⚠ "+attackText, polybarColorOrange
	default:
		text, paint = okText, polybarColorNone
	}

	_, err := fmt.Fprintf(w, "%sARP: %s%s\n", paint, text, polybarColorReset)

	return err
}
