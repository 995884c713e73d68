package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/oshokin/mitm-detector/internal/domain/report"
)

// Waybar prints one JSON object per report for a waybar custom module
// configured with "return-type": "json".
type Waybar struct{}

// Render implements Renderer.
func (Waybar) Render(_ context.Context, w io.Writer, r *report.Report) error {
	var text, class, tooltip, alt string

	switch r.Level {
	case report.LevelError:
		text, class = r.Error, "error"
	case report.LevelWarning:
		lines := r.Lines()
		text, class = "⚠️ "+attackText, "warning"
		tooltip = strings.Join(lines, "\n")

		if len(lines) > 0 {
			alt = lines[0]
		}
	default:
		text = okText
	}

	document := "{}"

	for _, field := range []struct {
		key   string
		value string
	}{
		{"text", text},
		{"class", class},
		{"tooltip", tooltip},
		{"alt", alt},
	} {
		var err error
		if document, err = sjson.Set(document, field.key, field.value); err != nil {
			return fmt.Errorf("encode waybar %s: %w", field.key, err)
		}
	}

	_, err := fmt.Fprintln(w, document)

	return err
}
