package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/mitm-detector/internal/config"
	"github.com/oshokin/mitm-detector/internal/domain/report"
)

// changeLog appends change descriptions to a file so they survive the
// one-line status bar output.
type changeLog struct {
	// path is the log file location.
	path string
}

// newChangeLog returns nil when path is empty.
func newChangeLog(path string) *changeLog {
	if path == "" {
		return nil
	}

	return &changeLog{
		path: filepath.Clean(path),
	}
}

// Append writes one line per change of r. Reports without changes are skipped.
func (l *changeLog) Append(r *report.Report) error {
	if l == nil || len(r.Changes) == 0 {
		return nil
	}

	var b strings.Builder

	stamp := r.Timestamp.Format(time.RFC3339)
	for _, line := range r.Lines() {
		b.WriteString(stamp)
		b.WriteByte(' ')
		b.WriteString(line)
		b.WriteByte('\n')
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("open change log: %w", err)
	}

	if _, err = file.WriteString(b.String()); err != nil {
		_ = file.Close()

		return fmt.Errorf("write change log: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close change log: %w", err)
	}

	return nil
}
