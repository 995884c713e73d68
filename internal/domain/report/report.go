package report

import (
	"slices"
	"time"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
)

// Level classifies a report.
type Level string

const (
	// LevelOK means the poll succeeded and found no change.
	LevelOK Level = "ok"
	// LevelWarning means the poll found at least one MAC change.
	LevelWarning Level = "warning"
	// LevelError means the poll failed; the detector is degraded.
	LevelError Level = "error"
)

// Report is the outcome of a single detector poll.
type Report struct {
	// Timestamp is when the poll happened.
	Timestamp time.Time
	// Observer is the hostname of the machine running the detector.
	Observer string
	// Level classifies the outcome.
	Level Level
	// Changes lists the detected MAC changes, empty unless Level is LevelWarning.
	Changes []neighbor.ChangeEvent
	// Error is the failure text, empty unless Level is LevelError.
	Error string
}

// New builds a report from the result of a detector update.
// A non-nil err always yields LevelError, whatever changes were passed.
func New(now time.Time, changes []neighbor.ChangeEvent, err error) *Report {
	r := &Report{
		Timestamp: now,
		Level:     LevelOK,
	}

	switch {
	case err != nil:
		r.Level = LevelError
		r.Error = err.Error()
	case len(changes) > 0:
		r.Level = LevelWarning
		r.Changes = slices.Clone(changes)
	}

	return r
}

// Lines describes every change relative to the report timestamp.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Changes))
	for _, change := range r.Changes {
		lines = append(lines, change.Describe(r.Timestamp))
	}

	return lines
}

// Clone returns a copy that shares no slices with r.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Changes = slices.Clone(r.Changes)

	return &cloned
}
