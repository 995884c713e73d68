package detector

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
	"github.com/oshokin/mitm-detector/internal/logger"
	"github.com/oshokin/mitm-detector/internal/repository/table"
)

// Engine diffs successive neighbor table snapshots against the remembered history.
// It is driven by a single polling loop and must not be used concurrently.
type Engine struct {
	// reader provides fresh snapshots.
	reader table.Reader
	// history holds the bindings remembered across updates.
	history *neighbor.History
}

// Initialize reads the first snapshot and seeds the history from it.
// A snapshot that lists a host twice aborts initialization with
// neighbor.ErrDuplicateHostEntry. A non-positive retention selects
// neighbor.DefaultRetentionWindow.
func Initialize(ctx context.Context, reader table.Reader, retention time.Duration, now time.Time) (*Engine, error) {
	records, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read initial snapshot: %w", err)
	}

	history, err := neighbor.SeedHistory(records, retention, now)
	if err != nil {
		return nil, fmt.Errorf("seed history: %w", err)
	}

	logger.DebugKV(
		ctx,
		"Neighbor history initialized",
		"hosts", history.Len(),
		"retention_window", history.RetentionWindow().String(),
	)

	return &Engine{
		reader:  reader,
		history: history,
	}, nil
}

// Update reads a fresh snapshot and applies it to the history.
// The returned changes follow snapshot order. A failed read leaves the
// history untouched.
func (e *Engine) Update(ctx context.Context, now time.Time) ([]neighbor.ChangeEvent, error) {
	records, err := e.reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var changes []neighbor.ChangeEvent

	for _, record := range latestByHost(records) {
		changes = append(changes, e.history.Observe(record, now)...)
	}

	logger.DebugKV(ctx, "Neighbor history updated", "records", len(records), "changes", len(changes))

	return changes, nil
}

// History returns the store owned by the engine.
func (e *Engine) History() *neighbor.History {
	return e.history
}

// latestByHost keeps one record per host. A later row replaces an earlier one
// but stays at the position where the host first appeared.
func latestByHost(records []neighbor.Record) []neighbor.Record {
	var (
		result   = make([]neighbor.Record, 0, len(records))
		position = make(map[netip.Addr]int, len(records))
	)

	for _, record := range records {
		if i, ok := position[record.IP]; ok {
			result[i] = record

			continue
		}

		position[record.IP] = len(result)
		result = append(result, record)
	}

	return result
}
