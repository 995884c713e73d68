package table

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
)

// DefaultPath is where Linux exposes the IPv4 neighbor table.
const DefaultPath = "/proc/net/arp"

// Reader produces the full current neighbor table.
type Reader interface {
	Read(ctx context.Context) ([]neighbor.Record, error)
}

// LineError attributes a parse failure to a line of the table.
type LineError struct {
	// Line is the 1-based line number, the header being line 1.
	Line int
	// Err is the parse failure.
	Err error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the parse failure.
func (e *LineError) Unwrap() error {
	return e.Err
}

// ProcReader reads the neighbor table from a file in the /proc/net/arp format.
type ProcReader struct {
	// path is the filesystem location of the table.
	path string
}

// NewProcReader creates a reader for the table at path, DefaultPath when empty.
func NewProcReader(path string) *ProcReader {
	if path == "" {
		path = DefaultPath
	}

	return &ProcReader{
		path: filepath.Clean(path),
	}
}

// Path returns the table location.
func (r *ProcReader) Path() string {
	return r.path
}

// Read opens the table and parses every row after the header.
// Records are returned in file order and are not deduplicated.
func (r *ProcReader) Read(_ context.Context) ([]neighbor.Record, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open neighbor table: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	records, err := ParseTable(file)
	if err != nil {
		return nil, fmt.Errorf("read neighbor table %s: %w", r.path, err)
	}

	return records, nil
}

// ParseTable parses a header line followed by neighbor rows.
// One malformed row fails the whole table. Blank lines are skipped.
func ParseTable(src io.Reader) ([]neighbor.Record, error) {
	scanner := bufio.NewScanner(src)

	// Skip the field descriptions.
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}

		return nil, nil
	}

	var (
		records []neighbor.Record
		line    = 1
	)

	for scanner.Scan() {
		line++

		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := neighbor.ParseRecord(text)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
