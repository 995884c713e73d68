package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/mitm-detector/internal/config"
	domain "github.com/oshokin/mitm-detector/internal/domain/report"
)

// Repository defines persistence operations for the latest report.
type Repository interface {
	Load(ctx context.Context) (*domain.Report, error)
	Save(ctx context.Context, r *domain.Report) error
}

// FileRepository persists the latest report to a JSON file on disk.
// JSON is produced and consumed via protojson to match the gRPC encoding.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// ErrNotFound is returned when the report file does not exist yet.
var ErrNotFound = errors.New("report not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var value structpb.Struct
	if err = protojson.Unmarshal(contents, &value); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return domain.FromProto(&value)
}

// Save writes the report to disk. The file is replaced atomically so
// readers never observe a partial document.
func (r *FileRepository) Save(_ context.Context, rep *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, err := rep.ToProto()
	if err != nil {
		return err
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write report file: %w", err)
	}

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("chmod report file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	if err = os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}

	return nil
}
