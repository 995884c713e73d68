package server

import (
	"context"
	"errors"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
	domain "github.com/oshokin/mitm-detector/internal/domain/report"
	repo "github.com/oshokin/mitm-detector/internal/repository/report"
)

var (
	errTestLoad = errors.New("test load error")
	errTestSave = errors.New("test save error")
)

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// report is returned from Load operations.
	report *domain.Report
	// loadErr is the error to return from Load operations.
	loadErr error
	// saveErr is the error to return from Save operations.
	saveErr error
	// saved stores the last report passed to Save operations.
	saved *domain.Report
}

// Load returns the configured report and error.
func (m *memoryRepository) Load(context.Context) (*domain.Report, error) {
	return m.report, m.loadErr
}

// Save remembers the report and returns the configured error.
func (m *memoryRepository) Save(_ context.Context, r *domain.Report) error {
	m.saved = r

	return m.saveErr
}

// TestNewService_LoadsReport asserts NewService behavior on existing, missing, and error reports.
func TestNewService_LoadsReport(t *testing.T) {
	t.Parallel()

	old := domain.New(time.Unix(100, 0), nil, nil)

	s, err := NewService(context.Background(), &memoryRepository{report: old})
	require.NoError(t, err)

	got, ok := s.LatestReport(context.Background())
	require.True(t, ok)
	require.Equal(t, old.Timestamp, got.Timestamp)

	// Not found -> nothing published.
	s, err = NewService(context.Background(), &memoryRepository{loadErr: repo.ErrNotFound})
	require.NoError(t, err)

	_, ok = s.LatestReport(context.Background())
	require.False(t, ok)

	// Other error.
	s, err = NewService(context.Background(), &memoryRepository{loadErr: errTestLoad})
	require.Error(t, err)
	require.Nil(t, s)
}

// TestService_PublishAndGet verifies Publish persists and LatestReport returns an isolated copy.
func TestService_PublishAndGet(t *testing.T) {
	t.Parallel()

	repository := new(memoryRepository)
	s, err := NewService(context.Background(), repository)
	require.NoError(t, err)

	published := domain.New(time.Now(), []neighbor.ChangeEvent{{Host: netip.MustParseAddr("10.0.0.5")}}, nil)
	require.NoError(t, s.Publish(context.Background(), published))
	require.NotNil(t, repository.saved)

	got, ok := s.LatestReport(context.Background())
	require.True(t, ok)
	require.Equal(t, domain.LevelWarning, got.Level)
	require.NotSame(t, published, got)

	got.Changes[0].Host = netip.MustParseAddr("10.0.0.9")

	again, _ := s.LatestReport(context.Background())
	require.Equal(t, netip.MustParseAddr("10.0.0.5"), again.Changes[0].Host)
}

// TestService_PublishSaveError keeps the report in memory when persistence fails.
func TestService_PublishSaveError(t *testing.T) {
	t.Parallel()

	s, err := NewService(context.Background(), &memoryRepository{
		loadErr: repo.ErrNotFound,
		saveErr: errTestSave,
	})
	require.NoError(t, err)

	require.ErrorIs(t, s.Publish(context.Background(), domain.New(time.Now(), nil, nil)), errTestSave)

	_, ok := s.LatestReport(context.Background())
	require.True(t, ok)
}

// TestService_FileRepository wires the service to the on-disk repository.
func TestService_FileRepository(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.json")

	s, err := NewService(context.Background(), repo.NewFileRepository(path))
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), domain.New(time.Now(), nil, nil)))

	// A fresh service picks the persisted report up.
	restarted, err := NewService(context.Background(), repo.NewFileRepository(path))
	require.NoError(t, err)

	got, ok := restarted.LatestReport(context.Background())
	require.True(t, ok)
	require.Equal(t, domain.LevelOK, got.Level)
}

// TestListen_NoAddress rejects an empty listen address.
func TestListen_NoAddress(t *testing.T) {
	t.Parallel()

	_, err := Listen(context.Background(), "")
	require.ErrorIs(t, err, ErrNoListenAddress)
}
