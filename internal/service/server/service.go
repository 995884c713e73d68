package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/logger"
	repo "github.com/oshokin/mitm-detector/internal/repository/report"
)

// Service keeps the latest detector report and optionally persists it.
type Service struct {
	// repo handles persistent storage of the latest report; nil disables it.
	repo repo.Repository
	// report is the latest published report, nil before the first one.
	report *domain.Report
	// mu protects concurrent access to the report.
	mu sync.RWMutex
}

// NewService creates a service backed by the provided repository.
// A report already persisted by a previous run is served until the first Publish.
func NewService(ctx context.Context, repository repo.Repository) (*Service, error) {
	s := &Service{
		repo: repository,
	}

	if repository == nil {
		return s, nil
	}

	report, err := repository.Load(ctx)
	switch {
	case err == nil:
		s.report = report
	case errors.Is(err, repo.ErrNotFound):
		// Nothing published yet.
	default:
		return nil, fmt.Errorf("load report: %w", err)
	}

	return s, nil
}

// Publish replaces the latest report and persists it.
// The in-memory report is updated even when persistence fails.
func (s *Service) Publish(ctx context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report.Clone()

	if s.repo != nil {
		if err := s.repo.Save(ctx, s.report); err != nil {
			logger.ErrorKV(ctx, "Failed to persist report", "error", err)

			return fmt.Errorf("persist report: %w", err)
		}
	}

	logger.DebugKV(ctx, "Report published", "level", report.Level, "changes", len(report.Changes))

	return nil
}

// LatestReport returns a copy of the latest report and whether one exists.
func (s *Service) LatestReport(ctx context.Context) (*domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return nil, false
	}

	logger.DebugKV(ctx, "Report requested", "level", s.report.Level)

	return s.report.Clone(), true
}
