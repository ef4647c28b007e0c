package projectsvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kristianernst/fast-slides/internal/history"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/storage"
	"github.com/kristianernst/fast-slides/internal/validate"
)

// ErrNoJournal is returned by history queries when no journal is configured.
var ErrNoJournal = errors.New("validation history is disabled")

// Validate runs the validation engine on a project and journals the run.
// A journal failure is logged and never fails the validation.
func (s *Service) Validate(_ context.Context, path string) (*models.ValidationReport, error) {
	report, err := validate.Validate(path)
	if err != nil {
		return nil, err
	}
	s.record(report)
	return report, nil
}

// Check validates a project the same way as Validate; the watcher uses it
// as its validator.
func (s *Service) Check(dir string) (*models.ValidationReport, error) {
	return s.Validate(context.Background(), dir)
}

func (s *Service) record(report *models.ValidationReport) {
	if s.journal == nil {
		return
	}
	run, err := s.journal.Record(report)
	if err != nil {
		s.logger.Warn("history: record failed", slog.String("path", report.Path), slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("history: recorded", slog.String("id", run.ID), slog.String("path", run.Path))
	if n, err := s.journal.Prune(report.Path, s.keepRuns); err != nil {
		s.logger.Warn("history: prune failed", slog.String("path", report.Path), slog.String("error", err.Error()))
	} else if n > 0 {
		s.logger.Debug("history: pruned", slog.String("path", report.Path), slog.Int("runs", n))
	}
}

// Audit compares referenced assets with the files in the project folder.
func (s *Service) Audit(_ context.Context, path string, top int) (*models.AuditReport, error) {
	return validate.Audit(path, top)
}

// History returns the newest journaled runs for a project. path is
// canonicalized when it still exists so callers may pass any spelling.
func (s *Service) History(_ context.Context, path string, limit int) ([]models.ValidationRun, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	if dir, err := storage.CanonicalDir(path); err == nil {
		path = dir
	}
	return s.journal.Recent(path, limit)
}

// SearchFindings searches journaled error and warning messages.
func (s *Service) SearchFindings(_ context.Context, query string, limit int) ([]history.SearchResult, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	return s.journal.Search(query, limit)
}
