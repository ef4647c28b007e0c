// Package projectsvc coordinates the registry, the page documents, the
// validation engine and the host shell for every caller (HTTP, MCP, CLI).
package projectsvc

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/checksum"
	"github.com/kristianernst/fast-slides/internal/history"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/parser"
	"github.com/kristianernst/fast-slides/internal/platform"
	"github.com/kristianernst/fast-slides/internal/registry"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// DefaultPreviewURL is the preview app base URL when none is configured.
const DefaultPreviewURL = "http://127.0.0.1:34773"

var projectNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// AppState is the registry together with the derived project listing.
type AppState struct {
	Config   registry.Config         `json:"config"`
	Projects []models.ProjectSummary `json:"projects"`
}

// CreateProjectRequest describes a new project. Empty optional fields
// fall back to the starter defaults.
type CreateProjectRequest struct {
	Root      string `json:"root"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"`
	DateLabel string `json:"date_label,omitempty"`
}

// Validate implements validation.Validatable.
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Root, validation.Required),
		validation.Field(&r.Name, validation.Required,
			validation.Match(projectNameRe).Error("use letters, numbers, dot, underscore, and dash")),
	)
}

// Service is the single entry point for project operations.
type Service struct {
	store      *registry.Store
	shell      platform.Shell
	journal    history.Journal
	keepRuns   int
	previewURL string
	skillDirs  []string
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithShell overrides the host shell (defaults to platform.Detect()).
func WithShell(sh platform.Shell) Option {
	return func(s *Service) { s.shell = sh }
}

// WithJournal records every validation in j, keeping at most keep runs per
// project (keep <= 0 keeps everything).
func WithJournal(j history.Journal, keep int) Option {
	return func(s *Service) {
		s.journal = j
		s.keepRuns = keep
	}
}

// WithPreviewURL sets the preview app base URL.
func WithPreviewURL(base string) Option {
	return func(s *Service) {
		if strings.TrimSpace(base) != "" {
			s.previewURL = strings.TrimRight(strings.TrimSpace(base), "/")
		}
	}
}

// WithSkillDirs sets the candidate folders searched by ExportSkill.
func WithSkillDirs(dirs ...string) Option {
	return func(s *Service) { s.skillDirs = dirs }
}

// WithLogger sets the logger (defaults to slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service over the registry store.
func New(store *registry.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		previewURL: DefaultPreviewURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shell == nil {
		s.shell = platform.Detect()
	}
	return s
}

// Store exposes the registry store for the watcher.
func (s *Service) Store() *registry.Store { return s.store }

// AppState normalizes and persists the registry, then lists its projects.
func (s *Service) AppState(_ context.Context) (*AppState, error) {
	cfg, err := s.store.Update(nil)
	if err != nil {
		return nil, err
	}
	return state(cfg), nil
}

// OpenProject remembers a project and returns it with its page document.
func (s *Service) OpenProject(_ context.Context, path string) (*models.ProjectDetail, error) {
	dir, err := storage.CanonicalProject(path)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.Remember(dir)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail(cfg, dir)
}

// LoadProject re-reads a project for editing. It remembers the project the
// same way OpenProject does.
func (s *Service) LoadProject(ctx context.Context, path string) (*models.ProjectDetail, error) {
	return s.OpenProject(ctx, path)
}

// SaveProject replaces the page document. A non-empty ifMatch must equal
// the checksum of the document on disk or apperr.ErrConflict is returned.
func (s *Service) SaveProject(_ context.Context, path, content, ifMatch string) (*models.ProjectDetail, error) {
	dir, err := storage.CanonicalProject(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" {
		existing, err := storage.ReadPage(dir)
		if err != nil {
			return nil, err
		}
		if !checksum.Matches([]byte(existing), ifMatch) {
			return nil, apperr.ErrConflict
		}
	}
	if err := storage.WritePage(dir, content); err != nil {
		return nil, err
	}
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.Remember(dir)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project saved", slog.String("path", dir), slog.Int("bytes", len(content)))
	return detail(cfg, dir)
}

// CreateProject scaffolds a project folder under an existing root, writes
// the starter page and remembers it.
func (s *Service) CreateProject(_ context.Context, req CreateProjectRequest) (*models.ProjectDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.NewFileError("create project", req.Name, joinInvalid(err))
	}
	root, err := storage.CanonicalDir(req.Root)
	if err != nil {
		return nil, err
	}
	page := StarterPage(req.Name, or(req.Title, DefaultTitle), or(req.Subtitle, DefaultSubtitle), or(req.DateLabel, DefaultDateLabel))
	dir, err := storage.Scaffold(root, req.Name, page)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.Remember(dir)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", slog.String("path", dir))
	return detail(cfg, dir)
}

// AddRoot registers an existing folder as a projects root.
func (s *Service) AddRoot(_ context.Context, path string) (*AppState, error) {
	root, err := storage.CanonicalDir(path)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.AddRoot(root)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state(cfg), nil
}

// RemoveRoot forgets a projects root. The folder itself is untouched.
func (s *Service) RemoveRoot(_ context.Context, path string) (*AppState, error) {
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.RemoveRoot(path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state(cfg), nil
}

// RemoveProject forgets a recent project. The folder itself is untouched.
func (s *Service) RemoveProject(_ context.Context, path string) (*AppState, error) {
	cfg, err := s.store.Update(func(c *registry.Config) error {
		c.RemoveProject(path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state(cfg), nil
}

func state(cfg registry.Config) *AppState {
	return &AppState{Config: cfg, Projects: registry.ListProjects(cfg)}
}

func detail(cfg registry.Config, dir string) (*models.ProjectDetail, error) {
	page, err := storage.ReadPage(dir)
	if err != nil {
		return nil, err
	}
	root, _ := cfg.OwningRoot(dir)
	return &models.ProjectDetail{
		Name:       baseName(dir),
		Path:       dir,
		Root:       root,
		PageMDX:    page,
		Checksum:   checksum.Sum([]byte(page)),
		SlideCount: parser.SlideCount(page),
		UpdatedAt:  storage.ModTimeSeconds(storage.PagePath(dir)),
	}, nil
}
