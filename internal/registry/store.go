package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kristianernst/fast-slides/internal/storage"
)

// ConfigFileName is the registry file inside the home folder.
const ConfigFileName = "config.json"

// Store loads and saves the registry file. Update serializes
// read-modify-write cycles within one process.
type Store struct {
	mu      sync.Mutex
	home    string
	seedDir string
}

// NewStore creates a store under home. When no registry file exists yet,
// seedDir (if it is an existing folder) becomes the only projects root.
func NewStore(home, seedDir string) *Store {
	return &Store{home: storage.ExpandUser(home), seedDir: seedDir}
}

// Home returns the registry home folder.
func (s *Store) Home() string { return s.home }

// Path returns the registry file path.
func (s *Store) Path() string { return filepath.Join(s.home, ConfigFileName) }

// Load reads the registry file as stored, without normalizing it.
// A malformed file is an error; a missing one yields the seeded default.
func (s *Store) Load() (Config, error) {
	if err := os.MkdirAll(s.home, 0o755); err != nil {
		return Config{}, fmt.Errorf("registry: create home %s: %w", s.home, err)
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return s.seed(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("registry: read %s: %w", s.Path(), err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("registry: invalid config JSON in %s: %w", s.Path(), err)
	}
	return cfg, nil
}

func (s *Store) seed() Config {
	cfg := Config{ProjectsRoots: []string{}, RecentProjects: []string{}}
	if s.seedDir == "" {
		return cfg
	}
	if dir, err := storage.CanonicalDir(s.seedDir); err == nil {
		cfg.ProjectsRoots = append(cfg.ProjectsRoots, dir)
	}
	return cfg
}

// Save writes cfg as indented JSON, replacing the file atomically.
func (s *Store) Save(cfg Config) error {
	if cfg.ProjectsRoots == nil {
		cfg.ProjectsRoots = []string{}
	}
	if cfg.RecentProjects == nil {
		cfg.RecentProjects = []string{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encode: %w", err)
	}
	if err := os.MkdirAll(s.home, 0o755); err != nil {
		return fmt.Errorf("registry: create home %s: %w", s.home, err)
	}
	if err := storage.WriteAtomic(s.Path(), data); err != nil {
		return fmt.Errorf("registry: save %s: %w", s.Path(), err)
	}
	return nil
}

// Update loads and normalizes the registry, applies fn and saves the
// result. fn may be nil to only persist the normalized form.
func (s *Store) Update(fn func(*Config) error) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.Load()
	if err != nil {
		return Config{}, err
	}
	cfg := Normalize(raw)
	if fn != nil {
		if err := fn(&cfg); err != nil {
			return Config{}, err
		}
	}
	if err := s.Save(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Current loads and normalizes the registry without writing it back.
func (s *Store) Current() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.Load()
	if err != nil {
		return Config{}, err
	}
	return Normalize(raw), nil
}
