// Package registry keeps the persisted list of project roots and recently
// opened projects, and derives the project listing from it.
package registry

import (
	"slices"

	"github.com/kristianernst/fast-slides/internal/storage"
)

// MaxRecentProjects caps the recent-projects list.
const MaxRecentProjects = 50

// Config is the persisted registry state.
type Config struct {
	ProjectsRoots  []string `json:"projects_roots"`
	RecentProjects []string `json:"recent_projects"`
}

// Normalize canonicalizes every entry, drops the ones that no longer exist
// (roots must be directories, recents must be projects) and removes
// duplicates while keeping first-occurrence order. It is idempotent.
func Normalize(cfg Config) Config {
	out := Config{
		ProjectsRoots:  make([]string, 0, len(cfg.ProjectsRoots)),
		RecentProjects: make([]string, 0, len(cfg.RecentProjects)),
	}
	for _, root := range cfg.ProjectsRoots {
		if dir, err := storage.CanonicalDir(root); err == nil && !slices.Contains(out.ProjectsRoots, dir) {
			out.ProjectsRoots = append(out.ProjectsRoots, dir)
		}
	}
	for _, project := range cfg.RecentProjects {
		if dir, err := storage.CanonicalProject(project); err == nil && !slices.Contains(out.RecentProjects, dir) {
			out.RecentProjects = append(out.RecentProjects, dir)
		}
	}
	return out
}

// Remember moves project to the front of the recent list, dropping any
// earlier occurrence and trimming the list to MaxRecentProjects.
func (c *Config) Remember(project string) {
	recent := make([]string, 0, len(c.RecentProjects)+1)
	recent = append(recent, project)
	for _, p := range c.RecentProjects {
		if p != project {
			recent = append(recent, p)
		}
	}
	if len(recent) > MaxRecentProjects {
		recent = recent[:MaxRecentProjects]
	}
	c.RecentProjects = recent
}

// AddRoot appends an already canonical root unless it is present.
func (c *Config) AddRoot(root string) {
	if !slices.Contains(c.ProjectsRoots, root) {
		c.ProjectsRoots = append(c.ProjectsRoots, root)
	}
}

// RemoveRoot drops every root equal to raw after "~" expansion, or to its
// canonical form when raw still exists.
func (c *Config) RemoveRoot(raw string) {
	c.ProjectsRoots = slices.DeleteFunc(c.ProjectsRoots, matcher(raw))
}

// RemoveProject drops every recent project matching raw the same way
// RemoveRoot matches roots. Nothing on disk is touched.
func (c *Config) RemoveProject(raw string) {
	c.RecentProjects = slices.DeleteFunc(c.RecentProjects, matcher(raw))
}

func matcher(raw string) func(string) bool {
	expanded := storage.ExpandUser(raw)
	canonical, err := storage.CanonicalDir(raw)
	return func(entry string) bool {
		return entry == expanded || (err == nil && entry == canonical)
	}
}
