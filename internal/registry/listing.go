package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/parser"
	"github.com/kristianernst/fast-slides/internal/sandbox"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// OwningRoot returns the first configured root that contains project,
// compared component by component.
func (c Config) OwningRoot(project string) (string, bool) {
	for _, root := range c.ProjectsRoots {
		if sandbox.Within(root, project) {
			return root, true
		}
	}
	return "", false
}

// RootOrParent is OwningRoot falling back to the project's parent folder.
func (c Config) RootOrParent(project string) string {
	if root, ok := c.OwningRoot(project); ok {
		return root
	}
	return filepath.Dir(project)
}

// Summary builds the listing entry for a canonical project folder. It
// reports false when the page document cannot be read.
func (c Config) Summary(dir string) (models.ProjectSummary, bool) {
	page := storage.PagePath(dir)
	info, err := os.Stat(page)
	if err != nil || !info.Mode().IsRegular() {
		return models.ProjectSummary{}, false
	}
	source, err := os.ReadFile(page)
	if err != nil {
		return models.ProjectSummary{}, false
	}
	return models.ProjectSummary{
		Name:       filepath.Base(dir),
		Path:       dir,
		Root:       c.RootOrParent(dir),
		SlideCount: parser.SlideCount(string(source)),
		UpdatedAt:  info.ModTime().Unix(),
	}, true
}

// ListProjects summarizes every recent project that still resolves to a
// project folder, one entry per canonical path, sorted by name without
// regard to case.
func ListProjects(cfg Config) []models.ProjectSummary {
	seen := make(map[string]struct{})
	projects := make([]models.ProjectSummary, 0, len(cfg.RecentProjects))
	for _, raw := range cfg.RecentProjects {
		dir, err := storage.CanonicalProject(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		if summary, ok := cfg.Summary(dir); ok {
			projects = append(projects, summary)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
	return projects
}
