package projectsvc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kristianernst/fast-slides/internal/platform"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// SkillMarker must exist in a folder for it to count as the skill folder.
const SkillMarker = "SKILL.md"

// ErrMissingPath is returned when a required path argument is blank.
var ErrMissingPath = errors.New("missing required path")

// SkillCandidates lists the folders searched for the authoring skill:
// an explicit folder first, then the per-user agent skill folders.
func SkillCandidates(explicit, home string) []string {
	var out []string
	if strings.TrimSpace(explicit) != "" {
		out = append(out, storage.ExpandUser(strings.TrimSpace(explicit)))
	}
	if home != "" {
		out = append(out,
			filepath.Join(home, ".agents", "skills", "fastslides"),
			filepath.Join(home, ".codex", "skills", "fastslides"),
		)
	}
	return out
}

// PreviewURL builds the preview app link for a project path. The path is
// passed through as given.
func (s *Service) PreviewURL(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrMissingPath
	}
	return s.previewURL + "/?" + url.Values{"deckPath": {path}}.Encode(), nil
}

// Reveal opens an existing folder in the host file manager.
func (s *Service) Reveal(_ context.Context, path string) error {
	dir, err := storage.CanonicalDir(path)
	if err != nil {
		return err
	}
	return s.shell.Reveal(dir)
}

// SkillDir returns the first candidate folder holding the skill marker.
func (s *Service) SkillDir() (string, error) {
	for _, candidate := range s.skillDirs {
		if !isFile(filepath.Join(candidate, SkillMarker)) {
			continue
		}
		if dir, err := storage.CanonicalDir(candidate); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("could not locate FastSlides skill folder. Checked: %s", strings.Join(s.skillDirs, ", "))
}

// ExportSkill archives the skill folder to dest (forced to a .zip name),
// replacing an existing archive, and returns the archive path.
func (s *Service) ExportSkill(_ context.Context, dest string) (string, error) {
	if strings.TrimSpace(dest) == "" {
		return "", ErrMissingPath
	}
	src, err := s.SkillDir()
	if err != nil {
		return "", err
	}
	archive := platform.ZipDestination(storage.ExpandUser(dest))
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return "", fmt.Errorf("create destination folder: %w", err)
	}
	if err := os.Remove(archive); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("overwrite existing archive %s: %w", archive, err)
	}
	if err := s.shell.Archive(src, archive); err != nil {
		return "", err
	}
	return archive, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
