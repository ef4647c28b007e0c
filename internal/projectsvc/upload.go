package projectsvc

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/sandbox"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// DefaultAssetFolder receives uploads that name no folder.
const DefaultAssetFolder = "images"

// AddAsset stores data as folder/name inside a project and returns the
// project-relative path to reference from the page. folder must be one of
// the asset folders and must accept the file's extension; an existing file
// is replaced.
func (s *Service) AddAsset(_ context.Context, projectPath, folder, name string, data []byte) (string, error) {
	dir, err := storage.CanonicalProject(projectPath)
	if err != nil {
		return "", err
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = DefaultAssetFolder
	}
	if !slices.Contains(sandbox.AllowedRootSegments, folder) {
		return "", apperr.NewFileError("add asset", folder,
			fmt.Errorf("%w: folder must be one of %s", apperr.ErrInvalidName, strings.Join(sandbox.AllowedRootSegments, ", ")))
	}
	if !plainName(name) {
		return "", apperr.NewFileError("add asset", name, apperr.ErrInvalidName)
	}
	if !FolderAccepts(folder, name) {
		return "", apperr.NewFileError("add asset", name,
			fmt.Errorf("%w: %s accepts %s", apperr.ErrInvalidName, folder, strings.Join(FolderExtensions(folder), ", ")))
	}
	files, err := storage.NewFS(dir)
	if err != nil {
		return "", err
	}
	rel := path.Join(folder, name)
	if err := files.Write(rel, data); err != nil {
		return "", err
	}
	s.logger.Info("asset added", slog.String("project", dir), slog.String("path", rel), slog.Int("bytes", len(data)))
	return rel, nil
}

func plainName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && projectNameRe.MatchString(name)
}
