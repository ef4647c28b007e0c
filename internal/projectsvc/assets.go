package projectsvc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kristianernst/fast-slides/internal/sandbox"
	"github.com/kristianernst/fast-slides/internal/storage"
	"github.com/kristianernst/fast-slides/internal/validate"
)

// ResolveAssetDataURL inlines a local asset referenced from a project's page
// as a base64 data URL. Blank, fragment and non-local sources are returned
// unchanged; local ones must resolve to a regular file inside the project.
func (s *Service) ResolveAssetDataURL(_ context.Context, projectPath, rawSrc string) (string, error) {
	trimmed := strings.TrimSpace(rawSrc)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return rawSrc, nil
	}
	dir, err := storage.CanonicalProject(projectPath)
	if err != nil {
		return "", err
	}
	rel, ok := sandbox.LocalAssetPath(rawSrc)
	if !ok {
		return rawSrc, nil
	}
	if sandbox.IsTraversal(rel) {
		return "", fmt.Errorf(validate.MsgTraversal, rawSrc)
	}
	files, err := storage.NewFS(dir)
	if err != nil {
		return "", err
	}
	abs, err := files.Resolve(rel)
	if err != nil {
		return "", fmt.Errorf(validate.MsgEscapes, rawSrc)
	}
	info, err := files.Stat(rel)
	if err != nil {
		return "", fmt.Errorf(validate.MsgMissingAsset, rawSrc, abs)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf(validate.MsgAssetNotRegular, rawSrc, abs)
	}
	data, err := files.Read(rel)
	if err != nil {
		return "", err
	}
	return "data:" + MimeType(abs) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
