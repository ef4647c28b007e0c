package validate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/parser"
	"github.com/kristianernst/fast-slides/internal/sandbox"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// DefaultTop is the number of largest files an audit lists by default.
const DefaultTop = 10

// Audit compares the assets a project's page references with the files on
// disk. top limits LargestFiles; a negative top lists every file.
func Audit(projectPath string, top int) (*models.AuditReport, error) {
	dir, err := storage.CanonicalProject(projectPath)
	if err != nil {
		return nil, err
	}
	files, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	source, err := storage.ReadPage(dir)
	if err != nil {
		return nil, err
	}
	return audit(files, source, top)
}

func audit(files *storage.FS, source string, top int) (*models.AuditReport, error) {
	doc := parser.Parse(source)
	r := &models.AuditReport{
		ProjectDir:          files.Root(),
		PagePath:            storage.PagePath(files.Root()),
		FrontmatterDetected: doc.HasFrontmatter(),
		ReferencedAssets:    []string{},
		MissingAssets:       []string{},
		TraversalAssets:     []string{},
		DirectoryTargets:    []string{},
		UnusedAssets:        []string{},
		LargestFiles:        []models.AssetFile{},
	}

	referenced := make(map[string]struct{})
	usedFiles := make(map[string]struct{})
	for _, raw := range parser.AssetTargets(doc.Body) {
		rel, ok := sandbox.LocalAssetPath(raw)
		if !ok {
			continue
		}
		if _, dup := referenced[rel]; dup {
			continue
		}
		referenced[rel] = struct{}{}

		if sandbox.IsTraversal(rel) {
			r.TraversalAssets = append(r.TraversalAssets, raw)
			continue
		}
		abs, err := files.Resolve(rel)
		if err != nil {
			r.TraversalAssets = append(r.TraversalAssets, raw)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			r.MissingAssets = append(r.MissingAssets, raw+" -> "+abs)
			continue
		}
		if info.IsDir() {
			r.DirectoryTargets = append(r.DirectoryTargets, raw+" -> "+abs)
			continue
		}
		if relFile, err := filepath.Rel(files.Root(), abs); err == nil {
			usedFiles[filepath.ToSlash(relFile)] = struct{}{}
		}
	}

	for rel := range referenced {
		r.ReferencedAssets = append(r.ReferencedAssets, rel)
	}
	sort.Strings(r.ReferencedAssets)
	r.ReferencedFileCount = len(usedFiles)

	all, err := files.List()
	if err != nil {
		return nil, err
	}
	r.AllAssetFileCount = len(all)
	for _, f := range all {
		if _, ok := usedFiles[f.Path]; !ok {
			r.UnusedAssets = append(r.UnusedAssets, f.Path)
		}
	}

	largest := append([]models.AssetFile(nil), all...)
	sort.SliceStable(largest, func(i, j int) bool { return largest[i].Bytes > largest[j].Bytes })
	if top >= 0 && top < len(largest) {
		largest = largest[:top]
	}
	r.LargestFiles = append(r.LargestFiles, largest...)
	return r, nil
}
