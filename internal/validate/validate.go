// Package validate checks a deck project: frontmatter, MDX hygiene, slide
// structure, slide density and local asset references.
package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/parser"
	"github.com/kristianernst/fast-slides/internal/quality"
	"github.com/kristianernst/fast-slides/internal/sandbox"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// Messages shared with the audit and asset endpoints.
const (
	msgMissingProject  = "Frontmatter is missing `project`."
	msgMissingTitle    = "Frontmatter is missing `title`."
	msgProjectMismatch = "Frontmatter project `%s` does not match folder name `%s`."
	msgNoFrontmatter   = "Missing YAML frontmatter in page.mdx. Add metadata block with project/title/subtitle/date."
	msgImportExport    = "Detected import/export statements in page.mdx; runtime decks should be content-only MDX."
	msgUseClient       = `Found "use client" directive in page.mdx; this is usually unnecessary in runtime-loaded MDX.`
	msgNoSlides        = "No `<section className=\"slide\">` blocks were found."
	MsgTraversal       = "Invalid traversal asset path: %s"
	MsgEscapes         = "Asset path escapes project folder: %s"
	MsgMissingAsset    = "Missing asset target: %s -> %s"
	MsgAssetNotRegular = "Asset target is not a file: %s -> %s"
)

// Validate checks the project folder at projectPath. Precondition failures
// (missing folder, missing page) are returned as *apperr.FileError; all
// content problems land in the report instead.
func Validate(projectPath string) (*models.ValidationReport, error) {
	dir, err := storage.CanonicalDir(projectPath)
	if err != nil {
		return nil, err
	}
	if !storage.IsProject(dir) {
		return nil, apperr.NewFileError("validate", storage.PagePath(dir), apperr.ErrNotProject)
	}
	source, err := storage.ReadPage(dir)
	if err != nil {
		return nil, err
	}
	return Check(dir, source), nil
}

// Check validates source as the page document of the canonical project
// folder dir. Asset targets are checked against the file system.
func Check(dir, source string) *models.ValidationReport {
	doc := parser.Parse(source)
	r := &models.ValidationReport{
		Path:     dir,
		Errors:   []string{},
		Warnings: []string{},
	}

	checkFrontmatter(r, doc, filepath.Base(dir))

	if parser.ImportExport.MatchString(doc.Body) {
		r.Errors = append(r.Errors, msgImportExport)
	}
	if parser.UseClient.MatchString(doc.Body) {
		r.Warnings = append(r.Warnings, msgUseClient)
	}

	slides := parser.Slides(doc.Body)
	r.SlideCount = len(slides)
	if len(slides) == 0 {
		r.Errors = append(r.Errors, msgNoSlides)
	}
	for i, slide := range slides {
		r.Warnings = append(r.Warnings, quality.Analyze(slide).Warnings(i+1)...)
	}

	checkAssets(r, dir, doc.Body)
	return r
}

func checkFrontmatter(r *models.ValidationReport, doc parser.Document, folder string) {
	if !doc.HasFrontmatter() {
		r.Warnings = append(r.Warnings, msgNoFrontmatter)
		return
	}
	project := doc.Get("project")
	if project == "" {
		r.Warnings = append(r.Warnings, msgMissingProject)
	}
	if doc.Get("title") == "" {
		r.Warnings = append(r.Warnings, msgMissingTitle)
	}
	if project != "" && project != folder {
		r.Warnings = append(r.Warnings, fmt.Sprintf(msgProjectMismatch, project, folder))
	}
}

// checkAssets resolves each distinct local target once, in link order:
// Markdown links first, then src/href/poster attributes.
func checkAssets(r *models.ValidationReport, dir, body string) {
	seen := make(map[string]struct{})
	for _, raw := range parser.AssetTargets(body) {
		rel, ok := sandbox.LocalAssetPath(raw)
		if !ok {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}

		if sandbox.IsTraversal(rel) {
			r.Errors = append(r.Errors, fmt.Sprintf(MsgTraversal, raw))
			continue
		}
		resolved, ok := sandbox.Resolve(dir, rel)
		if !ok {
			r.Errors = append(r.Errors, fmt.Sprintf(MsgEscapes, raw))
			continue
		}
		if _, err := os.Stat(resolved); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf(MsgMissingAsset, raw, resolved))
			continue
		}
		r.AssetsChecked++
	}
}
