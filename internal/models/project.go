// Package models defines the domain types for fast-slides.
package models

import "time"

// ProjectSummary is the listing entry for one deck project.
type ProjectSummary struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Root       string `json:"root"`
	SlideCount int    `json:"slide_count"`
	UpdatedAt  int64  `json:"updated_at"` // page.mdx mtime, epoch seconds
}

// ProjectDetail is a project together with its page document.
type ProjectDetail struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Root       string `json:"root"`
	PageMDX    string `json:"page_mdx"`
	Checksum   string `json:"checksum"`
	SlideCount int    `json:"slide_count"`
	UpdatedAt  int64  `json:"updated_at"`
}

// ValidationReport is the outcome of checking one project. Errors and
// warnings keep the order in which the checks ran.
type ValidationReport struct {
	Path          string   `json:"path"`
	SlideCount    int      `json:"slide_count"`
	AssetsChecked int      `json:"assets_checked"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
}

// OK reports whether the report carries no blocking errors.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// AssetFile is a file inside a project with its size.
type AssetFile struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// AuditReport summarizes how a project's page references its asset files.
type AuditReport struct {
	ProjectDir          string      `json:"project_dir"`
	PagePath            string      `json:"page_path"`
	FrontmatterDetected bool        `json:"frontmatter_detected"`
	ReferencedAssets    []string    `json:"referenced_assets"`
	ReferencedFileCount int         `json:"referenced_file_count"`
	AllAssetFileCount   int         `json:"all_asset_file_count"`
	MissingAssets       []string    `json:"missing_assets"`
	TraversalAssets     []string    `json:"traversal_assets"`
	DirectoryTargets    []string    `json:"directory_targets"`
	UnusedAssets        []string    `json:"unused_assets"`
	LargestFiles        []AssetFile `json:"largest_files"`
}

// Failed reports whether the audit found broken references. Unused files
// only fail the audit when strictUnused is set.
func (a *AuditReport) Failed(strictUnused bool) bool {
	if len(a.MissingAssets) > 0 || len(a.TraversalAssets) > 0 || len(a.DirectoryTargets) > 0 {
		return true
	}
	return strictUnused && len(a.UnusedAssets) > 0
}

// ValidationRun is one journaled validation outcome.
type ValidationRun struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	SlideCount    int       `json:"slide_count"`
	AssetsChecked int       `json:"assets_checked"`
	Errors        []string  `json:"errors"`
	Warnings      []string  `json:"warnings"`
	CreatedAt     time.Time `json:"created_at"`
}
