package api

import (
	"github.com/kristianernst/fast-slides/internal/history"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
)

// PathRequest is the request body of the project endpoints.
type PathRequest struct {
	Path string `json:"path" example:"/Users/me/decks/q3-review" validate:"required"`
}

// SaveProjectRequest is the request body for replacing a page document.
type SaveProjectRequest struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// AuditRequest is the request body for the asset audit.
type AuditRequest struct {
	Path string `json:"path" validate:"required"`
	Top  *int   `json:"top,omitempty" example:"10"`
}

// HealthResponse reports that the control plane is up.
type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"fastslides-agent-hook"`
}

// PreviewURLResponse carries the preview app link for a project.
type PreviewURLResponse struct {
	OK         bool   `json:"ok" example:"true"`
	PreviewURL string `json:"preview_url" example:"http://127.0.0.1:34773/?deckPath=%2Fdecks%2Fq3"`
}

// AssetURLResponse carries an inlined asset.
type AssetURLResponse struct {
	OK  bool   `json:"ok" example:"true"`
	URL string `json:"url" example:"data:image/png;base64,iVBORw0KGgo="`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	OK   bool   `json:"ok" example:"true"`
	Path string `json:"path" example:"images/logo.png" validate:"required"`
	Size int    `json:"size" example:"12345" validate:"required"`
}

// HistoryResponse wraps journaled validation runs, newest first.
type HistoryResponse struct {
	Runs []models.ValidationRun `json:"runs" validate:"required"`
}

// SearchResponse wraps finding search hits.
type SearchResponse struct {
	Results []history.SearchResult `json:"results" validate:"required"`
}

// Aliases from the domain layer for swag.
type (
	AppState         = projectsvc.AppState
	ProjectDetail    = models.ProjectDetail
	ValidationReport = models.ValidationReport
	AuditReport      = models.AuditReport
)
