package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/validate"
)

// ServiceName identifies the control plane in health responses.
const ServiceName = "fastslides-agent-hook"

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *projectsvc.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *projectsvc.Service) *Handler {
	return &Handler{svc: svc}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("Invalid JSON payload: %v", err)
	}
	return nil
}

// failureStatus maps a service error to a status code, using fallback for
// errors without a more specific mapping.
func failureStatus(err error, fallback int) int {
	switch {
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, projectsvc.ErrNoJournal):
		return http.StatusNotFound
	default:
		return fallback
	}
}

func fail(w http.ResponseWriter, op string, err error, fallback int) {
	status := failureStatus(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return n
}

// Health handles GET /health.
//
//	@Summary		Liveness probe
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, Service: ServiceName})
}

// AppState handles GET /app-state.
//
//	@Summary		Registry and project listing
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	AppState
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/app-state [get]
func (h *Handler) AppState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.AppState(r.Context())
	if err != nil {
		fail(w, "app state", err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PreviewURL handles GET /preview-url.
//
//	@Summary		Preview app link for a project
//	@Tags			projects
//	@Produce		json
//	@Param			path	query		string	true	"Project path"
//	@Success		200		{object}	PreviewURLResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preview-url [get]
func (h *Handler) PreviewURL(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.PreviewURL(r.URL.Query().Get("path"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required query parameter: path"))
		return
	}
	writeJSON(w, http.StatusOK, PreviewURLResponse{OK: true, PreviewURL: link})
}

// OpenProject handles POST /open-project.
//
//	@Summary		Open and remember a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Project path"
//	@Success		200		{object}	ProjectDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/open-project [post]
func (h *Handler) OpenProject(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	detail, err := h.svc.OpenProject(r.Context(), req.Path)
	if err != nil {
		fail(w, "open project", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// SaveProject handles POST /save-project.
//
//	@Summary		Replace a page document with optimistic concurrency
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	SaveProjectRequest	true	"Project path and page document"
//	@Success		200		{object}	ProjectDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/save-project [post]
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	var req SaveProjectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid JSON payload: %v", err)))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	detail, err := h.svc.SaveProject(r.Context(), req.Path, req.Content, ifMatch)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
			return
		}
		fail(w, "save project", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ValidateProject handles POST /validate-project.
//
//	@Summary		Validate a project
//	@Tags			validation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Project path"
//	@Success		200		{object}	ValidationReport
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate-project [post]
func (h *Handler) ValidateProject(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	report, err := h.svc.Validate(r.Context(), req.Path)
	if err != nil {
		fail(w, "validate project", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AuditProject handles POST /audit-project.
//
//	@Summary		Compare referenced assets with project files
//	@Tags			validation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AuditRequest	true	"Project path and largest-file count"
//	@Success		200		{object}	AuditReport
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/audit-project [post]
func (h *Handler) AuditProject(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	top := validate.DefaultTop
	if req.Top != nil {
		top = *req.Top
	}
	report, err := h.svc.Audit(r.Context(), req.Path, top)
	if err != nil {
		fail(w, "audit project", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ValidationHistory handles GET /validation-history.
//
//	@Summary		Journaled validation runs for a project
//	@Tags			validation
//	@Produce		json
//	@Param			path	query		string	true	"Project path"
//	@Param			limit	query		int		false	"Max runs"
//	@Success		200		{object}	HistoryResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validation-history [get]
func (h *Handler) ValidationHistory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required query parameter: path"))
		return
	}
	runs, err := h.svc.History(r.Context(), path, queryInt(r, "limit", 0))
	if err != nil {
		fail(w, "validation history", err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Runs: runs})
}

// ValidationSearch handles GET /validation-search.
//
//	@Summary		Search journaled validation findings
//	@Tags			validation
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validation-search [get]
func (h *Handler) ValidationSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.svc.SearchFindings(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		fail(w, "validation search", err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
