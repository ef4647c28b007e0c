package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kristianernst/fast-slides/internal/projectsvc"
)

// NewRouter creates a chi router with all control-plane routes mounted.
// authEnabled controls whether Bearer token auth is enforced; /health is
// always open. sseHandler, if non-nil, is mounted at GET /events inside the
// auth group.
func NewRouter(svc *projectsvc.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(CORSMiddleware)
	r.NotFound(unknownEndpoint)
	r.MethodNotAllowed(unknownEndpoint)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		// Projects.
		r.Get("/app-state", h.AppState)
		r.Get("/preview-url", h.PreviewURL)
		r.Post("/open-project", h.OpenProject)
		r.Post("/save-project", h.SaveProject)

		// Validation.
		r.Post("/validate-project", h.ValidateProject)
		r.Post("/audit-project", h.AuditProject)
		r.Get("/validation-history", h.ValidationHistory)
		r.Get("/validation-search", h.ValidationSearch)

		// Assets.
		r.Get("/asset-url", h.AssetURL)
		r.Post("/project-assets", h.UploadAsset)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}

func unknownEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("Unknown endpoint: %s %s", r.Method, r.URL.Path)))
}
