package api

import (
	"io"
	"net/http"

	"github.com/kristianernst/fast-slides/internal/projectsvc"
)

const maxUploadBytes = 50 << 20 // 50 MB

// AssetURL handles GET /asset-url.
//
//	@Summary		Inline a project asset as a data URL
//	@Tags			assets
//	@Produce		json
//	@Param			project	query		string	true	"Project path"
//	@Param			src		query		string	true	"Asset reference as written in the page"
//	@Success		200		{object}	AssetURLResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/asset-url [get]
func (h *Handler) AssetURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	project := q.Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required query parameter: project"))
		return
	}
	link, err := h.svc.ResolveAssetDataURL(r.Context(), project, q.Get("src"))
	if err != nil {
		fail(w, "asset url", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, AssetURLResponse{OK: true, URL: link})
}

// UploadAsset handles POST /project-assets (multipart/form-data with fields
// "project", optional "folder" and "file").
//
//	@Summary		Upload an asset into a project folder
//	@Tags			assets
//	@Accept			mpfd
//	@Produce		json
//	@Param			project	formData	string	true	"Project path"
//	@Param			folder	formData	string	false	"Asset folder"	Enums(images, media, data, assets)
//	@Param			file	formData	file	true	"Asset file"
//	@Success		201		{object}	AssetUploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/project-assets [post]
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	folder := r.FormValue("folder")
	if folder == "" {
		folder = projectsvc.DefaultAssetFolder
	}
	rel, err := h.svc.AddAsset(r.Context(), r.FormValue("project"), folder, header.Filename, data)
	if err != nil {
		fail(w, "upload asset", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, AssetUploadResponse{OK: true, Path: rel, Size: len(data)})
}
