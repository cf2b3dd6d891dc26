package handler

import (
	"errors"
	"net/http"

	"tangle_backend/internal/api/middleware"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

const multipartMemory = 8 << 20

type UploadHandler struct {
	uploadService  *service.UploadService
	maxUploadBytes int64
}

func NewUploadHandler(us *service.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{uploadService: us, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the admin upload endpoints. Everything here requires an
// admin token.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Post("/upload-tangle-pdf", h.uploadTanglePDF)
	r.Post("/upload-outline-pdf", h.uploadOutlinePDF)
}

func (h *UploadHandler) uploadTanglePDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondFormError(w, err)
		return
	}
	defer file.Close()

	resp, err := h.uploadService.IngestTanglePDF(r.Context(), file)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) uploadOutlinePDF(w http.ResponseWriter, r *http.Request) {
	uploader, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.respondFormError(w, err)
		return
	}
	category := r.FormValue("category")
	if category == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Category is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondFormError(w, err)
		return
	}
	defer file.Close()

	resp, err := h.uploadService.IngestOutlinePDF(r.Context(), uploader, category, file)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) respondFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		common.RespondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, http.ErrMissingFile):
		common.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
	default:
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
	}
}
