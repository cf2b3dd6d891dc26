package handler

import (
	"net/http"
	"strconv"

	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type LevelHandler struct {
	uploadService *service.UploadService
}

func NewLevelHandler(us *service.UploadService) *LevelHandler {
	return &LevelHandler{uploadService: us}
}

func (h *LevelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{category}", h.listLevels)                   // GET /levels/shapes
	r.Get("/{category}/{level}/outline", h.serveOutline) // GET /levels/shapes/3/outline
}

func (h *LevelHandler) listLevels(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	levels, err := h.uploadService.ListOutlineLevels(category)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	type LevelsResponse struct {
		Category string `json:"category"`
		Levels   []int  `json:"levels"`
	}
	common.RespondWithJSON(w, http.StatusOK, LevelsResponse{Category: category, Levels: levels})
}

func (h *LevelHandler) serveOutline(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Level must be a number")
		return
	}
	path, err := h.uploadService.OutlinePath(chi.URLParam(r, "category"), level)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
