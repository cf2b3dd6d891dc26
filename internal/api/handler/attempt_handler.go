package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tangle_backend/internal/api/middleware"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AttemptHandler struct {
	attemptService *service.AttemptService
}

func NewAttemptHandler(as *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: as}
}

func (h *AttemptHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard) // GET /leaderboard?category=tangle&limit=10

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/attempt", h.recordAttempt)
		authed.Get("/progress/stats/{username}", h.stats)
	})
}

func (h *AttemptHandler) recordAttempt(w http.ResponseWriter, r *http.Request) {
	var req service.RecordAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Username != "" {
		if err := middleware.AuthorizeUsername(r.Context(), req.Username); err != nil {
			common.RespondWithServiceError(w, r, err)
			return
		}
	}

	resp, err := h.attemptService.Record(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AttemptHandler) stats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := middleware.AuthorizeUsername(r.Context(), username); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	stats, err := h.attemptService.Stats(r.Context(), username)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AttemptHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) // service applies the default

	entries, err := h.attemptService.Leaderboard(r.Context(), category, limit)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	type LeaderboardResponse struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	common.RespondWithJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries})
}
