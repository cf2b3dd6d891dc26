package handler

import (
	"encoding/json"
	"net/http"

	"tangle_backend/internal/api/middleware"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(rs *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/generate", h.generate)
	r.Post("/weekly", h.weekly)
}

func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := middleware.AuthorizeUsername(r.Context(), req.Username); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	resp, err := h.reportService.GenerateAndDispatch(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) weekly(w http.ResponseWriter, r *http.Request) {
	var req service.WeeklyReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := middleware.AuthorizeUsername(r.Context(), req.Username); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	resp, err := h.reportService.GenerateWeeklyAndDispatch(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
