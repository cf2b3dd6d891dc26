package handler

import (
	"net/http"

	"tangle_backend/internal/api/middleware"
	"tangle_backend/internal/app/service"
	"tangle_backend/internal/common"
	"tangle_backend/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	authService  *service.AuthService
	adminService *service.AdminService
}

func NewAdminHandler(authService *service.AuthService, adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{authService: authService, adminService: adminService}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/users", h.listUsers)
	r.Get("/dashboard", h.dashboard)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	type UsersResponse struct {
		Users []model.User `json:"users"`
	}
	common.RespondWithJSON(w, http.StatusOK, UsersResponse{Users: users})
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}
