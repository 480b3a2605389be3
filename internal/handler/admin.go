package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

// AdminHandler expone el panel de administración. Todas sus rutas van
// detrás de AuthMiddleware y AdminOnly.
type AdminHandler struct {
	adminService *service.AdminService
	logger       *logrus.Logger
}

func NewAdminHandler(adminService *service.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	router.HandleFunc("/users", h.SearchUsers).Methods("GET")
	router.HandleFunc("/transactions", h.SearchTransactions).Methods("GET")
	router.HandleFunc("/users/{id}/unblock", h.UnblockUser).Methods("POST")
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	filter := model.UserSearchFilter{Term: r.URL.Query().Get("term")}
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &v
		}
	}
	if raw := r.URL.Query().Get("isBlocked"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.IsBlocked = &v
		}
	}
	page, size := parsePagination(r)

	resp, err := h.adminService.SearchUsers(r.Context(), userIDFrom(r), filter, page, size, clientIP(r), r.UserAgent())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondValidationError(w, err)
		return
	}
	page, size := parsePagination(r)

	resp, err := h.adminService.SearchTransactions(r.Context(), userIDFrom(r), filter, page, size, clientIP(r), r.UserAgent())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.adminService.UnblockUser(r.Context(), userIDFrom(r), id, clientIP(r), r.UserAgent()); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "usuario desbloqueado"})
}
