package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	logger      *logrus.Logger
}

func NewUserHandler(userService *service.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/me", h.Profile).Methods("GET")
	router.HandleFunc("/users/me", h.UpdateProfile).Methods("PUT")
	router.HandleFunc("/users/me/password", h.ChangePassword).Methods("PUT")
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetProfile(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userIDFrom(r), &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "contraseña actualizada"})
}
