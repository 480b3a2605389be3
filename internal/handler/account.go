package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
	logger         *logrus.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: logger}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts", h.Create).Methods("POST")
	router.HandleFunc("/accounts", h.List).Methods("GET")
	router.HandleFunc("/accounts/{accountNumber}", h.Deactivate).Methods("DELETE")
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.AccountCreationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.accountService.Create(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.List(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["accountNumber"]
	if err := h.accountService.Deactivate(r.Context(), userIDFrom(r), accountNumber); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
