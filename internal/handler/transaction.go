package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

// TransactionHandler expone las operaciones del motor de transacciones.
type TransactionHandler struct {
	txService *service.TransactionService
	logger    *logrus.Logger
}

func NewTransactionHandler(txService *service.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{txService: txService, logger: logger}
}

func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions/transfer", h.Transfer).Methods("POST")
	router.HandleFunc("/transactions/deposit", h.Deposit).Methods("POST")
	router.HandleFunc("/transactions/withdraw", h.Withdraw).Methods("POST")
	router.HandleFunc("/transactions/pay-service", h.PayService).Methods("POST")
	router.HandleFunc("/accounts/{accountNumber}/transactions", h.History).Methods("GET")
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.txService.Transfer(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.txService.Deposit(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.txService.Withdraw(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *TransactionHandler) PayService(w http.ResponseWriter, r *http.Request) {
	var req model.PayServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.txService.PayService(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// History devuelve el historial paginado de una cuenta propia, del
// movimiento más reciente al más antiguo.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondValidationError(w, err)
		return
	}
	page, size := parsePagination(r)

	resp, err := h.txService.GetHistory(r.Context(), userIDFrom(r), mux.Vars(r)["accountNumber"], filter, page, size)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
