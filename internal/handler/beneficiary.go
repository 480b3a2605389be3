package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

type BeneficiaryHandler struct {
	beneficiaryService *service.BeneficiaryService
	logger             *logrus.Logger
}

func NewBeneficiaryHandler(beneficiaryService *service.BeneficiaryService, logger *logrus.Logger) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaryService: beneficiaryService, logger: logger}
}

func (h *BeneficiaryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/beneficiaries", h.Create).Methods("POST")
	router.HandleFunc("/beneficiaries", h.List).Methods("GET")
	router.HandleFunc("/beneficiaries/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/beneficiaries/{id}", h.Delete).Methods("DELETE")
}

func (h *BeneficiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.BeneficiaryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.beneficiaryService.Create(r.Context(), userIDFrom(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	beneficiaries, err := h.beneficiaryService.List(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, beneficiaries)
}

func (h *BeneficiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	var req model.BeneficiaryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidationError(w, errInvalidBody)
		return
	}

	resp, err := h.beneficiaryService.Update(r.Context(), userIDFrom(r), id, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BeneficiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.beneficiaryService.Delete(r.Context(), userIDFrom(r), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidPathID
	}
	return id, nil
}
