package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// errInvalidBody se responde cuando el cuerpo JSON no se pudo decodificar.
var (
	errInvalidBody   = errors.New("formato de petición no válido")
	errInvalidPathID = errors.New("identificador no válido")
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// statusFor traduce los errores de negocio a códigos HTTP. Todo error no
// reconocido es un fallo de infraestructura.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrBeneficiaryNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, model.ErrNotOwner),
		errors.Is(err, model.ErrUserBlocked):
		return http.StatusForbidden, true
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, model.ErrDuplicateOperation),
		errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrDocumentTaken),
		errors.Is(err, model.ErrBeneficiaryExists):
		return http.StatusConflict, true
	case errors.Is(err, model.ErrInsufficientFunds),
		errors.Is(err, model.ErrUnsupportedCurrency),
		errors.Is(err, model.ErrUserNotBlocked),
		errors.Is(err, model.ErrOwnBeneficiary),
		errors.Is(err, model.ErrPasswordConfirmation),
		errors.Is(err, model.ErrSamePassword):
		return http.StatusBadRequest, true
	case errors.Is(err, model.ErrRateUnavailable):
		return http.StatusServiceUnavailable, true
	default:
		return http.StatusInternalServerError, false
	}
}

// respondError responde un error de servicio. Los errores de infraestructura
// se registran completos pero el cliente solo ve un mensaje genérico.
func respondError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	status, known := statusFor(err)
	message := err.Error()
	if !known {
		logger.WithError(err).Error("Error interno al procesar la petición")
		message = "error interno del servidor"
	}
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationError responde un fallo de validación de la petición.
func respondValidationError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
