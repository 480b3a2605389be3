package model

import "errors"

// Errores de negocio del core bancario. Los servicios los devuelven tal cual
// (o envueltos con %w) y los handlers los traducen a códigos HTTP 4xx.
// Cualquier otro error se considera fallo de infraestructura (5xx).
var (
	ErrAccountNotFound     = errors.New("cuenta no disponible")
	ErrNotOwner            = errors.New("la cuenta no te pertenece")
	ErrInsufficientFunds   = errors.New("saldo no disponible")
	ErrUnsupportedCurrency = errors.New("tipo de moneda no soportada")

	// ErrRateUnavailable indica que la fuente de tipos de cambio no respondió.
	// A diferencia de ErrUnsupportedCurrency es un fallo de infraestructura.
	ErrRateUnavailable = errors.New("no se pudo obtener el tipo de cambio")

	// ErrCodeGenerationExhausted se devuelve cuando el generador agotó sus
	// reintentos contra el almacén. En la práctica es inalcanzable con
	// códigos de 10 y 14 dígitos.
	ErrCodeGenerationExhausted = errors.New("no se pudo generar un código único")

	// ErrDuplicateOperation indica que la clave de idempotencia ya fue usada:
	// la operación original ya se aplicó y no debe repetirse.
	ErrDuplicateOperation = errors.New("operación ya procesada")

	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidCredentials = errors.New("usuario o contraseña incorrectos")
	ErrUserBlocked        = errors.New("usuario bloqueado por intentos fallidos")
	ErrUserNotBlocked     = errors.New("usuario no bloqueado o sin registro de intentos")
	ErrEmailTaken         = errors.New("el email ya está registrado")
	ErrDocumentTaken      = errors.New("el DNI ya está registrado")

	ErrPasswordConfirmation = errors.New("la confirmación no coincide con la nueva contraseña")
	ErrSamePassword         = errors.New("la nueva contraseña debe ser distinta de la actual")

	ErrBeneficiaryNotFound = errors.New("beneficiario no encontrado")
	ErrBeneficiaryExists   = errors.New("esta cuenta ya está agregada a tus beneficiarios")
	ErrOwnBeneficiary      = errors.New("no te puedes agregar a ti mismo como beneficiario")
)
