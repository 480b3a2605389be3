package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// Longitudes de los códigos emitidos externamente.
const (
	AccountNumberLength = 14
	ReferenceCodeLength = 10
)

// maxCodeAttempts acota los reintentos ante colisión. Con códigos de 10 y
// 14 dígitos agotar los intentos es, en la práctica, inalcanzable.
const maxCodeAttempts = 5

var (
	digitBoundsOnce sync.Once
	digitBounds     map[int]*big.Int
)

// bound devuelve 10^length, calculado una sola vez por longitud usada. La
// fuente de aleatoriedad es crypto/rand a nivel de proceso: no se crea una
// instancia por llamada.
func bound(length int) *big.Int {
	digitBoundsOnce.Do(func() {
		digitBounds = make(map[int]*big.Int)
		for _, l := range []int{ReferenceCodeLength, AccountNumberLength} {
			digitBounds[l] = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(l)), nil)
		}
	})
	if b, ok := digitBounds[length]; ok {
		return b
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
}

// generateDigits produce una cadena numérica uniforme de la longitud dada a
// partir de una fuente criptográficamente segura. Los códigos son
// identificadores visibles externamente: no pueden salir de una secuencia
// predecible.
func generateDigits(length int) (string, error) {
	n, err := rand.Int(rand.Reader, bound(length))
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// CodeGenerator emite códigos únicos verificados contra el almacén. La
// restricción UNIQUE del esquema sigue siendo el respaldo real: verificar y
// luego insertar sin restricción sería una carrera.
type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// Unique genera un código de la longitud dada que no existe según exists,
// reintentando ante colisión hasta maxCodeAttempts veces.
func (g *CodeGenerator) Unique(
	ctx context.Context,
	length int,
	exists func(ctx context.Context, code string) (bool, error),
) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateDigits(length)
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", model.ErrCodeGenerationExhausted
}
