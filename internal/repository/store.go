package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Tx es una unidad de trabajo atómica sobre el almacén. Cada operación del
// motor de transacciones se ejecuta completa dentro de una Tx: o se confirma
// todo o no se aplica nada.
type Tx interface {
	Commit() error
	Rollback() error
}

type sqlTx struct {
	*sql.Tx
}

// Store abre unidades de trabajo sobre la base de datos.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return sqlTx{tx}, nil
}

// unwrapTx recupera la transacción SQL subyacente.
func unwrapTx(tx Tx) (*sql.Tx, error) {
	st, ok := tx.(sqlTx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return st.Tx, nil
}

// isUniqueViolation indica si err es una violación de la restricción UNIQUE
// con el nombre dado. Las restricciones del esquema son el respaldo real de
// unicidad: una comprobación previa sin restricción sería una carrera.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == constraint
}

// isCheckViolation indica si err es una violación de un CHECK del esquema.
func isCheckViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code.Name() == "check_violation" && pqErr.Constraint == constraint
}
