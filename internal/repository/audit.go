package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type AuditLogRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAuditLogRepository(db *sql.DB, logger *logrus.Logger) *AuditLogRepository {
	return &AuditLogRepository{db: db, logger: logger}
}

// Insert escribe la entrada fuera de cualquier transacción financiera: la
// auditoría usa su propia conexión y nunca participa del commit del motor.
func (r *AuditLogRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.UserID,
		entry.Action,
		entry.Description,
		entry.IPAddress,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
