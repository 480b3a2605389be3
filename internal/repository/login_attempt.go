package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type LoginAttemptRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewLoginAttemptRepository(db *sql.DB, logger *logrus.Logger) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db, logger: logger}
}

func (r *LoginAttemptRepository) Create(ctx context.Context, userID int64) error {
	query := `INSERT INTO login_attempts (user_id, attempts, is_blocked) VALUES ($1, 0, FALSE)`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to create login attempt record: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) FindByUserID(ctx context.Context, userID int64) (*model.LoginAttempt, error) {
	query := `
		SELECT id, user_id, attempts, last_attempt, is_blocked
		FROM login_attempts
		WHERE user_id = $1
	`

	var attempt model.LoginAttempt
	var lastAttempt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.Attempts,
		&lastAttempt,
		&attempt.IsBlocked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get login attempt record: %w", err)
	}
	if lastAttempt.Valid {
		attempt.LastAttempt = &lastAttempt.Time
	}
	return &attempt, nil
}

func (r *LoginAttemptRepository) Update(ctx context.Context, attempt *model.LoginAttempt) error {
	query := `
		UPDATE login_attempts
		SET attempts = $1, last_attempt = $2, is_blocked = $3
		WHERE id = $4
	`

	var lastAttempt sql.NullTime
	if attempt.LastAttempt != nil {
		lastAttempt = sql.NullTime{Time: *attempt.LastAttempt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, attempt.Attempts, lastAttempt, attempt.IsBlocked, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to update login attempt record: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) CountBlocked(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM login_attempts WHERE is_blocked = TRUE`

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count blocked users: %w", err)
	}
	return count, nil
}

// FindLastBlocked devuelve los últimos usuarios bloqueados para el resumen
// del panel administrativo.
func (r *LoginAttemptRepository) FindLastBlocked(ctx context.Context, limit int) ([]model.BlockedUserSummary, error) {
	query := `
		SELECT u.name, u.last_name1, u.document_id, la.last_attempt
		FROM login_attempts la
		JOIN users u ON u.id = la.user_id
		WHERE la.is_blocked = TRUE
		ORDER BY la.last_attempt DESC NULLS LAST
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked users: %w", err)
	}
	defer rows.Close()

	var blocked []model.BlockedUserSummary
	for rows.Next() {
		var summary model.BlockedUserSummary
		var name, lastName1 string
		var lastAttempt sql.NullTime
		if err := rows.Scan(&name, &lastName1, &summary.DocumentID, &lastAttempt); err != nil {
			return nil, fmt.Errorf("failed to scan blocked user: %w", err)
		}
		summary.Name = name + " " + lastName1
		if lastAttempt.Valid {
			summary.BlockedAt = &lastAttempt.Time
		}
		blocked = append(blocked, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocked users: %w", err)
	}

	return blocked, nil
}
