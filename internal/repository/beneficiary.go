package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type BeneficiaryRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewBeneficiaryRepository(db *sql.DB, logger *logrus.Logger) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db, logger: logger}
}

func (r *BeneficiaryRepository) Create(ctx context.Context, beneficiary *model.Beneficiary) error {
	query := `
		INSERT INTO beneficiaries (user_id, alias, account_number, bank_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		beneficiary.UserID,
		beneficiary.Alias,
		beneficiary.AccountNumber,
		beneficiary.BankName,
		beneficiary.IsActive,
	).Scan(&beneficiary.ID)

	if err != nil {
		return fmt.Errorf("failed to create beneficiary: %w", err)
	}
	return nil
}

func (r *BeneficiaryRepository) FindByID(ctx context.Context, id int64) (*model.Beneficiary, error) {
	query := `
		SELECT id, user_id, alias, account_number, bank_name, is_active
		FROM beneficiaries
		WHERE id = $1
	`

	var b model.Beneficiary
	var alias sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.UserID,
		&alias,
		&b.AccountNumber,
		&b.BankName,
		&b.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrBeneficiaryNotFound
		}
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}
	b.Alias = alias.String
	return &b, nil
}

func (r *BeneficiaryRepository) FindAllActiveByUserID(ctx context.Context, userID int64) ([]model.Beneficiary, error) {
	query := `
		SELECT id, user_id, alias, account_number, bank_name, is_active
		FROM beneficiaries
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()

	var beneficiaries []model.Beneficiary
	for rows.Next() {
		var b model.Beneficiary
		var alias sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &alias, &b.AccountNumber, &b.BankName, &b.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		b.Alias = alias.String
		beneficiaries = append(beneficiaries, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read beneficiaries: %w", err)
	}

	return beneficiaries, nil
}

func (r *BeneficiaryRepository) ExistsActiveByUserAndNumber(ctx context.Context, userID int64, accountNumber string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM beneficiaries
			WHERE user_id = $1 AND account_number = $2 AND is_active = TRUE
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, accountNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check beneficiary: %w", err)
	}
	return exists, nil
}

func (r *BeneficiaryRepository) Update(ctx context.Context, beneficiary *model.Beneficiary) error {
	query := `
		UPDATE beneficiaries
		SET alias = $1, account_number = $2, bank_name = $3, is_active = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		beneficiary.Alias,
		beneficiary.AccountNumber,
		beneficiary.BankName,
		beneficiary.IsActive,
		beneficiary.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update beneficiary: %w", err)
	}
	return nil
}
