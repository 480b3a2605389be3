package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type UserRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewUserRepository(db *sql.DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, role, name, last_name1, last_name2, document_id, email, password, phone_number, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var lastName2 sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Name,
		&user.LastName1,
		&lastName2,
		&user.DocumentID,
		&user.Email,
		&user.Password,
		&user.PhoneNumber,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.LastName2 = lastName2.String
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (role, name, last_name1, last_name2, document_id, email, password, phone_number, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`

	var lastName2 sql.NullString
	if user.LastName2 != "" {
		lastName2 = sql.NullString{String: user.LastName2, Valid: true}
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Role,
		user.Name,
		user.LastName1,
		lastName2,
		user.DocumentID,
		user.Email,
		user.Password,
		user.PhoneNumber,
		user.IsActive,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return model.ErrEmailTaken
		}
		if isUniqueViolation(err, "users_document_id_key") {
			return model.ErrDocumentTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE document_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check document id: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, phone_number = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, user.Email, user.PhoneNumber, user.ID)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	query := `
		UPDATE users
		SET password = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// SearchPage lista usuarios para el panel administrativo, con el estado de
// bloqueo tomado de login_attempts.
func (r *UserRepository) SearchPage(
	ctx context.Context,
	filter model.UserSearchFilter,
	page, size int,
) ([]model.UserAdminResponse, int64, error) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions = append(conditions, fmt.Sprintf("u.role = %s", arg(model.RoleClient)))

	if filter.Term != "" {
		p := arg("%" + filter.Term + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(u.name ILIKE %s OR u.last_name1 ILIKE %s OR u.document_id ILIKE %s OR u.email ILIKE %s)", p, p, p, p))
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = %s", arg(*filter.IsActive)))
	}
	if filter.IsBlocked != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(la.is_blocked, FALSE) = %s", arg(*filter.IsBlocked)))
	}

	from := `
		FROM users u
		LEFT JOIN login_attempts la ON la.user_id = u.id
		WHERE ` + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT u.id, u.name, u.last_name1, u.document_id, u.email, u.phone_number,
		       COALESCE(la.is_blocked, FALSE), u.created_at` + from +
		fmt.Sprintf(" ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.UserAdminResponse
	for rows.Next() {
		var u model.UserAdminResponse
		var name, lastName1 string
		if err := rows.Scan(&u.ID, &name, &lastName1, &u.DocumentID, &u.Email, &u.PhoneNumber, &u.IsBlocked, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		u.FullName = name + " " + lastName1
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read users: %w", err)
	}

	return users, total, nil
}
