package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booknest/internal/domain"
)

var (
	ErrStaffNotFound      = errors.New("staff user not found")
	ErrStaffAlreadyExists = errors.New("staff user with this email already exists")
)

// StaffRepository manages admin dashboard accounts.
type StaffRepository interface {
	Create(ctx context.Context, user *domain.StaffUser) error
	FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

// Create inserts a new staff account.
func (r *staffRepository) Create(ctx context.Context, user *domain.StaffUser) error {
	query := `
		INSERT INTO staff (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create staff user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a staff account by email.
func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM staff
		WHERE email = $1
	`

	user := &domain.StaffUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to find staff user: %w", err)
	}

	return user, nil
}
