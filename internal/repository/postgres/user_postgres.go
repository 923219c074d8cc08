package postgres

import (
	"context"
	"database/sql"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Ensure inserts the user row if it does not exist yet.
func (r *UserPostgres) Ensure(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.FullName)
	return err
}
