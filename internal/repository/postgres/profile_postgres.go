package postgres

import (
	"context"
	"database/sql"
	"strings"

	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

// Create stores a new profile. A taken email yields repository.ErrDuplicate.
func (r *ProfilePostgres) Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error) {
	const q = `
		INSERT INTO profiles (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, display_name, created_at
	`
	var out model.User
	err := r.db.QueryRowContext(ctx, q, u.ID, strings.ToLower(u.Email), u.DisplayName, passwordHash, u.CreatedAt).
		Scan(&out.ID, &out.Email, &out.DisplayName, &out.CreatedAt)
	if IsUniqueViolation(err) {
		return nil, repository.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, display_name, created_at FROM profiles WHERE id = $1`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ProfilePostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, display_name, created_at FROM profiles WHERE lower(email) = lower($1)`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindCredentials returns the profile and its bcrypt hash.
func (r *ProfilePostgres) FindCredentials(ctx context.Context, email string) (*model.User, string, error) {
	const q = `SELECT id, email, display_name, created_at, password_hash FROM profiles WHERE lower(email) = lower($1)`
	var (
		u    model.User
		hash string
	)
	if err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt, &hash); err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}
