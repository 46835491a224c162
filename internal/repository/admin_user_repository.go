// This file defines the admin user repository. Admin accounts exist only to
// gate the admin panel; there is no public registration, so the single
// write path is the idempotent seed run at startup.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemashers/cinemash/internal/model"
)

// ErrAdminUserNotFound indicates that no admin account matches the given
// username.
var ErrAdminUserNotFound = errors.New("admin user not found")

// AdminUserRepo manages persistence for admin accounts.
type AdminUserRepo struct {
	db *sql.DB
}

// NewAdminUserRepo constructs an AdminUserRepo with the given DB handle.
func NewAdminUserRepo(db *sql.DB) *AdminUserRepo {
	return &AdminUserRepo{db: db}
}

// GetByUsername returns the admin account with the given username, or
// ErrAdminUserNotFound.
func (r *AdminUserRepo) GetByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	const q = `SELECT id, username, password_hash FROM admin_users WHERE username = ?`
	var u model.AdminUser
	err := r.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Ensure creates the admin account when it does not exist yet. An existing
// account keeps its current hash so a changed env password does not rotate
// credentials behind the operator's back.
func (r *AdminUserRepo) Ensure(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO admin_users (username, password_hash) VALUES (?, ?)
        ON CONFLICT (username) DO NOTHING`,
		username, passwordHash)
	return err
}
