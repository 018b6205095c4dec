package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// createUser inserts a user. The very first user ever stored is made an
// administrator in the same statement, so two racing registrations cannot
// both end up as admin.
func createUser(ctx context.Context, db *sql.DB, email, passwordHash, name string) (*User, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, role)
		VALUES (?, ?, ?, CASE WHEN EXISTS (SELECT 1 FROM users) THEN ? ELSE ? END)`,
		email, passwordHash, name, RoleUser, RoleAdmin)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}

	return getUserByID(ctx, db, id)
}

func getUserByEmail(ctx context.Context, db *sql.DB, email string) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM users
		WHERE email = ?`, email)
	return scanUser(row)
}

func getUserByID(ctx context.Context, db *sql.DB, id int64) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM users
		WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

func setUserRole(ctx context.Context, db *sql.DB, email, role string) error {
	if role != RoleAdmin && role != RoleUser {
		return fmt.Errorf("unknown role %q", role)
	}

	result, err := db.ExecContext(ctx, "UPDATE users SET role = ? WHERE email = ?", role, email)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return nil
}
