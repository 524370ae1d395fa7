package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pedidos/m/domain"
	"pedidos/m/internal/validation"
)

const RoleAdmin = "admin"

var hashPassword = func(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// StaffService stores staff accounts allowed to maintain orders and catalog.
type StaffService struct {
	db *sqlx.DB
}

// EnsureUser creates the account if the email is not registered yet and
// reports whether it did. An existing account is left untouched.
func (s *StaffService) EnsureUser(ctx context.Context, email, password, role string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Required("password", password, v)
	validation.Required("role", role, v)
	if !v.Empty() {
		return false, invalid("email, password and role are required", v)
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = ?)`, email); err != nil {
		return false, fmt.Errorf("look up user %q: %w", email, err)
	}
	if exists {
		return false, nil
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO usuarios (email, password, role) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING`,
		email, string(hashed), role)
	if err != nil {
		return false, fmt.Errorf("create user %q: %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create user %q: %w", email, err)
	}
	return n > 0, nil
}

// Authenticate returns the account matching email and password.
func (s *StaffService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT id, email, password, role, created_at FROM usuarios WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}
