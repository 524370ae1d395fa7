package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pedidos/m/domain"
	"pedidos/m/internal/validation"
)

// ClientService manages the client directory.
type ClientService struct {
	db *sqlx.DB
}

// EnsureClient records the client name if it is not already known.
func (s *ClientService) EnsureClient(ctx context.Context, name string) error {
	return ensureClient(ctx, s.db, name)
}

func (s *ClientService) SearchClients(ctx context.Context, term string) ([]string, error) {
	return searchNames(ctx, s.db, "clientes", term)
}

// ListClients returns the whole client directory ordered by name.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients := []domain.Client{}
	if err := s.db.SelectContext(ctx, &clients, `SELECT id, nombre FROM clientes ORDER BY nombre`); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func ensureClient(ctx context.Context, e sqlx.ExecerContext, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("client name is required", validation.Violations{"cliente": "required"})
	}
	if _, err := e.ExecContext(ctx, `INSERT INTO clientes (nombre) VALUES (?) ON CONFLICT(nombre) DO NOTHING`, name); err != nil {
		return fmt.Errorf("ensure client %q: %w", name, err)
	}
	return nil
}
