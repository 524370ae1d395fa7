// Package service holds the catalog, client, order and reporting operations
// shared by every front end. Each operation is one call against the store;
// the ones that write more than one statement run inside a transaction.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pedidos/m/domain"
	"pedidos/m/internal/validation"
)

const searchLimit = 5

// Services bundles the services built over one database handle.
type Services struct {
	Catalog *CatalogService
	Clients *ClientService
	Orders  *OrderService
	Reports *ReportService
	Staff   *StaffService

	db *sqlx.DB
}

// Option customizes New.
type Option func(*clock)

// WithClock replaces the wall clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

// New wires the services over db.
func New(db *sqlx.DB, opts ...Option) *Services {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return &Services{
		Catalog: &CatalogService{db: db},
		Clients: &ClientService{db: db},
		Orders:  &OrderService{db: db, clock: c},
		Reports: &ReportService{db: db, clock: c},
		Staff:   &StaffService{db: db},
		db:      db,
	}
}

// Ping checks the store is reachable.
func (s *Services) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type clock struct {
	now func() time.Time
}

func (c clock) today() string {
	return c.now().Format(domain.DateLayout)
}

// resolveDate returns today for an empty date and rejects anything not in DateLayout.
func (c clock) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return c.today(), nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", invalid("fecha must be in YYYY-MM-DD format", validation.Violations{"fecha": "invalid_date"})
	}
	return date, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchNames(ctx context.Context, q sqlx.QueryerContext, table, term string) ([]string, error) {
	like := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	query := fmt.Sprintf(`SELECT nombre FROM %s WHERE nombre LIKE ? ESCAPE '\' ORDER BY nombre LIMIT %d`, table, searchLimit)
	names := []string{}
	if err := sqlx.SelectContext(ctx, q, &names, query, like); err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
