package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"pedidos/m/internal/database"
	"pedidos/m/internal/migrations"
)

var fixedNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.Local)

const today = "2026-10-19"

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func setupServices(t *testing.T) (*Services, *sqlx.DB) {
	t.Helper()
	db := setupTestDB(t)
	return New(db, WithClock(func() time.Time { return fixedNow })), db
}

func seedProduct(t *testing.T, db *sqlx.DB, name string, cost, price float64, stock int64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO productos (nombre, costo, precio_venta, stock) VALUES (?, ?, ?, ?)`, name, cost, price, stock)
	require.NoError(t, err)
}

func seedOrder(t *testing.T, db *sqlx.DB, client, product string, qty int64, cost float64, date string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO pedidos (cliente, producto, cantidad, costo, zona, fecha) VALUES (?, ?, ?, ?, 'Bernal', ?)`,
		client, product, qty, cost, date)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

var ctx = context.Background()
