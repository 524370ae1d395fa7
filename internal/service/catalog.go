package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pedidos/m/domain"
	"pedidos/m/internal/validation"
)

// CatalogService manages the product catalog and its stock.
type CatalogService struct {
	db *sqlx.DB
}

// CatalogRow is one record of a bulk catalog import.
type CatalogRow struct {
	Line  int
	Name  string
	Cost  decimal.Decimal
	Price decimal.Decimal
	Stock int64
}

// ImportResult counts how the rows of a bulk import were applied.
type ImportResult struct {
	Updated int `json:"actualizados"`
	Created int `json:"creados"`
}

// ProductInput is a manual registration of one product.
type ProductInput struct {
	Name      string  `json:"nombre"`
	Cost      float64 `json:"costo"`
	SalePrice float64 `json:"precio_venta"`
	Stock     int64   `json:"stock"`
}

func (s *CatalogService) SearchProducts(ctx context.Context, term string) ([]string, error) {
	return searchNames(ctx, s.db, "productos", term)
}

// GetCost returns the cost of the named product, or 0 when it is not in the catalog.
func (s *CatalogService) GetCost(ctx context.Context, name string) (float64, error) {
	var cost float64
	err := s.db.GetContext(ctx, &cost, `SELECT costo FROM productos WHERE nombre = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cost of %q: %w", name, err)
	}
	return cost, nil
}

// GetStock returns the stock of the named product, or 0 when it is not in the catalog.
func (s *CatalogService) GetStock(ctx context.Context, name string) (int64, error) {
	var stock int64
	err := s.db.GetContext(ctx, &stock, `SELECT stock FROM productos WHERE nombre = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get stock of %q: %w", name, err)
	}
	return stock, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, name string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT id, nombre, costo, precio_venta, stock FROM productos WHERE nombre = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %q: %w", name, err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := s.db.SelectContext(ctx, &products, `SELECT id, nombre, costo, precio_venta, stock FROM productos ORDER BY nombre`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// RegisterProduct creates the product or overwrites its cost, price and stock.
// It reports whether a new row was created.
func (s *CatalogService) RegisterProduct(ctx context.Context, in ProductInput) (bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("nombre", in.Name, v)
	validation.NonNegativeFloat("costo", in.Cost, v)
	validation.NonNegativeFloat("precio_venta", in.SalePrice, v)
	validation.NonNegativeInt("stock", in.Stock, v)
	if !v.Empty() {
		return false, invalid("invalid product", v)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin product registration: %w", err)
	}
	defer tx.Rollback()

	created, err := upsertProduct(ctx, tx, domain.Product{Name: in.Name, Cost: in.Cost, SalePrice: in.SalePrice, Stock: in.Stock})
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit product registration: %w", err)
	}
	return created, nil
}

// DeleteProduct removes a product from the catalog. Orders naming it are kept.
func (s *CatalogService) DeleteProduct(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM productos WHERE nombre = ?`, name)
	if err != nil {
		return fmt.Errorf("delete product %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ImportCSV reads a catalog CSV and applies it with BulkUpsert.
func (s *CatalogService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := ParseCatalogCSV(r)
	if err != nil {
		return ImportResult{}, err
	}
	return s.BulkUpsert(ctx, rows)
}

// BulkUpsert creates or overwrites every row by exact product name inside one
// transaction. The first invalid row aborts the batch and nothing is applied.
// A name repeated in the batch ends with the values of its last row.
func (s *CatalogService) BulkUpsert(ctx context.Context, rows []CatalogRow) (ImportResult, error) {
	var result ImportResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin catalog import: %w", err)
	}
	defer tx.Rollback()

	for i, row := range rows {
		line := row.Line
		if line == 0 {
			line = i + 1
		}
		p, err := row.product()
		if err != nil {
			return ImportResult{}, &RowError{Line: line, Err: err}
		}
		created, err := upsertProduct(ctx, tx, p)
		if err != nil {
			return ImportResult{}, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit catalog import: %w", err)
	}
	return result, nil
}

func (r CatalogRow) product() (domain.Product, error) {
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		return domain.Product{}, errors.New("nombre is required")
	case r.Cost.IsNegative():
		return domain.Product{}, fmt.Errorf("costo %s must not be negative", r.Cost)
	case r.Price.IsNegative():
		return domain.Product{}, fmt.Errorf("precio_venta %s must not be negative", r.Price)
	case r.Stock < 0:
		return domain.Product{}, fmt.Errorf("stock %d must not be negative", r.Stock)
	}
	return domain.Product{
		Name:      name,
		Cost:      r.Cost.InexactFloat64(),
		SalePrice: r.Price.InexactFloat64(),
		Stock:     r.Stock,
	}, nil
}

func upsertProduct(ctx context.Context, tx *sqlx.Tx, p domain.Product) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE productos SET costo = ?, precio_venta = ?, stock = ? WHERE nombre = ?`,
		p.Cost, p.SalePrice, p.Stock, p.Name)
	if err != nil {
		return false, fmt.Errorf("update product %q: %w", p.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update product %q: %w", p.Name, err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO productos (nombre, costo, precio_venta, stock) VALUES (?, ?, ?, ?)`,
		p.Name, p.Cost, p.SalePrice, p.Stock); err != nil {
		return false, fmt.Errorf("insert product %q: %w", p.Name, err)
	}
	return true, nil
}

// adjustStock adds delta to the named product's stock. Untracked products are left alone.
func adjustStock(ctx context.Context, e sqlx.ExecerContext, product string, delta int64) error {
	if _, err := e.ExecContext(ctx, `UPDATE productos SET stock = stock + ? WHERE nombre = ?`, delta, product); err != nil {
		return fmt.Errorf("adjust stock of %q: %w", product, err)
	}
	return nil
}
