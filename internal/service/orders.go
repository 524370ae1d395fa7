package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pedidos/m/domain"
	"pedidos/m/internal/validation"
)

// OrderService records order lines and keeps product stock in step with them.
type OrderService struct {
	db *sqlx.DB
	clock
}

// OrderInput is one order line to place.
type OrderInput struct {
	Client   string  `json:"cliente"`
	Product  string  `json:"producto"`
	Quantity int64   `json:"cantidad"`
	UnitCost float64 `json:"costo"`
	Zone     string  `json:"zona"`
}

// OrderUpdate holds the fields an order line edit may overwrite.
type OrderUpdate struct {
	Quantity int64   `json:"cantidad"`
	UnitCost float64 `json:"costo"`
	Zone     string  `json:"zona"`
}

// CheckoutLine is one product of a multi-product checkout.
type CheckoutLine struct {
	Product  string  `json:"producto"`
	Quantity int64   `json:"cantidad"`
	UnitCost float64 `json:"costo"`
}

// CheckoutInput places several lines sharing client, zone and date.
type CheckoutInput struct {
	Client string         `json:"cliente"`
	Zone   string         `json:"zona"`
	Lines  []CheckoutLine `json:"lineas"`
}

const orderColumns = `id, cliente, producto, cantidad, costo, zona, fecha`

func (in *OrderInput) normalize() error {
	in.Client = strings.TrimSpace(in.Client)
	in.Product = strings.TrimSpace(in.Product)
	in.Zone = strings.TrimSpace(in.Zone)

	v := validation.Violations{}
	validation.Required("cliente", in.Client, v)
	validation.Required("producto", in.Product, v)
	validation.Required("zona", in.Zone, v)
	validation.PositiveInt("cantidad", in.Quantity, v)
	validation.PositiveFloat("costo", in.UnitCost, v)
	if !v.Empty() {
		return invalid("cliente, producto, cantidad, costo and zona are required", v)
	}
	return nil
}

// PlaceOrderLine records one order line dated today and takes its quantity out
// of the product's stock. Stock sufficiency is not checked here; callers that
// care consult GetStock first.
func (s *OrderService) PlaceOrderLine(ctx context.Context, in OrderInput) (int64, error) {
	if err := in.normalize(); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin order: %w", err)
	}
	defer tx.Rollback()

	if err := ensureClient(ctx, tx, in.Client); err != nil {
		return 0, err
	}
	id, err := insertOrderLine(ctx, tx, in, s.today())
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit order: %w", err)
	}
	return id, nil
}

// PlaceOrder records every line of a checkout in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, in CheckoutInput) ([]int64, error) {
	if len(in.Lines) == 0 {
		return nil, invalid("at least one line is required", validation.Violations{"lineas": "required"})
	}
	lines := make([]OrderInput, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = OrderInput{Client: in.Client, Product: l.Product, Quantity: l.Quantity, UnitCost: l.UnitCost, Zone: in.Zone}
		if err := lines[i].normalize(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	if err := ensureClient(ctx, tx, lines[0].Client); err != nil {
		return nil, err
	}
	today := s.today()
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		id, err := insertOrderLine(ctx, tx, l, today)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return ids, nil
}

func insertOrderLine(ctx context.Context, tx *sqlx.Tx, in OrderInput, date string) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO pedidos (cliente, producto, cantidad, costo, zona, fecha) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Client, in.Product, in.Quantity, in.UnitCost, in.Zone, date)
	if err != nil {
		return 0, fmt.Errorf("insert order line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert order line: %w", err)
	}
	if err := adjustStock(ctx, tx, in.Product, -in.Quantity); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return getOrder(ctx, s.db, id)
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, id int64) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, q, &o, `SELECT `+orderColumns+` FROM pedidos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// EditOrderLine overwrites quantity, cost and zone. Stock is reconciled as if
// the line had been deleted and placed again with the new quantity.
func (s *OrderService) EditOrderLine(ctx context.Context, id int64, upd OrderUpdate) error {
	upd.Zone = strings.TrimSpace(upd.Zone)
	v := validation.Violations{}
	validation.Required("zona", upd.Zone, v)
	validation.PositiveInt("cantidad", upd.Quantity, v)
	validation.PositiveFloat("costo", upd.UnitCost, v)
	if !v.Empty() {
		return invalid("cantidad, costo and zona are required", v)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order edit: %w", err)
	}
	defer tx.Rollback()

	current, err := getOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE pedidos SET cantidad = ?, costo = ?, zona = ? WHERE id = ?`,
		upd.Quantity, upd.UnitCost, upd.Zone, id); err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	if delta := current.Quantity - upd.Quantity; delta != 0 {
		if err := adjustStock(ctx, tx, current.Product, delta); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order edit: %w", err)
	}
	return nil
}

// DeleteOrderLine removes the line and puts its quantity back into stock.
func (s *OrderService) DeleteOrderLine(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order delete: %w", err)
	}
	defer tx.Rollback()

	current, err := getOrder(ctx, tx, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pedidos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if err := adjustStock(ctx, tx, current.Product, current.Quantity); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order delete: %w", err)
	}
	return nil
}

// ListOrdersForDate returns the order lines of date (today when empty).
func (s *OrderService) ListOrdersForDate(ctx context.Context, date string) ([]domain.Order, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := s.db.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM pedidos WHERE fecha = ? ORDER BY id`, date); err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", date, err)
	}
	return orders, nil
}

// ListClientsForDate returns the distinct clients with at least one order on date.
func (s *OrderService) ListClientsForDate(ctx context.Context, date string) ([]string, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	clients := []string{}
	if err := s.db.SelectContext(ctx, &clients, `SELECT DISTINCT cliente FROM pedidos WHERE fecha = ? ORDER BY cliente`, date); err != nil {
		return nil, fmt.Errorf("list clients for %s: %w", date, err)
	}
	return clients, nil
}

func (s *OrderService) ListOrdersForClientOnDate(ctx context.Context, client, date string) ([]domain.Order, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return listClientOrders(ctx, s.db, client, date)
}

func listClientOrders(ctx context.Context, q sqlx.QueryerContext, client, date string) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := sqlx.SelectContext(ctx, q, &orders, `SELECT `+orderColumns+` FROM pedidos WHERE cliente = ? AND fecha = ? ORDER BY id`,
		strings.TrimSpace(client), date); err != nil {
		return nil, fmt.Errorf("list orders of %q for %s: %w", client, date, err)
	}
	return orders, nil
}
