package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pedidos/m/domain"
)

const defaultReportDays = 30

// ReportService computes read-only aggregates over the order ledger.
type ReportService struct {
	db *sqlx.DB
	clock
}

// DailySalesTotals sums quantity*cost per order date, most recent first,
// keeping at most limitDays dates. A non-positive limit means 30.
func (s *ReportService) DailySalesTotals(ctx context.Context, limitDays int) ([]domain.DailyTotal, error) {
	if limitDays <= 0 {
		limitDays = defaultReportDays
	}
	totals := []domain.DailyTotal{}
	if err := s.db.SelectContext(ctx, &totals, `SELECT fecha, COALESCE(SUM(cantidad * costo), 0) AS total
                FROM pedidos
                GROUP BY fecha
                ORDER BY fecha DESC
                LIMIT ?`, limitDays); err != nil {
		return nil, fmt.Errorf("daily sales totals: %w", err)
	}
	return totals, nil
}

// ProductsSoldOnDate sums the quantity ordered of each product on date, ordered by product.
func (s *ReportService) ProductsSoldOnDate(ctx context.Context, date string) ([]domain.ProductQuantity, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	sold := []domain.ProductQuantity{}
	if err := s.db.SelectContext(ctx, &sold, `SELECT producto, SUM(cantidad) AS cantidad
                FROM pedidos
                WHERE fecha = ?
                GROUP BY producto
                ORDER BY producto`, date); err != nil {
		return nil, fmt.Errorf("products sold on %s: %w", date, err)
	}
	return sold, nil
}

// ClientStatement collects a client's lines of one day with their total.
// It returns ErrNotFound when the client ordered nothing that day.
func (s *ReportService) ClientStatement(ctx context.Context, client, date string) (domain.Statement, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return domain.Statement{}, err
	}
	client = strings.TrimSpace(client)
	lines, err := listClientOrders(ctx, s.db, client, date)
	if err != nil {
		return domain.Statement{}, err
	}
	if len(lines) == 0 {
		return domain.Statement{}, ErrNotFound
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.UnitCost).Mul(decimal.NewFromInt(l.Quantity)))
	}
	return domain.Statement{Client: client, Date: date, Lines: lines, Total: total.InexactFloat64()}, nil
}
