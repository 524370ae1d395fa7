package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog CSV columns. Header order is free and extra columns are ignored.
const (
	ColumnName  = "nombre"
	ColumnCost  = "costo"
	ColumnPrice = "precio_venta"
	ColumnStock = "stock"
)

var requiredColumns = []string{ColumnName, ColumnCost, ColumnPrice, ColumnStock}

// ParseCatalogCSV reads a catalog export. A header missing any required column
// is rejected before any row is read; a row with the wrong field count or a
// non-numeric value fails with a RowError naming its line.
func ParseCatalogCSV(r io.Reader) ([]CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("csv is empty", nil)
	}
	if err != nil {
		return nil, &RowError{Line: 1, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []CatalogRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Line: perr.StartLine, Err: perr.Err}
			}
			return nil, fmt.Errorf("read catalog csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row, err := parseCatalogRecord(record, index)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCatalogRecord(record []string, index map[string]int) (CatalogRow, error) {
	field := func(col string) string { return strings.TrimSpace(record[index[col]]) }

	cost, err := decimal.NewFromString(field(ColumnCost))
	if err != nil {
		return CatalogRow{}, fmt.Errorf("costo %q is not a number", field(ColumnCost))
	}
	price, err := decimal.NewFromString(field(ColumnPrice))
	if err != nil {
		return CatalogRow{}, fmt.Errorf("precio_venta %q is not a number", field(ColumnPrice))
	}
	stock, err := strconv.ParseInt(field(ColumnStock), 10, 64)
	if err != nil {
		return CatalogRow{}, fmt.Errorf("stock %q is not an integer", field(ColumnStock))
	}
	return CatalogRow{Name: field(ColumnName), Cost: cost, Price: price, Stock: stock}, nil
}
