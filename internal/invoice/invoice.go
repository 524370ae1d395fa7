// Package invoice renders a client's daily order lines as a PDF invoice.
package invoice

import (
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"pedidos/m/domain"
)

var ErrEmptyInvoice = errors.New("invoice has no lines")

// Document is everything printed on one invoice.
type Document struct {
	Business  string
	Statement domain.Statement
}

// Filename is the attachment name offered for doc.
func (doc Document) Filename() string {
	return fmt.Sprintf("factura-%s-%s.pdf", doc.Statement.Client, doc.Statement.Date)
}

var (
	bold      = props.Text{Size: 9, Style: fontstyle.Bold}
	boldRight = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	plain     = props.Text{Size: 9}
	right     = props.Text{Size: 9, Align: align.Right}
)

// Render builds the PDF bytes for doc. Line totals and the grand total are
// computed in decimal so the printed figures add up.
func Render(doc Document) ([]byte, error) {
	st := doc.Statement
	if len(st.Lines) == 0 {
		return nil, ErrEmptyInvoice
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, doc.Business, props.Text{Size: 16, Style: fontstyle.Bold}),
		row.New(6).Add(
			text.NewCol(8, "Cliente: "+st.Client, plain),
			text.NewCol(4, "Fecha: "+st.Date, right),
		),
		line.NewRow(4),
		row.New(7).Add(
			text.NewCol(4, "Producto", bold),
			text.NewCol(2, "Zona", bold),
			text.NewCol(2, "Cantidad", boldRight),
			text.NewCol(2, "Precio", boldRight),
			text.NewCol(2, "Subtotal", boldRight),
		),
	)

	lines, total := buildLines(st.Lines)
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(6).Add(
			text.NewCol(4, l.Product, plain),
			text.NewCol(2, l.Zone, plain),
			text.NewCol(2, l.Quantity, right),
			text.NewCol(2, l.UnitPrice, right),
			text.NewCol(2, l.Subtotal, right),
		))
	}
	m.AddRows(rows...)

	m.AddRows(
		line.NewRow(4),
		row.New(8).Add(
			text.NewCol(10, "Total", boldRight),
			text.NewCol(2, money(total), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
	)

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return pdf.GetBytes(), nil
}

// printedLine is one order line formatted for the invoice table. Lines of the
// same day may have been edited into different zones, so the zone is per line.
type printedLine struct {
	Product   string
	Zone      string
	Quantity  string
	UnitPrice string
	Subtotal  string
}

func buildLines(orders []domain.Order) ([]printedLine, decimal.Decimal) {
	total := decimal.Zero
	lines := make([]printedLine, 0, len(orders))
	for _, o := range orders {
		unit := decimal.NewFromFloat(o.UnitCost)
		sub := unit.Mul(decimal.NewFromInt(o.Quantity))
		total = total.Add(sub)
		lines = append(lines, printedLine{
			Product:   o.Product,
			Zone:      o.Zone,
			Quantity:  fmt.Sprintf("%d", o.Quantity),
			UnitPrice: money(unit),
			Subtotal:  money(sub),
		})
	}
	return lines, total
}

func money(d decimal.Decimal) string {
	return "$ " + d.StringFixed(2)
}
