package domain

// DateLayout is the calendar-day format stored in pedidos.fecha.
const DateLayout = "2006-01-02"

// Order is one order line: a single product and quantity for a client.
type Order struct {
	ID       int64   `db:"id" json:"id"`
	Client   string  `db:"cliente" json:"cliente"`
	Product  string  `db:"producto" json:"producto"`
	Quantity int64   `db:"cantidad" json:"cantidad"`
	UnitCost float64 `db:"costo" json:"costo"`
	Zone     string  `db:"zona" json:"zona"`
	Date     string  `db:"fecha" json:"fecha"`
}

// Total is the line amount charged. It is never persisted.
func (o Order) Total() float64 {
	return float64(o.Quantity) * o.UnitCost
}
