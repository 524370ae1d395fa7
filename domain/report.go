package domain

type DailyTotal struct {
	Date  string  `db:"fecha" json:"fecha"`
	Total float64 `db:"total" json:"total"`
}

type ProductQuantity struct {
	Product  string `db:"producto" json:"producto"`
	Quantity int64  `db:"cantidad" json:"cantidad"`
}

// Statement groups a client's order lines of one day.
type Statement struct {
	Client string  `json:"cliente"`
	Date   string  `json:"fecha"`
	Lines  []Order `json:"lineas"`
	Total  float64 `json:"total"`
}
