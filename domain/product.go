package domain

type Product struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"nombre" json:"nombre"`
	Cost      float64 `db:"costo" json:"costo"`
	SalePrice float64 `db:"precio_venta" json:"precio_venta"`
	Stock     int64   `db:"stock" json:"stock"`
}
