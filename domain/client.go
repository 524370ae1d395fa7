package domain

// Client is an entry of the client directory, created the first time a name is ordered for.
type Client struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nombre" json:"nombre"`
}
