package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver to every connection it opens.
var pragmas = []string{
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Connect opens the order store at dsn. Any SQLite DSN works, including
// "file:name?mode=memory&cache=shared" for an in-memory store.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	// A single connection serializes writers; every multi-statement operation runs on its own tx.
	db.SetMaxOpenConns(1)
	return db, nil
}

func withPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}
