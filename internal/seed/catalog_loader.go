package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"pedidos/m/internal/service"
)

// LoadCatalog applies a catalog CSV file at startup. The whole file is applied
// or none of it is.
func LoadCatalog(ctx context.Context, catalog *service.CatalogService, csvPath string) (service.ImportResult, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return service.ImportResult{}, fmt.Errorf("open catalog %s: %w", csvPath, err)
	}
	defer file.Close()

	res, err := catalog.ImportCSV(ctx, file)
	if err != nil {
		return service.ImportResult{}, fmt.Errorf("import catalog %s: %w", csvPath, err)
	}
	log.Printf("seeded product catalog from %s: %d updated, %d created", csvPath, res.Updated, res.Created)
	return res, nil
}

// EnsureAdmin creates the bootstrap staff account when both credentials are configured.
func EnsureAdmin(ctx context.Context, staff *service.StaffService, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	created, err := staff.EnsureUser(ctx, email, password, service.RoleAdmin)
	if err != nil {
		return fmt.Errorf("ensure admin %s: %w", email, err)
	}
	if created {
		log.Printf("created admin account %s", email)
	}
	return nil
}
