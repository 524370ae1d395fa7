package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultZones is the delivery-zone suggestion list offered when ZONES is unset.
var DefaultZones = []string{"Bernal", "Quilmes", "Avellaneda", "Wilde", "Lanús", "Berazategui", "Florencio Varela"}

// Config holds application configuration values.
type Config struct {
	Secret         string
	DatabaseDSN    string
	HTTPPort       string
	CatalogCSV     string
	AdminEmail     string
	AdminPassword  string
	Zones          []string
	CORSOrigins    []string
	BusinessName   string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getEnv("HTTP_PORT", "8080")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			log.Printf("invalid REQUEST_TIMEOUT value %q, defaulting to %s", raw, timeout)
		} else {
			timeout = d
		}
	}

	zones := splitList(os.Getenv("ZONES"))
	if len(zones) == 0 {
		zones = DefaultZones
	}
	origins := splitList(os.Getenv("CORS_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return Config{
		Secret:         getEnv("SECRET", "dev_secret"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "pedidos.db"),
		HTTPPort:       port,
		CatalogCSV:     os.Getenv("CATALOG_CSV"),
		AdminEmail:     strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		Zones:          zones,
		CORSOrigins:    origins,
		BusinessName:   getEnv("BUSINESS_NAME", "Distribuidora"),
		RequestTimeout: timeout,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
