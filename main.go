package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pedidos/m/internal/api"
	"pedidos/m/internal/config"
	"pedidos/m/internal/database"
	"pedidos/m/internal/migrations"
	"pedidos/m/internal/seed"
	"pedidos/m/internal/service"
)

var importOnly = flag.String("import", "", "import a catalog CSV file and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	svc := service.New(db)

	if *importOnly != "" {
		if _, err := seed.LoadCatalog(ctx, svc.Catalog, *importOnly); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}
	if cfg.CatalogCSV != "" {
		if _, err := seed.LoadCatalog(ctx, svc.Catalog, cfg.CatalogCSV); err != nil {
			log.Printf("catalog seed skipped: %v", err)
		}
	}
	if err := seed.EnsureAdmin(ctx, svc.Staff, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("%v", err)
	}

	handler := api.New(svc, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		log.Printf("order server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("server stopped")
}
