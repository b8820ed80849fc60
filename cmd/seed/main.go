package main

import (
	"context"
	"flag"
	"log"

	"sales-assistant-be/internal/config"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/repository/unitofwork"
	"sales-assistant-be/internal/service"
	"sales-assistant-be/pkg/database"
)

// Imports the fallback catalog JSON into catalog_products. Rows are upserted
// by URL, so running it twice is safe.
func main() {
	cfg := config.Load()

	path := flag.String("file", cfg.Catalog.LocalPath, "catalog JSON export to import")
	prune := flag.Bool("prune", false, "deactivate products missing from the export")
	flag.Parse()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	sync := service.NewCatalogSyncService(
		unitofwork.NewRepositoryFactory(db),
		logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production"),
	)

	res, err := sync.ImportFile(context.Background(), *path, *prune)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Printf("✅ Imported %d products from %s (%d skipped, %d deactivated)", res.Imported, *path, res.Skipped, res.Deactivated)
}
