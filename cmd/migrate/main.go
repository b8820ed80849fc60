package main

import (
	"log"
	"os"

	"sales-assistant-be/internal/model"
	"sales-assistant-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. gen_random_uuid() lives in pgcrypto on older Postgres versions
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to enable pgcrypto: %v. Continuing...", err)
	}

	// 4. AutoMigrate
	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&model.CatalogProduct{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Case-insensitive name index
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_catalog_products_name_lower ON catalog_products (LOWER(name));`).Error; err != nil {
		log.Printf("Warn: Failed to create name index: %v", err)
	}

	log.Println("✅ Migration complete")
}
