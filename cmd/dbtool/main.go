package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"route-dispatch-service/internal/adapters/repositories"
	"route-dispatch-service/internal/platform/db"
)

// dbtool initializes the schema and seeds reference data (vehicle types
// and workers) for local development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "data/seeds/reference.json"
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := initAndSeed(database, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(database *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding reference data...")
	if err := repositories.SeedFromJSON(database, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
