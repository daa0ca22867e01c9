// Command seed populates the database with demo data or YAML fixtures.
package main

import (
	"flag"
	"log"

	"koinonia/internal/config"
	"koinonia/internal/database"
	"koinonia/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numContent := flag.Int("content", 120, "Number of content items to create")
	maxDays := flag.Int("days", 90, "Spread generated records over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "Apply a YAML fixture file instead of generated data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *fixtures != "" {
		f, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		if err := f.Apply(db); err != nil {
			log.Fatalf("Fixture apply failed: %v", err)
		}
		log.Printf("Applied fixtures from %s", *fixtures)
		return
	}

	err = seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumContent:  *numContent,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. Generated users authenticate with password123.")
}
