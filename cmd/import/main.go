package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"visionreporter/internal/model"
	"visionreporter/internal/repository/sqlite"
)

// Imports a JSON array of cases, e.g. exported from the previous reports
// collection, into the case store.
func main() {
	input := flag.String("file", "cases.json", "JSON file containing an array of cases")
	dbPath := flag.String("db", "data/cases.db", "Database path")
	flag.Parse()

	fmt.Printf("Importing cases from %s to database %s\n", *input, *dbPath)

	raw, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}

	var cases []model.Case
	if err := json.Unmarshal(raw, &cases); err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}

	if len(cases) == 0 {
		fmt.Println("No cases found to import")
		return
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewCaseRepository(db)
	ctx := context.Background()

	fmt.Printf("Inserting %d cases into database...\n", len(cases))
	inserted, err := repo.Import(ctx, cases)
	if err != nil {
		log.Fatalf("Failed to import cases: %v", err)
	}

	fmt.Printf("✅ Successfully imported %d cases\n", inserted)
	if skipped := len(cases) - inserted; skipped > 0 {
		fmt.Printf("⚠️  Skipped %d cases already present\n", skipped)
	}

	counts, err := repo.CountByStatus(ctx)
	if err == nil {
		fmt.Printf("\n📊 Database Statistics:\n")
		for _, status := range []model.Status{model.StatusNew, model.StatusInProgress, model.StatusResolved} {
			fmt.Printf("   %s: %d cases\n", status, counts[status])
		}
	}
}
