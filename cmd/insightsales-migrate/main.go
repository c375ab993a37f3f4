package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/insightsales/insightsales/internal/config"
	"github.com/insightsales/insightsales/internal/migrations"
	"github.com/insightsales/insightsales/internal/seed"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up|down")
	steps := flag.Int("steps", 0, "number of migration steps; 0 means all for up, 1 for down")
	runSeed := flag.Bool("seed", false, "insert the sample sales data set after migrating up")
	seedValue := flag.Int64("seed-value", 1, "random seed for the sample data generator")
	flag.Parse()

	cfg, err := config.LoadFromEnv("insightsales-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database open error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "database ping error: %v\n", err)
		os.Exit(1)
	}

	runner := migrations.NewRunner()
	switch *direction {
	case "up":
		applied, err := runner.Up(ctx, db, *steps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration up failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("applied %d migration(s)\n", applied)
	case "down":
		applied, err := runner.Down(ctx, db, *steps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration down failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("rolled back %d migration(s)\n", applied)
	default:
		fmt.Fprintf(os.Stderr, "invalid direction: %s\n", *direction)
		os.Exit(1)
	}

	if *runSeed && *direction == "up" {
		seeder := &seed.Seeder{DB: db, Seed: *seedValue}
		if err := seeder.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("seeded sample sales data")
	}
}

func openDatabase(cfg config.Config) (*sql.DB, error) {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("INSIGHTSALES_STORE_DSN is required")
		}
		return sql.Open("pgx", cfg.Store.DSN)
	case "duckdb":
		if cfg.Store.Path == "" {
			return nil, fmt.Errorf("INSIGHTSALES_STORE_PATH is required")
		}
		return sql.Open("duckdb", cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
