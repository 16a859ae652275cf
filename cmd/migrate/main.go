package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"estate_bot/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/bot.db"), "path to the sqlite key-value database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  up          Migrate to the latest version")
		fmt.Fprintln(os.Stderr, "  up-one      Migrate one version up")
		fmt.Fprintln(os.Stderr, "  down        Roll back one version")
		fmt.Fprintln(os.Stderr, "  status      Show migration status")
		fmt.Fprintln(os.Stderr, "  version     Show current version")
		fmt.Fprintln(os.Stderr, "  reset       Roll back all migrations")
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	p, err := migrations.NewProvider(db)
	if err != nil {
		_ = db.Close()
		log.Fatalf("%v", err)
	}
	defer func() { _ = p.Close() }()

	ctx := context.Background()
	cmd := args[0]
	switch cmd {
	case "up":
		err = run(p.Up(ctx))
	case "up-one":
		err = runOne(p.UpByOne(ctx))
	case "down":
		err = runOne(p.Down(ctx))
	case "reset":
		err = run(p.DownTo(ctx, 0))
	case "status":
		var statuses []*goose.MigrationStatus
		if statuses, err = p.Status(ctx); err == nil {
			for _, s := range statuses {
				applied := "pending"
				if s.State == goose.StateApplied {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%-20s %s\n", applied, s.Source.Path)
			}
		}
	case "version":
		var v int64
		if v, err = p.GetDBVersion(ctx); err == nil {
			fmt.Printf("version %d\n", v)
		}
	default:
		log.Fatalf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func run(results []*goose.MigrationResult, err error) error {
	for _, r := range results {
		fmt.Println(r)
	}
	return err
}

func runOne(result *goose.MigrationResult, err error) error {
	if result != nil {
		fmt.Println(result)
	}
	return err
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
