// Command migrate applies database migrations with goose.
//
// Usage:
//
//	migrate [-dir migrations] <up|down|status|version>
//
// Requires DATABASE_DSN (or CONFIG_PATH pointing at a config with one).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/glossarch/stratigraphy/internal/config"
)

func main() {
	dirFlag := flag.String("dir", "migrations", "directory with migration files")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dir migrations] <up|down|status|version>")
		os.Exit(2)
	}
	command := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, *dirFlag)
	case "down":
		err = goose.DownContext(ctx, db, *dirFlag)
	case "status":
		err = goose.StatusContext(ctx, db, *dirFlag)
	case "version":
		err = goose.VersionContext(ctx, db, *dirFlag)
	default:
		log.Fatalf("unknown command %q", command)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}
