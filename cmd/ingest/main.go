// Command ingest runs the offline ingestion pipeline: it parses external
// linguistic datasets (Wiktionary Kaikki dumps, CLLD CSV wordlists), resolves
// every entry against the stored Lexical State Records, and applies the
// resulting create/merge/flag decisions.
//
// Flags:
//
//	--phase    comma-separated list of phases to run (default: all)
//	--dry-run  parse and resolve without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/glossarch/stratigraphy/internal/adapter/postgres"
	lsrrepo "github.com/glossarch/stratigraphy/internal/adapter/postgres/lsr"
	"github.com/glossarch/stratigraphy/internal/app"
	"github.com/glossarch/stratigraphy/internal/config"
	"github.com/glossarch/stratigraphy/internal/resolver"
	"github.com/glossarch/stratigraphy/internal/service/ingest"
)

// Compile-time interface assertions.
var (
	_ ingest.LSRRepo  = (*lsrrepo.Repo)(nil)
	_ ingest.TxRunner = (*postgres.TxManager)(nil)
)

func main() {
	phaseFlag := flag.String("phase", "", "comma-separated phases to run (default: all)")
	dryRunFlag := flag.Bool("dry-run", false, "parse and resolve without writing to DB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ingestCfg := ingest.Config{
		WiktionaryPath: cfg.Ingest.WiktionaryPath,
		CLLDPath:       cfg.Ingest.CLLDPath,
		CLLDDataset:    cfg.Ingest.CLLDDataset,
		Languages:      cfg.Ingest.Languages,
		BatchSize:      cfg.Ingest.BatchSize,
		MaxEntries:     cfg.Ingest.MaxEntries,
		DryRun:         cfg.Ingest.DryRun,
	}
	// CLI flags override config.
	if *dryRunFlag {
		ingestCfg.DryRun = true
	}

	var phases []string
	if *phaseFlag != "" {
		phases = strings.Split(*phaseFlag, ",")
		for i := range phases {
			phases[i] = strings.TrimSpace(phases[i])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	repo := lsrrepo.New(pool)

	res := resolver.New(resolver.Config{
		AutoMergeThreshold:     cfg.Resolver.AutoMergeThreshold,
		MergeWithFlagThreshold: cfg.Resolver.MergeWithFlagThreshold,
		ReviewThreshold:        cfg.Resolver.ReviewThreshold,
		Weights:                cfg.Resolver.Weights,
	})

	pipeline := ingest.NewPipeline(logger, repo, txm, res, ingestCfg)
	if err := pipeline.Run(ctx, phases); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with errors")
		os.Exit(1)
	}

	logger.Info("pipeline completed successfully")
}
