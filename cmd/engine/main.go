package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"jobradar-engine/internal/ats"
	"jobradar-engine/internal/ats/greenhouse"
	"jobradar-engine/internal/ats/icims"
	"jobradar-engine/internal/ats/lever"
	"jobradar-engine/internal/ats/taleo"
	"jobradar-engine/internal/ats/util"
	"jobradar-engine/internal/ats/workable"
	"jobradar-engine/internal/ats/workday"
	"jobradar-engine/internal/config"
	"jobradar-engine/internal/crawl"
	"jobradar-engine/internal/resolve"
	"jobradar-engine/internal/store"
)

func main() {
	dataDir := os.Getenv("JOBRADAR_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock data dir: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance holds %s", dataDir)
	}
	defer lock.Unlock()

	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", cfgPath, err)
	}
	cfg, err = config.NormalizeAndValidate(cfg)
	if err != nil {
		log.Fatalf("config invalid (%s): %v", cfgPath, err)
	}

	db, err := store.Open(filepath.Join(dataDir, cfg.App.DBFile))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seed, err := config.LoadEmployers(filepath.Join(dataDir, cfg.EmployersFile)); err != nil {
		log.Fatalf("employer seed: %v", err)
	} else if len(seed) > 0 {
		added, err := store.SeedEmployers(ctx, db.Pool, seed)
		if err != nil {
			log.Fatalf("employer seed: %v", err)
		}
		log.Printf("[seed] employers file=%s listed=%d added=%d", cfg.EmployersFile, len(seed), added)
	}

	runner, err := buildRunner(cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	runCrawl := func() {
		employers, err := store.ListEmployers(ctx, db.Pool)
		if err != nil {
			log.Printf("[run] list employers: %v", err)
			return
		}
		if len(employers) == 0 {
			log.Printf("[run] no employers registered; nothing to crawl")
			return
		}
		if _, err := runner.Run(ctx, employers); err != nil {
			log.Printf("[run] aborted: %v", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Crawl.Schedule, runCrawl); err != nil {
		log.Fatalf("bad crawl schedule %q: %v", cfg.Crawl.Schedule, err)
	}
	c.Start()
	log.Printf("engine started (data=%s schedule=%q)", dataDir, cfg.Crawl.Schedule)

	// First crawl immediately; the cron tick only covers steady state.
	runCrawl()

	<-ctx.Done()
	log.Printf("shutting down")
	<-c.Stop().Done()
}

func buildRunner(cfg config.Config, db *store.DB) (*crawl.Runner, error) {
	limiter := util.NewHostLimiter(cfg.Crawl.HostRatePerSec, cfg.Crawl.HostBurst)
	client := ats.NewClient(cfg.HTTPTimeout(), limiter, cfg.Crawl.RetryAttempts, cfg.RetryBackoff())

	fetchers, err := crawl.NewFetcherSet(
		greenhouse.New(client),
		lever.New(client),
		workday.New(client, cfg.Crawl.PageConcurrency),
		taleo.New(client),
		workable.New(client),
		icims.New(client),
	)
	if err != nil {
		return nil, err
	}

	return &crawl.Runner{
		Resolver:            resolve.New(client),
		Fetchers:            fetchers,
		DB:                  db,
		EmployerConcurrency: cfg.Crawl.EmployerConcurrency,
		EmployerTimeout:     cfg.EmployerTimeout(),
	}, nil
}
