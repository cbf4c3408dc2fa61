package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inventory-search/internal/catalog"
	"inventory-search/internal/config"
	"inventory-search/internal/ingest"
	"inventory-search/internal/scrapers"
	"inventory-search/pkg/logger"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		files stringList
		urls  stringList
		flush bool
	)
	flag.Var(&files, "file", "JSON file with an array of product records (repeatable)")
	flag.Var(&urls, "url", "listing page to scrape for product cards (repeatable)")
	flag.BoolVar(&flush, "flush", false, "remove the current catalog before ingesting")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Env)

	if len(files) == 0 && len(urls) == 0 && !flush {
		fmt.Fprintln(os.Stderr, "usage: ingest [-flush] [-file products.json]... [-url https://host/listing]...")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisDB, log)
	if err != nil {
		log.Error("catalog unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if flush {
		if err := store.Flush(ctx); err != nil {
			log.Error("flush failed", "error", err)
			os.Exit(1)
		}
		log.Info("catalog flushed")
	}

	var sources []ingest.Source
	for _, f := range files {
		sources = append(sources, ingest.FileSource{Path: f})
	}
	if len(urls) > 0 {
		scraper := scrapers.NewListingScraper(log)
		for _, u := range urls {
			sources = append(sources, ingest.ListingSource{URL: u, Scraper: scraper})
		}
	}
	if len(sources) == 0 {
		return
	}

	res, err := ingest.New(store, log).Run(ctx, sources...)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d records, skipped %d, indexed %d\n", res.Loaded, res.Skipped, res.Indexed)
}
