package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"inventory-search/internal/models"
	"inventory-search/internal/scrapers"
	"inventory-search/pkg/logger"
)

const batchSize = 500

// Source yields raw records.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Record, error)
}

// Indexer is the catalog side of an ingestion run.
type Indexer interface {
	Index(ctx context.Context, products []models.Product) error
}

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadRecordsFile(s.Path)
}

type ListingSource struct {
	URL     string
	Scraper *scrapers.ListingScraper
}

func (s ListingSource) Name() string { return "listing:" + s.URL }

func (s ListingSource) Load(ctx context.Context) ([]Record, error) {
	cards, err := s.Scraper.Scrape(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(cards))
	for i, c := range cards {
		records[i] = RecordFromCard(c)
	}
	return records, nil
}

// Result counts what happened to the records of one run.
type Result struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Indexed int `json:"indexed"`
}

type Ingester struct {
	index    Indexer
	validate *validator.Validate
	log      *logger.Logger
}

func New(index Indexer, log *logger.Logger) *Ingester {
	if log == nil {
		log = logger.Nop()
	}
	return &Ingester{
		index:    index,
		validate: newValidator(),
		log:      log,
	}
}

// Run loads all sources concurrently, then validates and indexes their
// records. A failing source aborts the run before anything is indexed.
func (in *Ingester) Run(ctx context.Context, sources ...Source) (Result, error) {
	loaded := make([][]Record, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			records, err := src.Load(gctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", src.Name(), err)
			}
			in.log.Info("source loaded", "source", src.Name(), "records", len(records))
			loaded[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []Record
	for _, records := range loaded {
		all = append(all, records...)
	}

	products, skipped := in.Prepare(all)
	res := Result{Loaded: len(all), Skipped: skipped}

	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		if err := in.index.Index(ctx, products[start:end]); err != nil {
			return res, fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
		res.Indexed = end
	}

	in.log.Info("ingestion finished",
		"loaded", res.Loaded,
		"skipped", res.Skipped,
		"indexed", res.Indexed,
	)
	return res, nil
}

// Prepare validates records and converts the valid ones. Invalid records are
// logged and counted as skipped.
func (in *Ingester) Prepare(records []Record) ([]models.Product, int) {
	products := make([]models.Product, 0, len(records))
	skipped := 0

	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Category = strings.ToLower(strings.TrimSpace(rec.Category))

		if err := in.validate.Struct(rec); err != nil {
			skipped++
			in.log.Warn("skipping invalid record", "index", i, "name", rec.Name, "error", err)
			continue
		}
		products = append(products, rec.Product())
	}
	return products, skipped
}
