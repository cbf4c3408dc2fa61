package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inventory-search/internal/catalog"
	"inventory-search/internal/models"
	"inventory-search/internal/scrapers"
)

type recordingIndexer struct {
	batches [][]models.Product
	err     error
}

func (r *recordingIndexer) Index(_ context.Context, products []models.Product) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, append([]models.Product(nil), products...))
	return nil
}

func (r *recordingIndexer) all() []models.Product {
	var out []models.Product
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

type staticSource struct {
	name    string
	records []Record
	err     error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Load(context.Context) ([]Record, error) {
	return s.records, s.err
}

func ptr[T any](v T) *T { return &v }

const sampleJSON = `[
  {"name": "Wireless Headphones", "description": "noise cancelling", "price": 199.99, "category": "electronics", "lat": 40.7128, "lon": -74.0060},
  {"id": "tee-1", "name": "Cotton T-Shirt", "description": "plain white", "price": 15, "category": "Clothing", "lat": 40.73, "lon": -73.99, "is_available": false, "rating": 4.1},
  {"name": "", "price": 5, "category": "books", "lat": 1, "lon": 1}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestPrepare_ValidatesAndConverts(t *testing.T) {
	in := New(&recordingIndexer{}, nil)

	records := []Record{
		{Name: "Lamp", Price: 20, Category: " Furniture ", Lat: 10, Lon: 10},
		{ID: "keep-me", Name: "Book", Price: 0, Category: "books", Lat: 0, Lon: 0, IsAvailable: ptr(false)},
		{Name: "Negative", Price: -1, Category: "books"},
		{Name: "Toy", Price: 1, Category: "toys"},
		{Name: "Polar", Price: 1, Category: "books", Lat: 89},
		{Name: "Bad lon", Price: 1, Category: "books", Lon: 181},
		{Name: "NaN", Price: 1, Category: "books", Lat: math.NaN()},
		{Name: "Overrated", Price: 1, Category: "books", Rating: ptr(7.0)},
		{Name: "   ", Price: 1, Category: "books"},
	}

	products, skipped := in.Prepare(records)
	if skipped != 7 || len(products) != 2 {
		t.Fatalf("expected 2 valid and 7 skipped, got %d and %d", len(products), skipped)
	}

	lamp := products[0]
	if _, err := uuid.Parse(lamp.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q", lamp.ID)
	}
	if lamp.Category != "furniture" || !lamp.IsAvailable {
		t.Fatalf("unexpected lamp %+v", lamp)
	}

	book := products[1]
	if book.ID != "keep-me" || book.IsAvailable {
		t.Fatalf("unexpected book %+v", book)
	}
}

func TestRun_FileSource(t *testing.T) {
	idx := &recordingIndexer{}
	in := New(idx, nil)

	res, err := in.Run(context.Background(), FileSource{Path: writeFile(t, sampleJSON)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Loaded != 3 || res.Skipped != 1 || res.Indexed != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	got := idx.all()
	if got[1].ID != "tee-1" || got[1].Category != "clothing" || got[1].IsAvailable {
		t.Fatalf("unexpected product %+v", got[1])
	}
	if got[1].Rating == nil || *got[1].Rating != 4.1 {
		t.Fatalf("expected rating to carry over, got %v", got[1].Rating)
	}
}

func TestRun_MissingFile(t *testing.T) {
	idx := &recordingIndexer{}
	in := New(idx, nil)

	_, err := in.Run(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "nope.json")})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(idx.batches) != 0 {
		t.Fatalf("nothing should be indexed when a source fails")
	}
}

func TestRun_MalformedFile(t *testing.T) {
	in := New(&recordingIndexer{}, nil)

	_, err := in.Run(context.Background(), FileSource{Path: writeFile(t, `{"name":`)})
	if err == nil || !strings.Contains(err.Error(), "decode records") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestRun_FailingSourceAbortsRun(t *testing.T) {
	idx := &recordingIndexer{}
	in := New(idx, nil)

	_, err := in.Run(context.Background(),
		staticSource{name: "ok", records: []Record{{Name: "A", Category: "books"}}},
		staticSource{name: "broken", err: errors.New("boom")},
	)
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected error naming the failing source, got %v", err)
	}
	if len(idx.batches) != 0 {
		t.Fatalf("nothing should be indexed when a source fails")
	}
}

func TestRun_IndexerFailure(t *testing.T) {
	in := New(&recordingIndexer{err: errors.New("redis down")}, nil)

	_, err := in.Run(context.Background(),
		staticSource{name: "ok", records: []Record{{Name: "A", Category: "books"}}})
	if err == nil {
		t.Fatalf("expected index error")
	}
}

func TestRun_BatchesLargeLoads(t *testing.T) {
	idx := &recordingIndexer{}
	in := New(idx, nil)

	records := make([]Record, batchSize+3)
	for i := range records {
		records[i] = Record{ID: fmt.Sprintf("p-%d", i), Name: "Item", Category: "books"}
	}

	res, err := in.Run(context.Background(), staticSource{name: "bulk", records: records})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(idx.batches) != 2 || len(idx.batches[1]) != 3 || res.Indexed != batchSize+3 {
		t.Fatalf("unexpected batching: %d batches, result %+v", len(idx.batches), res)
	}
}

func TestRun_ListingSourceIntoCatalog(t *testing.T) {
	page := `<html><body>
<div data-product-id="lamp-1" data-lat="37.7760" data-lon="-122.4180" data-available="true">
  <span class="name">Desk lamp</span><span class="price">$45</span><span class="category">furniture</span>
</div>
<div data-product-id="bad-1" data-lat="north" data-lon="-122.41">
  <span class="name">Broken coords</span><span class="price">$5</span><span class="category">books</span>
</div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := catalog.NewStore(client, nil)

	scraper := scrapers.NewListingScraper(nil)
	scraper.Delay = 0

	in := New(store, nil)
	res, err := in.Run(context.Background(),
		ListingSource{URL: srv.URL, Scraper: scraper},
		FileSource{Path: writeFile(t, sampleJSON)},
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Loaded != 5 || res.Skipped != 2 || res.Indexed != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	p, err := store.Get(context.Background(), "lamp-1")
	if err != nil || p == nil || p.Price != 45 || !p.IsAvailable {
		t.Fatalf("expected scraped lamp in catalog, got %+v (%v)", p, err)
	}
	if n, _ := store.Count(context.Background()); n != 3 {
		t.Fatalf("expected 3 indexed products, got %d", n)
	}
}

func TestRecordFromCard_UnsetAvailabilityDefaultsToAvailable(t *testing.T) {
	in := New(&recordingIndexer{}, nil)

	records := []Record{
		RecordFromCard(scrapers.Card{ID: "silent", Name: "Lamp", Category: "furniture"}),
		RecordFromCard(scrapers.Card{ID: "sold-out", Name: "Chair", Category: "furniture", Available: ptr(false)}),
	}
	products, skipped := in.Prepare(records)
	if skipped != 0 || len(products) != 2 {
		t.Fatalf("expected 2 valid records, got %d (skipped %d)", len(products), skipped)
	}
	if !products[0].IsAvailable {
		t.Fatalf("card without availability must be listed as available")
	}
	if products[1].IsAvailable {
		t.Fatalf("card marked unavailable must stay unavailable")
	}
}

func TestReadRecords_LenientCreatedAt(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(`[
		{"name":"Lamp","price":20,"category":"furniture","lat":1,"lon":2,"created_at":"2024-01-15T10:30:00"},
		{"name":"Shade","price":5,"category":"furniture","lat":1,"lon":2,"created_at":"soon"},
		{"name":"Chair","price":50,"category":"furniture","lat":1,"lon":2}
	]`))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	products, skipped := New(&recordingIndexer{}, nil).Prepare(records)
	if skipped != 0 || len(products) != 3 {
		t.Fatalf("expected 3 valid records, got %d (skipped %d)", len(products), skipped)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if products[0].CreatedAt == nil || !products[0].CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, products[0].CreatedAt)
	}
	if products[1].CreatedAt != nil || products[2].CreatedAt != nil {
		t.Fatalf("unreadable or missing created_at must be unset")
	}
}
