// Package ingest loads product records from files and listing pages,
// validates them and writes them to the catalog.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"inventory-search/internal/models"
	"inventory-search/internal/scrapers"
)

// Record is one product as it arrives from a source, before validation.
type Record struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description"`
	Price       float64          `json:"price" validate:"gte=0"`
	Category    string           `json:"category" validate:"required,oneof=electronics clothing books furniture"`
	Lat         float64          `json:"lat" validate:"gte=-85.05112878,lte=85.05112878"`
	Lon         float64          `json:"lon" validate:"gte=-180,lte=180"`
	Rating      *float64         `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	CreatedAt   models.Timestamp `json:"created_at"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

// RecordFromCard keeps what the card left unsaid unset.
func RecordFromCard(c scrapers.Card) Record {
	return Record{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Category:    c.Category,
		Lat:         c.Lat,
		Lon:         c.Lon,
		Rating:      c.Rating,
		CreatedAt:   models.NewTimestamp(c.CreatedAt),
		IsAvailable: c.Available,
	}
}

// Product converts a validated record. Records without an id get a random
// one and records without availability are listed as available.
func (r Record) Product() models.Product {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.New().String()
	}

	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}

	return models.Product{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		Price:       r.Price,
		Category:    strings.ToLower(strings.TrimSpace(r.Category)),
		Lat:         r.Lat,
		Lon:         r.Lon,
		Description: strings.TrimSpace(r.Description),
		CreatedAt:   r.CreatedAt.Ptr(),
		Rating:      r.Rating,
		IsAvailable: available,
	}
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ReadRecords decodes a JSON array of records.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func ReadRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
