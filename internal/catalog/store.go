// Package catalog stores products in Redis and answers radius searches over
// them.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"inventory-search/internal/models"
	"inventory-search/pkg/logger"
)

const (
	geoKey           = "catalog:geo"
	productKeyPrefix = "catalog:product:"
)

// Redis cannot index points closer to the poles than this.
const maxGeoLatitude = 85.05112878

var ErrUnavailable = errors.New("catalog store not available")

type Store struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisStore connects to redisURL, selects db and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string, db int, log *logger.Logger) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DB = db

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info("redis connected", "db", db)
	return NewStore(client, log), nil
}

func NewStore(client *redis.Client, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{client: client, log: log}
}

func (s *Store) IsAvailable() bool {
	return s != nil && s.client != nil
}

func (s *Store) Close() error {
	if !s.IsAvailable() {
		return nil
	}
	return s.client.Close()
}

func productKey(id string) string {
	return productKeyPrefix + id
}

// Index adds or replaces products. Each product is written to the geo index
// and as a JSON document in one pipeline.
func (s *Store) Index(ctx context.Context, products []models.Product) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	if len(products) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("index product %q: missing id", p.Name)
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", p.ID, err)
		}
		pipe.GeoAdd(ctx, geoKey, &redis.GeoLocation{Name: p.ID, Longitude: p.Lon, Latitude: p.Lat})
		pipe.Set(ctx, productKey(p.ID), data, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index products: %w", err)
	}

	s.log.Info("catalog indexed", "products", len(products))
	return nil
}

// Get returns nil, nil when the product does not exist.
func (s *Store) Get(ctx context.Context, id string) (*models.Product, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}

	val, err := s.client.Get(ctx, productKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var p models.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if !s.IsAvailable() {
		return 0, ErrUnavailable
	}
	return s.client.ZCard(ctx, geoKey).Result()
}

// Flush removes every catalog key.
func (s *Store) Flush(ctx context.Context) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}

	keys := []string{geoKey}
	iter := s.client.Scan(ctx, 0, productKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan catalog keys: %w", err)
	}

	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) Stats(ctx context.Context) map[string]interface{} {
	if !s.IsAvailable() {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	count, err := s.Count(ctx)
	if err != nil {
		return map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}
	return map[string]interface{}{
		"status":   "connected",
		"products": count,
	}
}

// Search runs req against the catalog: a radius lookup around the origin,
// then the filters, ordering and result cap of the request.
func (s *Store) Search(ctx context.Context, req models.SearchRequest) ([]models.Product, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}

	lat := req.Lat
	if lat > maxGeoLatitude {
		lat = maxGeoLatitude
	} else if lat < -maxGeoLatitude {
		lat = -maxGeoLatitude
	}

	locations, err := s.client.GeoRadius(ctx, geoKey, req.Lon, lat, &redis.GeoRadiusQuery{
		Radius:   req.RadiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("radius lookup: %w", err)
	}
	if len(locations) == 0 {
		return []models.Product{}, nil
	}

	keys := make([]string, len(locations))
	for i, loc := range locations {
		keys[i] = productKey(loc.Name)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	candidates := make([]candidate, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// geo entry without a document
			continue
		}
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.log.Warn("skipping undecodable product", "id", locations[i].Name, "error", err)
			continue
		}
		candidates = append(candidates, candidate{product: p, distanceKm: locations[i].Dist})
	}

	results := rank(candidates, req)
	s.log.Debug("catalog search",
		"query", req.Query,
		"in_radius", len(locations),
		"returned", len(results),
	)
	return results, nil
}
