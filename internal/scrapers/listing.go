// Package scrapers extracts catalog products from HTML listing pages.
package scrapers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"inventory-search/internal/models"
	"inventory-search/pkg/logger"
	"inventory-search/pkg/utils"
)

const (
	cardSelector = "[data-product-id]"
	nextSelector = "a[rel=next]"
	userAgent    = "Mozilla/5.0 (compatible; inventory-search-ingest/1.0)"
)

// Card is one product card as read from a listing page. Optional fields the
// card does not carry stay nil.
type Card struct {
	ID          string
	Name        string
	Price       float64
	Category    string
	Description string
	Lat         float64
	Lon         float64
	Rating      *float64
	CreatedAt   *time.Time
	Available   *bool
}

// ListingScraper reads product cards from listing pages, following rel=next
// links on the same host up to MaxPages pages.
type ListingScraper struct {
	Delay    time.Duration
	MaxPages int
	log      *logger.Logger
}

func NewListingScraper(log *logger.Logger) *ListingScraper {
	if log == nil {
		log = logger.Nop()
	}
	return &ListingScraper{
		Delay:    500 * time.Millisecond,
		MaxPages: 10,
		log:      log,
	}
}

func (s *ListingScraper) newCollector(host string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(userAgent),
	)
	if s.MaxPages > 0 {
		c.MaxDepth = s.MaxPages
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.Delay,
	})

	return c
}

// Scrape visits pageURL and returns every named product card found.
func (s *ListingScraper) Scrape(ctx context.Context, pageURL string) ([]Card, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid listing url %q", pageURL)
	}

	c := s.newCollector(u.Hostname())

	var (
		mu       sync.Mutex
		cards    = make([]Card, 0)
		visitErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML(cardSelector, func(e *colly.HTMLElement) {
		card := parseCard(e)
		if card.Name == "" {
			return
		}
		mu.Lock()
		cards = append(cards, card)
		mu.Unlock()
	})

	c.OnHTML(nextSelector, func(e *colly.HTMLElement) {
		next := e.Request.AbsoluteURL(e.Attr("href"))
		if next != "" {
			_ = e.Request.Visit(next)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		s.log.Debug("listing page fetched", "url", r.Request.URL.String(), "status", r.StatusCode)
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if visitErr == nil {
			visitErr = fmt.Errorf("fetch %s: %w", r.Request.URL, err)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", pageURL, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if visitErr != nil && len(cards) == 0 {
		return nil, visitErr
	}
	if visitErr != nil {
		s.log.Warn("listing partially scraped", "url", pageURL, "error", visitErr)
	}

	s.log.Info("listing scraped", "url", pageURL, "cards", len(cards))
	return cards, nil
}

func parseCard(e *colly.HTMLElement) Card {
	card := Card{
		ID:          strings.TrimSpace(e.Attr("data-product-id")),
		Name:        cleanText(e.ChildText(".name")),
		Price:       utils.ParsePrice(e.ChildText(".price")),
		Category:    strings.ToLower(cleanText(e.ChildText(".category"))),
		Description: cleanText(e.ChildText(".description")),
		Lat:         utils.ParseCoordinate(e.Attr("data-lat")),
		Lon:         utils.ParseCoordinate(e.Attr("data-lon")),
	}

	if available, err := strconv.ParseBool(strings.TrimSpace(e.Attr("data-available"))); err == nil {
		card.Available = &available
	}

	if rating, ok := utils.ParseRating(e.ChildText(".rating")); ok {
		card.Rating = &rating
	}

	if created, ok := models.ParseTimestamp(e.ChildAttr("time", "datetime")); ok {
		card.CreatedAt = &created
	}

	return card
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
