package client

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-search/internal/models"
)

func TestSearch_PostsRequestAndDecodesOrderedList(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"a","name":"Lamp","price":20,"category":"furniture","lat":1,"lon":2,"description":"desk lamp","rating":4.5,"created_at":"2024-03-01T10:00:00Z","is_available":true},
			{"id":"b","name":"Shade","price":5,"category":"furniture","lat":3,"lon":4,"description":"lamp shade"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	req := models.SearchRequest{Query: "lamp", Lat: 37, Lon: -122, RadiusKm: 25, MaxResults: 20, SortBy: models.SortRelevance}

	products, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/search/" {
		t.Fatalf("expected POST /search/, got %s %s", gotMethod, gotPath)
	}
	if gotBody["query"] != "lamp" || gotBody["max_results"] != float64(20) {
		t.Fatalf("unexpected body %v", gotBody)
	}
	if _, ok := gotBody["min_price"]; ok {
		t.Fatalf("min_price must be omitted when unset")
	}

	if len(products) != 2 || products[0].ID != "a" || products[1].ID != "b" {
		t.Fatalf("expected [a b], got %+v", products)
	}
	if products[0].Rating == nil || *products[0].Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", products[0].Rating)
	}
	if products[0].CreatedAt == nil || products[0].CreatedAt.Year() != 2024 {
		t.Fatalf("expected created_at to be decoded, got %v", products[0].CreatedAt)
	}
	if products[1].Rating != nil || products[1].CreatedAt != nil {
		t.Fatalf("absent optionals must stay nil, got %+v", products[1])
	}
	if products[1].IsAvailable {
		t.Fatalf("absent is_available must decode as false")
	}
}

func TestSearch_Non2xxIsRequestFailure(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", status)
		}))

		_, err := New(srv.URL, time.Second).Search(context.Background(), models.SearchRequest{})
		srv.Close()

		if !errors.Is(err, ErrRequestFailed) {
			t.Fatalf("status %d: expected ErrRequestFailed, got %v", status, err)
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.StatusCode != status {
			t.Fatalf("status %d: expected RequestError with status, got %v", status, err)
		}
	}
}

func TestSearch_MalformedPayloadIsRequestFailure(t *testing.T) {
	bodies := []string{`{"results": []}`, `not json`, `null`, `[{"id": 5}]`}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		_, err := New(srv.URL, time.Second).Search(context.Background(), models.SearchRequest{})
		srv.Close()

		if !errors.Is(err, ErrRequestFailed) {
			t.Fatalf("body %q: expected ErrRequestFailed, got %v", body, err)
		}
	}
}

func TestSearch_EmptyListIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	products, err := New(srv.URL, time.Second).Search(context.Background(), models.SearchRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", products)
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Search(context.Background(), models.SearchRequest{})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestSearch_NaNOriginFailsToEncode(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Search(context.Background(), models.SearchRequest{Lat: math.NaN()})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if called {
		t.Fatalf("request with NaN origin must not reach the service")
	}
}

func TestSearch_ZonelessTimestampIsStillSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"a","name":"Lamp","price":20,"category":"furniture","lat":1,"lon":2,"description":"desk lamp","created_at":"2024-01-15T10:30:00","is_available":true},
			{"id":"b","name":"Shade","price":5,"category":"furniture","lat":3,"lon":4,"description":"lamp shade","created_at":"last tuesday"}
		]`))
	}))
	defer srv.Close()

	products, err := New(srv.URL, time.Second).Search(context.Background(), models.SearchRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if products[0].CreatedAt == nil || !products[0].CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, products[0].CreatedAt)
	}
	if products[1].CreatedAt != nil {
		t.Fatalf("unreadable created_at must decode as unset, got %v", products[1].CreatedAt)
	}
}
