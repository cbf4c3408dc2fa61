// Package client talks to the remote search service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inventory-search/internal/models"
)

// ErrRequestFailed matches every error returned by Client.Search.
var ErrRequestFailed = errors.New("search request failed")

// RequestError describes a failed search call. The service does not assign
// meaning to particular status codes; StatusCode is informational.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the service at baseURL. The base URL is used as an
// opaque prefix; a trailing slash is tolerated.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient is used when the caller owns transport settings.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// Search posts req to {base}/search/ and decodes the ordered product list.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]models.Product, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Op: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/", bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: "send request", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RequestError{
			Op:         "search",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, &RequestError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}
	if products == nil {
		// a JSON null is not a result list
		return nil, &RequestError{Op: "decode response", StatusCode: resp.StatusCode, Err: errors.New("response is not a list")}
	}

	return products, nil
}
