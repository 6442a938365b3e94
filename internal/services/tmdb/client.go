package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amaumene/cinedex/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// TMDB allows 40 requests per second per key
const requestsPerSecond = 40

// CatalogError is a failed catalog API request: a transport error, a non-2xx
// response, or a malformed body. Callers branch on it to distinguish
// "request failed" from "no results".
type CatalogError struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *CatalogError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Client handles communication with the TMDB catalog API
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	return &Client{
		baseURL:    cfg.TMDBBaseURL,
		apiKey:     cfg.TMDBAPIKey,
		language:   cfg.TMDBLanguage,
		httpClient: &http.Client{Timeout: cfg.CatalogTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:     logger,
	}, nil
}

// get performs a GET request against the catalog API and decodes the JSON
// response into result. Every failure is reported as a *CatalogError.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &CatalogError{Op: op, Err: err}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	fullURL := c.baseURL + path + "?" + params.Encode()
	c.logger.WithFields(logrus.Fields{
		"op":   op,
		"path": path,
	}).Debug("Making catalog API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &CatalogError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &CatalogError{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &CatalogError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", string(bodyBytes)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &CatalogError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
