package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amaumene/cinedex/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches files from the archive service as byte streams
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new archive client. The archive upstream is slow to
// answer, so the timeout only bounds the response headers; the body is a
// long-lived stream read by the download manager.
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.ArchiveBaseURL == "" {
		return nil, fmt.Errorf("archive base URL is required")
	}

	return &Client{
		baseURL: cfg.ArchiveBaseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.ArchiveTimeout,
			},
		},
		logger: logger,
	}, nil
}

// Fetch opens a streaming GET for the given file URL. Relative URLs are
// resolved against the archive base URL. Returns the body stream and the
// total size from Content-Length (-1 when the upstream does not report it).
// The caller owns closing the stream.
func (c *Client) Fetch(ctx context.Context, fileURL string) (io.ReadCloser, int64, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid file URL: %w", err)
	}

	fullURL := fileURL
	if !parsed.IsAbs() {
		fullURL = c.baseURL + fileURL
	}

	c.logger.WithField("url", fullURL).Debug("Fetching file from archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("archive request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, 0, fmt.Errorf("archive returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, resp.ContentLength, nil
}
