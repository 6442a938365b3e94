package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProxyConfig describes one pass-through route
type ProxyConfig struct {
	Prefix   string            // request path prefix to strip, e.g. "/api/tmdb"
	Upstream string            // upstream base URL
	Timeout  time.Duration     // per-request budget
	Query    map[string]string // query parameters added to every request
	Headers  map[string]string // headers added to every request
}

// ProxyHandler forwards requests to an upstream service with the route
// prefix rewritten. It adds no auth of its own beyond the configured
// parameters and performs no caching; upstream failures are translated to
// a 500 JSON error envelope.
type ProxyHandler struct {
	cfg        ProxyConfig
	upstream   *url.URL
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewProxyHandler creates a pass-through handler for one upstream
func NewProxyHandler(cfg ProxyConfig, logger *logrus.Logger) (*ProxyHandler, error) {
	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", cfg.Upstream, err)
	}

	return &ProxyHandler{
		cfg:        cfg,
		upstream:   upstream,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// ServeHTTP forwards the request and copies the upstream response back
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := *h.upstream
	target.Path = strings.TrimSuffix(target.Path, "/") + strings.TrimPrefix(r.URL.Path, h.cfg.Prefix)

	query := r.URL.Query()
	for key, value := range h.cfg.Query {
		query.Set(key, value)
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		h.writeError(w, "bad gateway request", err)
		return
	}

	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range h.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.WithError(err).WithField("upstream", h.cfg.Upstream).Error("Upstream request failed")
		h.writeError(w, "upstream request failed", err)
		return
	}
	defer resp.Body.Close()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.WithError(err).Debug("Failed to copy upstream response")
	}
}

// writeError responds with the gateway's 500 error envelope
func (h *ProxyHandler) writeError(w http.ResponseWriter, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{
		"error":     err.Error(),
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
