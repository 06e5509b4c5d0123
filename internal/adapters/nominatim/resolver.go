// Package nominatim resolves free-text place names to coordinates via
// the OpenStreetMap Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Resolver implements ports.GeocodeResolver against a Nominatim
// endpoint. One request per call, no caching, no retries.
type Resolver struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// New creates a Resolver. baseURL may be empty to use the public
// nominatim.openstreetmap.org instance. Nominatim's usage policy
// requires an identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Resolver {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// Nominatim returns lat/lon as JSON strings.
type candidate struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve geocodes place and returns the first candidate. Blank input
// is rejected without touching the network.
func (r *Resolver) Resolve(ctx context.Context, place string) (domain.GeoPoint, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return domain.GeoPoint{}, domain.ErrInvalidInput
	}

	reqURL := r.baseURL + "/search?format=json&q=" + url.QueryEscape(place)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.GeoPoint{}, &domain.ResolutionError{Op: "request", Err: err}
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, &domain.ResolutionError{Op: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, &domain.ResolutionError{
			Op:  "search",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, &domain.ResolutionError{Op: "decode", Err: err}
	}

	if len(candidates) == 0 {
		metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return domain.GeoPoint{}, domain.ErrNoResults
	}

	// Only the first candidate counts; the rest are discarded.
	first := candidates[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, &domain.ResolutionError{Op: "parse lat", Err: err}
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, &domain.ResolutionError{Op: "parse lon", Err: err}
	}

	metrics.GeocodeRequests.WithLabelValues("hit").Inc()
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
