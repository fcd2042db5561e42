// Package nominatim implements geocode.Geocoder against the OSM Nominatim
// search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/uaswatch/uas-sightings-etl/internal/geocode"
)

// Client queries the Nominatim search endpoint. Nominatim's usage policy
// caps anonymous clients at one request per second and requires an
// identifying User-Agent; the limiter is applied before every request, so
// callers can issue lookups back to back without violating the policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. requestsPerSecond should stay at or
// below 1 for the public endpoint.
func NewClient(baseURL, userAgent string, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}
}

// Geocode resolves a free-text place description to coordinates.
// An empty result set is a permanent miss (found=false, no error); network
// and server failures are returned as errors for the resolver's retry
// policy to handle.
func (c *Client) Geocode(ctx context.Context, query string) (geocode.Location, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return geocode.Location{}, false, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	fullURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return geocode.Location{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geocode.Location{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return geocode.Location{}, false, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return geocode.Location{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return geocode.Location{}, false, nil
	}

	// Nominatim serializes coordinates as strings.
	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geocode.Location{}, false, fmt.Errorf("malformed coordinates in response: lat=%q lon=%q", places[0].Lat, places[0].Lon)
	}

	c.logger.Debug("geocode hit", "query", query, "display_name", places[0].DisplayName)
	return geocode.Location{Lat: lat, Lon: lon}, true, nil
}

// Nominatim API response type.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
