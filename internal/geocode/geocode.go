// Package geocode turns browser coordinates into a postal address using a
// Nominatim-compatible reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const DefaultURL = "https://nominatim.openstreetmap.org"

var ErrNoAddress = errors.New("no address for location")

type Result struct {
	Address   string `json:"address"`
	Pincode   string `json:"pincode,omitempty"`
	Available bool   `json:"available"`
}

// Unavailable is what callers report when lookup fails; the customer types the address instead.
var Unavailable = Result{}

type Client struct {
	BaseURL   *url.URL
	HTTP      *http.Client
	UserAgent string
}

func NewClient(baseURL string, timeout time.Duration, userAgent string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocode url %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:   u,
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}, nil
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// ParseCoordinates validates query string coordinates.
func ParseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, validation.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, validation.Errorf("invalid longitude %q", lonStr)
	}
	return lat, lon, nil
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	u := c.BaseURL.ResolveReference(&url.URL{Path: "reverse", RawQuery: q.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Unavailable, err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Unavailable, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unavailable, fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unavailable, fmt.Errorf("decode geocode response: %w", err)
	}
	if body.Error != "" || strings.TrimSpace(body.DisplayName) == "" {
		return Unavailable, ErrNoAddress
	}

	return Result{
		Address:   body.DisplayName,
		Pincode:   body.Address.Postcode,
		Available: true,
	}, nil
}
