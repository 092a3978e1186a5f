// Package places is a client for the Google Places nearby-search API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	DefaultRadius  = 5000

	placeTypeHospital = "hospital"
)

// ErrMissingAPIKey is returned before any request is made when no key is set.
var ErrMissingAPIKey = errors.New("places: GOOGLE_MAPS_API_KEY is not configured")

// Location is a WGS84 coordinate pair as returned by the API.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a single nearby-search result.
type Place struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating"`
	Geometry *struct {
		Location *Location `json:"location"`
	} `json:"geometry"`
}

// Location returns the place coordinates, or nil when the API omitted them.
func (p *Place) Location() *Location {
	if p.Geometry == nil {
		return nil
	}
	return p.Geometry.Location
}

type nearbyResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []Place `json:"results"`
}

// StatusError reports an API-level failure carried in a 200 response.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("places: status %s: %s", e.Status, e.Message)
	}
	return "places: status " + e.Status
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// Client queries the places API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a Client. An empty apiKey is accepted; calls then fail
// with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// NearbyHospitals returns hospitals within radius metres of lat,lng. A
// ZERO_RESULTS status yields an empty slice.
func (c *Client) NearbyHospitals(ctx context.Context, lat, lng float64, radius int) ([]Place, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if radius <= 0 {
		radius = DefaultRadius
	}

	q := url.Values{}
	q.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("type", placeTypeHospital)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nearbysearch/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: request failed: %w", redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("places: upstream returned status %d", resp.StatusCode)
	}

	var body nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &StatusError{Status: body.Status, Message: body.ErrorMessage}
	}
	if body.Results == nil {
		body.Results = []Place{}
	}
	return body.Results, nil
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	msg := err.Error()
	if !strings.Contains(msg, key) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, key, "REDACTED"))
}
