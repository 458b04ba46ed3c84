package places

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production endpoint of the Google Maps web services.
	DefaultBaseURL = "https://maps.googleapis.com"
	// DetailsPath is the Place Details JSON endpoint.
	DetailsPath = "/maps/api/place/details/json"

	backendHTTP = "http"
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer is notified once per lookup with its outcome.
// Exactly one of resp and err is non-nil.
type Observer interface {
	ObserveLookup(backend string, duration time.Duration, resp Response, err error)
}

// Client calls the Place Details API with its own API key.
// It keeps no state between calls and is safe for concurrent use.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     HTTPClient
	log      *slog.Logger
	observer Observer
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithLanguage asks the API to return names in the given language.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithObserver registers an Observer, e.g. metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a Client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// GetMapPlace fetches the details of placeID.
//
// API-level outcomes such as ZERO_RESULTS or REQUEST_DENIED come back as
// Response values with a nil error. The returned error is always a *Error:
// ErrBadRequest for an empty place id (no request is sent), ErrUnknown for
// transport failures, non-2xx replies and undecodable bodies.
func (c *Client) GetMapPlace(ctx context.Context, placeID string) (Response, error) {
	if placeID == "" {
		return nil, badRequest("place id is required")
	}

	start := time.Now()
	resp, err := c.getMapPlace(ctx, placeID)
	if c.observer != nil {
		c.observer.ObserveLookup(backendHTTP, time.Since(start), resp, err)
	}
	if err != nil {
		c.log.DebugContext(ctx, "Place details lookup failed", "place_id", placeID, "error", err)
		return nil, unknown(err)
	}

	c.log.DebugContext(ctx, "Place details received", "place_id", placeID, "status", resp.Status())

	return resp, nil
}

func (c *Client) getMapPlace(ctx context.Context, placeID string) (Response, error) {
	reqURL, err := c.buildURL(placeID)
	if err != nil {
		return nil, err
	}

	c.log.DebugContext(ctx, "Place details request", "url", redact(reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute place details request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("place details API returned status %d: %s", resp.StatusCode, string(body))
	}

	return ParseResponse(resp.Body)
}

// buildURL constructs the request URL; both query values are URL-encoded.
func (c *Client) buildURL(placeID string) (*url.URL, error) {
	reqURL, err := url.Parse(c.baseURL + DetailsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("place_id", placeID)
	query.Set("key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	reqURL.RawQuery = query.Encode()

	return reqURL, nil
}

// redact hides the API key so request URLs can be logged.
func redact(u *url.URL) string {
	cp := *u
	query := cp.Query()
	if query.Has("key") {
		query.Set("key", "REDACTED")
	}
	cp.RawQuery = query.Encode()

	return cp.String()
}

// Result is delivered by GetMapPlaceAsync.
type Result struct {
	Response Response
	Err      error
}

// GetMapPlaceAsync runs GetMapPlace in a goroutine. The returned channel
// receives exactly one Result and is then closed.
func (c *Client) GetMapPlaceAsync(ctx context.Context, placeID string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		resp, err := c.GetMapPlace(ctx, placeID)
		out <- Result{Response: resp, Err: err}
	}()

	return out
}
