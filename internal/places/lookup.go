package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// Lookup is an interface that defines a method for fetching place details.
// Implementations return the same Response variants and *Error values as Client.
type Lookup interface {
	GetMapPlace(ctx context.Context, placeID string) (Response, error)
}

// Backend selects the Lookup implementation.
type Backend string

const (
	// BackendHTTP is the native Client.
	BackendHTTP Backend = backendHTTP
	// BackendMaps uses the googlemaps.github.io/maps SDK.
	BackendMaps Backend = backendMaps
)

// ErrMissingAPIKey is returned by NewLookup when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is required for place details lookups")

// LookupConfig holds configuration for creating a Lookup.
type LookupConfig struct {
	Backend   Backend      // Backend to create
	APIKey    string       // API key sent with every request
	BaseURL   string       // Overrides DefaultBaseURL when set
	Language  string       // Optional result language
	RateLimit int          // Requests per second (maps backend only, 0 keeps the SDK default)
	Logger    *slog.Logger // Logger for the lookup
	Observer  Observer     // Optional outcome observer
}

// NewLookup creates a Lookup based on the provided configuration.
//
// Supported backends:
// - "http": the native Client of this package
// - "maps": the official Google Maps Go SDK
//
// An empty backend selects "http".
func NewLookup(config LookupConfig) (Lookup, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	switch config.Backend {
	case BackendHTTP, "":
		return newHTTPLookup(config), nil
	case BackendMaps:
		lookup, err := newMapsLookup(config)
		if err != nil {
			return nil, err
		}
		return lookup, nil
	default:
		return nil, fmt.Errorf("unsupported lookup backend: %s", config.Backend)
	}
}

func newHTTPLookup(config LookupConfig) *Client {
	opts := []Option{WithLogger(config.Logger), WithLanguage(config.Language)}
	if config.BaseURL != "" {
		opts = append(opts, WithBaseURL(config.BaseURL))
	}
	if config.Observer != nil {
		opts = append(opts, WithObserver(config.Observer))
	}

	return NewClient(config.APIKey, opts...)
}

func newMapsLookup(config LookupConfig) (*SDKLookup, error) {
	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(config.BaseURL))
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	lookup := NewSDKLookup(client, config.Logger)
	lookup.language = config.Language
	lookup.observer = config.Observer

	return lookup, nil
}
