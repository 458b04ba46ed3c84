package places

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const backendMaps = "maps"

// PlaceDetailsAPI is the part of *maps.Client used by SDKLookup.
type PlaceDetailsAPI interface {
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// SDKLookup fetches place details through the Google Maps Go SDK and
// translates its results back into Response values.
type SDKLookup struct {
	client   PlaceDetailsAPI // client is the Google Maps API client
	language string
	log      *slog.Logger
	observer Observer
}

// NewSDKLookup wraps an SDK client.
func NewSDKLookup(client PlaceDetailsAPI, log *slog.Logger) *SDKLookup {
	return &SDKLookup{client: client, log: log}
}

// GetMapPlace has the same contract as Client.GetMapPlace.
//
// The SDK turns every status other than OK and ZERO_RESULTS into an error of
// the form "maps: STATUS - message", and reports ZERO_RESULTS as an empty
// result. Both are mapped back to the matching Response variant.
func (sl *SDKLookup) GetMapPlace(ctx context.Context, placeID string) (Response, error) {
	if placeID == "" {
		return nil, badRequest("place id is required")
	}

	sl.log.DebugContext(ctx, "Place details using Google Maps SDK", "place_id", placeID)

	start := time.Now()
	resp, err := sl.getMapPlace(ctx, placeID)
	if sl.observer != nil {
		sl.observer.ObserveLookup(backendMaps, time.Since(start), resp, err)
	}
	if err != nil {
		return nil, unknown(err)
	}

	return resp, nil
}

func (sl *SDKLookup) getMapPlace(ctx context.Context, placeID string) (Response, error) {
	req := &maps.PlaceDetailsRequest{PlaceID: placeID, Language: sl.language}
	result, err := sl.client.PlaceDetails(ctx, req)
	if err != nil {
		if resp, ok := responseFromSDKError(err); ok {
			return resp, nil
		}
		return nil, err
	}

	if result.PlaceID == "" {
		return ZeroResults{}, nil
	}

	return OK{Result: fromSDKResult(result)}, nil
}

// responseFromSDKError recognizes the SDK's status errors.
func responseFromSDKError(err error) (Response, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, false
	}

	rest, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return nil, false
	}
	status, message, ok := strings.Cut(rest, " - ")
	if !ok || !isStatusToken(status) {
		return nil, false
	}

	return responseFromStatus(status, message), true
}

// isStatusToken reports whether s looks like an API status such as OVER_QUERY_LIMIT.
// A missing status is rendered by the SDK as an empty token.
func isStatusToken(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}

	return true
}

func fromSDKResult(r maps.PlaceDetailsResult) PlaceResult {
	components := make([]AddressComponent, 0, len(r.AddressComponents))
	for _, ac := range r.AddressComponents {
		components = append(components, AddressComponent{
			LongName:  ac.LongName,
			ShortName: ac.ShortName,
			Types:     ac.Types,
		})
	}

	var geometry *Geometry
	if r.Geometry.Location != (maps.LatLng{}) || r.Geometry.Viewport != (maps.LatLngBounds{}) {
		geometry = &Geometry{Location: r.Geometry.Location, Viewport: r.Geometry.Viewport}
	}

	return PlaceResult{
		PlaceID:           r.PlaceID,
		Name:              r.Name,
		FormattedAddress:  r.FormattedAddress,
		AddressComponents: components,
		Geometry:          geometry,
		Types:             r.Types,
		URL:               r.URL,
		Vicinity:          r.Vicinity,
		UTCOffset:         r.UTCOffset,
	}
}
