// Package geocode resolves free-text addresses to coordinates and to nodes
// in the location hierarchy, memoizing results for the process lifetime.
package geocode

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/inference"
	"github.com/estatelink/property-importer/internal/logger"
)

// LocationSource lists the known location-hierarchy nodes.
type LocationSource interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

// Resolver resolves addresses via model-assisted inference, with an
// in-process memo cache. Failed resolutions are cached too (as the fallback
// value) so repeated failures on one key do not retry.
type Resolver struct {
	client    inference.Client
	locations LocationSource
	bounds    config.GeocodeBounds
	logger    logger.Interface

	mu    sync.Mutex
	cache map[string]domain.GeocodeResult
}

// NewResolver creates a resolver with an empty cache.
func NewResolver(
	client inference.Client,
	locations LocationSource,
	bounds config.GeocodeBounds,
	log logger.Interface,
) *Resolver {
	return &Resolver{
		client:    client,
		locations: locations,
		bounds:    bounds,
		logger:    log.WithComponent("geocode"),
		cache:     make(map[string]domain.GeocodeResult),
	}
}

// Resolve returns coordinates for the given location/address text. It never
// fails: unresolvable input yields the configured fallback center.
func (r *Resolver) Resolve(ctx context.Context, locationText, addressText string) domain.GeocodeResult {
	key := cacheKey(locationText, addressText)

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	result, err := r.resolveRemote(ctx, locationText, addressText)
	if err != nil {
		r.logger.Warn("geocode resolution failed, using fallback center",
			"location", locationText,
			"address", addressText,
			"error", err)
		result = domain.GeocodeResult{
			Latitude:  r.bounds.FallbackLatitude,
			Longitude: r.bounds.FallbackLongitude,
		}
	}

	r.mu.Lock()
	r.cache[key] = result
	r.mu.Unlock()

	return result
}

// resolveRemote issues one inference call and validates the parsed result
// against the bounding region.
func (r *Resolver) resolveRemote(ctx context.Context, locationText, addressText string) (domain.GeocodeResult, error) {
	prompt := fmt.Sprintf(
		"Give the approximate WGS84 coordinates for the address %q in %q, North Macedonia.\n"+
			"Respond with exactly two lines:\n"+
			"latitude: <decimal degrees>\n"+
			"longitude: <decimal degrees>",
		strings.TrimSpace(addressText), strings.TrimSpace(locationText))

	raw, err := r.client.Complete(ctx, prompt)
	if err != nil {
		return domain.GeocodeResult{}, err
	}

	lat, lng, err := ParseCoordinates(raw)
	if err != nil {
		return domain.GeocodeResult{}, err
	}

	if !r.inBounds(lat, lng) {
		return domain.GeocodeResult{}, fmt.Errorf("coordinates (%f, %f) outside bounding region", lat, lng)
	}

	return domain.GeocodeResult{Latitude: lat, Longitude: lng}, nil
}

func (r *Resolver) inBounds(lat, lng float64) bool {
	return lat >= r.bounds.MinLatitude && lat <= r.bounds.MaxLatitude &&
		lng >= r.bounds.MinLongitude && lng <= r.bounds.MaxLongitude
}

// ParseCoordinates extracts labelled latitude/longitude values from a raw
// model response. Both values must parse as finite numbers.
func ParseCoordinates(raw string) (lat, lng float64, err error) {
	var haveLat, haveLng bool

	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "latitude"):
			if v, ok := numberAfterColon(line); ok {
				lat, haveLat = v, true
			}
		case strings.Contains(lower, "longitude"):
			if v, ok := numberAfterColon(line); ok {
				lng, haveLng = v, true
			}
		}
	}

	if !haveLat || !haveLng {
		return 0, 0, &inference.ParseError{Raw: raw, Reason: "missing latitude/longitude lines"}
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, &inference.ParseError{Raw: raw, Reason: "non-finite coordinates"}
	}

	return lat, lng, nil
}

// numberAfterColon parses the numeric tail of a "label: value" line.
func numberAfterColon(line string) (float64, bool) {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(after), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cacheKey builds the memo key from normalized inputs.
func cacheKey(locationText, addressText string) string {
	return strings.ToLower(strings.TrimSpace(locationText)) + "|" +
		strings.ToLower(strings.TrimSpace(addressText))
}
