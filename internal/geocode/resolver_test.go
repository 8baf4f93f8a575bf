package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/logger"
)

var testBounds = config.GeocodeBounds{
	MinLatitude:       40.85,
	MaxLatitude:       42.40,
	MinLongitude:      20.45,
	MaxLongitude:      23.05,
	FallbackLatitude:  41.9981,
	FallbackLongitude: 21.4254,
}

type fakeGeoClient struct {
	calls     int
	responses []string
	err       error
}

func (c *fakeGeoClient) Complete(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp, nil
}

type staticLocations struct {
	locations []domain.Location
	err       error
}

func (s *staticLocations) ListLocations(context.Context) ([]domain.Location, error) {
	return s.locations, s.err
}

func newTestResolver(client *fakeGeoClient, locs *staticLocations) *Resolver {
	if locs == nil {
		locs = &staticLocations{}
	}
	return NewResolver(client, locs, testBounds, logger.NewNoOp())
}

func TestResolve_CachesSuccessfulResult(t *testing.T) {
	client := &fakeGeoClient{responses: []string{"latitude: 41.99\nlongitude: 21.43"}}
	r := newTestResolver(client, nil)

	first := r.Resolve(context.Background(), "Centar", "Partizanska 12")
	second := r.Resolve(context.Background(), "  CENTAR ", "partizanska 12")

	assert.Equal(t, 41.99, first.Latitude)
	assert.Equal(t, 21.43, first.Longitude)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls, "second lookup must hit the cache")
}

func TestResolve_FallbackOnClientError(t *testing.T) {
	client := &fakeGeoClient{err: errors.New("backend down")}
	r := newTestResolver(client, nil)

	got := r.Resolve(context.Background(), "Centar", "Partizanska 12")

	assert.Equal(t, testBounds.FallbackLatitude, got.Latitude)
	assert.Equal(t, testBounds.FallbackLongitude, got.Longitude)

	// The fallback is cached too, so a repeated key never re-queries.
	r.Resolve(context.Background(), "Centar", "Partizanska 12")
	assert.Equal(t, 1, client.calls)
}

func TestResolve_FallbackOnOutOfBoundsCoordinates(t *testing.T) {
	client := &fakeGeoClient{responses: []string{"latitude: 48.85\nlongitude: 2.35"}}
	r := newTestResolver(client, nil)

	got := r.Resolve(context.Background(), "Centar", "somewhere")

	assert.Equal(t, testBounds.FallbackLatitude, got.Latitude)
	assert.Equal(t, testBounds.FallbackLongitude, got.Longitude)

	// The fallback is cached under the same key.
	again := r.Resolve(context.Background(), "Centar", "somewhere")
	assert.Equal(t, got, again)
	assert.Equal(t, 1, client.calls)
}

func TestResolve_DistinctKeysQuerySeparately(t *testing.T) {
	client := &fakeGeoClient{responses: []string{
		"latitude: 41.99\nlongitude: 21.43",
		"latitude: 42.00\nlongitude: 21.40",
	}}
	r := newTestResolver(client, nil)

	a := r.Resolve(context.Background(), "Centar", "Partizanska 12")
	b := r.Resolve(context.Background(), "Karposh", "Partizanska 12")

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, client.calls)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"both lines", "latitude: 41.99\nlongitude: 21.43", 41.99, 21.43, false},
		{"with prose", "Here you go:\nLatitude: 41.5\nLongitude: 21.0\nEnjoy!", 41.5, 21.0, false},
		{"missing longitude", "latitude: 41.99", 0, 0, true},
		{"missing latitude", "longitude: 21.43", 0, 0, true},
		{"non-numeric", "latitude: north\nlongitude: 21.43", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng, err := ParseCoordinates(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lng, lng)
		})
	}
}

func TestMapToLocationNode(t *testing.T) {
	known := []domain.Location{
		{ID: "l1", Name: "Centar"},
		{ID: "l2", Name: "Karposh"},
		{ID: "l3", Name: "Aerodrom"},
	}

	tests := []struct {
		name       string
		text       string
		modelReply string
		wantID     string
		wantNil    bool
		wantCalls  int
	}{
		{"exact match", "centar", "", "l1", false, 0},
		{"substring match", "Karposh 4, Skopje", "", "l2", false, 0},
		{"model best match", "near the airport district", "Aerodrom", "l3", false, 1},
		{"model no match", "Lake Ohrid", "NO MATCH", "", true, 1},
		{"model invents a name", "somewhere", "Monmartre", "", true, 1},
		{"empty text", "   ", "", "", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeGeoClient{responses: []string{tt.modelReply}}
			r := newTestResolver(client, &staticLocations{locations: known})

			got, err := r.MapToLocationNode(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, client.calls)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestMapToLocationNode_EmptyHierarchy(t *testing.T) {
	client := &fakeGeoClient{}
	r := newTestResolver(client, &staticLocations{})

	got, err := r.MapToLocationNode(context.Background(), "Centar")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, client.calls)
}

func TestMapToLocationNode_ListFailure(t *testing.T) {
	r := newTestResolver(&fakeGeoClient{}, &staticLocations{err: errors.New("db down")})

	_, err := r.MapToLocationNode(context.Background(), "Centar")
	require.Error(t, err)
}
