package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/logger"
)

// scriptedClient answers prompts by keyword so one fake serves the whole
// extraction set.
type scriptedClient struct {
	calls    int
	failures int
	answer   func(prompt string) string
}

func (c *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", errors.New("inference backend unavailable")
	}
	return c.answer(prompt), nil
}

func fullAnswer(prompt string) string {
	switch {
	case strings.Contains(prompt, "price in euros"):
		return "value: 85000"
	case strings.Contains(prompt, "square meters"):
		return "value: 62"
	case strings.Contains(prompt, "sale or rent"):
		return "sale"
	case strings.Contains(prompt, "Classify"):
		return "apartment"
	case strings.Contains(prompt, "title"):
		return "Two-bedroom apartment in Aerodrom"
	case strings.Contains(prompt, "description"):
		return "Bright two-bedroom apartment with an elevator."
	case strings.Contains(prompt, "features"):
		return "elevator: true\nbedrooms: 2"
	}
	return ""
}

func newTestNormalizer(client *scriptedClient) *Normalizer {
	n := NewNormalizer(client, logger.NewNoOp())
	n.retryDelay = 0
	return n
}

func TestNormalize_FullExtraction(t *testing.T) {
	client := &scriptedClient{answer: fullAnswer}
	n := newTestNormalizer(client)

	rec := domain.SourceRecord{
		Title:       "TOP OFFER!!! apartment 62m2 call 070-123-456",
		Description: "Two bedrooms, elevator, 85000 eur.",
	}

	listing, err := n.Normalize(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, 85000.0, listing.Price)
	assert.Equal(t, 62.0, listing.Size)
	assert.Equal(t, domain.ListingTypeSale, listing.ListingType)
	assert.Equal(t, domain.CategoryApartment, listing.Category)
	assert.Equal(t, "Two-bedroom apartment in Aerodrom", listing.Name)
	assert.Equal(t, true, listing.Attributes["elevator"])
	assert.Equal(t, 2.0, listing.Attributes["bedrooms"])
}

func TestNormalize_KeepsFeedNumerics(t *testing.T) {
	client := &scriptedClient{answer: fullAnswer}
	n := newTestNormalizer(client)

	rec := domain.SourceRecord{
		Title:       "Apartment",
		Description: "Nice place.",
		Price:       120000,
		Size:        88,
	}

	listing, err := n.Normalize(context.Background(), rec)
	require.NoError(t, err)

	// Feed-supplied numerics must survive untouched, with no extraction calls
	// spent on them.
	assert.Equal(t, 120000.0, listing.Price)
	assert.Equal(t, 88.0, listing.Size)

	for _, prompt := range []string{"price in euros", "square meters"} {
		assert.NotContains(t, fullAnswer(prompt), "value: 120000")
	}
	assert.Equal(t, 5, client.calls)
}

func TestCallWithRetry_RecoversAfterOneFailure(t *testing.T) {
	client := &scriptedClient{failures: 1, answer: func(string) string { return "value: 42" }}
	n := newTestNormalizer(client)

	got, err := n.ExtractNumeric(context.Background(), "price in euros", "text")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
	assert.Equal(t, 2, client.calls)
}

func TestCallWithRetry_ExhaustsAttempts(t *testing.T) {
	client := &scriptedClient{failures: maxAttempts, answer: func(string) string { return "value: 42" }}
	n := newTestNormalizer(client)

	_, err := n.ExtractNumeric(context.Background(), "price in euros", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, maxAttempts, client.calls)
}

func TestCallWithRetry_ContextCancelled(t *testing.T) {
	client := &scriptedClient{failures: 1, answer: func(string) string { return "value: 42" }}
	n := NewNormalizer(client, logger.NewNoOp())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.ExtractNumeric(ctx, "price in euros", "text")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractReferenceCode_NoCode(t *testing.T) {
	client := &scriptedClient{answer: func(string) string { return "code: NONE" }}
	n := newTestNormalizer(client)

	code, err := n.ExtractReferenceCode(context.Background(), "title", "description")
	require.NoError(t, err)
	assert.Nil(t, code)
}
