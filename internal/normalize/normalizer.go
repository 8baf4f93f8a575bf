// Package normalize extracts structured listing fields from raw free text
// using model-assisted inference. Each extraction is independent; a failure
// in one is a per-listing failure for the caller, never a run failure.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/inference"
	"github.com/estatelink/property-importer/internal/logger"
)

const (
	maxAttempts    = 2
	baseRetryDelay = time.Second
)

// Normalizer runs the extraction functions for one listing's text.
type Normalizer struct {
	client     inference.Client
	logger     logger.Interface
	retryDelay time.Duration
}

// NewNormalizer creates a normalizer using the shared inference client.
func NewNormalizer(client inference.Client, log logger.Interface) *Normalizer {
	return &Normalizer{
		client:     client,
		logger:     log.WithComponent("normalize"),
		retryDelay: baseRetryDelay,
	}
}

// Normalize runs the full extraction set over one source record.
func (n *Normalizer) Normalize(ctx context.Context, rec domain.SourceRecord) (*domain.NormalizedListing, error) {
	listing := &domain.NormalizedListing{
		Price: rec.Price,
		Size:  rec.Size,
	}

	text := rec.Title + "\n" + rec.Description

	if listing.Price <= 0 {
		price, err := n.ExtractNumeric(ctx, "price in euros", text)
		if err != nil {
			return nil, fmt.Errorf("extract price: %w", err)
		}
		listing.Price = price
	}
	if listing.Size <= 0 {
		size, err := n.ExtractNumeric(ctx, "size in square meters", text)
		if err != nil {
			return nil, fmt.Errorf("extract size: %w", err)
		}
		listing.Size = size
	}

	listingType, err := n.ClassifyListingType(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify listing type: %w", err)
	}
	listing.ListingType = listingType

	category, err := n.ClassifyCategory(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify category: %w", err)
	}
	listing.Category = category

	name, err := n.CleanName(ctx, rec.Title)
	if err != nil {
		return nil, fmt.Errorf("clean name: %w", err)
	}
	listing.Name = name

	description, err := n.CleanDescription(ctx, rec.Description)
	if err != nil {
		return nil, fmt.Errorf("clean description: %w", err)
	}
	listing.Description = description

	attributes, err := n.ExtractAttributes(ctx, rec.Description)
	if err != nil {
		return nil, fmt.Errorf("extract attributes: %w", err)
	}
	listing.Attributes = attributes

	return listing, nil
}

// ExtractNumeric extracts one labelled numeric value from listing text.
func (n *Normalizer) ExtractNumeric(ctx context.Context, label, text string) (float64, error) {
	prompt := fmt.Sprintf(
		"Extract the %s from the listing text below.\n"+
			"Respond with a single line: value: <number>\n\n%s",
		label, text)

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return ParseNumeric(raw)
}

// ClassifyListingType classifies the listing as a sale or a rental.
func (n *Normalizer) ClassifyListingType(ctx context.Context, text string) (domain.ListingType, error) {
	prompt := "Is the listing below offering the property for sale or for rent?\n" +
		"Respond with a single word: sale or rent.\n\n" + text

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}
	return ParseListingType(raw)
}

// ClassifyCategory classifies the property category.
func (n *Normalizer) ClassifyCategory(ctx context.Context, text string) (domain.PropertyCategory, error) {
	prompt := "Classify the property in the listing below.\n" +
		"Respond with a single word from: apartment, house, office, land, other.\n\n" + text

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}
	return ParseCategory(raw)
}

// CleanName produces a short structured listing name from the raw title.
func (n *Normalizer) CleanName(ctx context.Context, title string) (string, error) {
	prompt := "Rewrite the listing title below as a short, clean property name " +
		"without phone numbers, pricing, or promotional text. Respond with the name only.\n\n" + title

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &inference.ParseError{Raw: raw, Reason: "empty cleaned name"}
	}
	return name, nil
}

// CleanDescription produces a cleaned listing description.
func (n *Normalizer) CleanDescription(ctx context.Context, description string) (string, error) {
	prompt := "Rewrite the listing description below as clean prose, dropping contact " +
		"details and repeated punctuation. Respond with the description only.\n\n" + description

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", &inference.ParseError{Raw: raw, Reason: "empty cleaned description"}
	}
	return cleaned, nil
}

// ExtractAttributes extracts a feature map (booleans and numbers) from the
// listing description.
func (n *Normalizer) ExtractAttributes(ctx context.Context, description string) (domain.AttributeMap, error) {
	prompt := "List the property features present in the listing below, one per line, " +
		"as feature: value where value is true, false, or a number " +
		"(e.g. elevator: true, bedrooms: 2, floor: 4).\n\n" + description

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseAttributes(raw), nil
}

// ExtractReferenceCode extracts an agency-issued reference code from the
// title and description. A nil result with nil error means the model
// explicitly signalled that no code is present.
func (n *Normalizer) ExtractReferenceCode(ctx context.Context, title, description string) (*string, error) {
	prompt := fmt.Sprintf(
		"Find the agency reference code (e.g. \"ref 1234\", \"ID: AB-55\") in the listing below.\n"+
			"Respond with a single line: code: <the code>\n"+
			"If there is no reference code respond with: code: %s\n\n%s\n%s",
		noCodeSignal, title, description)

	raw, err := n.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseReferenceCode(raw)
}

// callWithRetry issues a completion, retrying once with an attempt-scaled
// delay. Exhausted retries propagate the last error to the caller.
func (n *Normalizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt-1) * n.retryDelay):
			}
		}

		raw, err := n.client.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		n.logger.Warn("inference call failed",
			"attempt", attempt,
			"error", err)
	}

	return "", fmt.Errorf("inference failed after %d attempts: %w", maxAttempts, lastErr)
}
