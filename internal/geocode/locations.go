package geocode

import (
	"context"
	"fmt"
	"strings"

	"github.com/estatelink/property-importer/internal/domain"
)

// noMatchSignal is the token the model is instructed to return when none of
// the known locations fit.
const noMatchSignal = "NO MATCH"

// MapToLocationNode maps free location text onto a known hierarchy node.
// Matching order: exact case-insensitive, substring, then model-assisted
// best match. Returns nil (and no error) when nothing clears the bar.
func (r *Resolver) MapToLocationNode(ctx context.Context, locationText string) (*domain.Location, error) {
	known, err := r.locations.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if len(known) == 0 {
		return nil, nil
	}

	needle := strings.ToLower(strings.TrimSpace(locationText))
	if needle == "" {
		return nil, nil
	}

	// Exact match first, then substring in either direction.
	for i := range known {
		if strings.ToLower(known[i].Name) == needle {
			return &known[i], nil
		}
	}
	for i := range known {
		name := strings.ToLower(known[i].Name)
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			return &known[i], nil
		}
	}

	return r.bestMatchRemote(ctx, locationText, known)
}

// bestMatchRemote asks the model to pick one of the known names, or to
// signal explicitly that none match.
func (r *Resolver) bestMatchRemote(ctx context.Context, locationText string, known []domain.Location) (*domain.Location, error) {
	names := make([]string, len(known))
	for i := range known {
		names[i] = known[i].Name
	}

	prompt := fmt.Sprintf(
		"Pick the location name from the list below that best matches %q.\n"+
			"Answer with exactly one name from the list, or %q if none fit.\n\nList:\n%s",
		strings.TrimSpace(locationText), noMatchSignal, strings.Join(names, "\n"))

	raw, err := r.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("location best match: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(raw))
	if answer == "" || strings.Contains(strings.ToUpper(answer), noMatchSignal) {
		return nil, nil
	}

	for i := range known {
		if strings.ToLower(known[i].Name) == answer {
			return &known[i], nil
		}
	}

	r.logger.Warn("model returned a location outside the known list",
		"location", locationText,
		"answer", raw)
	return nil, nil
}
