package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/inference"
)

// noCodeSignal is the token the model returns when a listing carries no
// agency reference code.
const noCodeSignal = "NONE"

// ParseNumeric extracts a "value: <number>" line from model output.
func ParseNumeric(raw string) (float64, error) {
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "value") {
			continue
		}
		_, after, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		v, err := strconv.ParseFloat(cleanNumber(after), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		return v, nil
	}
	return 0, &inference.ParseError{Raw: raw, Reason: "no value line"}
}

// cleanNumber strips whitespace and common thousands separators.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// ParseListingType parses a sale/rent classification.
func ParseListingType(raw string) (domain.ListingType, error) {
	answer := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(answer, "rent"):
		return domain.ListingTypeRent, nil
	case strings.Contains(answer, "sale"), strings.Contains(answer, "sell"):
		return domain.ListingTypeSale, nil
	}
	return "", &inference.ParseError{Raw: raw, Reason: "not a sale/rent answer"}
}

var categories = []domain.PropertyCategory{
	domain.CategoryApartment,
	domain.CategoryHouse,
	domain.CategoryOffice,
	domain.CategoryLand,
	domain.CategoryOther,
}

// ParseCategory parses a property-category classification.
func ParseCategory(raw string) (domain.PropertyCategory, error) {
	answer := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range categories {
		if strings.Contains(answer, string(c)) {
			return c, nil
		}
	}
	return "", &inference.ParseError{Raw: raw, Reason: "unknown category"}
}

// ParseAttributes parses "feature: value" lines into an attribute map.
// Unparsable lines are skipped; an empty map is a valid result.
func ParseAttributes(raw string) domain.AttributeMap {
	attrs := domain.AttributeMap{}

	for _, line := range strings.Split(raw, "\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(strings.TrimLeft(name, "-* ")))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}

		switch strings.ToLower(value) {
		case "true", "yes":
			attrs[name] = true
		case "false", "no":
			attrs[name] = false
		default:
			if v, err := strconv.ParseFloat(cleanNumber(value), 64); err == nil {
				attrs[name] = v
			}
		}
	}

	return attrs
}

// ParseReferenceCode parses a "code: <code>" line. The explicit no-code
// signal yields (nil, nil), distinguishing "no code" from a failed call.
func ParseReferenceCode(raw string) (*string, error) {
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(strings.ToLower(line), "code") {
			continue
		}
		_, after, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		code := strings.TrimSpace(after)
		if code == "" {
			continue
		}
		if strings.EqualFold(code, noCodeSignal) {
			return nil, nil
		}
		return &code, nil
	}
	return nil, &inference.ParseError{Raw: raw, Reason: "no code line"}
}
