// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "SA"

// ErrInvalidNumber is returned when input cannot be parsed as a valid number.
var ErrInvalidNumber = errors.New("invalid phone number")

// Normalizer parses national or international numbers into E.164.
type Normalizer struct {
	region string
}

// NewNormalizer creates a normalizer for the given ISO 3166 region code.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Normalize returns the E.164 form of input, or ErrInvalidNumber.
func (n *Normalizer) Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidNumber
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// NormalizeE164 formats a phone number to E.164 using the default region.
// If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	out, err := NewNormalizer(DefaultRegion).Normalize(input)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return out
}
