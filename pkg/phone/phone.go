// Package phone normalizes WhatsApp phone numbers into the digits-only
// international form the pairing API expects.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCountryCode is used when WA_COUNTRY_CODE is not set.
const DefaultCountryCode = "94"

// minNationalDigits is the smallest national significant number accepted.
const minNationalDigits = 9

var (
	ErrEmpty    = errors.New("phone number is empty")
	ErrTooShort = errors.New("phone number has too few digits")
)

// Normalize strips formatting from raw and returns the number in
// international digits-only form:
//
//	"0741984208"     -> "94741984208" (national prefix replaced)
//	"741984208"      -> "94741984208" (country code prepended)
//	"+94 741-984-208" -> "94741984208" (formatting stripped)
func Normalize(raw, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", ErrEmpty
	}

	switch {
	case strings.HasPrefix(digits, "0"):
		digits = countryCode + strings.TrimLeft(digits, "0")
	case !strings.HasPrefix(digits, countryCode):
		digits = countryCode + digits
	}

	if len(digits) < len(countryCode)+minNationalDigits {
		return "", fmt.Errorf("%w: %q has %d national digits, need at least %d",
			ErrTooShort, raw, len(digits)-len(countryCode), minNationalDigits)
	}
	return digits, nil
}
