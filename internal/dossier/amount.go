package dossier

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a fixed-point US dollar amount stored in cents. It marshals as a
// JSON number with exactly two decimal places so serialized dossiers are
// canonical: re-parsing and re-serializing produces identical bytes.
type Amount int64

// AmountFromFloat converts a provider-reported dollar value, rounding to the
// nearest cent.
func AmountFromFloat(dollars float64) Amount {
	return Amount(math.Round(dollars * 100))
}

// ParseAmount parses a decimal dollar string such as "800", "800.5" or
// "800.00". Providers report amounts as JSON numbers; parsing the raw text
// avoids float drift on large values.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		cents, err = strconv.ParseInt(frac, 10, 64)
		cents *= 10
	case 2:
		cents, err = strconv.ParseInt(frac, 10, 64)
	default:
		// Truncate beyond cents with round-half-up on the third digit.
		cents, err = strconv.ParseInt(frac[:2], 10, 64)
		if err == nil && frac[2] >= '5' && frac[2] <= '9' {
			cents++
		}
	}
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	total := dollars*100 + cents
	if negative {
		total = -total
	}
	return Amount(total), nil
}

// String renders the amount with two decimal places, e.g. "800.00".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON emits the amount as a bare JSON number with fixed precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts any JSON number (and a quoted form, for leniency
// toward upstream payloads) and stores it as cents.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
