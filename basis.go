package zakat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownBasis is returned when a Nisab basis name is not gold or silver.
var ErrUnknownBasis = errors.New("unknown nisab basis")

// Basis selects the metal that prices the Nisab threshold.
type Basis string

const (
	Gold   Basis = "gold"
	Silver Basis = "silver"
)

var (
	goldNisabGrams   = decimal.RequireFromString("87.48")
	silverNisabGrams = decimal.RequireFromString("612.36")
)

// Grams returns the fixed Nisab weight for the basis, or zero for an
// unknown basis.
func (b Basis) Grams() decimal.Decimal {
	switch b {
	case Gold:
		return goldNisabGrams
	case Silver:
		return silverNisabGrams
	default:
		return decimal.Zero
	}
}

// Valid reports whether b is one of the known bases.
func (b Basis) Valid() bool {
	return b == Gold || b == Silver
}

// ParseBasis accepts "gold" or "silver" in any case.
func ParseBasis(s string) (Basis, error) {
	b := Basis(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBasis, s)
	}
	return b, nil
}
