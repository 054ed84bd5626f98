// Package zakat computes Zakat obligations from a list of asset and liability
// amounts and a Nisab threshold priced in gold or silver.
//
// All monetary arithmetic uses shopspring/decimal. Values cross the package
// boundary as strings so that callers never see binary floating point.
//
// # Usage
//
//	import (
//	    "github.com/IRedDragonICY/zakatcalc"
//	)
//
//	func main() {
//	    catalog := zakat.DefaultCatalog()
//	    form := zakat.NewForm(catalog.Lookup("USD"))
//
//	    form, result, err := zakat.Dispatch(form, catalog, zakat.SetAmount{Index: 0, Raw: "10000"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Printf("Zakat Due: %s\n", result.Zakat)
//	}
//
// # Input Handling
//
// Raw text is never rejected. Anything that is not a finite, non-negative
// number contributes zero:
//
//	zakat.Sanitize("abc")  // 0
//	zakat.Sanitize("-5")   // 0
//	zakat.Sanitize("12.5") // 12.5
package zakat

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is the Zakat levy applied to net qualifying wealth.
var Rate = decimal.RequireFromString("0.025")

// Sanitize converts raw user text to a non-negative decimal.
// Returns decimal.Zero if parsing fails or the value is negative.
func Sanitize(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	// NewFromString rejects NaN and Inf, so every parsed value is finite.
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if d.IsNegative() || !withinFloatRange(d) {
		return decimal.Zero
	}
	return d
}

// withinFloatRange rejects magnitudes a float64 would turn into Inf or
// flush to zero, so "1e999" and "1.8e308" count as non-finite.
func withinFloatRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	// The digit count bounds the work Float64 does on absurd exponents.
	magnitude := int64(d.NumDigits()) + int64(d.Exponent())
	if magnitude > 309 || magnitude < -323 {
		return false
	}
	f, _ := d.Float64()
	return !math.IsInf(f, 0) && f != 0
}

// DecimalEqual compares two decimal strings with a tolerance.
// This is useful for test assertions.
func DecimalEqual(actual, expected string, tolerance string) bool {
	actualDec := Sanitize(actual)
	expectedDec := Sanitize(expected)
	toleranceDec := Sanitize(tolerance)
	if toleranceDec.IsZero() {
		toleranceDec = decimal.NewFromFloat(0.0000001)
	}
	diff := actualDec.Sub(expectedDec).Abs()
	return diff.LessThanOrEqual(toleranceDec)
}

// Totals holds the aggregated line items.
type Totals struct {
	// Assets - sum of every asset row
	Assets decimal.Decimal
	// Liabilities - sum of every liability row
	Liabilities decimal.Decimal
	// Net - assets minus liabilities, floored at zero
	Net decimal.Decimal
}

// Aggregate sums asset and liability rows independently.
func Aggregate(items []LineItem) Totals {
	assets, liabilities := decimal.Zero, decimal.Zero
	for _, item := range items {
		amount := Sanitize(item.Raw)
		switch item.Kind {
		case Asset:
			assets = assets.Add(amount)
		case Liability:
			liabilities = liabilities.Add(amount)
		}
	}
	net := assets.Sub(liabilities)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return Totals{Assets: assets, Liabilities: liabilities, Net: net}
}

// Result holds a full calculation over one form snapshot.
type Result struct {
	Totals
	// Basis - the metal used for the threshold
	Basis Basis
	// PricePerGram - sanitized price of the basis metal
	PricePerGram decimal.Decimal
	// Threshold - Nisab threshold in the form's currency
	Threshold decimal.Decimal
	// Eligible - whether Zakat is due
	Eligible bool
	// Zakat - amount due, zero when not eligible
	Zakat decimal.Decimal
}

// Calculate recomputes every derived value of the form from scratch.
func Calculate(f Form) Result {
	totals := Aggregate(f.Items)
	price := Sanitize(f.PriceFor(f.Basis))
	threshold := Threshold(f.Basis, price)

	eligible := threshold.IsPositive() && totals.Net.GreaterThanOrEqual(threshold)
	due := decimal.Zero
	if eligible {
		due = totals.Net.Mul(Rate)
	}

	return Result{
		Totals:       totals,
		Basis:        f.Basis,
		PricePerGram: price,
		Threshold:    threshold,
		Eligible:     eligible,
		Zakat:        due,
	}
}

// Threshold returns the Nisab threshold for basis at the given price per gram.
// A negative price yields zero.
func Threshold(basis Basis, pricePerGram decimal.Decimal) decimal.Decimal {
	if pricePerGram.IsNegative() {
		return decimal.Zero
	}
	return basis.Grams().Mul(pricePerGram)
}
