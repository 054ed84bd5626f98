package zakat

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code.
type Code string

const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	PKR Code = "PKR"
	CAD Code = "CAD"
	AUD Code = "AUD"
	INR Code = "INR"
	SAR Code = "SAR"
	AED Code = "AED"
	MYR Code = "MYR"
	IDR Code = "IDR"
	TRY Code = "TRY"
)

// FallbackCode is used whenever a currency cannot be resolved or is not
// supported.
const FallbackCode = USD

// Currency holds display data and default metal prices for one code.
// Prices are strings so they can be copied straight into form fields.
type Currency struct {
	Code   Code
	Symbol string
	Name   string
	// Precision is the number of decimal places used for display.
	Precision int32
	// GoldPricePerGram is the default gold price per gram
	GoldPricePerGram string
	// SilverPricePerGram is the default silver price per gram
	SilverPricePerGram string
}

// Format rounds amount to the currency's display precision.
func (c Currency) Format(amount decimal.Decimal) string {
	return amount.StringFixed(c.Precision)
}

var builtinCurrencies = []Currency{
	{Code: USD, Symbol: "$", Name: "US Dollar", Precision: 2, GoldPricePerGram: "75.50", SilverPricePerGram: "0.85"},
	{Code: EUR, Symbol: "€", Name: "Euro", Precision: 2, GoldPricePerGram: "69.80", SilverPricePerGram: "0.79"},
	{Code: GBP, Symbol: "£", Name: "Pound Sterling", Precision: 2, GoldPricePerGram: "59.60", SilverPricePerGram: "0.67"},
	{Code: PKR, Symbol: "₨", Name: "Pakistani Rupee", Precision: 2, GoldPricePerGram: "21140", SilverPricePerGram: "238"},
	{Code: CAD, Symbol: "C$", Name: "Canadian Dollar", Precision: 2, GoldPricePerGram: "103.40", SilverPricePerGram: "1.16"},
	{Code: AUD, Symbol: "A$", Name: "Australian Dollar", Precision: 2, GoldPricePerGram: "114.90", SilverPricePerGram: "1.29"},
	{Code: INR, Symbol: "₹", Name: "Indian Rupee", Precision: 2, GoldPricePerGram: "6300", SilverPricePerGram: "71"},
	{Code: SAR, Symbol: "﷼", Name: "Saudi Riyal", Precision: 2, GoldPricePerGram: "283.10", SilverPricePerGram: "3.19"},
	{Code: AED, Symbol: "د.إ", Name: "UAE Dirham", Precision: 2, GoldPricePerGram: "277.30", SilverPricePerGram: "3.12"},
	{Code: MYR, Symbol: "RM", Name: "Malaysian Ringgit", Precision: 2, GoldPricePerGram: "355.20", SilverPricePerGram: "4.00"},
	{Code: IDR, Symbol: "Rp", Name: "Indonesian Rupiah", Precision: 0, GoldPricePerGram: "1210000", SilverPricePerGram: "13600"},
	{Code: TRY, Symbol: "₺", Name: "Turkish Lira", Precision: 2, GoldPricePerGram: "2440", SilverPricePerGram: "27.50"},
}

// Catalog is the set of currencies offered to the user.
// A Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	byCode map[Code]Currency
	order  []Code
}

// DefaultCatalog returns a catalog with every built-in currency.
func DefaultCatalog() *Catalog {
	return NewCatalog(nil)
}

// NewCatalog returns a catalog restricted to the given codes, in built-in
// order. Unknown codes are ignored. An empty list selects every built-in
// currency. The fallback currency is always included.
func NewCatalog(codes []string) *Catalog {
	want := make(map[Code]bool, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			want[Code(c)] = true
		}
	}

	cat := &Catalog{byCode: make(map[Code]Currency, len(builtinCurrencies))}
	for _, cur := range builtinCurrencies {
		if len(want) > 0 && !want[cur.Code] && cur.Code != FallbackCode {
			continue
		}
		cat.byCode[cur.Code] = cur
		cat.order = append(cat.order, cur.Code)
	}
	return cat
}

// Supports reports whether code is in the catalog.
func (c *Catalog) Supports(code Code) bool {
	_, ok := c.byCode[code.normalize()]
	return ok
}

// normalize upper-cases and trims a code so "usd" and " USD" match USD.
func (c Code) normalize() Code {
	return Code(strings.ToUpper(strings.TrimSpace(string(c))))
}

// Lookup returns the currency for code, falling back to USD when the code is
// not supported.
func (c *Catalog) Lookup(code Code) Currency {
	if cur, ok := c.byCode[code.normalize()]; ok {
		return cur
	}
	return c.byCode[FallbackCode]
}

// List returns the supported currencies in display order.
func (c *Catalog) List() []Currency {
	out := make([]Currency, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.byCode[code])
	}
	return out
}

// Codes returns the supported codes sorted alphabetically.
func (c *Catalog) Codes() []string {
	out := make([]string, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, string(code))
	}
	sort.Strings(out)
	return out
}
