package zakat

import (
	"errors"
	"fmt"
)

// ErrItemIndex is returned when an event names a line item that is not in
// the form.
var ErrItemIndex = errors.New("line item index out of range")

// ErrTooManyItems is returned when a row would push the form past MaxItems.
var ErrTooManyItems = errors.New("too many line items")

// MaxItems caps the rows one form can hold, assets and liabilities together.
const MaxItems = 200

// Kind tags a line item as an asset or a liability.
type Kind string

const (
	Asset     Kind = "asset"
	Liability Kind = "liability"
)

// Valid reports whether k is asset or liability.
func (k Kind) Valid() bool {
	return k == Asset || k == Liability
}

// LineItem is one user-entered row. Raw keeps the text as typed; the amount
// is derived by Sanitize during calculation.
type LineItem struct {
	Kind Kind
	Raw  string
}

// Form is an immutable snapshot of everything the user has entered.
// Events never modify a Form in place; they return a new one.
type Form struct {
	Currency    Currency
	Basis       Basis
	GoldPrice   string
	SilverPrice string
	// Items are kept in insertion order.
	Items []LineItem
}

// NewForm returns a form priced in cur, using the gold basis and one empty
// asset and liability row.
func NewForm(cur Currency) Form {
	return Form{
		Currency:    cur,
		Basis:       Gold,
		GoldPrice:   cur.GoldPricePerGram,
		SilverPrice: cur.SilverPricePerGram,
		Items: []LineItem{
			{Kind: Asset},
			{Kind: Liability},
		},
	}
}

// PriceFor returns the raw price field for basis.
func (f Form) PriceFor(b Basis) string {
	switch b {
	case Gold:
		return f.GoldPrice
	case Silver:
		return f.SilverPrice
	default:
		return ""
	}
}

// ItemsOf returns the items of one kind, in insertion order.
func (f Form) ItemsOf(k Kind) []LineItem {
	var out []LineItem
	for _, item := range f.Items {
		if item.Kind == k {
			out = append(out, item)
		}
	}
	return out
}

func (f Form) withItems(items []LineItem) Form {
	f.Items = items
	return f
}

func (f Form) checkIndex(i int) error {
	if i < 0 || i >= len(f.Items) {
		return fmt.Errorf("%w: %d (have %d)", ErrItemIndex, i, len(f.Items))
	}
	return nil
}

// Event is a single user edit.
type Event interface {
	Apply(f Form, catalog *Catalog) (Form, error)
}

// SelectCurrency switches currency and resets both price fields to that
// currency's defaults. Unsupported codes select USD.
type SelectCurrency struct {
	Code Code
}

// Apply implements Event.
func (e SelectCurrency) Apply(f Form, catalog *Catalog) (Form, error) {
	cur := catalog.Lookup(e.Code)
	f.Currency = cur
	f.GoldPrice = cur.GoldPricePerGram
	f.SilverPrice = cur.SilverPricePerGram
	return f, nil
}

// SelectBasis switches the metal the Nisab threshold is priced in. Prices
// are kept, so switching back restores the earlier threshold.
type SelectBasis struct {
	Basis Basis
}

// Apply rejects anything other than gold or silver with ErrUnknownBasis.
func (e SelectBasis) Apply(f Form, _ *Catalog) (Form, error) {
	if !e.Basis.Valid() {
		return f, fmt.Errorf("%w: %q", ErrUnknownBasis, e.Basis)
	}
	f.Basis = e.Basis
	return f, nil
}

// SetGoldPrice stores the gold price per gram as typed. It is sanitized
// only when the threshold is computed.
type SetGoldPrice struct {
	Raw string
}

// Apply implements Event. It never fails.
func (e SetGoldPrice) Apply(f Form, _ *Catalog) (Form, error) {
	f.GoldPrice = e.Raw
	return f, nil
}

// SetSilverPrice stores the silver price per gram as typed.
type SetSilverPrice struct {
	Raw string
}

// Apply implements Event. It never fails.
func (e SetSilverPrice) Apply(f Form, _ *Catalog) (Form, error) {
	f.SilverPrice = e.Raw
	return f, nil
}

// AddItem appends an empty row of the given kind.
type AddItem struct {
	Kind Kind
}

// Apply fails for an unknown kind and once the form holds MaxItems rows.
func (e AddItem) Apply(f Form, _ *Catalog) (Form, error) {
	if !e.Kind.Valid() {
		return f, fmt.Errorf("unknown line item kind %q", e.Kind)
	}
	if len(f.Items) >= MaxItems {
		return f, fmt.Errorf("%w: limit is %d", ErrTooManyItems, MaxItems)
	}
	items := make([]LineItem, len(f.Items), len(f.Items)+1)
	copy(items, f.Items)
	return f.withItems(append(items, LineItem{Kind: e.Kind})), nil
}

// RemoveItem deletes the row at Index, counted across all kinds.
type RemoveItem struct {
	Index int
}

// Apply returns ErrItemIndex when Index is out of range. Later rows shift
// down by one.
func (e RemoveItem) Apply(f Form, _ *Catalog) (Form, error) {
	if err := f.checkIndex(e.Index); err != nil {
		return f, err
	}
	items := make([]LineItem, 0, len(f.Items)-1)
	items = append(items, f.Items[:e.Index]...)
	items = append(items, f.Items[e.Index+1:]...)
	return f.withItems(items), nil
}

// SetAmount replaces the raw text of the row at Index.
type SetAmount struct {
	Index int
	Raw   string
}

// Apply returns ErrItemIndex when Index is out of range.
func (e SetAmount) Apply(f Form, _ *Catalog) (Form, error) {
	if err := f.checkIndex(e.Index); err != nil {
		return f, err
	}
	items := make([]LineItem, len(f.Items))
	copy(items, f.Items)
	items[e.Index].Raw = e.Raw
	return f.withItems(items), nil
}

// Dispatch applies e to f and recomputes the result. On error the original
// form is returned unchanged together with its result.
func Dispatch(f Form, catalog *Catalog, e Event) (Form, Result, error) {
	next, err := e.Apply(f, catalog)
	if err != nil {
		return f, Calculate(f), err
	}
	return next, Calculate(next), nil
}
