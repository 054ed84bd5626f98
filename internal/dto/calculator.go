package dto

import (
	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/session"
)

// CalculateRequest is a complete form submitted in one call.
type CalculateRequest struct {
	Currency    string   `json:"currency" binding:"omitempty,len=3,alpha"`
	Basis       string   `json:"basis" binding:"omitempty,basis"`
	GoldPrice   *string  `json:"goldPrice"`
	SilverPrice *string  `json:"silverPrice"`
	Assets      []string `json:"assets"`
	Liabilities []string `json:"liabilities"`
}

// ToForm builds a form from the request. Missing prices take the
// currency's defaults.
func (r CalculateRequest) ToForm(catalog *zakat.Catalog) zakat.Form {
	cur := catalog.Lookup(zakat.Code(r.Currency))
	form := zakat.Form{
		Currency:    cur,
		Basis:       zakat.Gold,
		GoldPrice:   cur.GoldPricePerGram,
		SilverPrice: cur.SilverPricePerGram,
	}
	if b, err := zakat.ParseBasis(r.Basis); err == nil {
		form.Basis = b
	}
	if r.GoldPrice != nil {
		form.GoldPrice = *r.GoldPrice
	}
	if r.SilverPrice != nil {
		form.SilverPrice = *r.SilverPrice
	}
	for _, a := range r.Assets {
		form.Items = append(form.Items, zakat.LineItem{Kind: zakat.Asset, Raw: a})
	}
	for _, l := range r.Liabilities {
		form.Items = append(form.Items, zakat.LineItem{Kind: zakat.Liability, Raw: l})
	}
	return form
}

// CreateSessionRequest starts a page session. Every field is optional; an
// explicit currency skips locale defaulting.
type CreateSessionRequest struct {
	Currency string   `json:"currency" binding:"omitempty,len=3,alpha"`
	Locales  []string `json:"locales"`
	Timezone string   `json:"timezone"`
}

// SelectCurrencyRequest selects a currency for a session.
type SelectCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,len=3,alpha"`
}

// SelectBasisRequest selects the Nisab basis for a session.
type SelectBasisRequest struct {
	Basis string `json:"basis" binding:"required,basis"`
}

// UpdatePricesRequest edits one or both price fields. Omitted fields are
// left as they are.
type UpdatePricesRequest struct {
	GoldPrice   *string `json:"goldPrice"`
	SilverPrice *string `json:"silverPrice"`
}

// AddItemRequest appends a row.
type AddItemRequest struct {
	Kind string `json:"kind" binding:"required,oneof=asset liability"`
}

// UpdateItemRequest replaces a row's amount text.
type UpdateItemRequest struct {
	Amount string `json:"amount"`
}

// ItemResponse is one row of the form. Index is the value to use in item
// URLs.
type ItemResponse struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

// FormResponse mirrors the editable fields.
type FormResponse struct {
	Currency    string         `json:"currency"`
	Basis       string         `json:"basis"`
	GoldPrice   string         `json:"goldPrice"`
	SilverPrice string         `json:"silverPrice"`
	Assets      []ItemResponse `json:"assets"`
	Liabilities []ItemResponse `json:"liabilities"`
}

// ResultResponse holds the read-only outputs, rounded for display.
type ResultResponse struct {
	Currency         string `json:"currency"`
	TotalAssets      string `json:"totalAssets"`
	TotalLiabilities string `json:"totalLiabilities"`
	NetAmount        string `json:"netAmount"`
	Basis            string `json:"basis"`
	NisabThreshold   string `json:"nisabThreshold"`
	Eligible         bool   `json:"eligible"`
	ZakatDue         string `json:"zakatDue"`
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID     string         `json:"id"`
	Form   FormResponse   `json:"form"`
	Result ResultResponse `json:"result"`
}

// CurrencyResponse describes one selectable currency.
type CurrencyResponse struct {
	Code               string `json:"code"`
	Symbol             string `json:"symbol"`
	Name               string `json:"name"`
	Precision          int32  `json:"precision"`
	GoldPricePerGram   string `json:"goldPricePerGram"`
	SilverPricePerGram string `json:"silverPricePerGram"`
}

// DefaultsResponse is the outcome of locale-based currency defaulting.
type DefaultsResponse struct {
	Currency CurrencyResponse `json:"currency"`
	Source   string           `json:"source"`
}

// ToCurrencyResponse converts a zakat.Currency to CurrencyResponse DTO
func ToCurrencyResponse(cur zakat.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:               string(cur.Code),
		Symbol:             cur.Symbol,
		Name:               cur.Name,
		Precision:          cur.Precision,
		GoldPricePerGram:   cur.GoldPricePerGram,
		SilverPricePerGram: cur.SilverPricePerGram,
	}
}

// ToListCurrencyResponse converts a slice of currencies.
func ToListCurrencyResponse(currencies []zakat.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, cur := range currencies {
		res[i] = ToCurrencyResponse(cur)
	}
	return res
}

// ToFormResponse splits the form's items by kind while keeping their
// positions in the full list.
func ToFormResponse(f zakat.Form) FormResponse {
	resp := FormResponse{
		Currency:    string(f.Currency.Code),
		Basis:       string(f.Basis),
		GoldPrice:   f.GoldPrice,
		SilverPrice: f.SilverPrice,
		Assets:      []ItemResponse{},
		Liabilities: []ItemResponse{},
	}
	for i, item := range f.Items {
		row := ItemResponse{Index: i, Kind: string(item.Kind), Amount: item.Raw}
		if item.Kind == zakat.Asset {
			resp.Assets = append(resp.Assets, row)
		} else {
			resp.Liabilities = append(resp.Liabilities, row)
		}
	}
	return resp
}

// ToResultResponse formats every amount with the currency's precision.
func ToResultResponse(cur zakat.Currency, r zakat.Result) ResultResponse {
	return ResultResponse{
		Currency:         string(cur.Code),
		TotalAssets:      cur.Format(r.Assets),
		TotalLiabilities: cur.Format(r.Liabilities),
		NetAmount:        cur.Format(r.Net),
		Basis:            string(r.Basis),
		NisabThreshold:   cur.Format(r.Threshold),
		Eligible:         r.Eligible,
		ZakatDue:         cur.Format(r.Zakat),
	}
}

// ToSessionResponse converts a session snapshot.
func ToSessionResponse(s session.Snapshot) SessionResponse {
	return SessionResponse{
		ID:     s.ID,
		Form:   ToFormResponse(s.Form),
		Result: ToResultResponse(s.Form.Currency, s.Result),
	}
}
