package zakat_test

import (
	"testing"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForm(t *testing.T) {
	cur := zakat.DefaultCatalog().Lookup(zakat.GBP)
	form := zakat.NewForm(cur)

	assert.Equal(t, zakat.GBP, form.Currency.Code)
	assert.Equal(t, zakat.Gold, form.Basis)
	assert.Equal(t, cur.GoldPricePerGram, form.GoldPrice)
	assert.Equal(t, cur.SilverPricePerGram, form.SilverPrice)
	assert.Len(t, form.ItemsOf(zakat.Asset), 1)
	assert.Len(t, form.ItemsOf(zakat.Liability), 1)
}

func TestDispatch_AddThenRemoveRestoresTotals(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	form, before, err := zakat.Dispatch(form, catalog, zakat.SetAmount{Index: 0, Raw: "2500"})
	require.NoError(t, err)

	form, _, err = zakat.Dispatch(form, catalog, zakat.AddItem{Kind: zakat.Asset})
	require.NoError(t, err)
	added := len(form.Items) - 1

	form, mid, err := zakat.Dispatch(form, catalog, zakat.SetAmount{Index: added, Raw: "700"})
	require.NoError(t, err)
	assert.Equal(t, "3200", mid.Assets.String())

	_, after, err := zakat.Dispatch(form, catalog, zakat.RemoveItem{Index: added})
	require.NoError(t, err)
	assert.True(t, before.Assets.Equal(after.Assets))
	assert.True(t, before.Liabilities.Equal(after.Liabilities))
	assert.True(t, before.Net.Equal(after.Net))
}

func TestDispatch_DoesNotMutatePreviousSnapshot(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	original := zakat.NewForm(catalog.Lookup(zakat.USD))

	next, _, err := zakat.Dispatch(original, catalog, zakat.SetAmount{Index: 0, Raw: "99"})
	require.NoError(t, err)
	assert.Equal(t, "", original.Items[0].Raw)
	assert.Equal(t, "99", next.Items[0].Raw)

	removed, _, err := zakat.Dispatch(next, catalog, zakat.RemoveItem{Index: 0})
	require.NoError(t, err)
	assert.Len(t, next.Items, 2)
	assert.Len(t, removed.Items, 1)
	assert.Equal(t, zakat.Liability, removed.Items[0].Kind)
}

func TestDispatch_SelectCurrencyResetsPrices(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	form, _, err := zakat.Dispatch(form, catalog, zakat.SetGoldPrice{Raw: "1"})
	require.NoError(t, err)
	form, _, err = zakat.Dispatch(form, catalog, zakat.SetSilverPrice{Raw: "2"})
	require.NoError(t, err)

	form, _, err = zakat.Dispatch(form, catalog, zakat.SelectCurrency{Code: zakat.PKR})
	require.NoError(t, err)

	pkr := catalog.Lookup(zakat.PKR)
	assert.Equal(t, zakat.PKR, form.Currency.Code)
	assert.Equal(t, pkr.GoldPricePerGram, form.GoldPrice)
	assert.Equal(t, pkr.SilverPricePerGram, form.SilverPrice)
}

func TestDispatch_SelectUnknownCurrencyFallsBack(t *testing.T) {
	catalog := zakat.NewCatalog([]string{"EUR"})
	form := zakat.NewForm(catalog.Lookup(zakat.EUR))

	form, _, err := zakat.Dispatch(form, catalog, zakat.SelectCurrency{Code: zakat.GBP})
	require.NoError(t, err)
	assert.Equal(t, zakat.USD, form.Currency.Code)

	form, _, err = zakat.Dispatch(form, catalog, zakat.SelectCurrency{Code: "XYZ"})
	require.NoError(t, err)
	assert.Equal(t, zakat.USD, form.Currency.Code)
}

func TestDispatch_SelectBasis(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	form, res, err := zakat.Dispatch(form, catalog, zakat.SelectBasis{Basis: zakat.Silver})
	require.NoError(t, err)
	assert.Equal(t, zakat.Silver, form.Basis)
	assert.Equal(t, zakat.Silver, res.Basis)

	same, _, err := zakat.Dispatch(form, catalog, zakat.SelectBasis{Basis: "bronze"})
	assert.ErrorIs(t, err, zakat.ErrUnknownBasis)
	assert.Equal(t, zakat.Silver, same.Basis)
}

func TestDispatch_IndexErrors(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	tests := []struct {
		name  string
		event zakat.Event
	}{
		{name: "remove past end", event: zakat.RemoveItem{Index: 2}},
		{name: "remove negative", event: zakat.RemoveItem{Index: -1}},
		{name: "set past end", event: zakat.SetAmount{Index: 5, Raw: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := zakat.Dispatch(form, catalog, tt.event)
			assert.ErrorIs(t, err, zakat.ErrItemIndex)
			assert.Equal(t, form, got)
		})
	}
}

func TestDispatch_AddItemRejectsUnknownKind(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	got, _, err := zakat.Dispatch(form, catalog, zakat.AddItem{Kind: "equity"})
	assert.Error(t, err)
	assert.Len(t, got.Items, 2)
}

func TestDispatch_AddItemStopsAtMaxItems(t *testing.T) {
	catalog := zakat.DefaultCatalog()
	form := zakat.NewForm(catalog.Lookup(zakat.USD))

	var err error
	for len(form.Items) < zakat.MaxItems {
		form, _, err = zakat.Dispatch(form, catalog, zakat.AddItem{Kind: zakat.Liability})
		require.NoError(t, err)
	}

	next, _, err := zakat.Dispatch(form, catalog, zakat.AddItem{Kind: zakat.Asset})
	assert.ErrorIs(t, err, zakat.ErrTooManyItems)
	assert.Len(t, next.Items, zakat.MaxItems)

	form, _, err = zakat.Dispatch(form, catalog, zakat.RemoveItem{Index: 0})
	require.NoError(t, err)
	_, _, err = zakat.Dispatch(form, catalog, zakat.AddItem{Kind: zakat.Asset})
	assert.NoError(t, err)
}
