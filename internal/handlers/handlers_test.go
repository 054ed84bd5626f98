package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/dto"
	"github.com/IRedDragonICY/zakatcalc/internal/handlers"
	"github.com/IRedDragonICY/zakatcalc/internal/platform/config"
	"github.com/IRedDragonICY/zakatcalc/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SessionStore ---
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Catalog() *zakat.Catalog {
	args := m.Called()
	return args.Get(0).(*zakat.Catalog)
}

func (m *MockSessionStore) Create(code zakat.Code) session.Snapshot {
	args := m.Called(code)
	return args.Get(0).(session.Snapshot)
}

func (m *MockSessionStore) Get(id string) (session.Snapshot, error) {
	args := m.Called(id)
	return args.Get(0).(session.Snapshot), args.Error(1)
}

func (m *MockSessionStore) Dispatch(id string, events ...zakat.Event) (session.Snapshot, error) {
	args := m.Called(id, events)
	return args.Get(0).(session.Snapshot), args.Error(1)
}

func (m *MockSessionStore) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

var _ handlers.SessionStore = (*MockSessionStore)(nil)
var _ handlers.SessionStore = (*session.Store)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *session.Store
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.store = session.NewStore(zakat.DefaultCatalog(), time.Hour)
	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, suite.store)
}

func (suite *HandlerTestSuite) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func decode[T any](suite *HandlerTestSuite, w *httptest.ResponseRecorder) T {
	var out T
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (suite *HandlerTestSuite) newSession(body any, headers ...string) dto.SessionResponse {
	w := suite.do(http.MethodPost, "/api/v1/sessions", body, headers...)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.SessionResponse](suite, w)
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestCalculate_GoldBelowNisab() {
	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{
		"currency":    "USD",
		"basis":       "gold",
		"goldPrice":   "70",
		"assets":      []string{"1000", "500"},
		"liabilities": []string{"200"},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	res := decode[dto.ResultResponse](suite, w)
	suite.Equal("1500.00", res.TotalAssets)
	suite.Equal("200.00", res.TotalLiabilities)
	suite.Equal("1300.00", res.NetAmount)
	suite.Equal("6123.60", res.NisabThreshold)
	suite.False(res.Eligible)
	suite.Equal("0.00", res.ZakatDue)
}

func (suite *HandlerTestSuite) TestCalculate_SilverAboveNisab() {
	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{
		"basis":       "silver",
		"silverPrice": "0.9",
		"assets":      []string{"10000"},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	res := decode[dto.ResultResponse](suite, w)
	suite.Equal("USD", res.Currency)
	suite.Equal("551.12", res.NisabThreshold)
	suite.True(res.Eligible)
	suite.Equal("250.00", res.ZakatDue)
}

func (suite *HandlerTestSuite) TestCalculate_GarbageAmountsCountAsZero() {
	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{
		"goldPrice":   "",
		"assets":      []string{"abc", "-100", "50"},
		"liabilities": []string{"NaN"},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	res := decode[dto.ResultResponse](suite, w)
	suite.Equal("50.00", res.TotalAssets)
	suite.Equal("0.00", res.TotalLiabilities)
	suite.Equal("0.00", res.NisabThreshold)
	suite.False(res.Eligible)
}

func (suite *HandlerTestSuite) TestCalculate_InvalidBasis() {
	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{"basis": "platinum"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListCurrencies() {
	w := suite.do(http.MethodGet, "/api/v1/currencies", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	list := decode[[]dto.CurrencyResponse](suite, w)
	suite.Len(list, len(zakat.DefaultCatalog().List()))
	suite.Equal("USD", list[0].Code)
	suite.Equal("75.50", list[0].GoldPricePerGram)
}

func (suite *HandlerTestSuite) TestDefaults() {
	tests := []struct {
		name       string
		path       string
		headers    []string
		wantCode   string
		wantSource string
	}{
		{name: "accept-language region", path: "/api/v1/defaults", headers: []string{"Accept-Language", "en-GB,en;q=0.8"}, wantCode: "GBP", wantSource: "region"},
		{name: "malformed accept-language entry is skipped", path: "/api/v1/defaults", headers: []string{"Accept-Language", "!!bogus, en-GB;q=0.7"}, wantCode: "GBP", wantSource: "region"},
		{name: "query locale wins over header", path: "/api/v1/defaults?locale=fr-FR", headers: []string{"Accept-Language", "en-GB"}, wantCode: "EUR", wantSource: "eurozone"},
		{name: "timezone header", path: "/api/v1/defaults", headers: []string{"Accept-Language", "en", "X-Timezone", "Asia/Karachi"}, wantCode: "PKR", wantSource: "timezone"},
		{name: "timezone query", path: "/api/v1/defaults?tz=Asia/Dubai", wantCode: "AED", wantSource: "timezone"},
		{name: "nothing known", path: "/api/v1/defaults", wantCode: "USD", wantSource: "fallback"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodGet, tt.path, nil, tt.headers...)
			suite.Require().Equal(http.StatusOK, w.Code)

			res := decode[dto.DefaultsResponse](suite, w)
			suite.Equal(tt.wantCode, res.Currency.Code)
			suite.Equal(tt.wantSource, res.Source)
		})
	}
}

func (suite *HandlerTestSuite) TestCreateSession_FromLocale() {
	snap := suite.newSession(nil, "Accept-Language", "ur-PK")

	suite.NotEmpty(snap.ID)
	suite.Equal("PKR", snap.Form.Currency)
	suite.Equal("gold", snap.Form.Basis)
	suite.Len(snap.Form.Assets, 1)
	suite.Len(snap.Form.Liabilities, 1)
}

func (suite *HandlerTestSuite) TestCreateSession_BodyHints() {
	snap := suite.newSession(map[string]any{"locales": []string{"de-AT"}})
	suite.Equal("EUR", snap.Form.Currency)

	snap = suite.newSession(map[string]any{"timezone": "Asia/Jakarta"})
	suite.Equal("IDR", snap.Form.Currency)
	suite.Equal("0", snap.Result.ZakatDue)
}

func (suite *HandlerTestSuite) TestCreateSession_UnsupportedCurrencyFallsBack() {
	snap := suite.newSession(map[string]any{"currency": "XYZ"})
	suite.Equal("USD", snap.Form.Currency)
	suite.Equal("75.50", snap.Form.GoldPrice)
}

func (suite *HandlerTestSuite) TestCalculate_TooManyRows() {
	assets := make([]string, zakat.MaxItems)
	for i := range assets {
		assets[i] = "1"
	}

	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{"assets": assets})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(fmt.Sprintf("%d.00", zakat.MaxItems), decode[dto.ResultResponse](suite, w).TotalAssets)

	w = suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{
		"assets":      assets,
		"liabilities": []string{"1"},
	})
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), zakat.ErrTooManyItems.Error())
}

func (suite *HandlerTestSuite) TestCalculate_BodyTooLarge() {
	w := suite.do(http.MethodPost, "/api/v1/calculate", map[string]any{
		"assets": []string{strings.Repeat("9", 70<<10)},
	})
	suite.Equal(http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestAddItem_RowLimit() {
	snap := suite.newSession(nil)
	base := "/api/v1/sessions/" + snap.ID

	for rows := len(snap.Form.Assets) + len(snap.Form.Liabilities); rows < zakat.MaxItems; rows++ {
		w := suite.do(http.MethodPost, base+"/items", map[string]any{"kind": "asset"})
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := suite.do(http.MethodPost, base+"/items", map[string]any{"kind": "asset"})
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	got, err := suite.store.Get(snap.ID)
	suite.Require().NoError(err)
	suite.Len(got.Form.Items, zakat.MaxItems)
}

func (suite *HandlerTestSuite) TestSessionFlow() {
	snap := suite.newSession(map[string]any{"currency": "USD"})
	base := "/api/v1/sessions/" + snap.ID

	w := suite.do(http.MethodPut, base+"/basis", map[string]any{"basis": "silver"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPut, base+"/prices", map[string]any{"silverPrice": "0.9"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPut, base+"/items/0", map[string]any{"amount": "10000"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	before := decode[dto.SessionResponse](suite, w)
	suite.True(before.Result.Eligible)
	suite.Equal("250.00", before.Result.ZakatDue)

	w = suite.do(http.MethodPost, base+"/items", map[string]any{"kind": "liability"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	added := decode[dto.SessionResponse](suite, w)
	suite.Require().Len(added.Form.Liabilities, 2)
	newIndex := added.Form.Liabilities[1].Index

	w = suite.do(http.MethodPut, fmt.Sprintf("%s/items/%d", base, newIndex), map[string]any{"amount": "9600"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	mid := decode[dto.SessionResponse](suite, w)
	suite.Equal("400.00", mid.Result.NetAmount)
	suite.False(mid.Result.Eligible)

	w = suite.do(http.MethodDelete, fmt.Sprintf("%s/items/%d", base, newIndex), nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	after := decode[dto.SessionResponse](suite, w)
	suite.Equal(before.Result, after.Result)

	w = suite.do(http.MethodPut, base+"/currency", map[string]any{"currency": "GBP"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	switched := decode[dto.SessionResponse](suite, w)
	suite.Equal("GBP", switched.Form.Currency)
	suite.Equal("0.67", switched.Form.SilverPrice)

	w = suite.do(http.MethodDelete, base, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, base, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestSessionErrors() {
	snap := suite.newSession(nil)
	base := "/api/v1/sessions/" + snap.ID

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/api/v1/sessions/nope", wantCode: http.StatusNotFound},
		{name: "index out of range", method: http.MethodDelete, path: base + "/items/7", wantCode: http.StatusNotFound},
		{name: "index not a number", method: http.MethodPut, path: base + "/items/first", body: map[string]any{"amount": "1"}, wantCode: http.StatusBadRequest},
		{name: "bad basis", method: http.MethodPut, path: base + "/basis", body: map[string]any{"basis": "bronze"}, wantCode: http.StatusBadRequest},
		{name: "bad kind", method: http.MethodPost, path: base + "/items", body: map[string]any{"kind": "equity"}, wantCode: http.StatusBadRequest},
		{name: "malformed currency", method: http.MethodPut, path: base + "/currency", body: map[string]any{"currency": "dollars"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(tt.method, tt.path, tt.body)
			suite.Equal(tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestGetSession_StoreFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := new(MockSessionStore)
	store.On("Catalog").Return(zakat.DefaultCatalog())
	store.On("Get", "abc").Return(session.Snapshot{}, errors.New("boom")).Once()

	r := gin.New()
	handlers.RegisterRoutes(r, &config.Config{IsProduction: true}, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	store.AssertExpectations(t)
}
