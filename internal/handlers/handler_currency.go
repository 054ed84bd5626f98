package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/dto"
	"github.com/IRedDragonICY/zakatcalc/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler serves the currency selector and its locale defaults.
type currencyHandler struct {
	catalog         *zakat.Catalog
	defaultTimezone string
}

func registerCurrencyRoutes(rg *gin.RouterGroup, catalog *zakat.Catalog, defaultTimezone string) {
	h := &currencyHandler{catalog: catalog, defaultTimezone: defaultTimezone}

	rg.GET("/currencies", h.listCurrencies)
	rg.GET("/defaults", h.getDefaults)
}

// listCurrencies godoc
// @Summary List supported currencies
// @Description Returns every selectable currency with its default gold and silver prices per gram
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	currencies := dto.ToListCurrencyResponse(h.catalog.List())

	logger.Info("Currencies listed successfully", slog.Int("count", len(currencies)))
	c.JSON(http.StatusOK, currencies)
}

// getDefaults godoc
// @Summary Resolve the default currency
// @Description Picks a currency from the caller's locales and timezone. Falls back to USD.
// @Tags currencies
// @Produce  json
// @Param   locale query string false "Preferred locale, may repeat; overrides Accept-Language"
// @Param   tz query string false "IANA timezone; overrides X-Timezone"
// @Success 200 {object} dto.DefaultsResponse
// @Router /defaults [get]
func (h *currencyHandler) getDefaults(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	env := requestEnvironment(c, logger, h.defaultTimezone)
	res := resolveCurrency(logger, env, h.catalog)

	c.JSON(http.StatusOK, dto.DefaultsResponse{
		Currency: dto.ToCurrencyResponse(h.catalog.Lookup(res.Code)),
		Source:   string(res.Source),
	})
}

// requestEnvironment collects locale and timezone hints from the request.
// Query parameters win over headers; the configured zone is the last resort.
func requestEnvironment(c *gin.Context, logger *slog.Logger, defaultTimezone string) zakat.Environment {
	env := zakat.Environment{Locales: c.QueryArray("locale")}
	if len(env.Locales) == 0 {
		locales, err := zakat.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		if err != nil {
			logger.Debug("Dropped malformed Accept-Language entries", slog.String("error", err.Error()))
		}
		env.Locales = locales
	}

	env.Timezone = strings.TrimSpace(c.Query("tz"))
	if env.Timezone == "" {
		env.Timezone = strings.TrimSpace(c.GetHeader("X-Timezone"))
	}
	if env.Timezone == "" {
		env.Timezone = defaultTimezone
	}
	return env
}

func resolveCurrency(logger *slog.Logger, env zakat.Environment, catalog *zakat.Catalog) zakat.Resolution {
	res := zakat.ResolveCurrency(env, catalog)
	for _, d := range res.Diagnostics {
		logger.Debug("Currency defaulting diagnostic", slog.String("detail", d))
	}
	logger.Info("Resolved default currency",
		slog.String("currency", string(res.Code)),
		slog.String("source", string(res.Source)),
	)
	return res
}
