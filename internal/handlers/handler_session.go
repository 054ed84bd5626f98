package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/dto"
	"github.com/IRedDragonICY/zakatcalc/internal/middleware"
	"github.com/gin-gonic/gin"
)

// sessionHandler turns form edits into calculator events. Every mutating
// route answers with the full recomputed snapshot.
type sessionHandler struct {
	store           SessionStore
	defaultTimezone string
}

func registerSessionRoutes(rg *gin.RouterGroup, store SessionStore, defaultTimezone string) {
	h := &sessionHandler{store: store, defaultTimezone: defaultTimezone}

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:sessionID", h.getSession)
		sessions.DELETE("/:sessionID", h.deleteSession)
		sessions.PUT("/:sessionID/currency", h.selectCurrency)
		sessions.PUT("/:sessionID/basis", h.selectBasis)
		sessions.PUT("/:sessionID/prices", h.updatePrices)
		sessions.POST("/:sessionID/items", h.addItem)
		sessions.PUT("/:sessionID/items/:index", h.updateItem)
		sessions.DELETE("/:sessionID/items/:index", h.removeItem)
	}
}

// createSession godoc
// @Summary Start a calculator session
// @Description Creates a form priced in the requested currency, or in the currency resolved from locale and timezone hints.
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   session body dto.CreateSessionRequest false "Optional currency and environment hints"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /sessions [post]
func (h *sessionHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return
		}
	}

	code := zakat.Code(req.Currency)
	if code == "" {
		env := requestEnvironment(c, logger, h.defaultTimezone)
		if len(req.Locales) > 0 {
			env.Locales = req.Locales
		}
		if req.Timezone != "" {
			env.Timezone = req.Timezone
		}
		code = resolveCurrency(logger, env, h.store.Catalog()).Code
	}

	snap := h.store.Create(code)
	logger.Info("Session created", slog.String("session_id", snap.ID), slog.String("currency", string(snap.Form.Currency.Code)))
	c.JSON(http.StatusCreated, dto.ToSessionResponse(snap))
}

// getSession godoc
// @Summary Get a calculator session
// @Tags sessions
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID} [get]
func (h *sessionHandler) getSession(c *gin.Context) {
	logger := sessionLogger(c)
	snap, err := h.store.Get(c.Param("sessionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(snap))
}

// deleteSession godoc
// @Summary End a calculator session
// @Tags sessions
// @Param   sessionID path string true "Session ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID} [delete]
func (h *sessionHandler) deleteSession(c *gin.Context) {
	logger := sessionLogger(c)
	if err := h.store.Delete(c.Param("sessionID")); err != nil {
		respondError(c, logger, err, "Failed to delete session")
		return
	}
	logger.Info("Session deleted")
	c.Status(http.StatusNoContent)
}

// selectCurrency godoc
// @Summary Select the form currency
// @Description Resets gold and silver prices to the currency's defaults. Unsupported codes select USD.
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   currency body dto.SelectCurrencyRequest true "Currency code"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID}/currency [put]
func (h *sessionHandler) selectCurrency(c *gin.Context) {
	var req dto.SelectCurrencyRequest
	if !bindJSON(c, &req) {
		return
	}
	h.dispatch(c, zakat.SelectCurrency{Code: zakat.Code(req.Currency)})
}

// selectBasis godoc
// @Summary Select the Nisab basis
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   basis body dto.SelectBasisRequest true "gold or silver"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID}/basis [put]
func (h *sessionHandler) selectBasis(c *gin.Context) {
	var req dto.SelectBasisRequest
	if !bindJSON(c, &req) {
		return
	}
	basis, err := zakat.ParseBasis(req.Basis)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatch(c, zakat.SelectBasis{Basis: basis})
}

// updatePrices godoc
// @Summary Edit metal prices
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   prices body dto.UpdatePricesRequest true "Price per gram, as text"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID}/prices [put]
func (h *sessionHandler) updatePrices(c *gin.Context) {
	var req dto.UpdatePricesRequest
	if !bindJSON(c, &req) {
		return
	}
	var events []zakat.Event
	if req.GoldPrice != nil {
		events = append(events, zakat.SetGoldPrice{Raw: *req.GoldPrice})
	}
	if req.SilverPrice != nil {
		events = append(events, zakat.SetSilverPrice{Raw: *req.SilverPrice})
	}
	h.dispatch(c, events...)
}

// addItem godoc
// @Summary Add an asset or liability row
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   item body dto.AddItemRequest true "Row kind"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input or row limit reached"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID}/items [post]
func (h *sessionHandler) addItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	logger := sessionLogger(c)
	snap, err := h.store.Dispatch(c.Param("sessionID"), zakat.AddItem{Kind: zakat.Kind(req.Kind)})
	if err != nil {
		respondError(c, logger, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSessionResponse(snap))
}

// updateItem godoc
// @Summary Edit a row's amount
// @Description The amount is stored as typed; anything that is not a non-negative number counts as zero.
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   index path int true "Row index"
// @Param   item body dto.UpdateItemRequest true "Amount text"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Session or row not found"
// @Router /sessions/{sessionID}/items/{index} [put]
func (h *sessionHandler) updateItem(c *gin.Context) {
	index, ok := itemIndex(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	h.dispatch(c, zakat.SetAmount{Index: index, Raw: req.Amount})
}

// removeItem godoc
// @Summary Remove a row
// @Tags sessions
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   index path int true "Row index"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid index"
// @Failure 404 {object} map[string]string "Session or row not found"
// @Router /sessions/{sessionID}/items/{index} [delete]
func (h *sessionHandler) removeItem(c *gin.Context) {
	index, ok := itemIndex(c)
	if !ok {
		return
	}
	h.dispatch(c, zakat.RemoveItem{Index: index})
}

func (h *sessionHandler) dispatch(c *gin.Context, events ...zakat.Event) {
	logger := sessionLogger(c)
	snap, err := h.store.Dispatch(c.Param("sessionID"), events...)
	if err != nil {
		respondError(c, logger, err, "Failed to update session")
		return
	}
	logger.Debug("Session updated", slog.Int("events", len(events)), slog.Bool("eligible", snap.Result.Eligible))
	c.JSON(http.StatusOK, dto.ToSessionResponse(snap))
}

func sessionLogger(c *gin.Context) *slog.Logger {
	return middleware.GetLoggerFromContext(c).With(slog.String("session_id", c.Param("sessionID")))
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, sessionLogger(c), err)
		return false
	}
	return true
}

func itemIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item index must be an integer"})
		return 0, false
	}
	return index, true
}
