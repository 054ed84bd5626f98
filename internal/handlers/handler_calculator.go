package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/dto"
	"github.com/IRedDragonICY/zakatcalc/internal/middleware"
	"github.com/gin-gonic/gin"
)

type calculatorHandler struct {
	catalog *zakat.Catalog
}

func registerCalculatorRoutes(rg *gin.RouterGroup, catalog *zakat.Catalog) {
	h := &calculatorHandler{catalog: catalog}
	rg.POST("/calculate", h.calculate)
}

// calculate godoc
// @Summary Calculate Zakat for a complete form
// @Description Stateless calculation. Malformed or negative amounts count as zero; omitted prices use the currency defaults.
// @Tags calculator
// @Accept  json
// @Produce  json
// @Param   form body dto.CalculateRequest true "Form values"
// @Success 200 {object} dto.ResultResponse
// @Failure 400 {object} map[string]string "Invalid input or too many rows"
// @Failure 413 {object} map[string]string "Request body too large"
// @Router /calculate [post]
func (h *calculatorHandler) calculate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	if rows := len(req.Assets) + len(req.Liabilities); rows > zakat.MaxItems {
		logger.Warn("Too many rows for Calculate", slog.Int("rows", rows))
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: limit is %d", zakat.ErrTooManyItems, zakat.MaxItems)})
		return
	}

	form := req.ToForm(h.catalog)
	result := zakat.Calculate(form)

	logger.Info("Calculated zakat",
		slog.String("currency", string(form.Currency.Code)),
		slog.String("basis", string(form.Basis)),
		slog.Int("items", len(form.Items)),
		slog.Bool("eligible", result.Eligible),
	)
	c.JSON(http.StatusOK, dto.ToResultResponse(form.Currency, result))
}
