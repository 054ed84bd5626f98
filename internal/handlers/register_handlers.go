package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/cmd/docs"
	"github.com/IRedDragonICY/zakatcalc/internal/apperrors"
	"github.com/IRedDragonICY/zakatcalc/internal/middleware"
	"github.com/IRedDragonICY/zakatcalc/internal/platform/config"
	"github.com/IRedDragonICY/zakatcalc/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SessionStore is the page-session backend used by the handlers.
type SessionStore interface {
	Catalog() *zakat.Catalog
	Create(code zakat.Code) session.Snapshot
	Get(id string) (session.Snapshot, error)
	Dispatch(id string, events ...zakat.Event) (session.Snapshot, error)
	Delete(id string) error
}

// maxBodyBytes bounds every JSON body under /api/v1. A full form at
// zakat.MaxItems rows fits well inside it.
const maxBodyBytes = 64 << 10

var registerValidatorsOnce sync.Once

// registerValidators adds the "basis" tag to gin's validator engine.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("basis", func(fl validator.FieldLevel) bool {
			_, err := zakat.ParseBasis(fl.Field().String())
			return err == nil
		})
	})
}

// RegisterRoutes sets up all application routes. apiMiddleware is applied to
// the /api/v1 group after the body limit, e.g. rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	store SessionStore,
	apiMiddleware ...gin.HandlerFunc,
) {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	v1 := r.Group("/api/v1", middleware.BodyLimit(maxBodyBytes))
	v1.Use(apiMiddleware...)

	registerCurrencyRoutes(v1, store.Catalog(), cfg.DefaultTimezone)
	registerCalculatorRoutes(v1, store.Catalog())
	registerSessionRoutes(v1, store, cfg.DefaultTimezone)

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// respondError maps apperrors sentinels to status codes.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// respondBindError answers a request whose JSON body could not be bound.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Warn("Request body too large", slog.Int64("limit", tooLarge.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)})
		return
	}
	logger.Warn("Failed to bind JSON", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}
