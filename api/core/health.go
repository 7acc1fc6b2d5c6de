package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/internal/app"
)

var startTime = time.Now()

// HealthHandler 健康检查处理器
type HealthHandler struct {
	container *app.Container
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(container *app.Container) *HealthHandler {
	return &HealthHandler{container: container}
}

// Handle GET /health
func (h *HealthHandler) Handle(c *gin.Context) {
	checks := gin.H{
		"database": h.checkDatabase(),
		"cache":    h.checkCache(),
		"storage":  h.checkStorage(c),
	}

	httpStatus := http.StatusOK
	for _, result := range checks {
		if s, ok := result.(string); ok && s != "ok" {
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	body := gin.H{
		"status":  "ok",
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	}
	if factory := h.container.StorageFactory(); factory != nil {
		body["storage_default"] = factory.GetDefaultName()
		body["storage_providers"] = factory.ListProviders()
	}
	c.JSON(httpStatus, body)
}

func (h *HealthHandler) checkDatabase() string {
	db := h.container.DB()
	if db == nil {
		return "not initialized"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkCache() string {
	if h.container.CacheProvider() == nil {
		return "not initialized"
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(c *gin.Context) string {
	factory := h.container.StorageFactory()
	if factory == nil {
		return "not initialized"
	}

	provider := factory.GetDefault()
	if provider == nil {
		return "error: no default storage provider"
	}

	if err := provider.Health(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
