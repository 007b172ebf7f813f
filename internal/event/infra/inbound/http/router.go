package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterEventRoutes(r *gin.Engine, handler *EventHandler) {
	r.POST("/events", handler.PublishEvent)
	r.GET("/routes", handler.ListRoutes)
}

// RegisterOpsRoutes añade /health y, si hay registro, /metrics.
func RegisterOpsRoutes(r *gin.Engine, gatherer prometheus.Gatherer) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
