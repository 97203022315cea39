package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/service"
)

// Handler HTTP surface of the fare service
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

func New(svc *service.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.With(zap.String("component", "http"))}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/predict", h.Predict)
		api.POST("/batch-predict", h.BatchPredict)
		api.POST("/batch-predict/tasks", h.CreateBatchTask)
		api.GET("/tasks/:task_id", h.GetTask)
		api.DELETE("/tasks/:task_id", h.CancelTask)

		api.POST("/price-trend", h.PriceTrend)
		api.POST("/analyze-price", h.AnalyzePrice)
		api.POST("/compare-flights", h.CompareFlights)

		api.GET("/catalog", h.Catalog)
		api.GET("/model", h.ModelInfo)
		api.POST("/model/retrain", h.Retrain)
	}
}

// Health liveness plus model readiness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.svc.Ready(),
		"timestamp":    h.svc.Now().Format(time.RFC3339),
	})
}
