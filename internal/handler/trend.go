package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/trend"
)

// PriceTrend predicted prices for the next days_ahead days
func (h *Handler) PriceTrend(c *gin.Context) {
	var req model.TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.DaysAhead == 0 {
		req.DaysAhead = trend.DefaultHorizon
	}
	points, err := h.svc.Trend(c.Request.Context(), req.SourceCity, req.DestinationCity, req.DaysAhead)
	if err != nil {
		h.fail(c, err)
		return
	}
	if points == nil {
		points = []model.TrendPoint{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"source_city":      req.SourceCity,
		"destination_city": req.DestinationCity,
		"days_ahead":       req.DaysAhead,
		"trend_data":       points,
	})
}

// AnalyzePrice booking advice for a quoted price
func (h *Handler) AnalyzePrice(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": a})
}

// CompareFlights live quotes against the model
func (h *Handler) CompareFlights(c *gin.Context) {
	var req model.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Compare(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
