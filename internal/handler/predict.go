package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"flight-forecast-backend/internal/model"
)

// Predict single itinerary prediction
func (h *Handler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Predict(c.Request.Context(), req.Itinerary())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BatchPredict body is a JSON array of prediction requests; each item is
// bound on its own so an invalid one is reported by index instead of
// rejecting the batch.
func (h *Handler) BatchPredict(c *gin.Context) {
	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, err)
		return
	}
	var (
		valid    []model.Itinerary
		origin   []int
		rejected []model.BatchFailure
	)
	for i, item := range raw {
		var req model.PredictRequest
		if err := binding.JSON.BindBody(item, &req); err != nil {
			rejected = append(rejected, model.BatchFailure{Index: i, Error: err.Error()})
			continue
		}
		valid = append(valid, req.Itinerary())
		origin = append(origin, i)
	}
	res, err := h.svc.BatchPredict(c.Request.Context(), valid)
	if err != nil {
		h.fail(c, err)
		return
	}
	for k := range res.Predictions {
		res.Predictions[k].Index = origin[res.Predictions[k].Index]
	}
	for k := range res.Failed {
		res.Failed[k].Index = origin[res.Failed[k].Index]
	}
	if len(rejected) > 0 {
		res.Failed = append(res.Failed, rejected...)
		sort.Slice(res.Failed, func(a, b int) bool { return res.Failed[a].Index < res.Failed[b].Index })
	}
	c.JSON(http.StatusOK, res)
}

type batchTaskRequest struct {
	Items     []model.PredictRequest `json:"items" binding:"required"`
	RequestID string                 `json:"request_id"`
}

// CreateBatchTask async batch prediction; 202 for a new task, 200 when an
// existing task with the same request_id is returned.
func (h *Handler) CreateBatchTask(c *gin.Context) {
	var req batchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, created, err := h.svc.CreateBatchTask(itineraries(req.Items), req.RequestID)
	if err != nil {
		h.fail(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusAccepted
	}
	c.JSON(code, status)
}

func (h *Handler) GetTask(c *gin.Context) {
	status, err := h.svc.TaskStatus(c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) CancelTask(c *gin.Context) {
	status, err := h.svc.CancelTask(c.Param("task_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func itineraries(reqs []model.PredictRequest) []model.Itinerary {
	out := make([]model.Itinerary, len(reqs))
	for i, r := range reqs {
		out[i] = r.Itinerary()
	}
	return out
}
