package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Catalog(c *gin.Context) {
	cat, err := h.svc.Catalog()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) ModelInfo(c *gin.Context) {
	info, err := h.svc.ModelInfo()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "model": info, "retraining": h.svc.Retraining()})
}

// Retrain starts a background retrain; 409 while one is running.
func (h *Handler) Retrain(c *gin.Context) {
	if err := h.svc.TriggerRetrain(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "status": "retrain started"})
}
