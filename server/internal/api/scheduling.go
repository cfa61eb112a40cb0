package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/scheduling"
)

func (h *Handler) groupBatches(c *gin.Context) {
	var req groupBatchesRequest
	if !bind(c, &req) {
		return
	}
	out := h.sched.GroupBatches(req.Batches)
	list(c, orEmpty(out), len(out))
}

func (h *Handler) optimize(c *gin.Context) {
	var req optimizeRequest
	if !bind(c, &req) {
		return
	}
	ok200(c, scheduling.OptimizeSchedule(req.Groups, req.Conditions, req.Constraints))
}

func (h *Handler) validateSchedule(c *gin.Context) {
	var req validateScheduleRequest
	if !bind(c, &req) {
		return
	}
	ok200(c, scheduling.ValidateSchedule(req.Groups, req.Conditions, req.EquipmentFailures))
}
