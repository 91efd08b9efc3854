package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type JobHandler struct {
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Status reports the worker pool and the debt reminder schedule
// @Summary Background work status
// @Description Worker pool counters plus the reminder interval, lookahead and latest run
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]services.JobStatus
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.Status()})
}
