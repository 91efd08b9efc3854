package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/jobs"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offlineMailer struct{}

func (offlineMailer) Enabled() bool { return false }

func (offlineMailer) SendDebtReminder(ctx context.Context, user *models.User, cutoff string, items []services.DebtReminderItem) error {
	return nil
}

func TestJobHandler_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)
	worker := jobs.NewWorker(2)
	t.Cleanup(worker.Shutdown)

	reminders := services.NewReminderService(nil, nil, nil, offlineMailer{}, 48*time.Hour)
	h := NewJobHandler(services.NewJobService(worker, reminders, 6*time.Hour))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/jobs/status", nil)
	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Jobs services.JobStatus `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Jobs.Worker.MaxConcurrent, "async limit floor")
	assert.Zero(t, body.Jobs.Worker.ScheduledJobs)
	assert.True(t, body.Jobs.Reminders.Scheduled)
	assert.Equal(t, "6h0m0s", body.Jobs.Reminders.Interval)
	assert.Equal(t, "48h0m0s", body.Jobs.Reminders.Lookahead)
	assert.False(t, body.Jobs.Reminders.EmailEnabled)
	assert.Nil(t, body.Jobs.Reminders.LastRun)
}
