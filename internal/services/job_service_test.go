package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/vantrack-api/internal/jobs"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_StatusReportsReminderRuns(t *testing.T) {
	f := newReminderFixture(t)
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	svc := NewJobService(worker, f.svc, 12*time.Hour)

	status := svc.Status()
	assert.True(t, status.Reminders.Scheduled)
	assert.Equal(t, "12h0m0s", status.Reminders.Interval)
	assert.Equal(t, "48h0m0s", status.Reminders.Lookahead)
	assert.True(t, status.Reminders.EmailEnabled)
	assert.Nil(t, status.Reminders.LastRun)

	f.debt(t, ledger.TypeCreditReceivable, "100", "2025-02-25")
	_, err := f.svc.SendDueReminders(context.Background())
	require.NoError(t, err)

	run := svc.Status().Reminders.LastRun
	require.NotNil(t, run)
	assert.Equal(t, f.now, run.At)
	assert.Equal(t, "2025-03-03", run.Cutoff)
	assert.Equal(t, 1, run.Users)
	assert.Equal(t, 1, run.Sent)
	assert.Zero(t, run.Failed)
}

func TestJobService_RemindersNotScheduled(t *testing.T) {
	f := newReminderFixture(t)
	f.mailer.enabled = false
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	status := NewJobService(worker, f.svc, 0).Status()
	assert.False(t, status.Reminders.Scheduled)
	assert.Empty(t, status.Reminders.Interval)
	assert.False(t, status.Reminders.EmailEnabled)

	_, err := f.svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.svc.LastRun(), "a skipped pass is not recorded")
}
