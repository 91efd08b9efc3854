package services

import (
	"time"

	"github.com/sjperalta/vantrack-api/internal/jobs"
)

// JobStatus is the body of GET /jobs/status.
type JobStatus struct {
	Worker    jobs.WorkerStats `json:"worker"`
	Reminders ReminderStatus   `json:"reminders"`
}

// ReminderStatus describes the debt reminder schedule.
type ReminderStatus struct {
	Scheduled    bool         `json:"scheduled"`
	Interval     string       `json:"interval,omitempty"`
	Lookahead    string       `json:"lookahead"`
	EmailEnabled bool         `json:"email_enabled"`
	LastRun      *ReminderRun `json:"last_run,omitempty"`
}

// JobService reports on background work: the worker pool and the
// recurring reminder pass it runs.
type JobService struct {
	worker    *jobs.Worker
	reminders *ReminderService
	interval  time.Duration
}

// NewJobService wires status reporting. interval <= 0 means reminders are
// not scheduled.
func NewJobService(worker *jobs.Worker, reminders *ReminderService, interval time.Duration) *JobService {
	return &JobService{
		worker:    worker,
		reminders: reminders,
		interval:  interval,
	}
}

func (s *JobService) Status() JobStatus {
	status := JobStatus{Worker: s.worker.GetStats()}
	if s.reminders == nil {
		return status
	}
	status.Reminders = ReminderStatus{
		Scheduled:    s.interval > 0,
		Lookahead:    s.reminders.Lookahead().String(),
		EmailEnabled: s.reminders.EmailEnabled(),
		LastRun:      s.reminders.LastRun(),
	}
	if s.interval > 0 {
		status.Reminders.Interval = s.interval.String()
	}
	return status
}
