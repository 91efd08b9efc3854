// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantrack",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vantrack",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DraftEvents counts draft lifecycle events by event and source.
	DraftEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantrack",
		Name:      "draft_events_total",
		Help:      "Draft lifecycle events (created, confirmed, discarded).",
	}, []string{"event", "source"})

	// AssistantCalls counts model calls by operation and outcome.
	AssistantCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vantrack",
		Name:      "assistant_calls_total",
		Help:      "Language model calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// RemindersSent counts debt reminder emails.
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vantrack",
		Name:      "debt_reminders_sent_total",
		Help:      "Debt reminder digests sent by email.",
	})
)
