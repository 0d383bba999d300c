// Package metrics holds the Prometheus collectors merry exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merry",
		Name:      "events_published_total",
		Help:      "Domain events handed to the dispatcher, by type.",
	}, []string{"type"})

	HandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merry",
		Name:      "event_handler_failures_total",
		Help:      "Event handler errors that were logged and swallowed.",
	}, []string{"handler", "type"})

	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merry",
		Name:      "reminders_sent_total",
		Help:      "WhatsApp reminders by outcome (sent, failed, skipped).",
	}, []string{"outcome"})

	CycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "merry",
		Name:      "cycle_transitions_total",
		Help:      "Committed cycle transitions by kind.",
	}, []string{"kind"})

	IdempotencyReplays = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "merry",
		Name:      "idempotency_replays_total",
		Help:      "Requests answered from a stored idempotent response.",
	})
)
