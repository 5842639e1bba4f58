// Package metrics holds the Prometheus counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts attendance submissions by outcome
	// (accepted at intake vs rejected by a rule).
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_submissions_total",
		Help: "Attendance submissions by intake outcome.",
	}, []string{"outcome"})

	// ValidationDeniedTotal counts permission validations that returned
	// allowed:false, labeled by the denial reason class.
	ValidationDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_validation_denied_total",
		Help: "Permission validations denied, by reason.",
	}, []string{"reason"})

	// QueueJobsTotal counts background jobs processed by the worker.
	QueueJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusattend_queue_jobs_total",
		Help: "Background jobs processed, by type and result.",
	}, []string{"type", "result"})
)
