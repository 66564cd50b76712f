package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_sessions_opened_total",
			Help: "Total number of editing sessions opened",
		},
	)

	// SavesTotal counts save attempts by outcome.
	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_saves_total",
			Help: "Total number of snapshot saves by outcome",
		},
		[]string{"outcome"}, // applied, noop, invalid, unconfirmed, failed
	)

	ReconciledRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_reconciled_rows_total",
			Help: "Total number of rows written by reconciliation",
		},
		[]string{"op"}, // insert, update, delete
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_auth_failures_total",
			Help: "Total number of rejected tokens and login payloads",
		},
		[]string{"source"}, // token, telegram
	)

	SaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchases_save_duration_seconds",
			Help:    "Duration of reconcile and write-back in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)
