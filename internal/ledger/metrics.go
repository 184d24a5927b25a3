package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	transitionClockIn  = "clock_in"
	transitionClockOut = "clock_out"

	resultOK                = "ok"
	resultInvalidTransition = "invalid_transition"
	resultNotFound          = "not_found"
	resultStoreError        = "store_error"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecrew",
		Subsystem: "ledger",
		Name:      "transitions_total",
		Help:      "Clock transitions by outcome.",
	}, []string{"transition", "result"})

	loggedCostTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sitecrew",
		Subsystem: "ledger",
		Name:      "logged_cost_total",
		Help:      "Labour cost added to project spend by closed time logs.",
	})

	loggedHours = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sitecrew",
		Subsystem: "ledger",
		Name:      "logged_hours",
		Help:      "Hours recorded per closed time log.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 6, 8, 10, 12, 16, 24},
	})
)
