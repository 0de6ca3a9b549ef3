package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "runs_total",
			Help:      "Count of agent runs by terminal outcome.",
		},
		[]string{"outcome"},
	)

	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "booking_attempts_total",
			Help:      "Count of per-pair booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	venueLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "venue_lookups_total",
			Help:      "Count of directory venue lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(runsTotal, attemptsTotal, venueLookups)
	})
}

func IncRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

func IncAttempt(outcome string) {
	attemptsTotal.WithLabelValues(outcome).Inc()
}

func IncVenueLookup(result string) {
	venueLookups.WithLabelValues(result).Inc()
}
