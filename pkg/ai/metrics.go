package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quizforge",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of completion requests per provider and model family",
	}, []string{"provider", "family"})

	completionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizforge",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of failed completion requests per provider",
	}, []string{"provider"})
)
