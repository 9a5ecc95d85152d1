// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bi_questions_processed_total",
			Help: "Total number of questions answered, by metric",
		},
		[]string{"metric"},
	)

	QuestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bi_question_duration_seconds",
			Help: "Duration of question processing in seconds",
		},
		[]string{"metric"},
	)

	UpstreamFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bi_upstream_fetch_failures_total",
			Help: "Total number of failed board fetches, by data source",
		},
		[]string{"source"},
	)

	IntentFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bi_intent_heuristic_fallbacks_total",
			Help: "Total number of questions resolved by the heuristic path after an AI provider failure",
		},
	)

	RecordsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bi_records_normalized_total",
			Help: "Total number of raw records normalized, by data source",
		},
		[]string{"source"},
	)
)
