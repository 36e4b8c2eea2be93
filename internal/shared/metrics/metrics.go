// Package metrics exposes Prometheus counters for the assessment
// lifecycle and the /metrics endpoint.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	assessmentStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_started_total",
		Help: "Total assessments started, by agent.",
	}, []string{"agent"})

	assessmentCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_completed_total",
		Help: "Total assessments completed, by agent.",
	}, []string{"agent"})

	assessmentFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_failed_total",
		Help: "Total assessments failed, by agent.",
	}, []string{"agent"})

	assessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_duration_seconds",
		Help:    "Assessment execution time in seconds, by agent.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"agent"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assessment_report_cache_hits_total",
		Help: "Total report cache hits.",
	})

	pipelineRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Total pipeline runs.",
	})
)

func IncAssessmentStarted(agent string) {
	assessmentStarted.WithLabelValues(agent).Inc()
}

func IncAssessmentCompleted(agent string) {
	assessmentCompleted.WithLabelValues(agent).Inc()
}

func IncAssessmentFailed(agent string) {
	assessmentFailed.WithLabelValues(agent).Inc()
}

func ObserveAssessmentDuration(agent string, seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	assessmentDuration.WithLabelValues(agent).Observe(seconds)
}

func IncCacheHit() {
	cacheHits.Inc()
}

func IncPipelineRun() {
	pipelineRuns.Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
