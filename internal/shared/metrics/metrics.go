package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	summarizeTotal         = counter("summarize_total", "Total summaries produced")
	summarizeFallbackTotal = counter("summarize_fallback_total", "LLM summaries that fell back to the heuristic")
	summarizeNoContent     = counter("summarize_no_content_total", "Summarize requests without readable content")
	extractFailedTotal     = counter("extract_failed_total", "Text extractions that failed and returned empty text")

	interactionCreated = counter("interaction_created_total", "Likes and bookmarks created")
	interactionDeleted = counter("interaction_deleted_total", "Likes and bookmarks removed")

	tasksDroppedTotal = counter("tasks_dropped_total", "Background tasks dropped on a full queue")
	tasksFailedTotal  = counter("tasks_failed_total", "Background tasks that failed")

	jobsCompletedTotal = counter("jobs_completed_total", "Maintenance job runs that succeeded")
	jobsFailedTotal    = counter("jobs_failed_total", "Maintenance job runs that failed")

	panicsTotal = counter("http_panics_total", "Handler panics recovered")

	summarizeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "summarize_duration_ms",
		Help:    "Summarization duration in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	})
)

func init() {
	Registry.MustRegister(
		summarizeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func counter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	Registry.MustRegister(c)
	return c
}

// IncSummarize counts a completed summarization.
func IncSummarize() { summarizeTotal.Inc() }

// IncSummarizeFallback counts an LLM attempt that fell back to the heuristic path.
func IncSummarizeFallback() { summarizeFallbackTotal.Inc() }

// IncSummarizeNoContent counts requests rejected for lack of readable text.
func IncSummarizeNoContent() { summarizeNoContent.Inc() }

// IncExtractFailed counts parser failures that produced empty text.
func IncExtractFailed() { extractFailedTotal.Inc() }

// IncInteractionCreated counts likes and bookmarks created.
func IncInteractionCreated() { interactionCreated.Inc() }

// IncInteractionDeleted counts likes and bookmarks removed.
func IncInteractionDeleted() { interactionDeleted.Inc() }

// IncTaskDropped counts best-effort tasks dropped because the queue was full.
func IncTaskDropped() { tasksDroppedTotal.Inc() }

// IncTaskFailed counts best-effort tasks that returned an error or panicked.
func IncTaskFailed() { tasksFailedTotal.Inc() }

// IncJobCompleted counts maintenance job runs that succeeded.
func IncJobCompleted() { jobsCompletedTotal.Inc() }

// IncJobFailed counts maintenance job runs that failed.
func IncJobFailed() { jobsFailedTotal.Inc() }

// IncPanic counts a handler panic turned into a 500.
func IncPanic() { panicsTotal.Inc() }

// ObserveSummarizeDurationMs records a summarization duration in milliseconds.
func ObserveSummarizeDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	summarizeDuration.Observe(value)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))
}
