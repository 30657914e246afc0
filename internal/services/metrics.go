package services

import (
	"context"
	"time"

	"dailybriefing/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus metrics for briefing runs.
// All methods are safe on a nil receiver so metrics stay optional.
type Metrics struct {
	Runs               *prometheus.CounterVec
	Failures           *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ModelTokens        *prometheus.CounterVec
	EmailsSent         *prometheus.CounterVec
	LastSuccess        prometheus.Gauge
}

// NewMetrics registers the briefing metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_briefing_runs_total",
			Help: "Total number of briefing runs by status",
		}, []string{"status"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_briefing_failures_total",
			Help: "Total number of failed runs by error class",
		}, []string{"error_class"}),

		// Generation latency histogram
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "daily_briefing_generation_duration_seconds",
			Help:    "Generation API call latency in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 900}, // thinking + web search runs for minutes
		}),

		ModelTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_briefing_model_tokens_total",
			Help: "Tokens consumed by the generation API by direction",
		}, []string{"direction"}), // "input" or "output"

		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_briefing_emails_total",
			Help: "Outbound emails by kind and result",
		}, []string{"kind", "result"}), // kind: "briefing" or "error_notification"

		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "daily_briefing_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// ObserveGeneration records latency and token usage of a generation call
func (m *Metrics) ObserveGeneration(d time.Duration, resp *models.ModelResponse) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(d.Seconds())
	if resp != nil {
		m.ModelTokens.WithLabelValues("input").Add(float64(resp.Usage.InputTokens))
		m.ModelTokens.WithLabelValues("output").Add(float64(resp.Usage.OutputTokens))
	}
}

// ObserveEmail records one send attempt
func (m *Metrics) ObserveEmail(kind string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.EmailsSent.WithLabelValues(kind, result).Inc()
}

// ObserveRun records the outcome of a run
func (m *Metrics) ObserveRun(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Runs.WithLabelValues("failure").Inc()
		m.Failures.WithLabelValues(ClassifyError(err)).Inc()
		return
	}
	m.Runs.WithLabelValues("success").Inc()
	m.LastSuccess.SetToCurrentTime()
}

// PushMetrics sends everything in g to a Prometheus Pushgateway.
// One-shot runs (CLI, Lambda) have no scrape window, so they push instead.
func PushMetrics(ctx context.Context, url string, g prometheus.Gatherer) error {
	return push.New(url, "daily_briefing").Gatherer(g).PushContext(ctx)
}
