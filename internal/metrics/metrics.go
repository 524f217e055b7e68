package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors recorded by the oracle caller, the stages and
// the pipeline controller. A nil *Metrics is valid and records nothing.
type Metrics struct {
	OracleCalls      *prometheus.CounterVec
	OracleRetries    *prometheus.CounterVec
	StageResults     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_oracle_calls_total",
			Help: "Text generation attempts by model and outcome",
		}, []string{"model", "outcome"}),
		OracleRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_oracle_retries_total",
			Help: "Retries triggered by quota-exceeded responses",
		}, []string{"model"}),
		StageResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_stage_results_total",
			Help: "Stage results by stage and result status",
		}, []string{"stage", "status"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_pipeline_duration_seconds",
			Help:    "Wall time of complete pipeline runs",
			Buckets: []float64{5, 10, 30, 60, 120, 300, 600},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.OracleCalls, m.OracleRetries, m.StageResults, m.PipelineDuration)
	}
	return m
}

func (m *Metrics) ObserveCall(model, outcome string) {
	if m == nil {
		return
	}
	m.OracleCalls.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) ObserveRetry(model string) {
	if m == nil {
		return
	}
	m.OracleRetries.WithLabelValues(model).Inc()
}

func (m *Metrics) ObserveStage(stage, status string) {
	if m == nil {
		return
	}
	m.StageResults.WithLabelValues(stage, status).Inc()
}

func (m *Metrics) ObservePipeline(d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineDuration.Observe(d.Seconds())
}
