package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-markup/pkg/interfaces"
)

const namespace = "markup"

// PrometheusRecorder implements interfaces.RenderMetrics using Prometheus
// collectors. A nil recorder is valid and drops observations.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderErrors   *prom.CounterVec
	lookups        *prom.CounterVec
}

var _ interfaces.RenderMetrics = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of render calls by surface",
			Buckets:   prom.DefBuckets,
		}, []string{"surface"}),
		renderErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Failed render calls by surface",
		}, []string{"surface"}),
		lookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reference_lookups_total",
			Help:      "Entity title lookups by kind and result",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderErrors, pr.lookups)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(surface string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(surface).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncrementRenderError(surface string) {
	if p == nil || p.renderErrors == nil {
		return
	}
	p.renderErrors.WithLabelValues(surface).Inc()
}

func (p *PrometheusRecorder) ObserveReferenceLookup(kind string, found bool) {
	if p == nil || p.lookups == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	p.lookups.WithLabelValues(kind, result).Inc()
}
