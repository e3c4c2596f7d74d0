package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRenderDuration("html", 15*time.Millisecond)
	pr.IncrementRenderError("meta")
	pr.ObserveReferenceLookup("movie", true)
	pr.ObserveReferenceLookup("movie", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"markup_render_duration_seconds",
		"markup_render_errors_total",
		"markup_reference_lookups_total",
	} {
		if !names[want] {
			t.Fatalf("expected metric %s, got %v", want, names)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRenderDuration("html", time.Second)
	pr.IncrementRenderError("html")
	pr.ObserveReferenceLookup("game", true)
}

func TestNoOp(t *testing.T) {
	m := NoOp()
	m.ObserveRenderDuration("html", time.Second)
	m.IncrementRenderError("html")
	m.ObserveReferenceLookup("game", false)
}
