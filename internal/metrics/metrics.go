package metrics

import (
	"time"

	"github.com/goliatone/go-markup/pkg/interfaces"
)

// NoOp returns a metrics recorder that drops every observation.
func NoOp() interfaces.RenderMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRenderDuration(string, time.Duration) {}

func (noopMetrics) IncrementRenderError(string) {}

func (noopMetrics) ObserveReferenceLookup(string, bool) {}
