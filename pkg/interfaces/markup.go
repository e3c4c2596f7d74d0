package interfaces

import (
	"context"
	"time"
)

// ReferenceResolver maps entity ids to display titles at render time. A
// missing entity is reported with found=false and a nil error; err is reserved
// for lookups that could not be answered. Implementations must be safe for
// concurrent use when a tree is rendered from several goroutines.
type ReferenceResolver interface {
	MovieTitle(ctx context.Context, id int) (title string, found bool, err error)
	SubmissionTitle(ctx context.Context, id int) (title string, found bool, err error)
	GameTitle(ctx context.Context, id int) (title string, found bool, err error)
	GameGroupTitle(ctx context.Context, id int) (title string, found bool, err error)
}

// LinkNormalizer turns a human wiki link target into the canonical page key.
type LinkNormalizer interface {
	Normalize(target string) string
}

// LinkNormalizerFunc adapts a function to LinkNormalizer.
type LinkNormalizerFunc func(target string) string

// Normalize implements LinkNormalizer.
func (f LinkNormalizerFunc) Normalize(target string) string {
	return f(target)
}

// RenderMetrics captures rendering observations.
type RenderMetrics interface {
	ObserveRenderDuration(surface string, duration time.Duration)
	IncrementRenderError(surface string)
	ObserveReferenceLookup(kind string, found bool)
}
