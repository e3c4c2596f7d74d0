package references

import (
	"context"
	"errors"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// Chain consults resolvers in order and returns the first title found. A
// failing resolver is skipped; its error surfaces only when no later
// resolver finds the title.
type Chain []interfaces.ReferenceResolver

// NewChain drops nil resolvers.
func NewChain(resolvers ...interfaces.ReferenceResolver) Chain {
	out := make(Chain, 0, len(resolvers))
	for _, r := range resolvers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (c Chain) lookup(ctx context.Context, kind ast.Kind, id int) (string, bool, error) {
	var errs []error
	for _, r := range c {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		title, found, err := Title(ctx, r, kind, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			return title, true, nil
		}
	}
	return "", false, errors.Join(errs...)
}

func (c Chain) MovieTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindMovie, id)
}

func (c Chain) SubmissionTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindSubmission, id)
}

func (c Chain) GameTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindGame, id)
}

func (c Chain) GameGroupTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindGameGroup, id)
}

var _ interfaces.ReferenceResolver = Chain(nil)
