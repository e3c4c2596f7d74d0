package references

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// ErrUnsupportedKind is returned when a kind has no title lookup.
var ErrUnsupportedKind = errors.New("references: kind has no title lookup")

// Kinds lists the entity kinds that resolve to titles.
var Kinds = []ast.Kind{ast.KindMovie, ast.KindSubmission, ast.KindGame, ast.KindGameGroup}

// Title dispatches a lookup for kind to the matching resolver method. A nil
// resolver finds nothing.
func Title(ctx context.Context, r interfaces.ReferenceResolver, kind ast.Kind, id int) (string, bool, error) {
	if r == nil {
		return "", false, nil
	}
	switch kind {
	case ast.KindMovie:
		return r.MovieTitle(ctx, id)
	case ast.KindSubmission:
		return r.SubmissionTitle(ctx, id)
	case ast.KindGame:
		return r.GameTitle(ctx, id)
	case ast.KindGameGroup:
		return r.GameGroupTitle(ctx, id)
	default:
		return "", false, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// ParseKind maps a kind name such as "movie" or "gamegroup" to its Kind.
func ParseKind(name string) (ast.Kind, error) {
	for _, kind := range Kinds {
		if kind.String() == name {
			return kind, nil
		}
	}
	return ast.KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

func key(kind ast.Kind, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
