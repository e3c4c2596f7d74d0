package references

import (
	"context"
	"sync"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// Static resolves titles from an in-memory table. It is safe for concurrent
// use and suits tests and small fixed catalogues.
type Static struct {
	mu     sync.RWMutex
	titles map[string]string
}

// NewStatic returns an empty table.
func NewStatic() *Static {
	return &Static{titles: make(map[string]string)}
}

// Set stores title for kind and id. An empty title removes the entry.
func (s *Static) Set(kind ast.Kind, id int, title string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == "" {
		delete(s.titles, key(kind, id))
		return s
	}
	s.titles[key(kind, id)] = title
	return s
}

// Len reports the number of stored titles.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.titles)
}

func (s *Static) lookup(ctx context.Context, kind ast.Kind, id int) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	title, ok := s.titles[key(kind, id)]
	return title, ok, nil
}

func (s *Static) MovieTitle(ctx context.Context, id int) (string, bool, error) {
	return s.lookup(ctx, ast.KindMovie, id)
}

func (s *Static) SubmissionTitle(ctx context.Context, id int) (string, bool, error) {
	return s.lookup(ctx, ast.KindSubmission, id)
}

func (s *Static) GameTitle(ctx context.Context, id int) (string, bool, error) {
	return s.lookup(ctx, ast.KindGame, id)
}

func (s *Static) GameGroupTitle(ctx context.Context, id int) (string, bool, error) {
	return s.lookup(ctx, ast.KindGameGroup, id)
}

var _ interfaces.ReferenceResolver = (*Static)(nil)
