package references

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// BunResolver reads titles from the entity_titles table.
type BunResolver struct {
	db     *bun.DB
	repo   repository.Repository[*EntityTitle]
	logger interfaces.Logger
	now    func() time.Time
}

// BunOption customises a BunResolver.
type BunOption func(*BunResolver)

// WithBunLogger attaches a logger for lookup failures.
func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(r *BunResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBunClock overrides the clock used for record timestamps.
func WithBunClock(now func() time.Time) BunOption {
	return func(r *BunResolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewBunResolver builds a resolver over db without a repository cache.
func NewBunResolver(db *bun.DB, opts ...BunOption) *BunResolver {
	return NewBunResolverWithCache(db, nil, nil, opts...)
}

// NewBunResolverWithCache wraps the title repository with go-repository-cache
// when both cacheService and keySerializer are supplied.
func NewBunResolverWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...BunOption) *BunResolver {
	var repo repository.Repository[*EntityTitle] = NewTitleRepository(db)
	if cacheService != nil && keySerializer != nil {
		repo = repositorycache.New(repo, cacheService, keySerializer)
	}
	r := &BunResolver{
		db:     db,
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Migrate creates the entity_titles table when it does not exist.
func (r *BunResolver) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*EntityTitle)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("references: create entity_titles: %w", err)
	}
	return nil
}

// Store inserts or replaces the title for kind and id.
func (r *BunResolver) Store(ctx context.Context, kind ast.Kind, id int, title string) (*EntityTitle, error) {
	if !kind.IsEntity() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("references: empty title for %s", key(kind, id))
	}

	k := key(kind, id)
	now := r.now()
	existing, err := r.repo.GetByIdentifier(ctx, k)
	switch {
	case err == nil && existing != nil:
		existing.Title = title
		existing.UpdatedAt = now
		return r.repo.Update(ctx, existing)
	case err != nil && !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		return nil, fmt.Errorf("references: load %s: %w", k, err)
	}

	return r.repo.Create(ctx, &EntityTitle{
		ID:        titleID(k),
		Key:       k,
		Kind:      kind.String(),
		EntityID:  id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// List returns every stored title.
func (r *BunResolver) List(ctx context.Context) ([]*EntityTitle, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunResolver) lookup(ctx context.Context, kind ast.Kind, id int) (string, bool, error) {
	k := key(kind, id)
	record, err := r.repo.GetByIdentifier(ctx, k)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return "", false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		logging.WithFields(r.logger, map[string]any{
			"key":   k,
			"error": err,
		}).Error("references.lookup.failed")
		return "", false, fmt.Errorf("references: lookup %s: %w", k, err)
	}
	if record == nil || record.Title == "" {
		return "", false, nil
	}
	return record.Title, true, nil
}

func (r *BunResolver) MovieTitle(ctx context.Context, id int) (string, bool, error) {
	return r.lookup(ctx, ast.KindMovie, id)
}

func (r *BunResolver) SubmissionTitle(ctx context.Context, id int) (string, bool, error) {
	return r.lookup(ctx, ast.KindSubmission, id)
}

func (r *BunResolver) GameTitle(ctx context.Context, id int) (string, bool, error) {
	return r.lookup(ctx, ast.KindGame, id)
}

func (r *BunResolver) GameGroupTitle(ctx context.Context, id int) (string, bool, error) {
	return r.lookup(ctx, ast.KindGameGroup, id)
}

var _ interfaces.ReferenceResolver = (*BunResolver)(nil)
