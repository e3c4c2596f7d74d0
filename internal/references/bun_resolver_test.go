package references_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/references"
	"github.com/goliatone/go-markup/pkg/testsupport"
)

func newBunResolver(t *testing.T, withCache bool) *references.BunResolver {
	t.Helper()
	db := testsupport.NewBunDB(t)
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	clock := references.WithBunClock(func() time.Time { return now })

	var resolver *references.BunResolver
	if withCache {
		cacheCfg := repocache.DefaultConfig()
		cacheCfg.TTL = time.Minute
		cacheSvc, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			t.Fatalf("cache service: %v", err)
		}
		resolver = references.NewBunResolverWithCache(db, cacheSvc, repocache.NewDefaultKeySerializer(), clock)
	} else {
		resolver = references.NewBunResolver(db, clock)
	}
	if err := resolver.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return resolver
}

func TestBunResolver(t *testing.T) {
	for _, tc := range []struct {
		name  string
		cache bool
	}{
		{name: "plain"},
		{name: "cached", cache: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			resolver := newBunResolver(t, tc.cache)

			if _, err := resolver.Store(ctx, ast.KindMovie, 42, "  Super Mario Bros. 3  "); err != nil {
				t.Fatalf("store movie: %v", err)
			}
			if _, err := resolver.Store(ctx, ast.KindGameGroup, 3, "Mario"); err != nil {
				t.Fatalf("store game group: %v", err)
			}

			got, ok, err := resolver.MovieTitle(ctx, 42)
			if err != nil || !ok || got != "Super Mario Bros. 3" {
				t.Fatalf("movie 42: %q %v %v", got, ok, err)
			}
			if got, ok, _ := resolver.GameGroupTitle(ctx, 3); !ok || got != "Mario" {
				t.Fatalf("game group 3: %q %v", got, ok)
			}
			if _, ok, err := resolver.GameTitle(ctx, 42); ok || err != nil {
				t.Fatalf("game 42 should be a clean miss: %v %v", ok, err)
			}
			if _, ok, err := resolver.SubmissionTitle(ctx, 1); ok || err != nil {
				t.Fatalf("submission 1 should be a clean miss: %v %v", ok, err)
			}

			records, err := resolver.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d", len(records))
			}
		})
	}
}

func TestBunResolver_StoreReplacesTitle(t *testing.T) {
	ctx := context.Background()
	resolver := newBunResolver(t, false)

	first, err := resolver.Store(ctx, ast.KindGame, 7, "Old name")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	second, err := resolver.Store(ctx, ast.KindGame, 7, "New name")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same record id, got %s and %s", first.ID, second.ID)
	}
	if got, _, _ := resolver.GameTitle(ctx, 7); got != "New name" {
		t.Fatalf("expected replaced title, got %q", got)
	}
	records, err := resolver.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single row, got %d", len(records))
	}
	if records[0].Key != "game:7" || records[0].EntityID != 7 || records[0].Kind != "game" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestBunResolver_StoreValidation(t *testing.T) {
	ctx := context.Background()
	resolver := newBunResolver(t, false)

	if _, err := resolver.Store(ctx, ast.KindBold, 1, "x"); !errors.Is(err, references.ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
	if _, err := resolver.Store(ctx, ast.KindMovie, 1, "   "); err == nil {
		t.Fatalf("expected error for blank title")
	}
}

func TestBunResolver_BehindCachedAndChain(t *testing.T) {
	ctx := context.Background()
	resolver := newBunResolver(t, false)
	if _, err := resolver.Store(ctx, ast.KindSubmission, 11, "Any% in 4:57"); err != nil {
		t.Fatalf("store: %v", err)
	}

	overrides := references.NewStatic().Set(ast.KindSubmission, 12, "Override")
	chain := references.NewChain(overrides, references.NewCached(resolver, newCacheService(t)))

	if got, ok, err := chain.SubmissionTitle(ctx, 11); err != nil || !ok || got != "Any% in 4:57" {
		t.Fatalf("submission 11: %q %v %v", got, ok, err)
	}
	if got, ok, _ := chain.SubmissionTitle(ctx, 12); !ok || got != "Override" {
		t.Fatalf("submission 12: %q %v", got, ok)
	}
}
