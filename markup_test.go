package markup_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	markup "github.com/goliatone/go-markup"
)

func newEngine(t *testing.T, mutate func(*markup.Config)) *markup.Engine {
	t.Helper()
	cfg := markup.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := markup.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func TestEngine_RenderPost(t *testing.T) {
	engine := newEngine(t, func(cfg *markup.Config) {
		cfg.References.Titles = []markup.TitleConfig{{Kind: "game", ID: 1, Title: "Super Mario Bros."}}
	})
	ctx := context.Background()

	html, err := engine.RenderPost(ctx, "[b]Hi[/b] [game]1[/game]", markup.PostOptions{EnableBBCode: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<b>Hi</b> <a href="/Games/1">Super Mario Bros.</a>` {
		t.Fatalf("unexpected html %s", html)
	}

	meta, err := engine.PostMetaDescription(ctx, "[b]Hi[/b] [game]1[/game]", markup.PostOptions{EnableBBCode: true})
	if err != nil || meta != "Hi Super Mario Bros." {
		t.Fatalf("unexpected meta %q, %v", meta, err)
	}

	title, ok, err := engine.Title(ctx, "game", 1)
	if err != nil || !ok || title != "Super Mario Bros." {
		t.Fatalf("unexpected title %q %v %v", title, ok, err)
	}
}

func TestEngine_Wiki(t *testing.T) {
	engine := newEngine(t, nil)
	ctx := context.Background()

	html, err := engine.RenderWikiPage(ctx, "See [Front Page].")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<p>See <a href="/FrontPage">Front Page</a>.</p>` {
		t.Fatalf("unexpected html %s", html)
	}

	refs, err := engine.WikiReferrals("See [Front Page].")
	if err != nil || len(refs) != 1 || refs[0].Link != "FrontPage" {
		t.Fatalf("unexpected referrals %+v, %v", refs, err)
	}

	broken, err := engine.RenderWikiPage(ctx, "[unterminated")
	if err != nil || !strings.Contains(broken, "wiki-error") {
		t.Fatalf("expected error page, got %s, %v", broken, err)
	}
}

func TestEngine_EmbedVideo(t *testing.T) {
	engine := newEngine(t, nil)
	embed, ok := engine.EmbedVideo("https://www.youtube.com/watch?v=dQw4w9WgXcQ", nil, nil)
	if !ok || !strings.Contains(embed, "dQw4w9WgXcQ") {
		t.Fatalf("expected youtube embed, got %q", embed)
	}
	if _, ok := engine.EmbedVideo("https://example.com/clip.mp4", nil, nil); ok {
		t.Fatal("unsupported hosts must not embed")
	}
}

func TestEngine_StoreTitle(t *testing.T) {
	static := newEngine(t, nil)
	if err := static.StoreTitle(context.Background(), "movie", 1, "x"); !errors.Is(err, markup.ErrTitleStoreUnavailable) {
		t.Fatalf("expected ErrTitleStoreUnavailable, got %v", err)
	}

	engine := newEngine(t, func(cfg *markup.Config) {
		cfg.References.Driver = "sqlite"
		cfg.References.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
		cfg.Cache.Enabled = false
	})
	ctx := context.Background()
	if err := engine.StoreTitle(ctx, "Movie", 9, "Mega Man 2 in 23:30"); err != nil {
		t.Fatalf("store: %v", err)
	}
	html, err := engine.RenderPost(ctx, "[movie]9[/movie]", markup.PostOptions{EnableBBCode: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<a href="/9M">Mega Man 2 in 23:30</a>` {
		t.Fatalf("unexpected html %s", html)
	}
}

func TestEngine_ExecuteCommands(t *testing.T) {
	engine := newEngine(t, nil)
	var results []markup.CommandResult
	collect := func(r markup.CommandResult) { results = append(results, r) }

	if err := engine.ExecutePost(context.Background(), markup.RenderPostCommand{
		Source:       "[u]x[/u]",
		EnableBBCode: true,
		Callback:     collect,
	}); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := engine.ExecuteWiki(context.Background(), markup.RenderWikiCommand{
		Source:   "[Target]",
		Output:   markup.OutputReferrals,
		Callback: collect,
	}); err != nil {
		t.Fatalf("wiki: %v", err)
	}
	if len(results) != 2 || results[0].Text != "<u>x</u>" || len(results[1].Referrals) != 1 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := markup.DefaultConfig()
	cfg.Forum.MaxDepth = -1
	if _, err := markup.New(context.Background(), cfg); !errors.Is(err, markup.ErrMaxDepthInvalid) {
		t.Fatalf("expected ErrMaxDepthInvalid, got %v", err)
	}
}
