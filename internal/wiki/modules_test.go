package wiki

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/params"
	"github.com/goliatone/go-markup/internal/render"
)

func lowerAndRender(t *testing.T, registry *Registry, markup string) string {
	t.Helper()
	nodes := registry.Lower(mustParse(t, markup))
	html, err := render.New().RenderString(context.Background(), ast.NewRoot(nodes...), nil)
	if err != nil {
		t.Fatalf("render %q: %v", markup, err)
	}
	return html
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	fn := func(params.Params) ([]ast.Node, error) { return nil, nil }

	if err := registry.Register("Custom", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("custom", fn); !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("expected ErrDuplicateModule, got %v", err)
	}
	if err := registry.Register("  ", fn); !errors.Is(err, ErrInvalidModule) {
		t.Fatalf("expected ErrInvalidModule for empty name, got %v", err)
	}
	if err := registry.Register("other", nil); !errors.Is(err, ErrInvalidModule) {
		t.Fatalf("expected ErrInvalidModule for nil func, got %v", err)
	}
	if _, ok := registry.Lookup("CUSTOM"); !ok {
		t.Fatal("expected case-insensitive lookup")
	}
}

func TestDefaultRegistry_Names(t *testing.T) {
	got := strings.Join(NewDefaultRegistry().Names(), ",")
	want := "br,frames,game,gamegroup,movie,movielist,submission,video,year"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestLower_BuiltIns(t *testing.T) {
	registry := NewDefaultRegistry()
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{"frames", "[module:frames|amount=120|fps=30]", `<p><abbr title="120 frames">0:04.000</abbr></p>`},
		{"frames default fps", "[module:frames|amount=60]", `<p><abbr title="60 frames">0:01.000</abbr></p>`},
		{"movie", "[module:movie|id=5]", `<p><a href="/5M">Movie #5</a></p>`},
		{"game group", "[module:gamegroup|id=3]", `<p><a href="/GameGroups/3">Game group #3</a></p>`},
		{"movie list", "[module:movielist|ids=1,x,2]", `<ul><li><a href="/1M">Movie #1</a></li><li><a href="/2M">Movie #2</a></li></ul>`},
		{"block module splits paragraph", "See [module:movielist|ids=4] below", `<p>See </p><ul><li><a href="/4M">Movie #4</a></li></ul><p> below</p>`},
		{"year", "[module:year|num=Y2014]", `<p><time datetime="2014">2014</time></p>`},
		{"br", "a[module:br]b", `<p>a<br>b</p>`},
		{"unknown module", "[module:nope]", `<p><span class="module-error">Unknown module: nope</span></p>`},
		{"missing parameter", "[module:movie]", `<p><span class="module-error">Module movie: wiki: invalid module parameter: id is required</span></p>`},
		{"nested in emphasis", "'''[module:game|id=7]'''", `<p><b><a href="/Games/7">Game #7</a></b></p>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := lowerAndRender(t, registry, tc.markup); got != tc.want {
				t.Fatalf("render %q\n got: %s\nwant: %s", tc.markup, got, tc.want)
			}
		})
	}
}

func TestLower_VideoModule(t *testing.T) {
	registry := NewDefaultRegistry()
	html := lowerAndRender(t, registry, "[module:video|url=https://youtu.be/abc|w=640|h=360]")
	if !strings.Contains(html, `src="https://www.youtube.com/embed/abc"`) || !strings.Contains(html, `width="640"`) {
		t.Fatalf("expected a sized youtube embed, got %s", html)
	}
	if strings.HasPrefix(html, "<p>") || strings.Contains(html, "</p>") {
		t.Fatalf("video embed must not sit inside a paragraph, got %s", html)
	}

	html = lowerAndRender(t, registry, "[module:video|url=javascript://x]")
	if !strings.Contains(html, "module-error") {
		t.Fatalf("expected module error for unsafe url, got %s", html)
	}
}

func TestLower_CustomModule(t *testing.T) {
	registry := NewDefaultRegistry()
	err := registry.Register("greeting", func(p params.Params) ([]ast.Node, error) {
		name, ok := p.String("name")
		if !ok {
			return nil, errors.New("name missing")
		}
		return []ast.Node{ast.NewText("Hello, " + name)}, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := lowerAndRender(t, registry, "[module:greeting|name=Ada]"); got != "<p>Hello, Ada</p>" {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestLower_LeavesTreeWithoutModulesIntact(t *testing.T) {
	nodes := mustParse(t, "plain '''text'''")
	lowered := NewDefaultRegistry().Lower(nodes)
	if ast.Dump(lowered...) != ast.Dump(nodes...) {
		t.Fatalf("lowering changed a module-free tree:\n%s\n%s", ast.Dump(nodes...), ast.Dump(lowered...))
	}
}
