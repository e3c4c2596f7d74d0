package forum

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markup/internal/sanitize"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []string
	fields map[string]any
}

func (r *recordingLogger) record(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, msg)
}

func (r *recordingLogger) Trace(msg string, _ ...any) { r.record(msg) }
func (r *recordingLogger) Debug(msg string, _ ...any) { r.record(msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.record(msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.record(msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.record(msg) }
func (r *recordingLogger) Fatal(msg string, _ ...any) { r.record(msg) }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fields == nil {
		r.fields = map[string]any{}
	}
	for key, value := range fields {
		r.fields[key] = value
	}
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

type recordingMetrics struct {
	mu        sync.Mutex
	durations map[string]int
	errors    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{durations: map[string]int{}, errors: map[string]int{}}
}

func (m *recordingMetrics) ObserveRenderDuration(surface string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[surface]++
}

func (m *recordingMetrics) IncrementRenderError(surface string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[surface]++
}

func (m *recordingMetrics) ObserveReferenceLookup(string, bool) {}

type gameTitles map[int]string

func (gameTitles) MovieTitle(context.Context, int) (string, bool, error) { return "", false, nil }

func (gameTitles) SubmissionTitle(context.Context, int) (string, bool, error) {
	return "", false, nil
}

func (g gameTitles) GameTitle(_ context.Context, id int) (string, bool, error) {
	title, ok := g[id]
	return title, ok, nil
}

func (gameTitles) GameGroupTitle(context.Context, int) (string, bool, error) {
	return "", false, nil
}

var bbcodeOnly = PostOptions{EnableBBCode: true}

func TestRenderPost(t *testing.T) {
	logger := &recordingLogger{}
	recorder := newRecordingMetrics()
	service := NewService(
		WithResolver(gameTitles{1: "Super Mario Bros."}),
		WithLogger(logger),
		WithMetrics(recorder),
	)

	html, err := service.RenderPost(context.Background(), "[b]Hi[/b] [game]1[/game]",
		PostOptions{EnableBBCode: true, SourceID: "post-42"})
	if err != nil {
		t.Fatalf("render post: %v", err)
	}
	if html != `<b>Hi</b> <a href="/Games/1">Super Mario Bros.</a>` {
		t.Fatalf("unexpected html %s", html)
	}
	if recorder.durations[metricsSurface] != 1 || recorder.errors[metricsSurface] != 0 {
		t.Fatalf("unexpected metrics %+v %+v", recorder.durations, recorder.errors)
	}
	if logger.fields["surface"] != "post" || logger.fields["source_id"] != "post-42" {
		t.Fatalf("expected render context fields, got %+v", logger.fields)
	}
	if len(logger.events) == 0 || logger.events[len(logger.events)-1] != "forum.render.completed" {
		t.Fatalf("expected completion event, got %v", logger.events)
	}
}

func TestRenderPost_SyntaxFlags(t *testing.T) {
	service := NewService()
	cases := []struct {
		name string
		opts PostOptions
		want string
	}{
		{"plain", PostOptions{}, "[b]x[/b] &lt;i&gt;y&lt;/i&gt;"},
		{"bbcode", bbcodeOnly, "<b>x</b> &lt;i&gt;y&lt;/i&gt;"},
		{"html", PostOptions{EnableHTML: true}, "[b]x[/b] <i>y</i>"},
		{"both", PostOptions{EnableBBCode: true, EnableHTML: true}, "<b>x</b> <i>y</i>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			html, err := service.RenderPost(context.Background(), "[b]x[/b] <i>y</i>", tc.opts)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if html != tc.want {
				t.Fatalf("got %s want %s", html, tc.want)
			}
		})
	}
}

func TestRenderPost_MaxDepth(t *testing.T) {
	service := NewService(WithMaxDepth(2))
	html, err := service.RenderPost(context.Background(), "[b][i][u]x[/u][/i][/b]", bbcodeOnly)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "<b><i>[u]x[/u]</i></b>" {
		t.Fatalf("unexpected html %s", html)
	}
}

func TestRenderPost_Sanitizer(t *testing.T) {
	service := NewService(WithSanitizer(sanitize.NewSanitizer(nil)))
	html, err := service.RenderPost(context.Background(), "[b]x[/b] [url=http://example.com]site[/url]", bbcodeOnly)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(html, "<b>x</b>") || !strings.Contains(html, `rel="nofollow"`) {
		t.Fatalf("expected sanitized output, got %s", html)
	}
}

func TestRenderPost_Cancelled(t *testing.T) {
	recorder := newRecordingMetrics()
	service := NewService(WithMetrics(recorder))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.RenderPost(ctx, "[b]x[/b]", bbcodeOnly)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if recorder.errors[metricsSurface] != 1 {
		t.Fatalf("expected one recorded error, got %+v", recorder.errors)
	}
}

func TestMetaDescription(t *testing.T) {
	service := NewService(WithMetaLength(20))
	meta, err := service.MetaDescription(context.Background(),
		"[quote=Someone]Quoted words[/quote] and a [url]http://example.com[/url] reply that goes on", bbcodeOnly)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta != "Quoted words and..." {
		t.Fatalf("unexpected meta %q", meta)
	}

	full, err := NewService(WithMetaLength(0)).MetaDescription(context.Background(), "[b]bold[/b] text", bbcodeOnly)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if full != "bold text" {
		t.Fatalf("unexpected meta %q", full)
	}
}
