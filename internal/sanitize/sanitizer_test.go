package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-markup/internal/video"
)

func TestURLPolicy(t *testing.T) {
	allowed := []string{"http://example.com", "https://example.com/a?b=c", "mailto:a@b.c", "/Wiki/Page", "page", ""}
	for _, raw := range allowed {
		if !SafeURL(raw) {
			t.Fatalf("expected %q to be allowed", raw)
		}
	}

	rejected := []string{"javascript:alert(1)", "JavaScript:alert(1)", "data:text/html,x", "vbscript:x", "http://a\nb"}
	for _, raw := range rejected {
		if SafeURL(raw) {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}

	err := NewURLPolicy().Validate("javascript:alert(1)")
	if !errors.Is(err, ErrSchemeNotPermitted) {
		t.Fatalf("expected ErrSchemeNotPermitted, got %v", err)
	}
}

func TestURLPolicyCustomSchemes(t *testing.T) {
	policy := NewURLPolicy("https")
	if policy.Safe("http://example.com") {
		t.Fatal("expected http to be rejected by https-only policy")
	}
	if !policy.Safe("HTTPS://example.com") {
		t.Fatal("expected scheme match to ignore case")
	}
}

func TestColor(t *testing.T) {
	for _, raw := range []string{"red", "#fff", "#A0B1C2", " blue "} {
		if _, ok := Color(raw); !ok {
			t.Fatalf("expected %q to be a color", raw)
		}
	}
	for _, raw := range []string{"red;background:url(x)", "#12", "expression(alert(1))", ""} {
		if _, ok := Color(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestSize(t *testing.T) {
	cases := map[string]string{
		"12":    "12px",
		"1.5em": "1.5em",
		"150%":  "150%",
		"10PT":  "10pt",
	}
	for raw, want := range cases {
		got, ok := Size(raw)
		if !ok || got != want {
			t.Fatalf("Size(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	for _, raw := range []string{"big", "12vw", "-1", "1e9"} {
		if _, ok := Size(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestSanitizerKeepsRendererOutput(t *testing.T) {
	s := NewSanitizer(nil)

	out := s.Sanitize(`<div class="quote"><blockquote>hi</blockquote></div><span style="color:red">x</span><script>alert(1)</script>`)
	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Fatalf("expected script to be removed, got %q", out)
	}
	if !strings.Contains(out, `<div class="quote">`) {
		t.Fatalf("expected class to survive, got %q", out)
	}
	if !strings.Contains(out, `style="color:red"`) {
		t.Fatalf("expected inline color to survive, got %q", out)
	}

	out = s.Sanitize(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(out, "javascript") {
		t.Fatalf("expected javascript href to be removed, got %q", out)
	}
}

func TestSanitizerKeepsNicovideoEmbed(t *testing.T) {
	params, err := video.ParseURL("https://www.nicovideo.jp/watch/sm9", nil, nil)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	embed, ok := video.NewResolver().Resolve(params)
	if !ok {
		t.Fatal("expected a nicovideo embed")
	}

	out := NewSanitizer(nil).Sanitize(embed)
	if !strings.Contains(out, `src="data:text/html;base64,`) {
		t.Fatalf("expected the data document to survive, got %q", out)
	}
	if !strings.Contains(out, `width="480"`) {
		t.Fatalf("expected embed size to survive, got %q", out)
	}
}

func TestSanitizerConfinesDataURLsToEmbeds(t *testing.T) {
	s := NewSanitizer(nil)
	for _, html := range []string{
		`<a href="data:text/html;base64,PHNjcmlwdD4=">x</a>`,
		`<img src="data:text/html;base64,PHNjcmlwdD4=">`,
		`<iframe src="data:text/plain,hello"></iframe>`,
	} {
		if out := s.Sanitize(html); strings.Contains(out, "data:") {
			t.Fatalf("expected data url to be removed from %q, got %q", html, out)
		}
	}

	out := s.Sanitize(`<a href="/Wiki/Page">w</a><a href="https://example.com">e</a>`)
	if !strings.Contains(out, `href="/Wiki/Page"`) || !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("expected ordinary links to survive, got %q", out)
	}
}
