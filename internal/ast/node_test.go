package ast

import (
	"strings"
	"testing"

	"github.com/goliatone/go-markup/internal/params"
)

func TestNewElementCopiesInputs(t *testing.T) {
	attrs := map[string]string{"href": "http://example.com"}
	children := []Node{NewText("label")}

	el := NewElement(KindURL, "url", attrs, children...)
	attrs["href"] = "mutated"
	children[0] = NewText("changed")

	if href, _ := el.Attr("href"); href != "http://example.com" {
		t.Fatalf("expected element to keep its own attributes, got %q", href)
	}
	if got := PlainText(el); got != "label" {
		t.Fatalf("expected element to keep its own children, got %q", got)
	}
}

func TestElementAccessorsReturnCopies(t *testing.T) {
	el := NewElement(KindBold, "b", map[string]string{"x": "1"}, NewText("a"))

	el.Attrs()["x"] = "2"
	if value, _ := el.Attr("x"); value != "1" {
		t.Fatalf("expected attribute copy, got %q", value)
	}

	kids := el.Children()
	kids[0] = NewText("b")
	if got := PlainText(el); got != "a" {
		t.Fatalf("expected children copy, got %q", got)
	}
}

func TestAttrKeysSorted(t *testing.T) {
	el := NewElement(KindImage, "img", map[string]string{"width": "1", "alt": "x", "src": "y"})
	got := strings.Join(el.AttrKeys(), ",")
	if got != "alt,src,width" {
		t.Fatalf("unexpected key order %q", got)
	}
	if el.AttrOr("height", "auto") != "auto" {
		t.Fatal("expected fallback for missing attribute")
	}
}

func TestWalkDocumentOrderAndSkip(t *testing.T) {
	root := NewRoot(
		NewElement(KindBold, "b", nil, NewText("one")),
		NewElement(KindCode, "code", nil, NewText("skipped")),
		NewText("two"),
	)

	var seen []string
	Walk([]Node{root}, func(n Node, _ int) bool {
		if text, ok := n.(*Text); ok {
			seen = append(seen, text.Content())
		}
		return n.Kind() != KindCode
	})

	if got := strings.Join(seen, ","); got != "one,two" {
		t.Fatalf("unexpected traversal %q", got)
	}
}

func TestDump(t *testing.T) {
	root := NewRoot(
		NewElement(KindURL, "url", map[string]string{"href": "http://a"}, NewText("A")),
		NewModule("frames", params.Parse("amount=60")),
	)

	want := "root<_root>\n" +
		"  url href=\"http://a\"\n" +
		"    text \"A\"\n" +
		"  module frames \"amount=60\"\n"
	if got := Dump(root); got != want {
		t.Fatalf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
}

func TestKindClassification(t *testing.T) {
	if !KindMovie.IsEntity() || KindWiki.IsEntity() {
		t.Fatal("unexpected entity classification")
	}
	if !KindQuote.IsBlock() || KindBold.IsBlock() {
		t.Fatal("unexpected block classification")
	}
	if Kind(9999).String() != "unknown" {
		t.Fatal("expected unknown kind name")
	}
}
