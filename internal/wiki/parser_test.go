package wiki

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

func mustParse(t *testing.T, markup string) []ast.Node {
	t.Helper()
	nodes, err := Parse(markup)
	if err != nil {
		t.Fatalf("parse %q: %v", markup, err)
	}
	return nodes
}

func TestParse_Blocks(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "paragraphs and toggles",
			markup: "Hello '''bold''' and ''it''\nnext line\n\nSecond",
			want: "paragraph\n  text \"Hello \"\n  bold\n    text \"bold\"\n  text \" and \"\n  italic\n    text \"it\"\n  text \"\\nnext line\"\n" +
				"paragraph\n  text \"Second\"\n",
		},
		{
			name:   "open toggles close at block end",
			markup: "__under ''both",
			want:   "paragraph\n  underline\n    text \"under \"\n    italic\n      text \"both\"\n",
		},
		{
			name:   "links",
			markup: "See [ArticleIndex], [game resources/nes|NES stuff] and [https://example.com|Ex]",
			want: "paragraph\n  text \"See \"\n" +
				"  wiki_link href=\"/ArticleIndex\" page=\"ArticleIndex\"\n    text \"ArticleIndex\"\n  text \", \"\n" +
				"  wiki_link href=\"/GameResources/Nes\" page=\"GameResources/Nes\"\n    text \"NES stuff\"\n  text \" and \"\n" +
				"  url href=\"https://example.com\"\n    text \"Ex\"\n",
		},
		{
			name:   "unsafe external link keeps its label",
			markup: "[javascript://alert(1)|click]",
			want:   "paragraph\n  text \"click\"\n",
		},
		{
			name:   "escaped bracket and empty link",
			markup: "a [[b] []",
			want:   "paragraph\n  text \"a [b] []\"\n",
		},
		{
			name:   "module",
			markup: "x [module:Frames|amount=120|fps=30] y",
			want:   "paragraph\n  text \"x \"\n  module frames \"amount=120|fps=30\"\n  text \" y\"\n",
		},
		{
			name:   "line break",
			markup: "a%%%b",
			want:   "paragraph\n  text \"a\"\n  line_break\n  text \"b\"\n",
		},
		{
			name:   "rule",
			markup: "a\n----\nb",
			want:   "paragraph\n  text \"a\"\nrule\nparagraph\n  text \"b\"\n",
		},
		{
			name:   "nested lists",
			markup: "* a\n** b\n* c\n# one",
			want: "list\n  list_item\n    text \"a\"\n    list\n      list_item\n        text \"b\"\n  list_item\n    text \"c\"\n" +
				"list type=\"1\"\n  list_item\n    text \"one\"\n",
		},
		{
			name:   "table",
			markup: "||H1||H2||\n|a|''b''|",
			want: "table\n  row\n    header_cell\n      text \"H1\"\n    header_cell\n      text \"H2\"\n" +
				"  row\n    cell\n      text \"a\"\n    cell\n      italic\n        text \"b\"\n",
		},
		{
			name:   "preformatted",
			markup: " code [b]\n  indented\ntext",
			want:   "preformatted\n  text \"code [b]\\n indented\"\nparagraph\n  text \"text\"\n",
		},
		{
			name:   "crlf line endings",
			markup: "a\r\n\r\nb",
			want:   "paragraph\n  text \"a\"\nparagraph\n  text \"b\"\n",
		},
		{
			name:   "empty input",
			markup: "",
			want:   "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ast.Dump(mustParse(t, tc.markup)...); got != tc.want {
				t.Fatalf("parse %q\n got:\n%s\nwant:\n%s", tc.markup, got, tc.want)
			}
		})
	}
}

func TestParse_HeadingLevelsAndIDs(t *testing.T) {
	nodes := mustParse(t, "! Small\n!!!! Getting Started")
	if len(nodes) != 2 {
		t.Fatalf("expected two headings, got %s", ast.Dump(nodes...))
	}
	wantID, err := slug.Normalize("Getting Started")
	if err != nil {
		t.Fatalf("slug: %v", err)
	}

	small := nodes[0].(*ast.Element)
	if small.Kind() != ast.KindHeading || small.AttrOr("level", "") != "4" {
		t.Fatalf("expected level 4 heading, got %s", ast.Dump(small))
	}
	big := nodes[1].(*ast.Element)
	if big.AttrOr("level", "") != "1" || big.AttrOr("id", "") != wantID || ast.PlainText(big) != "Getting Started" {
		t.Fatalf("unexpected heading %s", ast.Dump(big))
	}
}

func TestParse_AnchorLink(t *testing.T) {
	nodes := mustParse(t, "[#Top] [#Top|back up] [#]")
	wantID, _ := slug.Normalize("Top")
	para := nodes[0].(*ast.Element)
	children := para.Children()

	first := children[0].(*ast.Element)
	if first.Kind() != ast.KindAnchorLink || first.AttrOr("href", "") != "#"+wantID || ast.PlainText(first) != "Top" {
		t.Fatalf("unexpected anchor %s", ast.Dump(first))
	}
	second := children[2].(*ast.Element)
	if ast.PlainText(second) != "back up" {
		t.Fatalf("expected custom label, got %s", ast.Dump(second))
	}
	if text, ok := children[len(children)-1].(*ast.Text); !ok || !strings.HasSuffix(text.Content(), "[#]") {
		t.Fatalf("empty anchor should stay literal, got %s", ast.Dump(para))
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name    string
		markup  string
		opts    Options
		offset  int
		message string
	}{
		{name: "unterminated module", markup: "abc [module:frames", offset: 4, message: "unterminated module"},
		{name: "unterminated link", markup: "x [Link", offset: 2, message: "unterminated link"},
		{name: "link broken by newline", markup: "x [Link\n]", offset: 2, message: "unterminated link"},
		{name: "offset on a later line", markup: "line one\n\nbad [module:x", offset: 14, message: "unterminated module"},
		{name: "crlf offsets", markup: "a\r\n[x", offset: 2, message: "unterminated link"},
		{name: "empty module name", markup: "[module:|a=1]", offset: 0, message: "empty module name"},
		{name: "invalid nesting", markup: "'''a ''b''' c''", offset: 8, message: "invalid nesting"},
		{name: "list too deep", markup: "*** deep", opts: Options{MaxDepth: 2}, offset: 0, message: "list nesting"},
		{name: "inline too deep", markup: "'''a ''b''", opts: Options{MaxDepth: 1}, offset: 5, message: "nesting exceeds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nodes, err := ParseWithOptions(tc.markup, tc.opts)
			if err == nil {
				t.Fatalf("expected syntax error, got %s", ast.Dump(nodes...))
			}
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("expected ErrSyntax in chain, got %v", err)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if syntaxErr.Offset != tc.offset {
				t.Fatalf("expected offset %d, got %d (%v)", tc.offset, syntaxErr.Offset, err)
			}
			if !strings.Contains(syntaxErr.Message, tc.message) {
				t.Fatalf("expected message containing %q, got %q", tc.message, syntaxErr.Message)
			}
			if nodes != nil {
				t.Fatalf("expected no nodes alongside an error")
			}
		})
	}
}

func TestParse_CustomNormalizer(t *testing.T) {
	nodes, err := ParseWithOptions("[Foo Bar]", Options{
		Normalizer: interfaces.LinkNormalizerFunc(strings.ToLower),
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	link := nodes[0].(*ast.Element).Children()[0].(*ast.Element)
	if link.AttrOr("page", "") != "foo bar" || link.AttrOr("href", "") != "/foo%20bar" {
		t.Fatalf("unexpected link %s", ast.Dump(link))
	}
	if ast.PlainText(link) != "Foo Bar" {
		t.Fatalf("label should keep the typed target, got %q", ast.PlainText(link))
	}
}

func TestNormalizePageName(t *testing.T) {
	cases := map[string]string{
		"article index":            "ArticleIndex",
		" /game resources/nes/ ":   "GameResources/Nes",
		"ArticleIndex":             "ArticleIndex",
		"a//b":                     "A/B",
		"":                         "",
		"   ":                      "",
		"émile zola":               "émileZola",
		"GameResources/NES/Mario1": "GameResources/NES/Mario1",
	}
	for in, want := range cases {
		if got := NormalizePageName(in); got != want {
			t.Errorf("NormalizePageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReferrals(t *testing.T) {
	nodes := mustParse(t, "[A] and [B|b] [A] [#Top] [http://x.com]\n\n* item [C]")
	got := Referrals(nodes)
	want := []Referral{
		{Link: "A", Excerpt: "A and b A Top http://x.com"},
		{Link: "B", Excerpt: "A and b A Top http://x.com"},
		{Link: "C", Excerpt: "item C"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d referrals, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("referral %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestReferrals_ExcludeAnchorsAndExternalLinks(t *testing.T) {
	if got := Referrals(mustParse(t, "[#Section] [https://example.com] [mailto:a@b.c]")); len(got) != 0 {
		t.Fatalf("expected no referrals, got %+v", got)
	}
}
