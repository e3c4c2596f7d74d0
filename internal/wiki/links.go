package wiki

import (
	"strings"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// DefaultNormalizer canonicalises page targets with NormalizePageName.
var DefaultNormalizer interfaces.LinkNormalizer = interfaces.LinkNormalizerFunc(NormalizePageName)

// NormalizePageName maps a human link target to a page key: surrounding
// slashes are dropped, every word of every `/` segment gets an upper-case
// first letter and whitespace is removed. "game resources/nes" becomes
// "GameResources/Nes".
func NormalizePageName(target string) string {
	target = strings.Trim(strings.TrimSpace(target), "/")
	if target == "" {
		return ""
	}
	segments := strings.Split(target, "/")
	out := segments[:0]
	for _, segment := range segments {
		words := strings.Fields(segment)
		for i, word := range words {
			words[i] = upperFirst(word)
		}
		if joined := strings.Join(words, ""); joined != "" {
			out = append(out, joined)
		}
	}
	return strings.Join(out, "/")
}

func upperFirst(word string) string {
	if c := word[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + word[1:]
	}
	return word
}

// excerptLength caps the context captured for each referral.
const excerptLength = 80

// Referral is an outgoing internal link of a page.
type Referral struct {
	Link    string
	Excerpt string
}

// Referrals lists the distinct internal page links in nodes, in document
// order. Anchor-only and external links are not referrals. The excerpt is the
// text of the block holding the first occurrence of each link.
func Referrals(nodes []ast.Node) []Referral {
	seen := make(map[string]struct{})
	var out []Referral

	var visit func(n ast.Node, excerpt string)
	visit = func(n ast.Node, excerpt string) {
		el, ok := n.(*ast.Element)
		if !ok {
			return
		}
		if el.Kind().IsBlock() && el.Kind() != ast.KindLineBreak {
			excerpt = strings.Join(strings.Fields(ast.PlainText(el)), " ")
		}
		if el.Kind() == ast.KindWikiLink {
			page := el.AttrOr("page", "")
			if _, dup := seen[page]; page != "" && !dup {
				seen[page] = struct{}{}
				out = append(out, Referral{Link: page, Excerpt: render.Truncate(excerpt, excerptLength)})
			}
		}
		for _, child := range el.Children() {
			visit(child, excerpt)
		}
	}
	for _, n := range nodes {
		visit(n, "")
	}
	return out
}
