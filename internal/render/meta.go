package render

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// RenderMeta walks node like Render but keeps only readable text: text
// content, link labels and resolved titles. URLs and attribute values are
// never emitted. Block elements separate their neighbours with a space and
// the result is whitespace-collapsed.
func (r *Renderer) RenderMeta(ctx context.Context, node ast.Node, resolver interfaces.ReferenceResolver) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	rn := &metaRun{lookup: lookup{ctx: ctx, renderer: r, resolver: resolver}}
	err := rn.node(node)
	r.metrics.ObserveRenderDuration(surfaceMeta, time.Since(start))
	if err != nil {
		r.metrics.IncrementRenderError(surfaceMeta)
		return "", classify(err)
	}
	return strings.Join(strings.Fields(rn.b.String()), " "), nil
}

type metaRun struct {
	lookup
	b strings.Builder
}

func (rn *metaRun) node(n ast.Node) error {
	if err := rn.ctx.Err(); err != nil {
		return err
	}
	switch node := n.(type) {
	case *ast.Text:
		rn.b.WriteString(node.Content())
	case *ast.Element:
		block := node.Kind().IsBlock()
		if block {
			rn.b.WriteByte(' ')
		}
		if err := rn.element(node); err != nil {
			return err
		}
		if block {
			rn.b.WriteByte(' ')
		}
	}
	return nil
}

func (rn *metaRun) children(el *ast.Element) error {
	for _, child := range el.Children() {
		if err := rn.node(child); err != nil {
			return err
		}
	}
	return nil
}

func (rn *metaRun) element(el *ast.Element) error {
	switch el.Kind() {
	case ast.KindImage, ast.KindVideo, ast.KindRule, ast.KindLineBreak:
		return nil
	case ast.KindURL, ast.KindEmail, ast.KindWikiLink:
		// a bare link's only child is the URL itself; a link without an href
		// was refused and its body may be the raw target
		href, ok := el.Attr("href")
		if !ok || strings.TrimSpace(ast.PlainText(el)) == href {
			return nil
		}
		return rn.children(el)
	case ast.KindGoogle:
		rn.b.WriteString(googleLabel(el.AttrOr("q", "")))
	case ast.KindWiki:
		rn.b.WriteString(wikiLabel(el.AttrOr("page", "")))
	case ast.KindFrames:
		if _, text, ok := framesLabel(el); ok {
			rn.b.WriteString(text)
		}
	case ast.KindThread, ast.KindPost, ast.KindUserFile, ast.KindWIP:
		rn.b.WriteString(FallbackLabel(el.Kind(), el.AttrOr("id", "")))
	case ast.KindMovie, ast.KindSubmission, ast.KindGame, ast.KindGameGroup:
		title, err := rn.title(el)
		if err != nil {
			return err
		}
		rn.b.WriteString(title)
	default:
		return rn.children(el)
	}
	return nil
}

// Truncate shortens meta to at most max runes, cutting at a word boundary and
// appending an ellipsis when anything was removed.
func Truncate(meta string, max int) string {
	if max <= 0 || utf8.RuneCountInString(meta) <= max {
		return meta
	}
	const ellipsis = "..."
	limit := max - len(ellipsis)
	if limit <= 0 {
		return ellipsis[:max]
	}

	runes := []rune(meta)
	cut := string(runes[:limit])
	if runes[limit] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}
