package render

import (
	"strings"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/sanitize"
)

type htmlRun struct {
	lookup
	w *HTMLWriter
	// pre counts enclosing preformatted elements; line breaks are kept as-is
	// inside them.
	pre int
}

type htmlHandler func(rn *htmlRun, el *ast.Element) error

var htmlHandlers map[ast.Kind]htmlHandler

func init() {
	htmlHandlers = map[ast.Kind]htmlHandler{
		ast.KindRoot:       (*htmlRun).children,
		ast.KindNoParse:    (*htmlRun).children,
		ast.KindBold:       wrap("b"),
		ast.KindItalic:     wrap("i"),
		ast.KindUnderline:  wrap("u"),
		ast.KindStrike:     wrap("s"),
		ast.KindSub:        wrap("sub"),
		ast.KindSup:        wrap("sup"),
		ast.KindTeletype:   wrap("tt"),
		ast.KindLeft:       wrap("div", "class", "a-left"),
		ast.KindCenter:     wrap("div", "class", "a-center"),
		ast.KindRight:      wrap("div", "class", "a-right"),
		ast.KindSpoiler:    wrap("span", "class", "spoiler"),
		ast.KindHighlight:  wrap("span", "class", "highlight"),
		ast.KindNote:       wrap("div", "class", "alert alert-info"),
		ast.KindWarning:    wrap("div", "class", "alert alert-warning"),
		ast.KindColor:      styled("color", "color", sanitize.Color),
		ast.KindBackground: styled("background-color", "color", sanitize.Color),
		ast.KindSize:       styled("font-size", "size", sanitize.Size),
		ast.KindQuote:      renderQuote,
		ast.KindCode:       renderCode,
		ast.KindList:       renderList,
		ast.KindListItem:   wrap("li"),
		ast.KindTable:      wrap("table", "class", "table"),
		ast.KindRow:        wrap("tr"),
		ast.KindCell:       renderCell("td"),
		ast.KindHeaderCell: renderCell("th"),
		ast.KindRule:       void("hr"),
		ast.KindURL:        renderLink(""),
		ast.KindEmail:      renderLink("mailto:"),
		ast.KindImage:      renderImage,
		ast.KindVideo:      renderVideo,
		ast.KindGoogle:     renderGoogle,
		ast.KindFrames:     renderFrames,
		ast.KindWiki:       renderWikiRef,
		ast.KindThread:     renderEntity,
		ast.KindPost:       renderEntity,
		ast.KindUserFile:   renderEntity,
		ast.KindWIP:        renderEntity,
		ast.KindMovie:      renderEntity,
		ast.KindSubmission: renderEntity,
		ast.KindGame:       renderEntity,
		ast.KindGameGroup:  renderEntity,
		ast.KindHTML:       renderHTML,

		ast.KindParagraph:    wrap("p"),
		ast.KindHeading:      renderHeading,
		ast.KindLineBreak:    void("br"),
		ast.KindWikiLink:     renderLink(""),
		ast.KindAnchorLink:   renderLink(""),
		ast.KindTime:         renderTime,
		ast.KindBlock:        classed("div"),
		ast.KindInline:       classed("span"),
		ast.KindPreformatted: renderPre,
	}
}

func (rn *htmlRun) node(n ast.Node) error {
	if err := rn.ctx.Err(); err != nil {
		return err
	}
	switch node := n.(type) {
	case nil:
		return nil
	case *ast.Text:
		rn.text(node.Content())
		return nil
	case *ast.Module:
		rn.w.OpenTag("span")
		rn.w.Attr("class", "module-pending")
		rn.w.Text("[module:" + node.Name() + "]")
		return rn.w.CloseTag("span")
	case *ast.Element:
		handler, ok := htmlHandlers[node.Kind()]
		if !ok {
			return rn.children(node)
		}
		return handler(rn, node)
	}
	return nil
}

func (rn *htmlRun) children(el *ast.Element) error {
	for _, child := range el.Children() {
		if err := rn.node(child); err != nil {
			return err
		}
	}
	return nil
}

func (rn *htmlRun) text(content string) {
	if !rn.renderer.lineBreaks || rn.pre > 0 || !strings.Contains(content, "\n") {
		rn.w.Text(content)
		return
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			rn.w.VoidTag("br")
		}
		rn.w.Text(line)
	}
}

func (rn *htmlRun) element(tag string, el *ast.Element, attrs ...string) error {
	rn.w.OpenTag(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		rn.w.Attr(attrs[i], attrs[i+1])
	}
	if err := rn.children(el); err != nil {
		return err
	}
	return rn.w.CloseTag(tag)
}

func wrap(tag string, attrs ...string) htmlHandler {
	return func(rn *htmlRun, el *ast.Element) error {
		return rn.element(tag, el, attrs...)
	}
}

func void(tag string) htmlHandler {
	return func(rn *htmlRun, _ *ast.Element) error {
		rn.w.VoidTag(tag)
		return nil
	}
}

func classed(tag string) htmlHandler {
	return func(rn *htmlRun, el *ast.Element) error {
		if class, ok := el.Attr("class"); ok && class != "" {
			return rn.element(tag, el, "class", class)
		}
		return rn.element(tag, el)
	}
}

// styled renders a span carrying one inline style when the value validates
// and a plain span otherwise.
func styled(property, attr string, validate func(string) (string, bool)) htmlHandler {
	return func(rn *htmlRun, el *ast.Element) error {
		if value, ok := validate(el.AttrOr(attr, "")); ok {
			return rn.element("span", el, "style", property+":"+value)
		}
		return rn.element("span", el)
	}
}

func renderQuote(rn *htmlRun, el *ast.Element) error {
	rn.w.OpenTag("div")
	rn.w.Attr("class", "quote")
	if name := strings.TrimSpace(el.AttrOr("name", "")); name != "" {
		rn.w.OpenTag("div")
		rn.w.Attr("class", "quote-header")
		rn.w.Text(name + " wrote:")
		if err := rn.w.CloseTag("div"); err != nil {
			return err
		}
	}
	if err := rn.element("blockquote", el); err != nil {
		return err
	}
	return rn.w.CloseTag("div")
}

func renderCode(rn *htmlRun, el *ast.Element) error {
	rn.pre++
	defer func() { rn.pre-- }()

	rn.w.OpenTag("pre")
	if lang := CodeLanguage(el.AttrOr("language", "")); lang != "" {
		if err := rn.element("code", el, "class", "language-"+lang); err != nil {
			return err
		}
	} else if err := rn.element("code", el); err != nil {
		return err
	}
	return rn.w.CloseTag("pre")
}

func renderPre(rn *htmlRun, el *ast.Element) error {
	rn.pre++
	defer func() { rn.pre-- }()
	return rn.element("pre", el)
}

func renderList(rn *htmlRun, el *ast.Element) error {
	switch kind := el.AttrOr("type", ""); kind {
	case "":
		return rn.element("ul", el)
	case "a", "A", "i", "I":
		return rn.element("ol", el, "type", kind)
	default:
		return rn.element("ol", el)
	}
}

func renderCell(tag string) htmlHandler {
	return func(rn *htmlRun, el *ast.Element) error {
		rn.w.OpenTag(tag)
		for _, key := range []string{"colspan", "rowspan"} {
			if value, ok := el.Attr(key); ok {
				rn.w.Attr(key, value)
			}
		}
		if err := rn.children(el); err != nil {
			return err
		}
		return rn.w.CloseTag(tag)
	}
}

// renderLink writes an anchor when the element carries an href and just its
// children otherwise.
func renderLink(prefix string) htmlHandler {
	return func(rn *htmlRun, el *ast.Element) error {
		href, ok := el.Attr("href")
		if !ok || href == "" {
			return rn.children(el)
		}
		if el.Len() == 0 {
			rn.w.OpenTag("a")
			rn.w.Attr("href", prefix+href)
			rn.w.Text(href)
			return rn.w.CloseTag("a")
		}
		return rn.element("a", el, "href", prefix+href)
	}
}

func renderImage(rn *htmlRun, el *ast.Element) error {
	rn.w.VoidTag("img")
	rn.w.Attr("src", el.AttrOr("src", ""))
	for _, key := range []string{"width", "height"} {
		if value, ok := el.Attr(key); ok {
			rn.w.Attr(key, value)
		}
	}
	return nil
}

func renderVideo(rn *htmlRun, el *ast.Element) error {
	href := el.AttrOr("href", "")
	rn.w.OpenTag("div")
	rn.w.Attr("class", "video-container")
	if embed, ok := rn.videoEmbed(el); ok {
		rn.w.Raw(embed)
	}
	rn.w.OpenTag("a")
	rn.w.Attr("href", href)
	rn.w.Text("Link to video")
	if err := rn.w.CloseTag("a"); err != nil {
		return err
	}
	return rn.w.CloseTag("div")
}

func renderGoogle(rn *htmlRun, el *ast.Element) error {
	query := el.AttrOr("q", "")
	rn.w.OpenTag("a")
	rn.w.Attr("href", googleHref(query, el.AttrOr("mode", "") == "images"))
	rn.w.Text(googleLabel(query))
	return rn.w.CloseTag("a")
}

func renderFrames(rn *htmlRun, el *ast.Element) error {
	title, text, ok := framesLabel(el)
	if !ok {
		return nil
	}
	rn.w.OpenTag("abbr")
	rn.w.Attr("title", title)
	rn.w.Text(text)
	return rn.w.CloseTag("abbr")
}

func renderWikiRef(rn *htmlRun, el *ast.Element) error {
	page := el.AttrOr("page", "")
	rn.w.OpenTag("a")
	rn.w.Attr("href", WikiPath(page))
	rn.w.Text(wikiLabel(page))
	return rn.w.CloseTag("a")
}

func renderEntity(rn *htmlRun, el *ast.Element) error {
	id := el.AttrOr("id", "")
	label := FallbackLabel(el.Kind(), id)
	if el.Kind().IsEntity() {
		title, err := rn.title(el)
		if err != nil {
			return err
		}
		label = title
	}
	rn.w.OpenTag("a")
	rn.w.Attr("href", EntityPath(el.Kind(), id))
	rn.w.Text(label)
	return rn.w.CloseTag("a")
}

// renderHTML re-emits a whitelisted raw HTML element with its filtered
// attributes in sorted order.
func renderHTML(rn *htmlRun, el *ast.Element) error {
	name := el.Name()
	switch name {
	case "br", "hr", "img":
		rn.w.VoidTag(name)
		for _, key := range el.AttrKeys() {
			value, _ := el.Attr(key)
			rn.w.Attr(key, value)
		}
		return nil
	case "pre":
		rn.pre++
		defer func() { rn.pre-- }()
	}

	rn.w.OpenTag(name)
	for _, key := range el.AttrKeys() {
		value, _ := el.Attr(key)
		rn.w.Attr(key, value)
	}
	if err := rn.children(el); err != nil {
		return err
	}
	return rn.w.CloseTag(name)
}

func renderHeading(rn *htmlRun, el *ast.Element) error {
	tag := "h" + el.AttrOr("level", "4")
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
	default:
		tag = "h4"
	}
	if id := el.AttrOr("id", ""); id != "" {
		return rn.element(tag, el, "id", id)
	}
	return rn.element(tag, el)
}

func renderTime(rn *htmlRun, el *ast.Element) error {
	if datetime := el.AttrOr("datetime", ""); datetime != "" {
		return rn.element("time", el, "datetime", datetime)
	}
	return rn.element("time", el)
}
