package bbcode

import (
	"strings"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/lexer"
	"github.com/goliatone/go-markup/internal/sanitize"
)

type policy int

const (
	// container tags hold parsed children and auto-close at the end of the
	// nearest enclosing container.
	container policy = iota
	// verbatim tags capture their content unparsed up to the close tag and are
	// demoted to text when the close tag is missing.
	verbatim
	// void tags never take content.
	void
)

// builder derives attributes (and, for verbatim tags, the child text) from the
// opening token. Returning false demotes the tag to literal text.
type builder func(tok lexer.Token, content string) (attrs map[string]string, body string, ok bool)

type tagSpec struct {
	kind   ast.Kind
	policy policy
	// keepBody adds the verbatim content as a single Text child.
	keepBody bool
	// paramContainer switches a verbatim tag to container mode when it carries
	// a parameter, e.g. [url=...]label[/url].
	paramContainer bool
	// parents restricts the immediate parent tag.
	parents []string
	// closes lists open tags implicitly closed by this one, searched up to the
	// nearest parent.
	closes []string
	build  builder
}

var bbTags = map[string]tagSpec{
	"b":         {kind: ast.KindBold},
	"i":         {kind: ast.KindItalic},
	"u":         {kind: ast.KindUnderline},
	"s":         {kind: ast.KindStrike},
	"sub":       {kind: ast.KindSub},
	"sup":       {kind: ast.KindSup},
	"tt":        {kind: ast.KindTeletype},
	"left":      {kind: ast.KindLeft},
	"center":    {kind: ast.KindCenter},
	"right":     {kind: ast.KindRight},
	"spoiler":   {kind: ast.KindSpoiler},
	"highlight": {kind: ast.KindHighlight},
	"note":      {kind: ast.KindNote},
	"warning":   {kind: ast.KindWarning},
	"color":     {kind: ast.KindColor, build: paramAttr("color")},
	"bgcolor":   {kind: ast.KindBackground, build: paramAttr("color")},
	"size":      {kind: ast.KindSize, build: paramAttr("size")},
	"quote":     {kind: ast.KindQuote, build: paramAttr("name")},
	"list":      {kind: ast.KindList, build: paramAttr("type")},
	"*":         {kind: ast.KindListItem, parents: []string{"list"}, closes: []string{"*"}},
	"table":     {kind: ast.KindTable},
	"tr":        {kind: ast.KindRow, parents: []string{"table"}, closes: []string{"td", "th", "tr"}},
	"td":        {kind: ast.KindCell, parents: []string{"tr"}, closes: []string{"td", "th"}},
	"th":        {kind: ast.KindHeaderCell, parents: []string{"tr"}, closes: []string{"td", "th"}},

	"url":     {kind: ast.KindURL, policy: verbatim, keepBody: true, paramContainer: true, build: buildLink},
	"email":   {kind: ast.KindEmail, policy: verbatim, keepBody: true, paramContainer: true, build: buildLink},
	"code":    {kind: ast.KindCode, policy: verbatim, keepBody: true, build: buildCode},
	"noparse": {kind: ast.KindNoParse, policy: verbatim, keepBody: true, build: buildRaw},
	"img":     {kind: ast.KindImage, policy: verbatim, build: buildImage},
	"video":   {kind: ast.KindVideo, policy: verbatim, build: buildVideo},
	"google":  {kind: ast.KindGoogle, policy: verbatim, build: buildGoogle},
	"wiki":    {kind: ast.KindWiki, policy: verbatim, build: buildWiki},

	"thread":     {kind: ast.KindThread, policy: verbatim, build: buildEntity},
	"post":       {kind: ast.KindPost, policy: verbatim, build: buildEntity},
	"movie":      {kind: ast.KindMovie, policy: verbatim, build: buildEntity},
	"submission": {kind: ast.KindSubmission, policy: verbatim, build: buildEntity},
	"game":       {kind: ast.KindGame, policy: verbatim, build: buildEntity},
	"gamegroup":  {kind: ast.KindGameGroup, policy: verbatim, build: buildEntity},
	"userfile":   {kind: ast.KindUserFile, policy: verbatim, build: buildEntity},
	"wip":        {kind: ast.KindWIP, policy: verbatim, build: buildEntity},

	"hr":     {kind: ast.KindRule, policy: void},
	"frames": {kind: ast.KindFrames, policy: void, build: buildFrames},
}

// htmlTags is the raw HTML whitelist. Each entry lists the attributes kept on
// the element; anything else is dropped.
var htmlTags = map[string][]string{
	"b": nil, "i": nil, "u": nil, "s": nil, "em": nil, "strong": nil,
	"sub": nil, "sup": nil, "small": nil, "big": nil, "tt": nil,
	"pre": nil, "code": nil, "p": nil, "div": nil, "span": nil, "blockquote": nil,
	"ul": nil, "ol": nil, "li": nil,
	"table": nil, "tr": nil,
	"td": {"colspan", "rowspan"},
	"th": {"colspan", "rowspan"},
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"br": nil, "hr": nil,
	"a":   {"href"},
	"img": {"src", "alt", "width", "height"},
}

var htmlVoid = map[string]bool{"br": true, "hr": true, "img": true}

type vocabulary struct{}

func (vocabulary) Known(name string, html bool) bool {
	if html {
		_, ok := htmlTags[name]
		return ok
	}
	_, ok := bbTags[name]
	return ok
}

// IsTag reports whether name is a recognised BBCode tag.
func IsTag(name string) bool {
	return vocabulary{}.Known(strings.ToLower(name), false)
}

// IsHTMLTag reports whether name is in the raw HTML whitelist.
func IsHTMLTag(name string) bool {
	return vocabulary{}.Known(strings.ToLower(name), true)
}

func htmlAttrs(tok lexer.Token) map[string]string {
	allowed := htmlTags[tok.Name]
	if len(allowed) == 0 || len(tok.Attrs) == 0 {
		return nil
	}
	attrs := map[string]string{}
	for _, attr := range tok.Attrs {
		if !contains(allowed, attr.Key) {
			continue
		}
		value := strings.TrimSpace(attr.Value)
		switch attr.Key {
		case "href", "src":
			if value == "" || !sanitize.SafeURL(value) {
				continue
			}
		case "width", "height", "colspan", "rowspan":
			if !isDigits(value) {
				continue
			}
		}
		attrs[attr.Key] = value
	}
	return attrs
}

func paramAttr(key string) builder {
	return func(tok lexer.Token, _ string) (map[string]string, string, bool) {
		param := unquote(tok.Param)
		if param == "" {
			return nil, "", true
		}
		return map[string]string{key: param}, "", true
	}
}

// buildLink handles [url]U[/url], [url=U]label[/url] and the email forms.
// Unsafe targets keep the label but lose the href.
func buildLink(tok lexer.Token, content string) (map[string]string, string, bool) {
	target := unquote(tok.Param)
	if target == "" {
		target = strings.TrimSpace(content)
	}
	if target == "" {
		return nil, "", false
	}
	if tok.Name == "url" && !sanitize.SafeURL(target) {
		return nil, content, true
	}
	if tok.Name == "email" && strings.ContainsAny(target, ":/<>\"") {
		return nil, content, true
	}
	return map[string]string{"href": target}, content, true
}

func buildCode(tok lexer.Token, content string) (map[string]string, string, bool) {
	content = strings.TrimPrefix(content, "\r")
	content = strings.TrimPrefix(content, "\n")
	if lang := strings.TrimSpace(tok.Param); lang != "" {
		return map[string]string{"language": lang}, content, true
	}
	return nil, content, true
}

func buildRaw(_ lexer.Token, content string) (map[string]string, string, bool) {
	return nil, content, true
}

func buildImage(tok lexer.Token, content string) (map[string]string, string, bool) {
	src := strings.TrimSpace(content)
	if src == "" || !sanitize.SafeURL(src) {
		return nil, "", false
	}
	attrs := map[string]string{"src": src}
	addDimensions(attrs, tok.Param)
	return attrs, "", true
}

func buildVideo(tok lexer.Token, content string) (map[string]string, string, bool) {
	href := strings.TrimSpace(content)
	if href == "" || !sanitize.SafeURL(href) {
		return nil, "", false
	}
	attrs := map[string]string{"href": href}
	addDimensions(attrs, tok.Param)
	return attrs, "", true
}

func buildGoogle(tok lexer.Token, content string) (map[string]string, string, bool) {
	query := strings.TrimSpace(content)
	if query == "" {
		return nil, "", false
	}
	attrs := map[string]string{"q": query}
	if strings.EqualFold(strings.TrimSpace(tok.Param), "images") {
		attrs["mode"] = "images"
	}
	return attrs, "", true
}

func buildWiki(_ lexer.Token, content string) (map[string]string, string, bool) {
	page := strings.TrimSpace(content)
	if page == "" || strings.ContainsAny(page, "<>\"") {
		return nil, "", false
	}
	return map[string]string{"page": page}, "", true
}

func buildEntity(_ lexer.Token, content string) (map[string]string, string, bool) {
	id := strings.TrimSpace(content)
	if !isDigits(id) {
		return nil, "", false
	}
	return map[string]string{"id": id}, "", true
}

// buildFrames accepts [frames=N] and [frames=N@fps]; fps defaults to 60.
func buildFrames(tok lexer.Token, _ string) (map[string]string, string, bool) {
	amount, fps, found := strings.Cut(strings.TrimSpace(tok.Param), "@")
	amount = strings.TrimSpace(amount)
	fps = strings.TrimSpace(fps)
	if !found {
		fps = "60"
	}
	if !isDigits(amount) || !isDigits(fps) || strings.Trim(fps, "0") == "" {
		return nil, "", false
	}
	return map[string]string{"amount": amount, "fps": fps}, "", true
}

// addDimensions reads a `WxH` or `W` size parameter.
func addDimensions(attrs map[string]string, param string) {
	param = strings.ToLower(strings.TrimSpace(param))
	if param == "" {
		return
	}
	width, height, _ := strings.Cut(param, "x")
	if isDimension(width) {
		attrs["width"] = width
	}
	if isDimension(height) {
		attrs["height"] = height
	}
}

// isDimension accepts a positive decimal size.
func isDimension(s string) bool {
	return isDigits(s) && strings.TrimLeft(s, "0") != ""
}

// unquote trims whitespace and one pair of matching surrounding quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func isDigits(s string) bool {
	if s == "" || len(s) > 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
