package render

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/goliatone/go-markup/internal/ast"
)

// entityLink describes where an id-carrying reference points and how it is
// labelled when no title is available.
type entityLink struct {
	path  func(id string) string
	label string
}

var entityLinks = map[ast.Kind]entityLink{
	ast.KindMovie:      {path: func(id string) string { return "/" + id + "M" }, label: "Movie"},
	ast.KindSubmission: {path: func(id string) string { return "/" + id + "S" }, label: "Submission"},
	ast.KindGame:       {path: func(id string) string { return "/Games/" + id }, label: "Game"},
	ast.KindGameGroup:  {path: func(id string) string { return "/GameGroups/" + id }, label: "Game group"},
	ast.KindThread:     {path: func(id string) string { return "/Forum/Topics/" + id }, label: "Thread"},
	ast.KindPost:       {path: func(id string) string { return "/Forum/Posts/" + id }, label: "Post"},
	ast.KindUserFile:   {path: func(id string) string { return "/UserFiles/Info/" + id }, label: "User movie"},
	ast.KindWIP:        {path: func(id string) string { return "/UserFiles/Info/" + id }, label: "WIP"},
}

// FallbackLabel returns the placeholder shown for an entity without a title,
// e.g. "Movie #123".
func FallbackLabel(kind ast.Kind, id string) string {
	link, ok := entityLinks[kind]
	if !ok {
		return "#" + id
	}
	return link.label + " #" + id
}

// EntityPath returns the site-relative link for an entity reference.
func EntityPath(kind ast.Kind, id string) string {
	link, ok := entityLinks[kind]
	if !ok {
		return ""
	}
	return link.path(id)
}

// WikiPath maps a page name to its site-relative link.
func WikiPath(page string) string {
	segments := strings.Split(strings.Trim(page, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(segments, "/")
}

func wikiLabel(page string) string {
	return "Wiki: " + page
}

func googleHref(query string, images bool) string {
	href := "https://www.google.com/search?q=" + url.QueryEscape(query)
	if images {
		href += "&tbm=isch"
	}
	return href
}

func googleLabel(query string) string {
	return "Search: " + query
}

// FrameTime converts a frame count at fps into h:mm:ss.mmm (hours omitted
// when zero).
func FrameTime(amount, fps int) string {
	if fps <= 0 {
		fps = 60
	}
	ms := int64(math.Round(float64(amount) * 1000 / float64(fps)))
	hours := ms / 3_600_000
	minutes := ms / 60_000 % 60
	seconds := ms / 1000 % 60
	millis := ms % 1000
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	}
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}

func framesLabel(el *ast.Element) (title, text string, ok bool) {
	amount, err := strconv.Atoi(el.AttrOr("amount", ""))
	if err != nil {
		return "", "", false
	}
	fps, err := strconv.Atoi(el.AttrOr("fps", "60"))
	if err != nil {
		return "", "", false
	}
	return fmt.Sprintf("%d frames", amount), FrameTime(amount, fps), true
}

// CodeLanguage normalises a code block language through the chroma lexer
// registry. Unknown languages keep their lowercase name when it is a plain
// identifier and are dropped otherwise.
func CodeLanguage(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if lexer := lexers.Get(raw); lexer != nil {
		config := lexer.Config()
		if len(config.Aliases) > 0 {
			return config.Aliases[0]
		}
		return strings.ToLower(config.Name)
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '#' || c == '-') {
			return ""
		}
	}
	return raw
}
