package video

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultWidth  = 480
	DefaultHeight = 270
)

// ErrInvalidURL is returned when a video link cannot be parsed.
var ErrInvalidURL = errors.New("markup: invalid video url")

// Parameters describes a pasted video link. Width and Height are nil when the
// author did not size the embed.
type Parameters struct {
	Width  *int
	Height *int
	Host   string
	Path   string
	Query  map[string]string
}

// ParseURL splits raw into host, path and query. The host keeps its casing so
// provider dispatch stays exact. Repeated query keys keep their first value.
func ParseURL(raw string, width, height *int) (Parameters, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parameters{}, ErrInvalidURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Host == "" {
		return Parameters{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	query := map[string]string{}
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	return Parameters{
		Width:  width,
		Height: height,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  query,
	}, nil
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultSize overrides the 480x270 fallback dimensions.
func WithDefaultSize(width, height int) Option {
	return func(r *Resolver) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// provider extracts an embed from a path/query pair. The returned template
// uses {width}, {height} and {id} placeholders.
type provider func(p Parameters, width, height int) (template string, id string, ok bool)

// Resolver turns video parameters into provider embed markup. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	width     int
	height    int
	providers map[string]provider
}

// NewResolver builds a resolver with the built-in providers.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		width:  DefaultWidth,
		height: DefaultHeight,
		providers: map[string]provider{
			"youtube.com":         youtube,
			"www.youtube.com":     youtube,
			"youtu.be":            pathID(youtubeTemplate),
			"vimeo.com":           pathID(vimeoTemplate),
			"dailymotion.com":     dailymotion,
			"www.dailymotion.com": dailymotion,
			"www.nicovideo.jp":    nicovideo,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve uses the default resolver.
func Resolve(p Parameters) (string, bool) {
	return defaultResolver.Resolve(p)
}

// Resolve returns the embed markup, or false when the host/path combination
// is not a known provider.
func (r *Resolver) Resolve(p Parameters) (string, bool) {
	handler, ok := r.providers[p.Host]
	if !ok {
		return "", false
	}

	width, height := r.width, r.height
	if p.Width != nil {
		width = *p.Width
	}
	if p.Height != nil {
		height = *p.Height
	}
	tpl, id, ok := handler(p, width, height)
	if !ok || id == "" {
		return "", false
	}
	return expand(tpl, width, height, id), true
}

func expand(tpl string, width, height int, id string) string {
	replacer := strings.NewReplacer(
		"{width}", strconv.Itoa(width),
		"{height}", strconv.Itoa(height),
		"{id}", escapeAttr(id),
	)
	return replacer.Replace(tpl)
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

const (
	youtubeTemplate         = `<iframe width="{width}" height="{height}" src="https://www.youtube.com/embed/{id}" frameborder="0" allowfullscreen></iframe>`
	youtubePlaylistTemplate = `<iframe width="{width}" height="{height}" src="https://www.youtube.com/embed/videoseries?list={id}" frameborder="0" allowfullscreen></iframe>`
	vimeoTemplate           = `<iframe src="https://player.vimeo.com/video/{id}" width="{width}" height="{height}" frameborder="0" allowfullscreen></iframe>`
	dailymotionTemplate     = `<iframe frameborder="0" width="{width}" height="{height}" src="https://www.dailymotion.com/embed/video/{id}" allowfullscreen></iframe>`
	nicovideoInnerTemplate  = `<!DOCTYPE html><html><head><style>body{margin:0}</style></head><body><script type="application/javascript" src="https://embed.nicovideo.jp/watch/{id}/script?w={width}&h={height}"></script></body></html>`
	nicovideoOuterTemplate  = `<iframe width="{width}" height="{height}" src="data:text/html;base64,{id}" frameborder="0" allowfullscreen></iframe>`
)

func youtube(p Parameters, _, _ int) (string, string, bool) {
	switch {
	case p.Path == "/watch":
		id, ok := p.Query["v"]
		return youtubeTemplate, id, ok
	case strings.HasPrefix(p.Path, "/embed/"):
		return youtubeTemplate, strings.TrimPrefix(p.Path, "/embed/"), true
	case p.Path == "/view_play_list":
		id, ok := p.Query["p"]
		return youtubePlaylistTemplate, id, ok
	}
	return "", "", false
}

func pathID(tpl string) provider {
	return func(p Parameters, _, _ int) (string, string, bool) {
		return tpl, strings.TrimPrefix(p.Path, "/"), true
	}
}

func dailymotion(p Parameters, _, _ int) (string, string, bool) {
	if !strings.HasPrefix(p.Path, "/video/") {
		return "", "", false
	}
	id := strings.TrimPrefix(p.Path, "/video/")
	if i := strings.IndexByte(id, '_'); i >= 0 {
		id = id[:i]
	}
	return dailymotionTemplate, id, true
}

// nicovideo renders the player script into its own document and embeds that
// document through a base64 data URI. The outer template receives the
// encoded document in place of the id, which needs no further escaping.
func nicovideo(p Parameters, width, height int) (string, string, bool) {
	if !strings.HasPrefix(p.Path, "/watch/") {
		return "", "", false
	}
	id := strings.TrimPrefix(p.Path, "/watch/")
	if id == "" {
		return "", "", false
	}
	inner := expand(nicovideoInnerTemplate, width, height, id)
	return nicovideoOuterTemplate, base64.StdEncoding.EncodeToString([]byte(inner)), true
}
