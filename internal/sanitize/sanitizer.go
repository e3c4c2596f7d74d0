package sanitize

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrSchemeNotPermitted is returned when a URL uses a scheme outside the allow list.
var ErrSchemeNotPermitted = errors.New("markup: url scheme not permitted")

// URLPolicy accepts URLs whose scheme is in an allow list. The empty scheme
// (relative URLs) is always included.
type URLPolicy struct {
	allowedSchemes map[string]struct{}
}

// NewURLPolicy returns a policy allowing the given schemes. With no arguments it
// allows http, https, mailto and ftp.
func NewURLPolicy(schemes ...string) *URLPolicy {
	if len(schemes) == 0 {
		schemes = []string{"http", "https", "mailto", "ftp"}
	}
	policy := &URLPolicy{allowedSchemes: map[string]struct{}{"": {}}}
	for _, scheme := range schemes {
		policy.allowedSchemes[strings.ToLower(scheme)] = struct{}{}
	}
	return policy
}

var defaultURLPolicy = NewURLPolicy()

// Validate ensures raw parses and has a permitted scheme.
func (p *URLPolicy) Validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.ContainsAny(raw, "\x00\r\n\t") {
		return fmt.Errorf("%w: control characters", ErrSchemeNotPermitted)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if _, ok := p.allowedSchemes[strings.ToLower(parsed.Scheme)]; !ok {
		return fmt.Errorf("%w: %q", ErrSchemeNotPermitted, parsed.Scheme)
	}
	return nil
}

// Safe reports whether raw passes Validate.
func (p *URLPolicy) Safe(raw string) bool {
	return p.Validate(raw) == nil
}

// SafeURL checks raw against the default policy.
func SafeURL(raw string) bool {
	return defaultURLPolicy.Safe(raw)
}

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{1,20}$`)
	sizeValue  = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,2})?)(px|em|%|pt)?$`)
)

// Color returns the color value when it is a hex triplet/sextet or a bare
// color keyword.
func Color(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if hexColor.MatchString(raw) || namedColor.MatchString(raw) {
		return raw, true
	}
	return "", false
}

// Size normalises a font size. Bare numbers are read as pixels.
func Size(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	match := sizeValue.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	unit := match[2]
	if unit == "" {
		unit = "px"
	}
	return match[1] + unit, true
}

var (
	classAttr = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
	styleAttr = regexp.MustCompile(`^(?:color|background-color|font-size):[ ]?[#a-zA-Z0-9.%]+;?$`)
	// embedSrc admits https players and the base64 HTML documents the
	// nicovideo embed wraps its player script in.
	embedSrc = regexp.MustCompile(`^(?:https://\S+|data:text/html;base64,[A-Za-z0-9+/]+=*)$`)
	// linkURL rejects every absolute URL outside http, https, mailto and ftp so
	// the data scheme stays confined to iframes.
	linkURL = regexp.MustCompile(`^(?i)(?:(?:https?|mailto|ftp):|[^:]*(?:[/?#]|$))`)
)

const embedDocumentPrefix = "text/html;base64,"

// ForumPolicy extends the user generated content policy with the classes,
// inline styles and embeds the forum renderer emits.
func ForumPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("abbr", "iframe", "blockquote", "span", "div")
	p.AllowAttrs("class").Matching(classAttr).Globally()
	p.AllowAttrs("style").Matching(styleAttr).OnElements("span")
	p.AllowAttrs("title").OnElements("abbr")
	p.AllowAttrs("src").Matching(embedSrc).OnElements("iframe")
	p.AllowAttrs("width", "height", "frameborder", "allowfullscreen").OnElements("iframe")
	p.AllowAttrs("href").Matching(linkURL).OnElements("a")
	p.AllowAttrs("src").Matching(linkURL).OnElements("img")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowURLSchemes("http", "https", "mailto", "ftp")
	p.AllowURLSchemeWithCustomPolicy("data", func(u *url.URL) bool {
		return strings.HasPrefix(u.Opaque, embedDocumentPrefix)
	})
	return p
}

// Sanitizer runs rendered HTML through a bluemonday policy.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer wraps policy. A nil policy selects ForumPolicy.
func NewSanitizer(policy *bluemonday.Policy) *Sanitizer {
	if policy == nil {
		policy = ForumPolicy()
	}
	return &Sanitizer{policy: policy}
}

// Sanitize returns the cleaned fragment.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
