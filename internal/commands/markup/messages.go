package markupcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderPostMessageType = "markup.forum.render_post"
	renderWikiMessageType = "markup.wiki.render_page"

	// MaxSourceLength caps the markup accepted by a single command.
	MaxSourceLength   = 1 << 20
	maxSourceIDLength = 128
)

// Output selects what a render command produces.
type Output string

const (
	OutputHTML      Output = "html"
	OutputMeta      Output = "meta"
	OutputReferrals Output = "referrals"
)

// Result is delivered to the command's callback after a successful render.
type Result struct {
	Output Output
	// Text holds the HTML fragment or the meta description.
	Text string
	// Referrals is set for wiki commands with OutputReferrals.
	Referrals []Referral
}

// Referral is one outgoing internal wiki link.
type Referral struct {
	Page    string `json:"page"`
	Href    string `json:"href"`
	Excerpt string `json:"excerpt"`
}

// ResultCallback receives render output synchronously from the handler.
type ResultCallback func(Result)

// RenderPostCommand renders a forum post.
type RenderPostCommand struct {
	Source       string         `json:"source"`
	SourceID     string         `json:"source_id,omitempty"`
	EnableBBCode bool           `json:"enable_bbcode"`
	EnableHTML   bool           `json:"enable_html"`
	Output       Output         `json:"output,omitempty"`
	Callback     ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderPostCommand) Type() string { return renderPostMessageType }

// Validate checks the source size, the source id and the requested output.
func (cmd RenderPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(sourceRule("markup.forum.render_post"))),
		validation.Field(&cmd.SourceID, validation.By(sourceIDRule("markup.forum.render_post"))),
		validation.Field(&cmd.Output, validation.In(OutputHTML, OutputMeta).
			ErrorObject(validation.NewError("markup.forum.render_post.output_invalid", "output must be html or meta"))),
	)
}

// RenderWikiCommand renders a wiki page.
type RenderWikiCommand struct {
	Source   string         `json:"source"`
	SourceID string         `json:"source_id,omitempty"`
	Output   Output         `json:"output,omitempty"`
	Callback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderWikiCommand) Type() string { return renderWikiMessageType }

// Validate checks the source size, the source id and the requested output.
func (cmd RenderWikiCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.By(sourceRule("markup.wiki.render_page"))),
		validation.Field(&cmd.SourceID, validation.By(sourceIDRule("markup.wiki.render_page"))),
		validation.Field(&cmd.Output, validation.In(OutputHTML, OutputMeta, OutputReferrals).
			ErrorObject(validation.NewError("markup.wiki.render_page.output_invalid", "output must be html, meta or referrals"))),
	)
}

func sourceRule(prefix string) validation.RuleFunc {
	return func(value any) error {
		if len(value.(string)) > MaxSourceLength {
			return validation.NewError(prefix+".source_too_long", "source exceeds the maximum length")
		}
		return nil
	}
}

func sourceIDRule(prefix string) validation.RuleFunc {
	return func(value any) error {
		id := value.(string)
		if id == "" {
			return nil
		}
		if strings.TrimSpace(id) != id || len(id) > maxSourceIDLength {
			return validation.NewError(prefix+".source_id_invalid", "source id must be trimmed and at most 128 bytes")
		}
		return nil
	}
}

func (o Output) orDefault() Output {
	if o == "" {
		return OutputHTML
	}
	return o
}
