package ast

// Kind enumerates every node variant the parsers can produce. Renderers
// dispatch on Kind through handler tables instead of on tag names.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindModule
	KindRoot

	// inline formatting
	KindBold
	KindItalic
	KindUnderline
	KindStrike
	KindSub
	KindSup
	KindTeletype
	KindSpoiler
	KindHighlight
	KindColor
	KindBackground
	KindSize

	// blocks
	KindLeft
	KindCenter
	KindRight
	KindNote
	KindWarning
	KindQuote
	KindCode
	KindNoParse
	KindList
	KindListItem
	KindTable
	KindRow
	KindCell
	KindHeaderCell
	KindRule

	// links and media
	KindURL
	KindEmail
	KindImage
	KindVideo
	KindGoogle
	KindFrames

	// entity references
	KindWiki
	KindThread
	KindPost
	KindMovie
	KindSubmission
	KindGame
	KindGameGroup
	KindUserFile
	KindWIP

	// whitelisted raw HTML element, rendered under its own tag name
	KindHTML

	// wiki constructs
	KindParagraph
	KindHeading
	KindLineBreak
	KindWikiLink
	KindAnchorLink
	KindTime
	KindBlock
	KindInline
	KindPreformatted
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindText:         "text",
	KindModule:       "module",
	KindRoot:         "root",
	KindBold:         "bold",
	KindItalic:       "italic",
	KindUnderline:    "underline",
	KindStrike:       "strike",
	KindSub:          "sub",
	KindSup:          "sup",
	KindTeletype:     "teletype",
	KindSpoiler:      "spoiler",
	KindHighlight:    "highlight",
	KindColor:        "color",
	KindBackground:   "background",
	KindSize:         "size",
	KindLeft:         "left",
	KindCenter:       "center",
	KindRight:        "right",
	KindNote:         "note",
	KindWarning:      "warning",
	KindQuote:        "quote",
	KindCode:         "code",
	KindNoParse:      "noparse",
	KindList:         "list",
	KindListItem:     "list_item",
	KindTable:        "table",
	KindRow:          "row",
	KindCell:         "cell",
	KindHeaderCell:   "header_cell",
	KindRule:         "rule",
	KindURL:          "url",
	KindEmail:        "email",
	KindImage:        "image",
	KindVideo:        "video",
	KindGoogle:       "google",
	KindFrames:       "frames",
	KindWiki:         "wiki",
	KindThread:       "thread",
	KindPost:         "post",
	KindMovie:        "movie",
	KindSubmission:   "submission",
	KindGame:         "game",
	KindGameGroup:    "gamegroup",
	KindUserFile:     "userfile",
	KindWIP:          "wip",
	KindHTML:         "html",
	KindParagraph:    "paragraph",
	KindHeading:      "heading",
	KindLineBreak:    "line_break",
	KindWikiLink:     "wiki_link",
	KindAnchorLink:   "anchor_link",
	KindTime:         "time",
	KindBlock:        "block",
	KindInline:       "inline",
	KindPreformatted: "preformatted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsEntity reports whether the kind needs a title lookup at render time.
func (k Kind) IsEntity() bool {
	switch k {
	case KindMovie, KindSubmission, KindGame, KindGameGroup:
		return true
	}
	return false
}

// IsBlock reports whether the kind renders as a block-level element.
func (k Kind) IsBlock() bool {
	switch k {
	case KindLeft, KindCenter, KindRight, KindNote, KindWarning, KindQuote, KindCode,
		KindList, KindListItem, KindTable, KindRow, KindCell, KindHeaderCell, KindRule,
		KindVideo, KindParagraph, KindHeading, KindLineBreak, KindBlock, KindPreformatted:
		return true
	}
	return false
}
