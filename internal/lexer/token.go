package lexer

// TokenKind identifies the shape of a scanned token.
type TokenKind int

const (
	Literal TokenKind = iota
	TagOpen
	TagClose
	SelfClosingTag
)

func (k TokenKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case TagOpen:
		return "open"
	case TagClose:
		return "close"
	case SelfClosingTag:
		return "self-closing"
	default:
		return "unknown"
	}
}

// Syntax selects which tag delimiters the lexer recognises.
type Syntax uint8

const (
	BBCode Syntax = 1 << iota
	HTML
)

// Has reports whether s enables flag.
func (s Syntax) Has(flag Syntax) bool {
	return s&flag != 0
}

// Attr is a single HTML attribute in source order.
type Attr struct {
	Key   string
	Value string
}

// Token is a literal run or a tag boundary. Text always holds the exact source
// slice [Offset, End) so callers can demote any token back to literal text.
type Token struct {
	Kind   TokenKind
	Name   string
	Param  string
	Attrs  []Attr
	Text   string
	Offset int
	End    int
	HTML   bool
}

// Vocabulary tells the lexer which tag names are meaningful. Bracket content
// naming anything else stays literal.
type Vocabulary interface {
	Known(name string, html bool) bool
}

// VocabularyFunc adapts a function to Vocabulary.
type VocabularyFunc func(name string, html bool) bool

// Known implements Vocabulary.
func (f VocabularyFunc) Known(name string, html bool) bool {
	return f(name, html)
}
