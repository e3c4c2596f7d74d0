package lexer

import "strings"

// Lexer is a pull tokenizer over a single input. It is not safe for concurrent
// use; create one per parse.
type Lexer struct {
	src     string
	lower   string
	pos     int
	vocab   Vocabulary
	syntax  Syntax
	pending *Token
}

// New builds a lexer for src.
func New(src string, vocab Vocabulary, syntax Syntax) *Lexer {
	return &Lexer{src: src, vocab: vocab, syntax: syntax}
}

// Tokenize scans the whole input.
func Tokenize(src string, vocab Vocabulary, syntax Syntax) []Token {
	lx := New(src, vocab, syntax)
	var tokens []Token
	for {
		tok, ok := lx.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Offset returns the byte position of the next unread input.
func (l *Lexer) Offset() int {
	if l.pending != nil {
		return l.pending.Offset
	}
	return l.pos
}

// Next returns the next token. Consecutive literal bytes are returned as a
// single Literal token.
func (l *Lexer) Next() (Token, bool) {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, true
	}
	if l.pos >= len(l.src) {
		return Token{}, false
	}

	start := l.pos
	for i := l.pos; i < len(l.src); i++ {
		var (
			tok Token
			ok  bool
		)
		switch l.src[i] {
		case '[':
			if l.syntax.Has(BBCode) {
				tok, ok = l.scanBracket(i)
			}
		case '<':
			if l.syntax.Has(HTML) {
				tok, ok = l.scanAngle(i)
			}
		}
		if !ok {
			continue
		}

		l.pos = tok.End
		if i > start {
			l.pending = &tok
			return l.literal(start, i), true
		}
		return tok, true
	}

	l.pos = len(l.src)
	return l.literal(start, len(l.src)), true
}

// ReadVerbatim consumes input up to the close tag for name, matched ASCII
// case-insensitively, without tokenizing it. On success the lexer resumes after
// the close tag. When no close tag exists the lexer does not move.
func (l *Lexer) ReadVerbatim(name string, html bool) (content, closeTag string, ok bool) {
	if l.pending != nil {
		return "", "", false
	}
	if l.lower == "" && l.src != "" {
		l.lower = asciiLower(l.src)
	}

	needle := "[/" + name + "]"
	if html {
		needle = "</" + name + ">"
	}
	idx := strings.Index(l.lower[l.pos:], needle)
	if idx < 0 {
		return "", "", false
	}

	start := l.pos
	end := start + idx
	l.pos = end + len(needle)
	return l.src[start:end], l.src[end:l.pos], true
}

func (l *Lexer) literal(start, end int) Token {
	return Token{
		Kind:   Literal,
		Text:   l.src[start:end],
		Offset: start,
		End:    end,
	}
}

// scanBracket recognises [name], [name=param], [name param], [name/] and
// [/name] starting at i.
func (l *Lexer) scanBracket(i int) (Token, bool) {
	j := i + 1
	for ; j < len(l.src); j++ {
		if l.src[j] == ']' {
			break
		}
		if l.src[j] == '[' {
			return Token{}, false
		}
	}
	if j >= len(l.src) {
		return Token{}, false
	}

	inner := l.src[i+1 : j]
	tok := Token{Text: l.src[i : j+1], Offset: i, End: j + 1}

	if strings.HasPrefix(inner, "/") {
		name := asciiLower(strings.TrimSpace(inner[1:]))
		if !validName(name) || !l.vocab.Known(name, false) {
			return Token{}, false
		}
		tok.Kind = TagClose
		tok.Name = name
		return tok, true
	}

	tok.Kind = TagOpen
	if strings.HasSuffix(inner, "/") {
		tok.Kind = SelfClosingTag
		inner = inner[:len(inner)-1]
	}

	name, param := inner, ""
	if k := strings.IndexAny(inner, "= "); k >= 0 {
		name, param = inner[:k], inner[k+1:]
		if inner[k] == ' ' {
			param = strings.TrimSpace(param)
		}
	}
	name = asciiLower(name)
	if !validName(name) || !l.vocab.Known(name, false) {
		return Token{}, false
	}
	tok.Name = name
	tok.Param = param
	return tok, true
}

// scanAngle recognises <name attr="v">, <name/> and </name> starting at i.
// Quoted attribute values may contain '>' and '<'.
func (l *Lexer) scanAngle(i int) (Token, bool) {
	var quote byte
	j := i + 1
	for ; j < len(l.src); j++ {
		c := l.src[j]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c == '>' {
			break
		}
		if c == '<' {
			return Token{}, false
		}
	}
	if j >= len(l.src) {
		return Token{}, false
	}

	inner := l.src[i+1 : j]
	tok := Token{Text: l.src[i : j+1], Offset: i, End: j + 1, HTML: true}

	if strings.HasPrefix(inner, "/") {
		name := asciiLower(strings.TrimSpace(inner[1:]))
		if !validName(name) || !l.vocab.Known(name, true) {
			return Token{}, false
		}
		tok.Kind = TagClose
		tok.Name = name
		return tok, true
	}

	tok.Kind = TagOpen
	trimmed := strings.TrimRight(inner, " \t\r\n")
	if strings.HasSuffix(trimmed, "/") {
		tok.Kind = SelfClosingTag
		inner = trimmed[:len(trimmed)-1]
	}

	k := 0
	for k < len(inner) && isNameByte(inner[k]) {
		k++
	}
	name := asciiLower(inner[:k])
	if !validName(name) || !l.vocab.Known(name, true) {
		return Token{}, false
	}
	if k < len(inner) && !isSpace(inner[k]) {
		return Token{}, false
	}

	attrs, ok := parseAttrs(inner[k:])
	if !ok {
		return Token{}, false
	}
	tok.Name = name
	tok.Attrs = attrs
	return tok, true
}

func parseAttrs(s string) ([]Attr, bool) {
	var attrs []Attr
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return attrs, true
		}

		start := i
		for i < len(s) && isAttrByte(s[i]) {
			i++
		}
		if i == start {
			return nil, false
		}
		attr := Attr{Key: asciiLower(s[start:i])}

		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i < len(s) && s[i] == '=' {
			i++
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			if i < len(s) && (s[i] == '"' || s[i] == '\'') {
				q := s[i]
				end := strings.IndexByte(s[i+1:], q)
				if end < 0 {
					return nil, false
				}
				attr.Value = s[i+1 : i+1+end]
				i += end + 2
			} else {
				vs := i
				for i < len(s) && !isSpace(s[i]) {
					i++
				}
				attr.Value = s[vs:i]
			}
		}
		attrs = append(attrs, attr)
	}
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) && name[i] != '*' {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isAttrByte(c byte) bool {
	return isNameByte(c) || c == '-' || c == '_' || c == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
