package wiki

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/lexer"
)

// ErrorPage builds the node list shown instead of a page that failed to
// parse: a diagnostic line followed by the full markup with the offending
// character wrapped in an error marker.
func ErrorPage(markup string, err error) []ast.Node {
	src := normalizeNewlines(markup)

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		message := "unknown error"
		if err != nil {
			message = err.Error()
		}
		return []ast.Node{element(ast.KindBlock, map[string]string{"class": "wiki-error"},
			element(ast.KindParagraph, nil, ast.NewText("Error: "+message)),
			element(ast.KindPreformatted, nil, ast.NewText(src)),
		)}
	}

	offset := syntaxErr.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line, column := lexer.Position(src, offset)
	diagnostic := fmt.Sprintf("Syntax error on line %d, column %d: %s", line, column, syntaxErr.Message)

	marked, size := " ", 0
	if offset < len(src) && src[offset] != '\n' {
		r, n := utf8.DecodeRuneInString(src[offset:])
		marked, size = string(r), n
	}

	dump := builder{kind: ast.KindPreformatted}
	dump.add(
		ast.NewText(src[:offset]),
		element(ast.KindInline, map[string]string{"class": "error-marker"}, ast.NewText(marked)),
		ast.NewText(src[offset+size:]),
	)
	return []ast.Node{element(ast.KindBlock, map[string]string{"class": "wiki-error"},
		element(ast.KindParagraph, nil, ast.NewText(diagnostic)),
		dump.build(),
	)}
}

// ErrorLine returns the source line holding a syntax error and the error's
// column within it, for log fields and CLI diagnostics.
func ErrorLine(markup string, err *SyntaxError) (string, int) {
	src := normalizeNewlines(markup)
	text, _ := lexer.LineAt(src, err.Offset)
	_, column := lexer.Position(src, err.Offset)
	return text, column
}
