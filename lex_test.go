package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTokenizePositions(t *testing.T) {
	// Buffered tokens record the position of the delimiter that flushed
	// them; single-character tokens record their own position.
	tokens := Tokenize("fn ()")
	be.Equal(t, len(tokens), 3)
	be.Equal(t, tokens[0], Token{Type: FN, Literal: "fn", Line: 1, Index: 2})
	be.Equal(t, tokens[1], Token{Type: LPAREN, Literal: "(", Line: 1, Index: 3})
	be.Equal(t, tokens[2], Token{Type: RPAREN, Literal: ")", Line: 1, Index: 4})
}

func TestTokenizeLines(t *testing.T) {
	tokens := Tokenize("fn main(): i32 {\n    return 5;\n}")
	be.Equal(t, tokens[0], Token{Type: FN, Literal: "fn", Line: 1, Index: 2})
	be.Equal(t, tokens[1], Token{Type: IDENT, Literal: "main", Line: 1, Index: 7})
	be.Equal(t, tokens[6], Token{Type: LBRACE, Literal: "{", Line: 1, Index: 15})
	be.Equal(t, tokens[7], Token{Type: RETURN, Literal: "return", Line: 2, Index: 10})
	be.Equal(t, tokens[8], Token{Type: NUMBER, Literal: "5", Line: 2, Index: 12})
	be.Equal(t, tokens[10], Token{Type: RBRACE, Literal: "}", Line: 3, Index: 0})
}

func TestTokenizeKeywords(t *testing.T) {
	tokens := Tokenize("local global import export memory if else for true false")
	want := []TokenType{LOCAL, GLOBAL, IMPORT, EXPORT, MEMORY, IF, ELSE, FOR, TRUE, FALSE}
	be.Equal(t, len(tokens), len(want))
	for i, tok := range tokens {
		be.Equal(t, tok.Type, want[i])
	}
}

func TestTokenizeString(t *testing.T) {
	tokens := Tokenize(`local s: string = "Hello world";`)
	be.Equal(t, tokens[4], Token{Type: TEXT, Literal: "Hello world", Line: 1, Index: 30})
}

func TestTokenizeComment(t *testing.T) {
	tokens := Tokenize("local x: i32 = 5; // counter\nreturn x;")
	for _, tok := range tokens {
		be.True(t, tok.Literal != "// counter")
	}
	be.Equal(t, tokens[7], Token{Type: RETURN, Literal: "return", Line: 2, Index: 6})
}

func TestTokenizeNumberWithDot(t *testing.T) {
	tokens := Tokenize("3.14")
	be.Equal(t, len(tokens), 1)
	be.Equal(t, tokens[0].Type, NUMBER)
	be.Equal(t, tokens[0].Literal, "3.14")
}

func TestTokenizeDottedPath(t *testing.T) {
	// A dot after an identifier separates path segments instead of
	// extending a numeric literal.
	tokens := Tokenize("console.log")
	be.Equal(t, len(tokens), 3)
	be.Equal(t, tokens[0], Token{Type: IDENT, Literal: "console", Line: 1, Index: 7})
	be.Equal(t, tokens[1], Token{Type: DOT, Literal: ".", Line: 1, Index: 7})
	be.Equal(t, tokens[2], Token{Type: IDENT, Literal: "log", Line: 1, Index: 11})
}

func TestTokenizeIllegal(t *testing.T) {
	tokens := Tokenize("@")
	be.Equal(t, len(tokens), 1)
	be.Equal(t, tokens[0].Type, ILLEGAL)
}
