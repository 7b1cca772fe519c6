package main

// TokenType is the lexical class of a token.
type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"  // say_hello, x
	NUMBER TokenType = "NUMBER" // 123, 3.14
	TEXT   TokenType = "TEXT"   // "Hello world"

	// Delimiters
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	COLON     TokenType = ":"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	ASSIGN    TokenType = "="
	PLUS      TokenType = "+"
	DOT       TokenType = "."

	// Keywords
	FN     TokenType = "FN"
	RETURN TokenType = "RETURN"
	LOCAL  TokenType = "LOCAL"
	GLOBAL TokenType = "GLOBAL"
	IMPORT TokenType = "IMPORT"
	EXPORT TokenType = "EXPORT"
	MEMORY TokenType = "MEMORY"
	IF     TokenType = "IF"
	ELSE   TokenType = "ELSE"
	FOR    TokenType = "FOR"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
)

var keywords = map[string]TokenType{
	"fn":     FN,
	"return": RETURN,
	"local":  LOCAL,
	"global": GLOBAL,
	"import": IMPORT,
	"export": EXPORT,
	"memory": MEMORY,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"true":   TRUE,
	"false":  FALSE,
}

// Token is one lexical unit together with the position it was scanned at.
// Line is 1-based. Index is the 0-based byte offset within the line; for
// buffered tokens (identifiers, keywords, numbers) it is the offset of the
// delimiter that ended the token, for single-character tokens the offset of
// the character itself. Positions feed diagnostics only.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Index   int
}

// String renders the token as it appears in source, for error messages.
func (t Token) String() string {
	return t.Literal
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isNumberString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func punctType(c byte) TokenType {
	switch c {
	case '(':
		return LPAREN
	case ')':
		return RPAREN
	case '{':
		return LBRACE
	case '}':
		return RBRACE
	case ':':
		return COLON
	case ',':
		return COMMA
	case ';':
		return SEMICOLON
	case '=':
		return ASSIGN
	case '+':
		return PLUS
	}
	return ILLEGAL
}

// Tokenize scans gwe source into a token sequence. It never fails; bytes it
// does not understand become ILLEGAL tokens for the parser to reject.
func Tokenize(source string) []Token {
	var tokens []Token
	var buf []byte
	line := 1
	col := 0
	inQuotes := false

	flush := func() {
		if len(buf) == 0 {
			return
		}
		lit := string(buf)
		buf = buf[:0]
		tok := Token{Type: IDENT, Literal: lit, Line: line, Index: col}
		if kind, ok := keywords[lit]; ok {
			tok.Type = kind
		} else if isNumberString(lit) {
			tok.Type = NUMBER
		}
		tokens = append(tokens, tok)
	}

	for i := 0; i < len(source); i++ {
		c := source[i]

		if inQuotes {
			if c == '"' {
				tokens = append(tokens, Token{Type: TEXT, Literal: string(buf), Line: line, Index: col})
				buf = buf[:0]
				inQuotes = false
			} else {
				buf = append(buf, c)
			}
			col++
			continue
		}

		switch {
		case c == '"':
			flush()
			inQuotes = true
		case c == '(' || c == ')' || c == '{' || c == '}' ||
			c == ':' || c == ',' || c == ';' || c == '=' || c == '+':
			flush()
			tokens = append(tokens, Token{Type: punctType(c), Literal: string(c), Line: line, Index: col})
		case c == '.':
			// A dot continues a numeric literal; anywhere else it separates
			// the segments of a dotted import path.
			if isNumberString(string(buf)) {
				buf = append(buf, c)
			} else {
				flush()
				tokens = append(tokens, Token{Type: DOT, Literal: ".", Line: line, Index: col})
			}
		case c == '/' && i+1 < len(source) && source[i+1] == '/':
			flush()
			for i+1 < len(source) && source[i+1] != '\n' {
				i++
				col++
			}
		case c == ' ' || c == '\t' || c == '\r':
			flush()
		case c == '\n':
			flush()
			line++
			col = 0
			continue
		case isIdentByte(c):
			buf = append(buf, c)
		default:
			flush()
			tokens = append(tokens, Token{Type: ILLEGAL, Literal: string(c), Line: line, Index: col})
		}
		col++
	}
	flush()

	return tokens
}
