package main

import (
	"errors"
	"fmt"
)

// exprContext carries everything a statement parse needs from its
// surroundings: the function's parameters, the statements already parsed
// before it, and the default type for bare numeric literals. It is passed by
// value; callers extend priors as statements accumulate.
type exprContext struct {
	params     []Param
	priors     []*Expression
	numberType string
}

func newExprContext(params []Param) exprContext {
	return exprContext{params: params, numberType: "f32"}
}

func positioned(message string, tok Token) error {
	return fmt.Errorf("%s at line %d, index %d", message, tok.Line, tok.Index)
}

func errUnexpected(tok Token) error {
	return positioned(fmt.Sprintf("Failed parsing expression, got unexpected token %s", tok), tok)
}

// depthDelta adjusts a nesting depth for one token. Parens and braces both
// count; statement splitting only happens at depth zero.
func depthDelta(t TokenType) int {
	switch t {
	case LPAREN, LBRACE:
		return 1
	case RPAREN, RBRACE:
		return -1
	}
	return 0
}

// indexAtDepthZero returns the index of the first token of the given type at
// bracket depth zero, or -1.
func indexAtDepthZero(tokens []Token, want TokenType) int {
	depth := 0
	for i, t := range tokens {
		if depth == 0 && t.Type == want {
			return i
		}
		depth += depthDelta(t.Type)
	}
	return -1
}

// splitTopLevel splits the token slice at depth-zero occurrences of sep.
// Separators inside nested parens or braces are left alone.
func splitTopLevel(tokens []Token, sep TokenType) [][]Token {
	var groups [][]Token
	depth := 0
	start := 0
	for i, t := range tokens {
		if depth == 0 && t.Type == sep {
			groups = append(groups, tokens[start:i])
			start = i + 1
			continue
		}
		depth += depthDelta(t.Type)
	}
	return append(groups, tokens[start:])
}

// matchDelim returns the index of the close token matching the open token at
// openIdx, counting nesting of the same pair.
func matchDelim(tokens []Token, openIdx int, open, close TokenType) (int, error) {
	depth := 0
	for i := openIdx; i < len(tokens); i++ {
		switch tokens[i].Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, positioned(fmt.Sprintf("Expected %s but got nothing", close), tokens[openIdx])
}

func trimTrailingSemicolons(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[len(tokens)-1].Type == SEMICOLON {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// parseExpression turns the tokens of exactly one statement into an
// expression tree. The token slice must already be isolated by depth-aware
// semicolon splitting.
func parseExpression(tokens []Token, ctx exprContext) (*Expression, error) {
	if len(tokens) == 0 {
		return nil, errors.New("Failed parsing expression, ran out of tokens")
	}

	// Addition only applies to pure value expressions: a statement that also
	// assigns defers the plus to the assignment's sub-parse. The first
	// depth-zero plus splits the slice, right-nesting any remainder.
	plusAt := indexAtDepthZero(tokens, PLUS)
	if plusAt >= 0 && indexAtDepthZero(tokens, ASSIGN) < 0 {
		left, err := parseExpression(tokens[:plusAt], ctx)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(tokens[plusAt+1:], ctx)
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprAddition, Left: left, Right: right}, nil
	}

	head := tokens[0]
	rest := tokens[1:]

	switch head.Type {
	case RBRACE:
		// A dangling close brace carries no content of its own.
		if len(rest) == 0 {
			return nil, errors.New("Failed parsing expression, ran out of tokens")
		}
		return parseExpression(rest, ctx)

	case RETURN:
		sub, err := parseExpression(rest, ctx)
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprReturn, Expr: sub}, nil

	case LOCAL:
		return parseAssign(rest, ctx, ExprLocalAssign)

	case GLOBAL:
		return parseAssign(rest, ctx, ExprGlobalAssign)

	case IDENT:
		if len(rest) > 0 && rest[0].Type == LPAREN {
			return parseCall(head, rest, ctx)
		}
		typeName, ok := findType(head.Literal, ctx.params, ctx.priors)
		if !ok {
			return nil, positioned(fmt.Sprintf("Failed to find type for variable %s", head.Literal), head)
		}
		return &Expression{Kind: ExprVariable, Body: head.Literal, TypeName: typeName}, nil

	case TEXT:
		return &Expression{Kind: ExprString, Body: head.Literal}, nil

	case NUMBER:
		return &Expression{Kind: ExprNumber, Value: head.Literal, TypeName: ctx.numberType}, nil

	case TRUE:
		return &Expression{Kind: ExprBoolean, Bool: true}, nil

	case FALSE:
		return &Expression{Kind: ExprBoolean, Bool: false}, nil

	case IF:
		return parseIf(rest, ctx)

	case FOR:
		return parseFor(rest, ctx)
	}

	return nil, errUnexpected(head)
}

// parseAssign parses the tail of `local name: type = expr` (or global). A
// bare numeric literal on the right-hand side takes the declared type.
func parseAssign(rest []Token, ctx exprContext, kind ExprKind) (*Expression, error) {
	if len(rest) == 0 {
		return nil, errors.New("Failed parsing expression, was expecting an identifier token for the variable name")
	}
	nameTok := rest[0]
	if nameTok.Type != IDENT {
		return nil, errUnexpected(nameTok)
	}
	if len(rest) < 2 {
		return nil, errors.New("Expected : but got nothing")
	}
	if rest[1].Type != COLON {
		return nil, positioned(fmt.Sprintf("Expected : but got %s", rest[1]), rest[1])
	}
	if len(rest) < 3 {
		return nil, errors.New("Failed parsing expression, was expecting an identifier token for the type name")
	}
	typeTok := rest[2]
	if typeTok.Type != IDENT {
		return nil, errUnexpected(typeTok)
	}
	if len(rest) < 4 {
		return nil, errors.New("Expected = but got nothing")
	}
	if rest[3].Type != ASSIGN {
		return nil, positioned(fmt.Sprintf("Expected = but got %s", rest[3]), rest[3])
	}
	sub, err := parseExpression(rest[4:], ctx)
	if err != nil {
		return nil, err
	}
	if sub.Kind == ExprNumber {
		sub.TypeName = typeTok.Literal
	}
	return &Expression{Kind: kind, Name: nameTok.Literal, TypeName: typeTok.Literal, Expr: sub}, nil
}

// parseCall parses `name(arg, arg, ...)`; rest starts at the open paren.
// Arguments split only at top-level commas, so nested calls stay whole.
func parseCall(name Token, rest []Token, ctx exprContext) (*Expression, error) {
	closeIdx, err := matchDelim(rest, 0, LPAREN, RPAREN)
	if err != nil {
		return nil, err
	}
	var args []*Expression
	for _, group := range splitTopLevel(rest[1:closeIdx], COMMA) {
		if len(group) == 0 {
			continue
		}
		arg, err := parseExpression(group, ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &Expression{Kind: ExprFunctionCall, Name: name.Literal, Args: args}, nil
}

// parseIf parses `(predicate) { success } else { fail }`; the else branch is
// optional. All three windows parse with the same context.
func parseIf(rest []Token, ctx exprContext) (*Expression, error) {
	if len(rest) == 0 {
		return nil, errors.New("Expected ( but got nothing")
	}
	if rest[0].Type != LPAREN {
		return nil, positioned(fmt.Sprintf("Expected ( but got %s", rest[0]), rest[0])
	}
	predClose, err := matchDelim(rest, 0, LPAREN, RPAREN)
	if err != nil {
		return nil, err
	}
	predicate, err := parseExpression(trimTrailingSemicolons(rest[1:predClose]), ctx)
	if err != nil {
		return nil, err
	}

	after := rest[predClose+1:]
	if len(after) == 0 {
		return nil, errors.New("Expected { but got nothing")
	}
	if after[0].Type != LBRACE {
		return nil, positioned(fmt.Sprintf("Expected { but got %s", after[0]), after[0])
	}
	succClose, err := matchDelim(after, 0, LBRACE, RBRACE)
	if err != nil {
		return nil, err
	}
	success, err := parseExpression(trimTrailingSemicolons(after[1:succClose]), ctx)
	if err != nil {
		return nil, err
	}

	var fail *Expression
	tail := after[succClose+1:]
	if len(tail) > 0 && tail[0].Type == ELSE {
		tail = tail[1:]
		if len(tail) == 0 {
			return nil, errors.New("Expected { but got nothing")
		}
		if tail[0].Type != LBRACE {
			return nil, positioned(fmt.Sprintf("Expected { but got %s", tail[0]), tail[0])
		}
		failClose, err := matchDelim(tail, 0, LBRACE, RBRACE)
		if err != nil {
			return nil, err
		}
		fail, err = parseExpression(trimTrailingSemicolons(tail[1:failClose]), ctx)
		if err != nil {
			return nil, err
		}
	}

	return &Expression{Kind: ExprIfStatement, Predicate: predicate, Success: success, Fail: fail}, nil
}

// parseFor parses `(initializer, condition, incrementor) { body }`. The
// initializer joins the context before the other windows parse, so the loop
// variable is visible to them. Numeric literals in the condition and
// incrementor windows default to i32: they denote loop-counter comparisons.
func parseFor(rest []Token, ctx exprContext) (*Expression, error) {
	if len(rest) == 0 {
		return nil, errors.New("Expected ( but got nothing")
	}
	if rest[0].Type != LPAREN {
		return nil, positioned(fmt.Sprintf("Expected ( but got %s", rest[0]), rest[0])
	}
	headClose, err := matchDelim(rest, 0, LPAREN, RPAREN)
	if err != nil {
		return nil, err
	}
	parts := splitTopLevel(rest[1:headClose], COMMA)
	if len(parts) != 3 {
		return nil, positioned("Failed parsing for loop, expected (initializer, condition, incrementor)", rest[0])
	}

	init, err := parseExpression(parts[0], ctx)
	if err != nil {
		return nil, err
	}

	loopCtx := ctx
	loopCtx.priors = append(append([]*Expression{}, ctx.priors...), init)
	loopCtx.numberType = "i32"

	cond, err := parseExpression(parts[1], loopCtx)
	if err != nil {
		return nil, err
	}
	incr, err := parseExpression(parts[2], loopCtx)
	if err != nil {
		return nil, err
	}

	after := rest[headClose+1:]
	if len(after) == 0 {
		return nil, errors.New("Expected { but got nothing")
	}
	if after[0].Type != LBRACE {
		return nil, positioned(fmt.Sprintf("Expected { but got %s", after[0]), after[0])
	}
	bodyClose, err := matchDelim(after, 0, LBRACE, RBRACE)
	if err != nil {
		return nil, err
	}

	bodyCtx := loopCtx
	bodyCtx.numberType = ctx.numberType
	var body []*Expression
	for _, group := range splitTopLevel(after[1:bodyClose], SEMICOLON) {
		if len(group) == 0 {
			continue
		}
		stmt, err := parseExpression(group, bodyCtx)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		bodyCtx.priors = append(bodyCtx.priors, stmt)
	}

	return &Expression{Kind: ExprForStatement, Init: init, Cond: cond, Incr: incr, Block: body}, nil
}
