package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Param is one declared function parameter.
type Param struct {
	Name     string
	TypeName string
}

// Function is one `fn` definition: signature plus its statement list in
// source order.
type Function struct {
	Name        string
	Params      []Param
	ReturnType  string
	Expressions []*Expression
}

// Export maps an external name onto an internal function.
type Export struct {
	ExternalName string
	FunctionName string
}

// ImportFunction declares a host function. ExternalName holds the segments of
// the dotted path, e.g. ["console", "log"].
type ImportFunction struct {
	Name         string
	Params       []Param
	ExternalName []string
}

// ImportMemory declares host-provided linear memory of Size pages.
type ImportMemory struct {
	Size         int
	ExternalName []string
}

// BlockKind discriminates top-level blocks.
type BlockKind string

const (
	BlockFunction       BlockKind = "Function"
	BlockExport         BlockKind = "Export"
	BlockImportFunction BlockKind = "ImportFunction"
	BlockImportMemory   BlockKind = "ImportMemory"
)

// Block is one top-level source unit.
type Block struct {
	Kind           BlockKind
	Function       *Function
	Export         *Export
	ImportFunction *ImportFunction
	ImportMemory   *ImportMemory
}

// Program is an ordered block sequence. Order is significant: it fixes
// emission order and string-offset allocation order.
type Program struct {
	Blocks []Block
}

// ParseProgram tokenizes and parses a whole source file. Every top-level
// block parses independently; all failures are collected into one
// newline-joined error so a single compile reports as much as possible.
func ParseProgram(source string) (*Program, error) {
	tokens := Tokenize(source)

	var blocks []Block
	var errs []string

	i := 0
	for i < len(tokens) {
		switch tokens[i].Type {
		case FN:
			end := endOfFunction(tokens, i)
			fn, err := parseFunction(tokens[i:end])
			if err != nil {
				errs = append(errs, err.Error())
			} else {
				blocks = append(blocks, Block{Kind: BlockFunction, Function: fn})
			}
			i = end
		case EXPORT:
			end := endOfLine(tokens, i)
			exp, err := parseExport(tokens[i:end])
			if err != nil {
				errs = append(errs, err.Error())
			} else {
				blocks = append(blocks, Block{Kind: BlockExport, Export: exp})
			}
			i = end
		case IMPORT:
			end := endOfLine(tokens, i)
			blk, err := parseImport(tokens[i:end])
			if err != nil {
				errs = append(errs, err.Error())
			} else {
				blocks = append(blocks, blk)
			}
			i = end
		default:
			errs = append(errs, "Unrecognized block")
			i = recoverToNextBlock(tokens, i)
		}
	}

	if len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "\n"))
	}
	return &Program{Blocks: blocks}, nil
}

// endOfFunction finds the index just past the brace closing the function
// starting at i, or the start of the next top-level block when the body
// never opens or never closes.
func endOfFunction(tokens []Token, i int) int {
	depth := 0
	opened := false
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].Type {
		case FN, EXPORT, IMPORT:
			if depth == 0 {
				return j
			}
		case LBRACE:
			depth++
			opened = true
		case RBRACE:
			depth--
			if opened && depth == 0 {
				return j + 1
			}
		}
	}
	return len(tokens)
}

// endOfLine bounds a braceless block (export, import): it ends at a
// depth-zero semicolon or right before the next top-level block.
func endOfLine(tokens []Token, i int) int {
	depth := 0
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].Type {
		case SEMICOLON:
			if depth == 0 {
				return j + 1
			}
		case FN, EXPORT, IMPORT:
			if depth == 0 {
				return j
			}
		default:
			depth += depthDelta(tokens[j].Type)
		}
	}
	return len(tokens)
}

func recoverToNextBlock(tokens []Token, i int) int {
	depth := 0
	for j := i + 1; j < len(tokens); j++ {
		if depth == 0 {
			switch tokens[j].Type {
			case FN, EXPORT, IMPORT:
				return j
			}
		}
		depth += depthDelta(tokens[j].Type)
	}
	return len(tokens)
}

// parseFunction parses one `fn name(params): type { body }` block. The body
// splits into statements at depth-zero semicolons; each statement parses
// with the parameters and all prior statements as context. The first failing
// statement fails the whole block.
func parseFunction(tokens []Token) (*Function, error) {
	fnTok := tokens[0]

	if len(tokens) < 2 {
		return nil, positioned("Expected a function name but got nothing", fnTok)
	}
	nameTok := tokens[1]
	if nameTok.Type != IDENT {
		return nil, positioned(fmt.Sprintf("Expected a function name but got %s", nameTok), fnTok)
	}

	if len(tokens) < 3 {
		return nil, errors.New("Expected parens but got nothing")
	}
	openParens := tokens[2]
	if openParens.Type != LPAREN {
		return nil, positioned(fmt.Sprintf("Expected parens but got %s", openParens), openParens)
	}

	params, i, err := parseParams(tokens, 3, openParens)
	if err != nil {
		return nil, err
	}

	if i >= len(tokens) {
		return nil, errors.New("Expected colon but got nothing")
	}
	if tokens[i].Type != COLON {
		return nil, positioned(fmt.Sprintf("Failed parsing function signature - expected return type, got %s", tokens[i]), tokens[i])
	}
	i++

	if i >= len(tokens) {
		return nil, errors.New("Expected return type name, but got nothing")
	}
	if tokens[i].Type != IDENT {
		return nil, positioned(fmt.Sprintf("Expected return type name, but got %s", tokens[i]), tokens[i])
	}
	returnType := tokens[i].Literal
	i++

	if i >= len(tokens) {
		return nil, errors.New("Expected { but got nothing")
	}
	if tokens[i].Type != LBRACE {
		return nil, positioned(fmt.Sprintf("Expected { but got %s", tokens[i]), tokens[i])
	}

	body := tokens[i+1:]
	if len(body) > 0 && body[len(body)-1].Type == RBRACE {
		body = body[:len(body)-1]
	}

	fn := &Function{Name: nameTok.Literal, Params: params, ReturnType: returnType}
	ctx := newExprContext(params)
	for _, group := range splitTopLevel(body, SEMICOLON) {
		if len(group) == 0 {
			continue
		}
		stmt, err := parseExpression(group, ctx)
		if err != nil {
			return nil, err
		}
		fn.Expressions = append(fn.Expressions, stmt)
		ctx.priors = append(ctx.priors, stmt)
	}
	return fn, nil
}

// parseParams reads `name: type` pairs until the closing paren, starting at
// tokens[i]. A name still pending when the paren closes has no type.
func parseParams(tokens []Token, i int, openParens Token) ([]Param, int, error) {
	var params []Param
	var pending string
	hasPending := false

	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case RPAREN:
			if hasPending {
				return nil, 0, positioned(fmt.Sprintf("Failed to find type for param %s", pending), openParens)
			}
			return params, i + 1, nil
		case IDENT:
			if hasPending {
				params = append(params, Param{Name: pending, TypeName: tok.Literal})
				hasPending = false
			} else {
				pending = tok.Literal
				hasPending = true
			}
		case COMMA:
			hasPending = false
		case COLON:
			// separates a name from its type
		default:
			return nil, 0, fmt.Errorf("Failed parsing params, got unexpected token %s", tok)
		}
	}
	return nil, 0, errors.New("Failed parsing params")
}

// parseExport parses `export externalName functionName`.
func parseExport(tokens []Token) (*Export, error) {
	if len(tokens) < 2 {
		return nil, errors.New("Expected external name in export")
	}
	external := tokens[1]
	if external.Type != IDENT {
		return nil, positioned(fmt.Sprintf("Expected external name in export, got %s", external), external)
	}

	if len(tokens) < 3 {
		return nil, errors.New("Expected function name in export")
	}
	internal := tokens[2]
	if internal.Type != IDENT {
		return nil, positioned(fmt.Sprintf("Expected function name in export, got %s", internal), internal)
	}

	return &Export{ExternalName: external.Literal, FunctionName: internal.Literal}, nil
}

// parseImport parses either of:
//
//	import console.log log(message: string);
//	import js.mem memory 1;
//
// The dotted path names the host-side value; what follows declares the
// imported function or memory.
func parseImport(tokens []Token) (Block, error) {
	i := 1
	var path []string
	for {
		if i >= len(tokens) {
			return Block{}, errors.New("Expected external path in import")
		}
		if tokens[i].Type != IDENT {
			return Block{}, positioned(fmt.Sprintf("Expected external path in import, got %s", tokens[i]), tokens[i])
		}
		path = append(path, tokens[i].Literal)
		i++
		if i < len(tokens) && tokens[i].Type == DOT {
			i++
			continue
		}
		break
	}

	if i >= len(tokens) {
		return Block{}, errors.New("Expected memory or a function in import")
	}

	switch tokens[i].Type {
	case MEMORY:
		i++
		if i >= len(tokens) || tokens[i].Type != NUMBER {
			return Block{}, errors.New("Expected memory size in import")
		}
		size, err := strconv.Atoi(tokens[i].Literal)
		if err != nil {
			return Block{}, positioned(fmt.Sprintf("Expected memory size in import, got %s", tokens[i]), tokens[i])
		}
		return Block{Kind: BlockImportMemory, ImportMemory: &ImportMemory{Size: size, ExternalName: path}}, nil

	case IDENT:
		name := tokens[i].Literal
		i++
		if i >= len(tokens) || tokens[i].Type != LPAREN {
			return Block{}, errors.New("Expected parens but got nothing")
		}
		openParens := tokens[i]
		params, _, err := parseParams(tokens, i+1, openParens)
		if err != nil {
			return Block{}, err
		}
		return Block{Kind: BlockImportFunction, ImportFunction: &ImportFunction{Name: name, Params: params, ExternalName: path}}, nil
	}

	return Block{}, positioned(fmt.Sprintf("Expected memory or a function in import, got %s", tokens[i]), tokens[i])
}
