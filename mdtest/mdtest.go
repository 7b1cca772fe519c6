// Package mdtest extracts compiler test cases from Markdown documents. A
// document holds any number of tests, each introduced by a "Test:" heading,
// with one gwe source fence and one or more assertion fences describing what
// the compiler must produce for it.
package mdtest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// AssertionType names what an assertion fence checks.
type AssertionType string

const (
	// AssertionAST compares the parsed program's s-expression rendering.
	AssertionAST AssertionType = "ast"
	// AssertionWAT compares the emitted WebAssembly text module.
	AssertionWAT AssertionType = "wat"
	// AssertionFormat compares the canonical formatting. An empty fence
	// asserts the source is already canonical.
	AssertionFormat AssertionType = "format"
	// AssertionCompileError compares the compile error message.
	AssertionCompileError AssertionType = "compile-error"
)

// Assertion is one expectation fence inside a test case.
type Assertion struct {
	Type    AssertionType
	Content string
}

// Case is one extracted test: a name, a source program, and its assertions.
type Case struct {
	Name       string
	Source     string
	Assertions []Assertion
}

const sourceFence = "gwe"

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionAST, AssertionWAT, AssertionFormat, AssertionCompileError:
		return true
	}
	return false
}

// ExtractCases parses a Markdown document and returns its test cases in
// document order. Every fence with a language must belong to a test case,
// and every test case needs a source fence and at least one assertion; a
// document that breaks either rule is rejected whole.
func ExtractCases(document string) ([]Case, error) {
	md := goldmark.New()
	source := []byte(document)
	doc := md.Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test %q has no gwe source fence", current.Name)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("test %q has no assertion fences", current.Name)
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if name, ok := strings.CutPrefix(heading, "Test: "); ok {
				if err := finish(); err != nil {
					return ast.WalkStop, err
				}
				current = &Case{Name: name}
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, language)
			}
			content := fenceContent(n, source)

			switch {
			case language == sourceFence:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test %q has more than one source fence", line, current.Name)
				}
				current.Source = strings.TrimRight(content, "\n")
			case isAssertionFence(language):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimRight(content, "\n"),
				})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		segment := block.Lines().At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	line := 1
	for i := 0; i < start && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
