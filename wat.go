package main

import (
	"fmt"
	"strings"
)

// watType maps a gwe type name to the WebAssembly value type it lowers to.
// Strings lower to an i32 address; literals additionally carry a length (see
// ExprMemoryReference).
func watType(name string) string {
	switch name {
	case "i32", "i64", "f32", "f64":
		return name
	case "number":
		return "f32"
	case "bool":
		return "i32"
	case "string":
		return "i32"
	}
	return name
}

type dataSegment struct {
	offset int
	body   string
}

// EmitWAT renders a parsed program as one WebAssembly Text module. The
// output is deterministic: identical programs produce byte-identical text.
// Module order is imports, globals, then each function preceded by the data
// segments it owns, then exports.
func EmitWAT(program *Program) (string, error) {
	var b strings.Builder
	b.WriteString("(module\n")

	for _, blk := range program.Blocks {
		switch blk.Kind {
		case BlockImportFunction:
			imp := blk.ImportFunction
			var types []string
			for _, p := range imp.Params {
				if p.TypeName == "string" {
					// address + length, the string calling convention
					types = append(types, "i32", "i32")
				} else {
					types = append(types, watType(p.TypeName))
				}
			}
			paramClause := ""
			if len(types) > 0 {
				paramClause = " (param " + strings.Join(types, " ") + ")"
			}
			fmt.Fprintf(&b, "  (import %q (func $%s%s))\n", strings.Join(imp.ExternalName, "."), imp.Name, paramClause)
		case BlockImportMemory:
			imp := blk.ImportMemory
			fmt.Fprintf(&b, "  (import %q (memory %d))\n", strings.Join(imp.ExternalName, "."), imp.Size)
		}
	}

	emitted := make(map[string]bool)
	for _, blk := range program.Blocks {
		if blk.Kind != BlockFunction {
			continue
		}
		for _, e := range blk.Function.Expressions {
			if e.Kind == ExprGlobalAssign && !emitted[e.Name] {
				emitted[e.Name] = true
				fmt.Fprintf(&b, "  (global $%s (mut %s))\n", e.Name, watType(e.TypeName))
			}
		}
	}

	for _, blk := range program.Blocks {
		if blk.Kind != BlockFunction {
			continue
		}
		if err := emitFunction(&b, blk.Function); err != nil {
			return "", err
		}
	}

	for _, blk := range program.Blocks {
		if blk.Kind == BlockExport {
			fmt.Fprintf(&b, "  (export %q (func $%s))\n", blk.Export.ExternalName, blk.Export.FunctionName)
		}
	}

	b.WriteString(")")
	return b.String(), nil
}

func emitFunction(b *strings.Builder, fn *Function) error {
	segments, stmts := extractStrings(fn)

	for _, seg := range segments {
		fmt.Fprintf(b, "  (data (i32.const %d) %q)\n", seg.offset, seg.body)
	}

	b.WriteString("  (func $" + fn.Name)
	for _, p := range fn.Params {
		fmt.Fprintf(b, " (param $%s %s)", p.Name, watType(p.TypeName))
	}
	if fn.ReturnType != "" && fn.ReturnType != "void" {
		fmt.Fprintf(b, " (result %s)", watType(fn.ReturnType))
	}
	b.WriteString("\n")

	for _, l := range collectLocals(stmts) {
		fmt.Fprintf(b, "    (local $%s %s)\n", l.Name, watType(l.TypeName))
	}

	for _, stmt := range stmts {
		lines, err := emitStatement(stmt)
		if err != nil {
			return fmt.Errorf("in function %s: %w", fn.Name, err)
		}
		for _, line := range lines {
			b.WriteString("    " + line + "\n")
		}
	}

	b.WriteString("  )\n")
	return nil
}

// extractStrings is the memory-layout pass. Every top-level local declaration
// binding a string literal claims the next byte range of linear memory (the
// running offset starts at 0 per function and never shrinks) and disappears
// from the emitted statement list; every later use of that name becomes a
// MemoryReference carrying the range. The pass builds a new tree and never
// mutates the parser's output.
func extractStrings(fn *Function) ([]dataSegment, []*Expression) {
	var segments []dataSegment
	refs := make(map[string]*Expression)
	offset := 0

	var stmts []*Expression
	for _, e := range fn.Expressions {
		if e.Kind == ExprLocalAssign && e.TypeName == "string" && e.Expr != nil && e.Expr.Kind == ExprString {
			body := e.Expr.Body
			segments = append(segments, dataSegment{offset: offset, body: body})
			refs[e.Name] = &Expression{Kind: ExprMemoryReference, Offset: offset, Length: len(body)}
			offset += len(body)
			continue
		}
		stmts = append(stmts, substituteRefs(e, refs))
	}
	return segments, stmts
}

// substituteRefs clones a subtree, replacing variables bound to extracted
// string literals with their memory reference.
func substituteRefs(e *Expression, refs map[string]*Expression) *Expression {
	if e == nil {
		return nil
	}
	if e.Kind == ExprVariable {
		if ref, ok := refs[e.Body]; ok {
			clone := *ref
			return &clone
		}
	}

	clone := *e
	clone.Expr = substituteRefs(e.Expr, refs)
	clone.Left = substituteRefs(e.Left, refs)
	clone.Right = substituteRefs(e.Right, refs)
	clone.Predicate = substituteRefs(e.Predicate, refs)
	clone.Success = substituteRefs(e.Success, refs)
	clone.Fail = substituteRefs(e.Fail, refs)
	clone.Init = substituteRefs(e.Init, refs)
	clone.Cond = substituteRefs(e.Cond, refs)
	clone.Incr = substituteRefs(e.Incr, refs)
	if e.Args != nil {
		clone.Args = make([]*Expression, len(e.Args))
		for i, a := range e.Args {
			clone.Args[i] = substituteRefs(a, refs)
		}
	}
	if e.Block != nil {
		clone.Block = make([]*Expression, len(e.Block))
		for i, s := range e.Block {
			clone.Block[i] = substituteRefs(s, refs)
		}
	}
	return &clone
}

// collectLocals gathers every non-string local declaration reachable from
// the statement list, including for-loop initializers and if branches, in
// first-declaration order. String locals live in linear memory instead.
func collectLocals(stmts []*Expression) []Param {
	var locals []Param
	seen := make(map[string]bool)

	var walk func(e *Expression)
	walk = func(e *Expression) {
		if e == nil {
			return
		}
		switch e.Kind {
		case ExprLocalAssign:
			if e.TypeName != "string" && !seen[e.Name] {
				seen[e.Name] = true
				locals = append(locals, Param{Name: e.Name, TypeName: e.TypeName})
			}
		case ExprIfStatement:
			walk(e.Success)
			walk(e.Fail)
		case ExprForStatement:
			walk(e.Init)
			for _, s := range e.Block {
				walk(s)
			}
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return locals
}

// emitStatement renders one statement as WAT instruction lines. Expression
// trees emit as nested single-line forms where the operand fits on one line;
// a multi-line operand is emitted first and the bare instruction follows,
// stack-style.
func emitStatement(e *Expression) ([]string, error) {
	switch e.Kind {
	case ExprNumber:
		return []string{fmt.Sprintf("(%s.const %s)", watType(e.TypeName), e.Value)}, nil

	case ExprBoolean:
		if e.Bool {
			return []string{"(i32.const 0)"}, nil
		}
		return []string{"(i32.const 1)"}, nil

	case ExprString:
		return nil, fmt.Errorf("string literal %q is not bound to a local declaration, so it has no memory segment", e.Body)

	case ExprVariable:
		return []string{"(local.get $" + e.Body + ")"}, nil

	case ExprMemoryReference:
		return []string{
			fmt.Sprintf("(i32.const %d)", e.Offset),
			fmt.Sprintf("(i32.const %d)", e.Length),
		}, nil

	case ExprAddition:
		left, err := emitStatement(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := emitStatement(e.Right)
		if err != nil {
			return nil, err
		}
		if len(left) == 1 && len(right) == 1 {
			return []string{"(f32.add " + left[0] + " " + right[0] + ")"}, nil
		}
		lines := append(left, right...)
		return append(lines, "(f32.add)"), nil

	case ExprLocalAssign:
		if e.TypeName == "string" {
			return nil, fmt.Errorf("local %s: a string local must be declared at the top level of a function and bound to a string literal", e.Name)
		}
		return emitSet("local.set", e)

	case ExprGlobalAssign:
		return emitSet("global.set", e)

	case ExprReturn:
		// the value stays on the stack; WAT functions return implicitly
		return emitStatement(e.Expr)

	case ExprFunctionCall:
		var lines []string
		for _, arg := range e.Args {
			argLines, err := emitStatement(arg)
			if err != nil {
				return nil, err
			}
			lines = append(lines, argLines...)
		}
		return append(lines, "(call $"+e.Name+")"), nil

	case ExprIfStatement:
		return emitIf(e)

	case ExprForStatement:
		return emitFor(e)
	}

	return nil, fmt.Errorf("cannot emit expression of kind %s", e.Kind)
}

func emitSet(op string, e *Expression) ([]string, error) {
	rhs, err := emitStatement(e.Expr)
	if err != nil {
		return nil, err
	}
	if len(rhs) == 1 {
		return []string{"(" + op + " $" + e.Name + " " + rhs[0] + ")"}, nil
	}
	return append(rhs, "("+op+" $"+e.Name+")"), nil
}

func emitIf(e *Expression) ([]string, error) {
	pred, err := emitStatement(e.Predicate)
	if err != nil {
		return nil, err
	}
	success, err := emitStatement(e.Success)
	if err != nil {
		return nil, err
	}
	line := "(if " + strings.Join(pred, " ") + " (then " + strings.Join(success, " ") + ")"
	if e.Fail != nil {
		fail, err := emitStatement(e.Fail)
		if err != nil {
			return nil, err
		}
		line += " (else " + strings.Join(fail, " ") + ")"
	}
	return []string{line + ")"}, nil
}

// emitFor lowers a for statement into a WAT loop: the initializer runs once,
// then each iteration runs the body, bumps the counter by the incrementor,
// and re-enters while the counter compares below the condition.
func emitFor(e *Expression) ([]string, error) {
	if e.Init == nil || e.Init.Kind != ExprLocalAssign {
		return nil, fmt.Errorf("for loop initializer must declare a local")
	}
	counter := e.Init.Name
	counterType := watType(e.Init.TypeName)

	lines, err := emitStatement(e.Init)
	if err != nil {
		return nil, err
	}

	var inner []string
	for _, stmt := range e.Block {
		stmtLines, err := emitStatement(stmt)
		if err != nil {
			return nil, err
		}
		inner = append(inner, stmtLines...)
	}

	incr, err := emitStatement(e.Incr)
	if err != nil {
		return nil, err
	}
	inner = append(inner, "(local.get $"+counter+")")
	inner = append(inner, incr...)
	inner = append(inner, "("+counterType+".add)")
	inner = append(inner, "(local.set $"+counter+")")

	cond, err := emitStatement(e.Cond)
	if err != nil {
		return nil, err
	}
	inner = append(inner, "(local.get $"+counter+")")
	inner = append(inner, cond...)
	inner = append(inner, "("+counterType+".lt_s)")
	inner = append(inner, "(br_if $loop)")

	lines = append(lines, "(loop $loop")
	for _, l := range inner {
		lines = append(lines, "  "+l)
	}
	return append(lines, ")"), nil
}
