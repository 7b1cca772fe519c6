package main

import (
	"fmt"
	"strings"
)

// Format renders a parsed program back as canonical source: four-space
// indentation, one statement per line inside functions, blocks separated by
// a blank line. Formatting then reparsing yields an equal tree.
func Format(program *Program) string {
	var parts []string
	for _, blk := range program.Blocks {
		switch blk.Kind {
		case BlockFunction:
			parts = append(parts, formatFunction(blk.Function))
		case BlockExport:
			parts = append(parts, fmt.Sprintf("export %s %s;", blk.Export.ExternalName, blk.Export.FunctionName))
		case BlockImportFunction:
			imp := blk.ImportFunction
			parts = append(parts, fmt.Sprintf("import %s %s(%s);", strings.Join(imp.ExternalName, "."), imp.Name, formatParams(imp.Params)))
		case BlockImportMemory:
			imp := blk.ImportMemory
			parts = append(parts, fmt.Sprintf("import %s memory %d;", strings.Join(imp.ExternalName, "."), imp.Size))
		}
	}
	return strings.Join(parts, "\n\n")
}

func formatFunction(fn *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s(%s): %s {\n", fn.Name, formatParams(fn.Params), fn.ReturnType)
	for _, e := range fn.Expressions {
		b.WriteString("    " + formatExpr(e) + ";\n")
	}
	b.WriteString("}")
	return b.String()
}

func formatParams(params []Param) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, p.Name+": "+p.TypeName)
	}
	return strings.Join(parts, ", ")
}

// formatExpr renders one expression without a trailing semicolon. Control
// statements render inline; their nested statements keep their own
// semicolons so the result reparses cleanly.
func formatExpr(e *Expression) string {
	switch e.Kind {
	case ExprNumber:
		return e.Value
	case ExprBoolean:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprString:
		return "\"" + e.Body + "\""
	case ExprVariable:
		return e.Body
	case ExprLocalAssign:
		return fmt.Sprintf("local %s: %s = %s", e.Name, e.TypeName, formatExpr(e.Expr))
	case ExprGlobalAssign:
		return fmt.Sprintf("global %s: %s = %s", e.Name, e.TypeName, formatExpr(e.Expr))
	case ExprAddition:
		return formatExpr(e.Left) + " + " + formatExpr(e.Right)
	case ExprReturn:
		return "return " + formatExpr(e.Expr)
	case ExprFunctionCall:
		var args []string
		for _, a := range e.Args {
			args = append(args, formatExpr(a))
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case ExprIfStatement:
		out := fmt.Sprintf("if (%s) { %s }", formatExpr(e.Predicate), formatExpr(e.Success))
		if e.Fail != nil {
			out += fmt.Sprintf(" else { %s }", formatExpr(e.Fail))
		}
		return out
	case ExprForStatement:
		var body []string
		for _, s := range e.Block {
			body = append(body, formatExpr(s)+";")
		}
		return fmt.Sprintf("for (%s, %s, %s) { %s }",
			formatExpr(e.Init), formatExpr(e.Cond), formatExpr(e.Incr), strings.Join(body, " "))
	}
	return ""
}
