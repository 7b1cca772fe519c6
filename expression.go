package main

import (
	"strconv"
	"strings"
)

// ExprKind discriminates Expression variants.
type ExprKind string

const (
	ExprNumber          ExprKind = "Number"
	ExprBoolean         ExprKind = "Boolean"
	ExprString          ExprKind = "String"
	ExprVariable        ExprKind = "Variable"
	ExprLocalAssign     ExprKind = "LocalAssign"
	ExprGlobalAssign    ExprKind = "GlobalAssign"
	ExprAddition        ExprKind = "Addition"
	ExprReturn          ExprKind = "Return"
	ExprFunctionCall    ExprKind = "FunctionCall"
	ExprIfStatement     ExprKind = "IfStatement"
	ExprForStatement    ExprKind = "ForStatement"
	ExprMemoryReference ExprKind = "MemoryReference"
)

// Expression is one node of the expression tree. Every node owns its
// children exclusively; the tree is immutable once parsing finishes.
// ExprMemoryReference nodes are produced only by the emitter's string-layout
// pass, never by the parser.
type Expression struct {
	Kind ExprKind

	// ExprNumber: the literal text, emitted verbatim.
	Value string
	// ExprNumber, ExprVariable, ExprLocalAssign, ExprGlobalAssign: the
	// declared or resolved type name. A numeric literal defaults to f32 and
	// is rewritten by an enclosing assignment's declared type.
	TypeName string
	// ExprString, ExprVariable:
	Body string
	// ExprBoolean:
	Bool bool
	// ExprLocalAssign, ExprGlobalAssign, ExprFunctionCall:
	Name string
	// ExprReturn, ExprLocalAssign, ExprGlobalAssign:
	Expr *Expression
	// ExprAddition:
	Left  *Expression
	Right *Expression
	// ExprFunctionCall:
	Args []*Expression
	// ExprIfStatement: Fail is nil when the source has no else branch.
	Predicate *Expression
	Success   *Expression
	Fail      *Expression
	// ExprForStatement:
	Init  *Expression
	Cond  *Expression
	Incr  *Expression
	Block []*Expression
	// ExprMemoryReference: byte range in linear memory.
	Offset int
	Length int
}

// ToSExpr renders an expression tree as an s-expression string. Tests assert
// AST shapes against this form.
func ToSExpr(e *Expression) string {
	switch e.Kind {
	case ExprNumber:
		return "(number \"" + e.Value + "\" \"" + e.TypeName + "\")"
	case ExprBoolean:
		if e.Bool {
			return "(boolean true)"
		}
		return "(boolean false)"
	case ExprString:
		return "(string \"" + e.Body + "\")"
	case ExprVariable:
		return "(variable \"" + e.Body + "\" \"" + e.TypeName + "\")"
	case ExprLocalAssign:
		return "(local \"" + e.Name + "\" \"" + e.TypeName + "\" " + ToSExpr(e.Expr) + ")"
	case ExprGlobalAssign:
		return "(global \"" + e.Name + "\" \"" + e.TypeName + "\" " + ToSExpr(e.Expr) + ")"
	case ExprAddition:
		return "(binary \"+\" " + ToSExpr(e.Left) + " " + ToSExpr(e.Right) + ")"
	case ExprReturn:
		return "(return " + ToSExpr(e.Expr) + ")"
	case ExprFunctionCall:
		result := "(call \"" + e.Name + "\""
		for _, arg := range e.Args {
			result += " " + ToSExpr(arg)
		}
		return result + ")"
	case ExprIfStatement:
		result := "(if " + ToSExpr(e.Predicate) + " " + ToSExpr(e.Success)
		if e.Fail != nil {
			result += " " + ToSExpr(e.Fail)
		}
		return result + ")"
	case ExprForStatement:
		result := "(for " + ToSExpr(e.Init) + " " + ToSExpr(e.Cond) + " " + ToSExpr(e.Incr) + " (block"
		for _, stmt := range e.Block {
			result += " " + ToSExpr(stmt)
		}
		return result + "))"
	case ExprMemoryReference:
		return "(memory " + strconv.Itoa(e.Offset) + " " + strconv.Itoa(e.Length) + ")"
	default:
		return ""
	}
}

// ProgramSExpr renders a whole program, one s-expression per block.
func ProgramSExpr(program *Program) string {
	var parts []string
	for _, blk := range program.Blocks {
		switch blk.Kind {
		case BlockFunction:
			fn := blk.Function
			result := "(fn \"" + fn.Name + "\""
			for _, p := range fn.Params {
				result += " (param \"" + p.Name + "\" \"" + p.TypeName + "\")"
			}
			result += " \"" + fn.ReturnType + "\""
			for _, e := range fn.Expressions {
				result += " " + ToSExpr(e)
			}
			parts = append(parts, result+")")
		case BlockExport:
			parts = append(parts, "(export \""+blk.Export.ExternalName+"\" \""+blk.Export.FunctionName+"\")")
		case BlockImportFunction:
			imp := blk.ImportFunction
			result := "(import-fn \"" + strings.Join(imp.ExternalName, ".") + "\" \"" + imp.Name + "\""
			for _, p := range imp.Params {
				result += " (param \"" + p.Name + "\" \"" + p.TypeName + "\")"
			}
			parts = append(parts, result+")")
		case BlockImportMemory:
			imp := blk.ImportMemory
			parts = append(parts, "(import-memory \""+strings.Join(imp.ExternalName, ".")+"\" "+strconv.Itoa(imp.Size)+")")
		}
	}
	return strings.Join(parts, "\n")
}
