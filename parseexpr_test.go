package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseStatement(t *testing.T, source string, params []Param) *Expression {
	t.Helper()
	expr, err := parseExpression(Tokenize(source), newExprContext(params))
	be.Err(t, err, nil)
	return expr
}

func parseStatementErr(t *testing.T, source string, params []Param) error {
	t.Helper()
	_, err := parseExpression(Tokenize(source), newExprContext(params))
	be.Err(t, err)
	return err
}

func TestNumberDefaultsToFloat(t *testing.T) {
	expr := parseStatement(t, "5", nil)
	be.Equal(t, ToSExpr(expr), `(number "5" "f32")`)
}

func TestAdditionRightNesting(t *testing.T) {
	// The first plus splits; the remainder nests to the right.
	expr := parseStatement(t, "1 + 2 + 3", nil)
	be.Equal(t, ToSExpr(expr), `(binary "+" (number "1" "f32") (binary "+" (number "2" "f32") (number "3" "f32")))`)
}

func TestLocalAssignRewritesNumberType(t *testing.T) {
	expr := parseStatement(t, "local x: i32 = 5", nil)
	be.Equal(t, ToSExpr(expr), `(local "x" "i32" (number "5" "i32"))`)
}

func TestVariableFromParam(t *testing.T) {
	expr := parseStatement(t, "x", []Param{{Name: "x", TypeName: "i64"}})
	be.Equal(t, ToSExpr(expr), `(variable "x" "i64")`)
}

func TestFirstDeclarationWins(t *testing.T) {
	// A parameter shadows any later local of the same name.
	ctx := newExprContext([]Param{{Name: "x", TypeName: "i32"}})
	ctx.priors = []*Expression{{
		Kind:     ExprLocalAssign,
		Name:     "x",
		TypeName: "f32",
		Expr:     &Expression{Kind: ExprNumber, Value: "1", TypeName: "f32"},
	}}
	expr, err := parseExpression(Tokenize("x"), ctx)
	be.Err(t, err, nil)
	be.Equal(t, expr.TypeName, "i32")
}

func TestUnresolvedVariable(t *testing.T) {
	err := parseStatementErr(t, "y", nil)
	be.Equal(t, err.Error(), "Failed to find type for variable y at line 1, index 1")
}

func TestNestedCallArguments(t *testing.T) {
	expr := parseStatement(t, "wrap(add(1, 2), 3)", nil)
	be.Equal(t, ToSExpr(expr), `(call "wrap" (call "add" (number "1" "f32") (number "2" "f32")) (number "3" "f32"))`)
}

func TestStringLiteral(t *testing.T) {
	expr := parseStatement(t, `"hi"`, nil)
	be.Equal(t, ToSExpr(expr), `(string "hi")`)
}

func TestBooleans(t *testing.T) {
	be.Equal(t, ToSExpr(parseStatement(t, "true", nil)), "(boolean true)")
	be.Equal(t, ToSExpr(parseStatement(t, "false", nil)), "(boolean false)")
}

func TestIfWithoutElse(t *testing.T) {
	expr := parseStatement(t, "if (true) { return 5 }", nil)
	be.Equal(t, expr.Fail, nil)
	be.Equal(t, ToSExpr(expr), `(if (boolean true) (return (number "5" "f32")))`)
}

func TestForWindowDefaults(t *testing.T) {
	// The initializer is visible to the condition, numbers in the
	// condition and incrementor default to i32, and the body gets the
	// surrounding default back.
	expr := parseStatement(t, "for (local i: i32 = 0, i + 10, 1) { log(2) }", nil)
	be.Equal(t, ToSExpr(expr), `(for (local "i" "i32" (number "0" "i32")) (binary "+" (variable "i" "i32") (number "10" "i32")) (number "1" "i32") (block (call "log" (number "2" "f32"))))`)
}

func TestForArityError(t *testing.T) {
	err := parseStatementErr(t, "for (local i: i32 = 0, 10) { log(2) }", nil)
	be.Equal(t, err.Error(), "Failed parsing for loop, expected (initializer, condition, incrementor) at line 1, index 4")
}

func TestAssignMissingColon(t *testing.T) {
	err := parseStatementErr(t, "local x = 5", nil)
	be.Equal(t, err.Error(), "Expected : but got = at line 1, index 8")
}

func TestAssignMissingValue(t *testing.T) {
	err := parseStatementErr(t, "local x: i32", nil)
	be.Equal(t, err.Error(), "Expected = but got nothing")
}

func TestUnclosedIfPredicate(t *testing.T) {
	err := parseStatementErr(t, "if (true { return 5 }", nil)
	be.Equal(t, err.Error(), "Expected ) but got nothing at line 1, index 3")
}

func TestDanglingCloseBraceSkipped(t *testing.T) {
	expr := parseStatement(t, "} return 5", nil)
	be.Equal(t, ToSExpr(expr), `(return (number "5" "f32"))`)
}

func TestEmptyStatement(t *testing.T) {
	_, err := parseExpression(nil, newExprContext(nil))
	be.Err(t, err)
	be.Equal(t, err.Error(), "Failed parsing expression, ran out of tokens")
}
