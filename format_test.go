package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestFormatCanonicalRoundTrip(t *testing.T) {
	// A canonical program formats to itself.
	source := `import console.log log(message: string);

import js.mem memory 1;

fn main(): void {
    local hi: string = "Hi";
    local flag: bool = true;
    global count: i32 = 0;
    log(hi);
    if (flag) { log(hi) } else { log(hi) };
    for (local i: i32 = 0, 10, 1) { log(hi); };
}

export main main;`
	be.Equal(t, Format(mustParse(t, source)), source)
}

func TestFormatNormalizesWhitespace(t *testing.T) {
	program := mustParse(t, "fn main():i32{local x:i32=5;return x;}")
	be.Equal(t, Format(program), "fn main(): i32 {\n    local x: i32 = 5;\n    return x;\n}")
}

func TestFormatEmptyFunction(t *testing.T) {
	program := mustParse(t, "fn noop(): void {}")
	be.Equal(t, Format(program), "fn noop(): void {\n}")
}

func TestFormatReparsesToSameTree(t *testing.T) {
	source := `fn calc(n: i32): f32 {
    local base: f32 = 1.5;
    return base + n + 2;
}

export calc calc;`
	program := mustParse(t, source)
	again := mustParse(t, Format(program))
	be.Equal(t, ProgramSExpr(again), ProgramSExpr(program))
}

func TestFormatAddition(t *testing.T) {
	program := mustParse(t, "fn calc(): f32 { return 1+2+3; }")
	be.Equal(t, Format(program), "fn calc(): f32 {\n    return 1 + 2 + 3;\n}")
}
