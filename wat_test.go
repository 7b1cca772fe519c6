package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func emit(t *testing.T, source string) string {
	t.Helper()
	program := mustParse(t, source)
	wat, err := EmitWAT(program)
	be.Err(t, err, nil)
	return wat
}

func emitErr(t *testing.T, source string) error {
	t.Helper()
	program := mustParse(t, source)
	_, err := EmitWAT(program)
	be.Err(t, err)
	return err
}

func TestStringMemoryLayout(t *testing.T) {
	// Offsets accumulate per function in declaration order, not use order.
	wat := emit(t, `fn main(): void {
    local hi: string = "Hi";
    local world: string = "World";
    log(world);
    log(hi);
}`)
	be.True(t, strings.Contains(wat, `(data (i32.const 0) "Hi")`))
	be.True(t, strings.Contains(wat, `(data (i32.const 2) "World")`))

	// use order: world's range first, then hi's
	worldAt := strings.Index(wat, "(i32.const 2)\n    (i32.const 5)")
	hiAt := strings.Index(wat, "(i32.const 0)\n    (i32.const 2)")
	be.True(t, worldAt >= 0)
	be.True(t, hiAt >= 0)
	be.True(t, worldAt < hiAt)
}

func TestStringOffsetsResetPerFunction(t *testing.T) {
	wat := emit(t, `fn one(): void {
    local a: string = "aaaa";
    log(a);
}

fn two(): void {
    local b: string = "bb";
    log(b);
}`)
	be.True(t, strings.Contains(wat, `(data (i32.const 0) "aaaa")`))
	be.True(t, strings.Contains(wat, `(data (i32.const 0) "bb")`))
}

func TestBooleanEncoding(t *testing.T) {
	// true is 0 and false is 1. Inverted on purpose; changing this breaks
	// every host-side consumer, so it is pinned here.
	wat := emit(t, `fn flags(): void {
    local t: bool = true;
    local f: bool = false;
}`)
	be.True(t, strings.Contains(wat, "(local.set $t (i32.const 0))"))
	be.True(t, strings.Contains(wat, "(local.set $f (i32.const 1))"))
}

func TestAdditionAlwaysFloat(t *testing.T) {
	wat := emit(t, `fn add(a: i32, b: i32): i32 {
    return a + b;
}`)
	be.True(t, strings.Contains(wat, "(f32.add (local.get $a) (local.get $b))"))
}

func TestGlobalsDeduplicated(t *testing.T) {
	wat := emit(t, `fn one(): void {
    global total: f32 = 1;
}

fn two(): void {
    global total: f32 = 2;
}`)
	be.Equal(t, strings.Count(wat, "(global $total (mut f32))"), 1)
}

func TestVoidFunctionHasNoResult(t *testing.T) {
	wat := emit(t, "fn noop(): void {}")
	be.True(t, strings.Contains(wat, "(func $noop\n"))
	be.True(t, !strings.Contains(wat, "result"))
}

func TestEmitDeterministic(t *testing.T) {
	source := `fn main(): i32 {
    local x: i32 = 5;
    return x;
}`
	be.Equal(t, emit(t, source), emit(t, source))
}

func TestForInitializerMustDeclareLocal(t *testing.T) {
	err := emitErr(t, `fn f(): void {
    for (5, 10, 1) { log(5); };
}`)
	be.Equal(t, err.Error(), "in function f: for loop initializer must declare a local")
}

func TestBareStringLiteralRejected(t *testing.T) {
	err := emitErr(t, `fn f(): void {
    log("hi");
}`)
	be.Equal(t, err.Error(), `in function f: string literal "hi" is not bound to a local declaration, so it has no memory segment`)
}

func TestNestedStringLocalRejected(t *testing.T) {
	// Only top-level string locals get memory segments.
	err := emitErr(t, `fn f(): void {
    for (local i: i32 = 0, 2, 1) { local s: string = "x"; };
}`)
	be.Equal(t, err.Error(), "in function f: local s: a string local must be declared at the top level of a function and bound to a string literal")
}

func TestFullModule(t *testing.T) {
	wat := emit(t, `import console.log log(message: string);
import js.mem memory 1;

fn main(): void {
    local greeting: string = "Hello";
    log(greeting);
}

export main main;`)
	be.Equal(t, wat, `(module
  (import "console.log" (func $log (param i32 i32)))
  (import "js.mem" (memory 1))
  (data (i32.const 0) "Hello")
  (func $main
    (i32.const 0)
    (i32.const 5)
    (call $log)
  )
  (export "main" (func $main))
)`)
}
