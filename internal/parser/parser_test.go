package parser

import (
	"testing"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/token"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := New(toks, src, "test.sw").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseFunctionDef(t *testing.T) {
	prog := parseSource(t, `fn add(a: int, b: int) -> int { return a + b; }`)
	if len(prog.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("want *ast.FunctionDef, got %T", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.ReturnType.Name != "int" {
		t.Fatalf("unexpected FunctionDef: %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("want 1 body statement, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.ReturnNode)
	if !ok {
		t.Fatalf("want *ast.ReturnNode, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != token.PLUS {
		t.Fatalf("want a + binop return value, got %+v", ret.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return 1 + 2 * 3; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	top, ok := ret.Value.(*ast.BinaryOp)
	if !ok || top.Op != token.PLUS {
		t.Fatalf("want top-level +, got %+v", ret.Value)
	}
	right, ok := top.Right.(*ast.BinaryOp)
	if !ok || right.Op != token.STAR {
		t.Fatalf("want right side to be a nested *, got %+v", top.Right)
	}

	prog2 := parseSource(t, `fn f() -> int { return (1 + 2) * 3; }`)
	ret2 := prog2.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	top2, ok := ret2.Value.(*ast.BinaryOp)
	if !ok || top2.Op != token.STAR {
		t.Fatalf("want top-level *, got %+v", ret2.Value)
	}
	left2, ok := top2.Left.(*ast.BinaryOp)
	if !ok || left2.Op != token.PLUS {
		t.Fatalf("want left side to be a nested +, got %+v", top2.Left)
	}
}

func TestParseVariableDefAndAssignment(t *testing.T) {
	prog := parseSource(t, `pub var g: int = 7;`)
	v, ok := prog.Statements[0].(*ast.VariableDef)
	if !ok {
		t.Fatalf("want *ast.VariableDef, got %T", prog.Statements[0])
	}
	if !v.Public || v.Name != "g" || v.Type.Name != "int" {
		t.Fatalf("unexpected VariableDef: %+v", v)
	}
	num, ok := v.Value.(*ast.NumberLiteral)
	if !ok || num.IntValue != 7 {
		t.Fatalf("unexpected initializer: %+v", v.Value)
	}
}

func TestParseExternDecl(t *testing.T) {
	prog := parseSource(t, `extern puts(u8*) -> int;`)
	e, ok := prog.Statements[0].(*ast.ExternDecl)
	if !ok {
		t.Fatalf("want *ast.ExternDecl, got %T", prog.Statements[0])
	}
	if e.Name != "puts" || len(e.Params) != 1 || e.Params[0].Type.String() != "u8*" {
		t.Fatalf("unexpected ExternDecl: %+v", e)
	}
	if e.ReturnType.Name != "int" {
		t.Fatalf("unexpected return type: %+v", e.ReturnType)
	}
}

func TestParseVariadicExtern(t *testing.T) {
	prog := parseSource(t, `extern printf(u8*, ...) -> int;`)
	e := prog.Statements[0].(*ast.ExternDecl)
	if !e.Variadic || len(e.Params) != 1 {
		t.Fatalf("unexpected variadic ExternDecl: %+v", e)
	}
}

func TestParseImportWithSymbols(t *testing.T) {
	prog := parseSource(t, `import a.b.c : foo, bar;`)
	imp, ok := prog.Statements[0].(*ast.ImportNode)
	if !ok {
		t.Fatalf("want *ast.ImportNode, got %T", prog.Statements[0])
	}
	if imp.Path != "a.b.c" || len(imp.Symbols) != 2 || imp.Symbols[0] != "foo" || imp.Symbols[1] != "bar" {
		t.Fatalf("unexpected ImportNode: %+v", imp)
	}
}

func TestParseImportWithoutSymbols(t *testing.T) {
	prog := parseSource(t, `import a.b;`)
	imp := prog.Statements[0].(*ast.ImportNode)
	if imp.Path != "a.b" || imp.Symbols != nil {
		t.Fatalf("unexpected ImportNode: %+v", imp)
	}
}

func TestParseAsmBlock(t *testing.T) {
	prog := parseSource(t, `fn f() { asm { mov rax, 1; mov rdi, 0 } }`)
	fn := prog.Statements[0].(*ast.FunctionDef)
	asm, ok := fn.Body[0].(*ast.AsmBlock)
	if !ok {
		t.Fatalf("want *ast.AsmBlock, got %T", fn.Body[0])
	}
	if len(asm.Instructions) != 2 {
		t.Fatalf("want 2 instructions, got %d: %v", len(asm.Instructions), asm.Instructions)
	}
	if asm.Instructions[0] != "mov rax , 1" {
		t.Fatalf("unexpected instruction spelling: %q", asm.Instructions[0])
	}
	if asm.Instructions[1] != "mov rdi , 0" {
		t.Fatalf("unexpected instruction spelling: %q", asm.Instructions[1])
	}
}

func TestParseFunctionCallStatement(t *testing.T) {
	prog := parseSource(t, `extern puts(u8*) -> int; fn main() -> int { puts("hi"); return 0; }`)
	fn := prog.Statements[1].(*ast.FunctionDef)
	stmt, ok := fn.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("want *ast.ExpressionStatement, got %T", fn.Body[0])
	}
	call, ok := stmt.Expression.(*ast.FunctionCall)
	if !ok || call.Name != "puts" || len(call.Arguments) != 1 {
		t.Fatalf("unexpected call: %+v", stmt.Expression)
	}
}

func TestParseMemberAndIndexAccess(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return x.len; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	va, ok := ret.Value.(*ast.VariableAccess)
	if !ok || va.String() != "x.len" {
		t.Fatalf("unexpected VariableAccess: %+v", ret.Value)
	}

	prog2 := parseSource(t, `fn f() -> int { return arr[0]; }`)
	ret2 := prog2.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	va2, ok := ret2.Value.(*ast.VariableAccess)
	if !ok || va2.String() != "arr[0]" {
		t.Fatalf("unexpected VariableAccess: %+v", ret2.Value)
	}
}

func TestParseAssignment(t *testing.T) {
	prog := parseSource(t, `fn f() { x = 1; }`)
	fn := prog.Statements[0].(*ast.FunctionDef)
	stmt := fn.Body[0].(*ast.ExpressionStatement)
	assign, ok := stmt.Expression.(*ast.Assignment)
	if !ok {
		t.Fatalf("want *ast.Assignment, got %T", stmt.Expression)
	}
	if assign.Target.String() != "x" {
		t.Fatalf("unexpected assignment target: %+v", assign.Target)
	}
}

func TestParseAssignmentToIndexedRejected(t *testing.T) {
	toks, err := lexer.Lex(`fn f() { x[0] = 1; }`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = New(toks, `fn f() { x[0] = 1; }`, "test.sw").Parse()
	if err == nil {
		t.Fatalf("expected a parse error for indexed assignment")
	}
}

func TestParseUnaryMinusFoldsIntoLiteral(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return -5; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	num, ok := ret.Value.(*ast.NumberLiteral)
	if !ok || num.IntValue != -5 {
		t.Fatalf("unexpected negated literal: %+v", ret.Value)
	}
}

func TestParseUnaryMinusOnExpression(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return -x; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != token.MINUS {
		t.Fatalf("unexpected negation of non-literal: %+v", ret.Value)
	}
	zero, ok := bin.Left.(*ast.NumberLiteral)
	if !ok || zero.IntValue != 0 {
		t.Fatalf("unexpected zero operand: %+v", bin.Left)
	}
}

func TestParseAddressOfAndDereference(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return *&x; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	deref, ok := ret.Value.(*ast.Dereference)
	if !ok {
		t.Fatalf("want *ast.Dereference, got %T", ret.Value)
	}
	if _, ok := deref.Expr.(*ast.PointerLiteral); !ok {
		t.Fatalf("want &x operand to be a PointerLiteral, got %T", deref.Expr)
	}
}

func TestParseNullLiteral(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return null; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	ptr, ok := ret.Value.(*ast.PointerLiteral)
	if !ok || !ptr.IsAddress || ptr.Address != 0 {
		t.Fatalf("unexpected null literal: %+v", ret.Value)
	}
}

func TestParseCast(t *testing.T) {
	prog := parseSource(t, `fn f() -> int { return x as u8; }`)
	ret := prog.Statements[0].(*ast.FunctionDef).Body[0].(*ast.ReturnNode)
	cast, ok := ret.Value.(*ast.Cast)
	if !ok || cast.Target.Name != "u8" {
		t.Fatalf("unexpected Cast: %+v", ret.Value)
	}
}

func TestParseReservedKeywordWithoutStatementFormIsAnError(t *testing.T) {
	tests := []string{
		`fn f() { if (x) { } }`,
		`fn f() { while (x) { } }`,
	}
	for _, src := range tests {
		toks, err := lexer.Lex(src)
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		if _, err := New(toks, src, "test.sw").Parse(); err == nil {
			t.Fatalf("expected a parse error for reserved-keyword statement: %s", src)
		}
	}
}

func TestParseArrayLiteral(t *testing.T) {
	prog := parseSource(t, `fn f() { var a: int[3] = [1, 2, 3]; }`)
	fn := prog.Statements[0].(*ast.FunctionDef)
	v, ok := fn.Body[0].(*ast.VariableDef)
	if !ok {
		t.Fatalf("want *ast.VariableDef, got %T", fn.Body[0])
	}
	if !v.Type.IsArray || v.Type.ArraySize != 3 {
		t.Fatalf("unexpected array type: %+v", v.Type)
	}
	arr, ok := v.Value.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("unexpected array literal: %+v", v.Value)
	}
}
