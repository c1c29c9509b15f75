package ast

import (
	"testing"

	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

func TestProgramString(t *testing.T) {
	prog := &Program{
		Statements: []Statement{
			&ExpressionStatement{
				Tok: token.Token{Type: token.IDENT, Literal: "puts"},
				Expression: &FunctionCall{
					Tok:       token.Token{Type: token.IDENT, Literal: "puts"},
					Name:      "puts",
					Arguments: []Expression{&StringLiteral{Value: "hi"}},
				},
			},
		},
	}
	want := `puts("hi");` + "\n"
	if got := prog.String(); got != want {
		t.Fatalf("Program.String() = %q, want %q", got, want)
	}
}

func TestVariableAccessString(t *testing.T) {
	va := &VariableAccess{
		Parts: []AccessPart{
			{Ident: "x"},
			{Ident: "len"},
		},
	}
	if got, want := va.String(), "x.len"; got != want {
		t.Fatalf("VariableAccess.String() = %q, want %q", got, want)
	}
	if got, want := va.Name(), "x"; got != want {
		t.Fatalf("VariableAccess.Name() = %q, want %q", got, want)
	}

	idx := &VariableAccess{
		Parts: []AccessPart{
			{Ident: "arr"},
			{Index: &NumberLiteral{Tok: token.Token{Literal: "0"}, IntValue: 0}},
		},
	}
	if got, want := idx.String(), "arr[0]"; got != want {
		t.Fatalf("VariableAccess.String() = %q, want %q", got, want)
	}
}

func TestPointerLiteralString(t *testing.T) {
	addr := &PointerLiteral{IsAddress: false, Address: 0}
	addr.IsAddress = true
	if got, want := addr.String(), "0"; got != want {
		t.Fatalf("PointerLiteral.String() (address) = %q, want %q", got, want)
	}

	ref := &PointerLiteral{Expr: &VariableAccess{Parts: []AccessPart{{Ident: "x"}}}}
	if got, want := ref.String(), "&x"; got != want {
		t.Fatalf("PointerLiteral.String() (address-of) = %q, want %q", got, want)
	}
}

func TestFunctionDefString(t *testing.T) {
	fn := &FunctionDef{
		Tok:  token.Token{Literal: "fn"},
		Name: "add",
		Params: []Parameter{
			{Name: "a", Type: types.New("int")},
			{Name: "b", Type: types.New("int")},
		},
		ReturnType: types.New("int"),
	}
	want := "fn add(a: int, b: int) -> int { ... }"
	if got := fn.String(); got != want {
		t.Fatalf("FunctionDef.String() = %q, want %q", got, want)
	}
}

func TestVariableDefString(t *testing.T) {
	v := &VariableDef{
		Tok:  token.Token{Literal: "var"},
		Name: "x",
		Type: types.New("int"),
		Value: &NumberLiteral{
			Tok:      token.Token{Literal: "1"},
			IntValue: 1,
		},
	}
	want := "var x: int = 1;"
	if got := v.String(); got != want {
		t.Fatalf("VariableDef.String() = %q, want %q", got, want)
	}
}

func TestExternDeclString(t *testing.T) {
	e := &ExternDecl{
		Name:       "malloc",
		Params:     []Parameter{{Name: "size", Type: types.New("usize")}},
		ReturnType: types.Pointer(types.New("void")),
	}
	want := "extern malloc(size: usize) -> void*;"
	if got := e.String(); got != want {
		t.Fatalf("ExternDecl.String() = %q, want %q", got, want)
	}
}

func TestReturnNodeString(t *testing.T) {
	bare := &ReturnNode{}
	if got, want := bare.String(), "return;"; got != want {
		t.Fatalf("ReturnNode.String() (bare) = %q, want %q", got, want)
	}

	withValue := &ReturnNode{Value: &NumberLiteral{Tok: token.Token{Literal: "1"}, IntValue: 1}}
	if got, want := withValue.String(), "return 1;"; got != want {
		t.Fatalf("ReturnNode.String() = %q, want %q", got, want)
	}
}

func TestAssignmentAndBinaryOpString(t *testing.T) {
	assign := &Assignment{
		Target: &VariableAccess{Parts: []AccessPart{{Ident: "x"}}},
		Value: &BinaryOp{
			Tok:   token.Token{Type: token.PLUS, Literal: "+"},
			Op:    token.PLUS,
			Left:  &VariableAccess{Parts: []AccessPart{{Ident: "x"}}},
			Right: &NumberLiteral{Tok: token.Token{Literal: "1"}, IntValue: 1},
		},
	}
	want := "x = (x + 1)"
	if got := assign.String(); got != want {
		t.Fatalf("Assignment.String() = %q, want %q", got, want)
	}
}
