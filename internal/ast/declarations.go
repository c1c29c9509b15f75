package ast

import (
	"strings"

	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

// Parameter is one `name: Type` entry in a function signature.
type Parameter struct {
	Name string
	Type types.Type
}

func (p Parameter) String() string { return p.Name + ": " + p.Type.String() }

// FunctionDef is a top-level function: `[pub] fn name(params) -> ret { ... }`.
type FunctionDef struct {
	Tok        token.Token
	Name       string
	Params     []Parameter
	ReturnType types.Type
	Body       []Statement
	Public     bool
}

func (f *FunctionDef) statementNode()       {}
func (f *FunctionDef) TokenLiteral() string { return f.Tok.Literal }
func (f *FunctionDef) Pos() token.Position  { return f.Tok.Pos }
func (f *FunctionDef) String() string {
	var out strings.Builder
	if f.Public {
		out.WriteString("pub ")
	}
	out.WriteString("fn ")
	out.WriteString(f.Name)
	out.WriteString("(")
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(") -> ")
	out.WriteString(f.ReturnType.String())
	out.WriteString(" { ... }")
	return out.String()
}

// VariableDef is `[pub] var name: Type [= expr];` at top level, or
// `var name: Type [= expr];` inside a function body (spec §3, §4.2).
type VariableDef struct {
	Tok      token.Token
	Name     string
	Type     types.Type
	Value    Expression // nil when there is no initializer
	Public   bool
	IsConst  bool
	TopLevel bool
}

func (v *VariableDef) statementNode()       {}
func (v *VariableDef) TokenLiteral() string { return v.Tok.Literal }
func (v *VariableDef) Pos() token.Position  { return v.Tok.Pos }
func (v *VariableDef) String() string {
	var out strings.Builder
	if v.Public {
		out.WriteString("pub ")
	}
	if v.IsConst {
		out.WriteString("const ")
	} else {
		out.WriteString("var ")
	}
	out.WriteString(v.Name)
	out.WriteString(": ")
	out.WriteString(v.Type.String())
	if v.Value != nil {
		out.WriteString(" = ")
		out.WriteString(v.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExternDecl declares an external symbol resolved at assembly/link time:
// `extern name(<type-list>) -> <type>;` for functions, or an imported
// variable stub spliced in by the importer (spec §4.2, §4.4, §4.6).
type ExternDecl struct {
	Tok        token.Token
	Name       string
	Params     []Parameter
	ReturnType types.Type
	Variadic   bool
	IsVariable bool
}

func (e *ExternDecl) statementNode()       {}
func (e *ExternDecl) TokenLiteral() string { return e.Tok.Literal }
func (e *ExternDecl) Pos() token.Position  { return e.Tok.Pos }
func (e *ExternDecl) String() string {
	if e.IsVariable {
		return "extern " + e.Name + ": " + e.ReturnType.String() + ";"
	}
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		if p.Name != "" {
			parts[i] = p.String()
		} else {
			parts[i] = p.Type.String()
		}
	}
	if e.Variadic {
		parts = append(parts, "...")
	}
	return "extern " + e.Name + "(" + strings.Join(parts, ", ") + ") -> " + e.ReturnType.String() + ";"
}

// AsmBlock is a raw inline assembly statement: `asm { i1; i2; ... }`. Each
// instruction string is emitted verbatim at the current indent (spec §4.2,
// §4.6).
type AsmBlock struct {
	Tok          token.Token
	Instructions []string
}

func (a *AsmBlock) statementNode()       {}
func (a *AsmBlock) TokenLiteral() string { return a.Tok.Literal }
func (a *AsmBlock) Pos() token.Position  { return a.Tok.Pos }
func (a *AsmBlock) String() string {
	return "asm { " + strings.Join(a.Instructions, "; ") + " }"
}

// ImportNode is `import a.b.c;` or `import a.b.c : sym1, sym2;`. A nil
// Symbols means every top-level named node propagates; a non-nil Symbols
// restricts the splice to the transitive call closure of that list
// (spec §4.4).
type ImportNode struct {
	Tok     token.Token
	Path    string
	Symbols []string
}

func (i *ImportNode) statementNode()       {}
func (i *ImportNode) TokenLiteral() string { return i.Tok.Literal }
func (i *ImportNode) Pos() token.Position  { return i.Tok.Pos }
func (i *ImportNode) String() string {
	if len(i.Symbols) == 0 {
		return "import " + i.Path + ";"
	}
	return "import " + i.Path + " : " + strings.Join(i.Symbols, ", ") + ";"
}

// ReturnNode is `return [expr];`.
type ReturnNode struct {
	Tok   token.Token
	Value Expression // nil for a bare `return;`
}

func (r *ReturnNode) statementNode()       {}
func (r *ReturnNode) TokenLiteral() string { return r.Tok.Literal }
func (r *ReturnNode) Pos() token.Position  { return r.Tok.Pos }
func (r *ReturnNode) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}
