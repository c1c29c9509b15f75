package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

// NumberLiteral is an integer or floating-point constant. IsFloat
// distinguishes `42` (int) from `3.14` (f64) per spec §4.3.
type NumberLiteral struct {
	Tok      token.Token
	IntValue int64
	FltValue float64
	IsFloat  bool
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Tok.Literal }
func (n *NumberLiteral) Pos() token.Position  { return n.Tok.Pos }
func (n *NumberLiteral) String() string       { return n.Tok.Literal }

// StringLiteral holds the raw, pre-escape-decode body of a "..." literal.
type StringLiteral struct {
	Tok   token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Tok.Literal }
func (s *StringLiteral) Pos() token.Position  { return s.Tok.Pos }
func (s *StringLiteral) String() string       { return fmt.Sprintf("%q", s.Value) }

// CharLiteral holds one character, or a two-character `\e` escape sequence,
// exactly as scanned (decoding happens in codegen).
type CharLiteral struct {
	Tok   token.Token
	Value string
}

func (c *CharLiteral) expressionNode()      {}
func (c *CharLiteral) TokenLiteral() string { return c.Tok.Literal }
func (c *CharLiteral) Pos() token.Position  { return c.Tok.Pos }
func (c *CharLiteral) String() string       { return "'" + c.Value + "'" }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Tok   token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Tok.Literal }
func (b *BooleanLiteral) Pos() token.Position  { return b.Tok.Pos }
func (b *BooleanLiteral) String() string       { return fmt.Sprintf("%t", b.Value) }

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Tok      token.Token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Tok.Literal }
func (a *ArrayLiteral) Pos() token.Position  { return a.Tok.Pos }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PointerLiteral is either a bare integer address (`null` parses as address
// 0) or an address-of expression (`&x`); exactly one of Expr/IsAddress
// applies (spec §3, §4.2).
type PointerLiteral struct {
	Tok       token.Token
	Expr      Expression // set when this is &expr
	Address   int64      // set when IsAddress is true
	IsAddress bool
}

func (p *PointerLiteral) expressionNode()      {}
func (p *PointerLiteral) TokenLiteral() string { return p.Tok.Literal }
func (p *PointerLiteral) Pos() token.Position  { return p.Tok.Pos }
func (p *PointerLiteral) String() string {
	if p.IsAddress {
		return fmt.Sprintf("%d", p.Address)
	}
	return "&" + p.Expr.String()
}

// AccessPart is one segment of a VariableAccess chain: either a field/name
// (Ident non-empty) or an index expression (Index non-nil).
type AccessPart struct {
	Ident string
	Index Expression
}

func (p AccessPart) String() string {
	if p.Index != nil {
		return "[" + p.Index.String() + "]"
	}
	return p.Ident
}

// VariableAccess is a non-empty chain of identifier/index parts: `x`,
// `x.len`, `x[i]`, `x.y[i]`, ... (spec §3, §4.2).
type VariableAccess struct {
	Tok   token.Token
	Parts []AccessPart
}

func (v *VariableAccess) expressionNode()      {}
func (v *VariableAccess) TokenLiteral() string { return v.Tok.Literal }
func (v *VariableAccess) Pos() token.Position  { return v.Tok.Pos }

// Name returns the first part's identifier, the variable being accessed.
func (v *VariableAccess) Name() string { return v.Parts[0].Ident }

func (v *VariableAccess) String() string {
	var out bytes.Buffer
	out.WriteString(v.Parts[0].Ident)
	for _, p := range v.Parts[1:] {
		if p.Index != nil {
			out.WriteString(p.String())
		} else {
			out.WriteString(".")
			out.WriteString(p.Ident)
		}
	}
	return out.String()
}

// BinaryOp is `left <op> right`; Op is the operator's token type, which
// doubles as the dispatch key in codegen's instruction table (spec §4.6).
type BinaryOp struct {
	Left  Expression
	Right Expression
	Tok   token.Token
	Op    token.Type
}

func (b *BinaryOp) expressionNode()      {}
func (b *BinaryOp) TokenLiteral() string { return b.Tok.Literal }
func (b *BinaryOp) Pos() token.Position  { return b.Tok.Pos }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Tok.Literal, b.Right.String())
}

// Dereference is `*expr`.
type Dereference struct {
	Expr Expression
	Tok  token.Token
}

func (d *Dereference) expressionNode()      {}
func (d *Dereference) TokenLiteral() string { return d.Tok.Literal }
func (d *Dereference) Pos() token.Position  { return d.Tok.Pos }
func (d *Dereference) String() string       { return "*" + d.Expr.String() }

// Cast is `expr as Type`.
type Cast struct {
	Expr   Expression
	Tok    token.Token
	Target types.Type
}

func (c *Cast) expressionNode()      {}
func (c *Cast) TokenLiteral() string { return c.Tok.Literal }
func (c *Cast) Pos() token.Position  { return c.Tok.Pos }
func (c *Cast) String() string       { return fmt.Sprintf("(%s as %s)", c.Expr.String(), c.Target) }

// Assignment is `target = value`; Target is either a plain identifier or a
// Dereference of one (spec §3, §4.2 — indexed assignment is rejected by
// the parser before an Assignment node is even built).
type Assignment struct {
	Target Expression
	Value  Expression
	Tok    token.Token
}

func (a *Assignment) expressionNode()      {}
func (a *Assignment) TokenLiteral() string { return a.Tok.Literal }
func (a *Assignment) Pos() token.Position  { return a.Tok.Pos }
func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Target.String(), a.Value.String())
}

// FunctionCall is `name(arg1, arg2, ...)`.
type FunctionCall struct {
	Tok       token.Token
	Name      string
	Arguments []Expression
}

func (f *FunctionCall) expressionNode()      {}
func (f *FunctionCall) TokenLiteral() string { return f.Tok.Literal }
func (f *FunctionCall) Pos() token.Position  { return f.Tok.Pos }
func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		parts[i] = a.String()
	}
	return f.Name + "(" + strings.Join(parts, ", ") + ")"
}
