// Package ast defines the Abstract Syntax Tree node types produced by the
// parser (spec §3). The tree is immutable once built: the importer
// produces a new top-level node list rather than editing the parser's
// output in place, and no stage after parsing mutates a node (spec §9,
// "Ownership of AST").
package ast

import (
	"bytes"

	"github.com/kvalavik/sweetc/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// TokenLiteral returns the literal text of the token the node starts at.
	TokenLiteral() string
	// String renders the node for debugging and the `parse` CLI subcommand.
	String() string
	// Pos returns the node's source position for diagnostics.
	Pos() token.Position
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed module: an ordered list of top-level
// statements (imports, externs, function/variable definitions, asm blocks).
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ExpressionStatement wraps an expression used in statement position: a
// bare function call (`puts("hi");`) or a bare assignment (`x = 1;`).
type ExpressionStatement struct {
	Expression Expression
	Tok        token.Token
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Tok.Literal }
func (es *ExpressionStatement) Pos() token.Position  { return es.Tok.Pos }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ";"
	}
	return es.Expression.String() + ";"
}
