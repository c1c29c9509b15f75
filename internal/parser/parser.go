// Package parser implements a recursive-descent parser for Sweet with
// Pratt-style precedence climbing for expressions (spec §4.2).
//
// Key patterns carried from the teacher's Pratt parser:
//   - prefix/infix parse functions keyed by token type
//   - a precedence table driving how far an infix loop eats the input
//   - one fatal error aborts parsing; there is no panic-mode recovery
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/errors"
	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

// Precedence levels, lowest to highest (spec §4.2 table, ascending).
const (
	_ int = iota
	LOWEST
	OR_OR
	PIPE
	CARET
	AND_AND
	AMP
	EQUALS
	RELATIONAL
	SUM
	PRODUCT
	PREFIX // unary -, &, *
	POSTFIX
)

var precedences = map[token.Type]int{
	token.OR_OR:   OR_OR,
	token.PIPE:    PIPE,
	token.CARET:   CARET,
	token.AND_AND: AND_AND,
	token.AMP:     AMP,
	token.EQ:      EQUALS,
	token.NE:      EQUALS,
	token.LT:      RELATIONAL,
	token.GT:      RELATIONAL,
	token.LE:      RELATIONAL,
	token.GE:      RELATIONAL,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.PERCENT: PRODUCT,
	token.AS:      POSTFIX,
}

type prefixParseFn func() (ast.Expression, error)
type infixParseFn func(ast.Expression) (ast.Expression, error)

// Parser turns a flat token sequence into an AST.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
	file   string

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over toks. source and file are carried through for
// diagnostic formatting only (errors.CompilerError).
func New(toks []token.Token, source, file string) *Parser {
	p := &Parser{tokens: toks, source: source, file: file}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.INT:      p.parseNumberLiteral,
		token.FLOAT:    p.parseNumberLiteral,
		token.STRING:   p.parseStringLiteral,
		token.CHAR:     p.parseCharLiteral,
		token.BOOL:     p.parseBooleanLiteral,
		token.IDENT:    p.parseIdentifierExpr,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseArrayLiteral,
		token.MINUS:    p.parseUnaryMinus,
		token.AMP:      p.parseAddressOf,
		token.STAR:     p.parseDereference,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.AS: p.parseCastInfix,
	}
	for _, tt := range []token.Type{
		token.OR_OR, token.PIPE, token.CARET, token.AND_AND, token.AMP,
		token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
	} {
		p.infixFns[tt] = p.parseBinaryOp
	}

	return p
}

// Parse consumes the whole token stream and returns the top-level program.
// It stops at the first error (spec §4.2, §7: "no recovery").
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur().Type != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// --- token cursor ---

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.cur().Type != tt {
		return token.Token{}, p.errorf(p.cur().Pos, "expected %s, got %s", tt, p.cur().Type)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) error {
	return errors.NewCompilerError(pos, fmt.Sprintf(format, args...), p.source, p.file)
}

// --- statements ---

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.IMPORT:
		return p.parseImport()
	case token.EXTERN:
		return p.parseExternDecl()
	case token.PUB:
		return p.parsePublicDecl()
	case token.FN:
		return p.parseFunctionDef(false)
	case token.VAR:
		return p.parseVariableDef(false)
	case token.ASM:
		return p.parseAsmBlock()
	case token.RETURN:
		return p.parseReturn()
	case token.IF, token.ELSE, token.WHILE, token.CONST:
		return nil, p.errorf(p.cur().Pos, "%q is reserved but has no statement form in this language", p.cur().Literal)
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parsePublicDecl() (ast.Statement, error) {
	p.advance() // pub
	switch p.cur().Type {
	case token.FN:
		return p.parseFunctionDef(true)
	case token.VAR:
		return p.parseVariableDef(true)
	default:
		return nil, p.errorf(p.cur().Pos, "expected fn or var after pub, got %s", p.cur().Type)
	}
}

func (p *Parser) parseImport() (ast.Statement, error) {
	tok := p.advance() // import
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	parts := []string{first.Literal}
	for p.cur().Type == token.DOT {
		p.advance()
		part, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part.Literal)
	}

	var symbols []string
	if p.cur().Type == token.COLON {
		p.advance()
		for {
			sym, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, sym.Literal)
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ImportNode{Tok: tok, Path: strings.Join(parts, "."), Symbols: symbols}, nil
}

func (p *Parser) parseExternDecl() (ast.Statement, error) {
	tok := p.advance() // extern
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if p.cur().Type == token.COLON {
		p.advance()
		vtype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.ExternDecl{Tok: tok, Name: name.Literal, ReturnType: vtype, IsVariable: true}, nil
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Parameter
	variadic := false
	if p.cur().Type != token.RPAREN {
		for {
			if p.cur().Type == token.DOTS {
				p.advance()
				variadic = true
				break
			}
			ptype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Parameter{Type: ptype})
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	returnType := types.Void
	if p.cur().Type == token.ARROW {
		p.advance()
		returnType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExternDecl{Tok: tok, Name: name.Literal, Params: params, ReturnType: returnType, Variadic: variadic}, nil
}

func (p *Parser) parseFunctionDef(public bool) (ast.Statement, error) {
	tok := p.advance() // fn
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []ast.Parameter
	if p.cur().Type != token.RPAREN {
		for {
			pname, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			ptype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Parameter{Name: pname.Literal, Type: ptype})
			if p.cur().Type == token.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	returnType := types.Void
	if p.cur().Type == token.ARROW {
		p.advance()
		returnType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, p.errorf(tok.Pos, "unterminated function body starting at line %d", tok.Pos.Line)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance() // }

	return &ast.FunctionDef{
		Tok: tok, Name: name.Literal, Params: params,
		ReturnType: returnType, Body: body, Public: public,
	}, nil
}

func (p *Parser) parseVariableDef(public bool) (ast.Statement, error) {
	tok := p.advance() // var
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	vtype, err := p.parseType()
	if err != nil {
		return nil, err
	}

	var value ast.Expression
	if p.cur().Type == token.ASSIGN {
		p.advance()
		value, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.VariableDef{Tok: tok, Name: name.Literal, Type: vtype, Value: value, Public: public, TopLevel: true}, nil
}

func (p *Parser) parseAsmBlock() (ast.Statement, error) {
	tok := p.advance() // asm
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var instructions []string
	var group []string
	depth := 1
	for depth > 0 {
		switch p.cur().Type {
		case token.EOF:
			return nil, p.errorf(tok.Pos, "unterminated asm block starting at line %d", tok.Pos.Line)
		case token.LBRACE:
			depth++
			group = append(group, p.advance().Literal)
		case token.RBRACE:
			depth--
			p.advance()
			if depth == 0 {
				if len(group) > 0 {
					instructions = append(instructions, strings.Join(group, " "))
				}
			} else {
				group = append(group, "}")
			}
		case token.SEMI:
			p.advance()
			if len(group) > 0 {
				instructions = append(instructions, strings.Join(group, " "))
				group = nil
			}
		default:
			group = append(group, p.advance().Literal)
		}
	}

	return &ast.AsmBlock{Tok: tok, Instructions: instructions}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	tok := p.advance() // return
	var value ast.Expression
	if p.cur().Type != token.SEMI {
		var err error
		value, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ReturnNode{Tok: tok, Value: value}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	tok := p.cur()
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Tok: tok, Expression: expr}, nil
}

// --- types ---

func (p *Parser) parseType() (types.Type, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return types.Type{}, err
	}
	t := types.New(name.Literal)
	for p.cur().Type == token.STAR {
		p.advance()
		t.PointerLevel++
	}
	if p.cur().Type == token.LBRACKET {
		p.advance()
		size := 0
		if p.cur().Type == token.INT {
			n, err := strconv.ParseInt(p.cur().Literal, 10, 64)
			if err != nil {
				return types.Type{}, p.errorf(p.cur().Pos, "invalid array size %q", p.cur().Literal)
			}
			size = int(n)
			p.advance()
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return types.Type{}, err
		}
		t.IsArray = true
		t.ArraySize = size
	}
	return t, nil
}

// --- expressions ---

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.cur().Type]
	if !ok {
		return nil, p.errorf(p.cur().Pos, "unexpected token %s in expression", p.cur().Type)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for p.cur().Type != token.SEMI && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.cur().Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseNumberLiteral() (ast.Expression, error) {
	tok := p.advance()
	if tok.Type == token.FLOAT {
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid float literal %q", tok.Literal)
		}
		return &ast.NumberLiteral{Tok: tok, FltValue: v, IsFloat: true}, nil
	}
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, p.errorf(tok.Pos, "invalid integer literal %q", tok.Literal)
	}
	return &ast.NumberLiteral{Tok: tok, IntValue: v}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	tok := p.advance()
	return &ast.StringLiteral{Tok: tok, Value: tok.Literal}, nil
}

func (p *Parser) parseCharLiteral() (ast.Expression, error) {
	tok := p.advance()
	return &ast.CharLiteral{Tok: tok, Value: tok.Literal}, nil
}

func (p *Parser) parseBooleanLiteral() (ast.Expression, error) {
	tok := p.advance()
	return &ast.BooleanLiteral{Tok: tok, Value: tok.Literal == "true"}, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	p.advance() // (
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	tok := p.advance() // [
	var elems []ast.Expression
	for p.cur().Type != token.RBRACKET {
		elem, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Tok: tok, Elements: elems}, nil
}

func (p *Parser) parseUnaryMinus() (ast.Expression, error) {
	tok := p.advance() // -
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	if num, ok := operand.(*ast.NumberLiteral); ok {
		if num.IsFloat {
			num.FltValue = -num.FltValue
		} else {
			num.IntValue = -num.IntValue
		}
		return num, nil
	}
	zero := &ast.NumberLiteral{Tok: tok}
	return &ast.BinaryOp{Tok: tok, Op: token.MINUS, Left: zero, Right: operand}, nil
}

func (p *Parser) parseAddressOf() (ast.Expression, error) {
	tok := p.advance() // &
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.PointerLiteral{Tok: tok, Expr: operand}, nil
}

func (p *Parser) parseDereference() (ast.Expression, error) {
	tok := p.advance() // *
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	deref := &ast.Dereference{Tok: tok, Expr: operand}
	if p.cur().Type == token.ASSIGN {
		p.advance()
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Tok: tok, Target: deref, Value: value}, nil
	}
	return deref, nil
}

// parseIdentifierExpr handles `null`, plain identifiers, member/index
// chains, function calls, and assignment — the grammar's one primary form
// that fans out into four different node kinds (spec §4.2).
func (p *Parser) parseIdentifierExpr() (ast.Expression, error) {
	tok := p.advance()
	if tok.Literal == "null" {
		return &ast.PointerLiteral{Tok: tok, IsAddress: true, Address: 0}, nil
	}

	parts := []ast.AccessPart{{Ident: tok.Literal}}
	for {
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			field, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ast.AccessPart{Ident: field.Literal})
			continue
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			parts = append(parts, ast.AccessPart{Index: idx})
			continue
		}
		break
	}

	if p.cur().Type == token.LPAREN {
		p.advance()
		var args []ast.Expression
		if p.cur().Type != token.RPAREN {
			for {
				arg, err := p.parseExpression(LOWEST)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur().Type == token.COMMA {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Tok: tok, Name: tok.Literal, Arguments: args}, nil
	}

	va := &ast.VariableAccess{Tok: tok, Parts: parts}
	if p.cur().Type == token.ASSIGN {
		if len(parts) != 1 {
			return nil, p.errorf(p.cur().Pos, "Assignment to indexed variables not supported yet")
		}
		p.advance()
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Tok: tok, Target: va, Value: value}, nil
	}
	return va, nil
}

func (p *Parser) parseBinaryOp(left ast.Expression) (ast.Expression, error) {
	tok := p.advance()
	opPrec := precedences[tok.Type]
	right, err := p.parseExpression(opPrec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Tok: tok, Op: tok.Type, Left: left, Right: right}, nil
}

func (p *Parser) parseCastInfix(left ast.Expression) (ast.Expression, error) {
	tok := p.advance() // as
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Cast{Tok: tok, Expr: left, Target: target}, nil
}
