// Package semantic implements Sweet's single-pass type checker (spec §4.5).
// It walks the AST once in declaration order, populating a flat function
// table and a flat variables table, and validates every definition,
// assignment, binary operation, call, and return against the type
// compatibility rules of internal/types. There is no dynamic dispatch over
// node class names as in the source implementation: checkExpr/checkStmt are
// exhaustive Go type switches (spec §9, "Dynamic dispatch over AST").
package semantic

import (
	"fmt"
	"math"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/types"
)

// Analyzer holds the mutable state of one checking pass: the function
// table, the flat variables table, and which function (if any) is
// currently being checked, for validating its return statements.
type Analyzer struct {
	vars            *VarScope
	funcs           *FunctionTable
	currentReturn   types.Type
	currentFuncName string
}

// New returns an Analyzer with empty function and variable tables.
func New() *Analyzer {
	return &Analyzer{vars: NewVarScope(), funcs: NewFunctionTable()}
}

// Check walks prog's top-level statements in order. It halts and returns
// the first TypeError encountered; there is no error accumulation or
// second pass (spec §4.5).
func Check(prog *ast.Program) error {
	return New().Check(prog)
}

// Check runs a over prog, mutating a's tables as it goes.
func (a *Analyzer) Check(prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		if err := a.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(stmt ast.Statement) error {
	switch n := stmt.(type) {
	case *ast.ImportNode:
		// resolved into ExternDecl stubs by the importer before checking begins
		return nil
	case *ast.ExternDecl:
		return a.checkExternDecl(n)
	case *ast.FunctionDef:
		return a.checkFunctionDef(n)
	case *ast.VariableDef:
		return a.checkVariableDef(n)
	case *ast.AsmBlock:
		return nil
	case *ast.ReturnNode:
		return a.checkReturn(n)
	case *ast.ExpressionStatement:
		_, err := a.checkExpr(n.Expression)
		return err
	default:
		return &TypeError{Kind: ErrTypeMismatch, Pos: stmt.Pos(), Message: fmt.Sprintf("no type checker implemented for %T", stmt)}
	}
}

func (a *Analyzer) checkExternDecl(n *ast.ExternDecl) error {
	if n.IsVariable {
		if _, exists := a.vars.Lookup(n.Name); exists {
			return duplicateDefinition(n.Pos(), n.Name)
		}
		a.vars.Define(n.Name, n.ReturnType)
		return nil
	}
	if _, exists := a.funcs.Lookup(n.Name); exists {
		return duplicateDefinition(n.Pos(), n.Name)
	}
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type
	}
	a.funcs.Define(&Callable{Name: n.Name, Params: params, ReturnType: n.ReturnType, Variadic: n.Variadic})
	return nil
}

func (a *Analyzer) checkFunctionDef(n *ast.FunctionDef) error {
	if _, exists := a.funcs.Lookup(n.Name); exists {
		return duplicateDefinition(n.Pos(), n.Name)
	}
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type
	}
	a.funcs.Define(&Callable{Name: n.Name, Params: params, ReturnType: n.ReturnType})

	saved := a.vars.Snapshot()
	savedReturn, savedName := a.currentReturn, a.currentFuncName
	restore := func() {
		a.vars = saved
		a.currentReturn, a.currentFuncName = savedReturn, savedName
	}

	a.currentReturn = n.ReturnType
	a.currentFuncName = n.Name

	for _, p := range n.Params {
		if _, exists := a.vars.Lookup(p.Name); exists {
			restore()
			return duplicateDefinition(n.Pos(), p.Name)
		}
		a.vars.Define(p.Name, p.Type)
	}

	for _, stmt := range n.Body {
		if err := a.checkStmt(stmt); err != nil {
			restore()
			return err
		}
	}

	restore()
	return nil
}

func (a *Analyzer) checkVariableDef(n *ast.VariableDef) error {
	if _, exists := a.vars.Lookup(n.Name); exists {
		return duplicateDefinition(n.Pos(), n.Name)
	}
	if n.Value != nil {
		valType, err := a.checkExpr(n.Value)
		if err != nil {
			return err
		}
		if !n.Type.IsCompatibleWith(valType) {
			return typeMismatch(n.Pos(), fmt.Sprintf("variable definition %q", n.Name), n.Type, valType)
		}
		if err := a.checkIntegerRange(n.Type, n.Value); err != nil {
			return err
		}
	}
	a.vars.Define(n.Name, n.Type)
	return nil
}

func (a *Analyzer) checkReturn(n *ast.ReturnNode) error {
	if n.Value == nil {
		return nil
	}
	valType, err := a.checkExpr(n.Value)
	if err != nil {
		return err
	}
	if a.currentFuncName != "" && !a.currentReturn.IsCompatibleWith(valType) {
		return typeMismatch(n.Pos(), fmt.Sprintf("return from %q", a.currentFuncName), a.currentReturn, valType)
	}
	return nil
}

func (a *Analyzer) checkExpr(expr ast.Expression) (types.Type, error) {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		if n.IsFloat {
			return types.New("f64"), nil
		}
		return types.New("int"), nil
	case *ast.StringLiteral:
		return types.New("string"), nil
	case *ast.CharLiteral:
		return types.New("char"), nil
	case *ast.BooleanLiteral:
		return types.New("bool"), nil
	case *ast.VariableAccess:
		return a.checkVariableAccess(n)
	case *ast.BinaryOp:
		return a.checkBinaryOp(n)
	case *ast.Dereference:
		return a.checkDereference(n)
	case *ast.Cast:
		if _, err := a.checkExpr(n.Expr); err != nil {
			return types.Type{}, err
		}
		return n.Target, nil
	case *ast.Assignment:
		return a.checkAssignment(n)
	case *ast.FunctionCall:
		return a.checkFunctionCall(n)
	case *ast.ArrayLiteral:
		return a.checkArrayLiteral(n)
	case *ast.PointerLiteral:
		return a.checkPointerLiteral(n)
	default:
		return types.Type{}, &TypeError{Kind: ErrTypeMismatch, Pos: expr.Pos(), Message: fmt.Sprintf("no type checker implemented for %T", expr)}
	}
}

func (a *Analyzer) checkVariableAccess(n *ast.VariableAccess) (types.Type, error) {
	name := n.Name()
	t, ok := a.vars.Lookup(name)
	if !ok {
		return types.Type{}, undefinedVariable(n.Pos(), name)
	}
	if len(n.Parts) == 1 {
		return t, nil
	}

	// Only a single trailing `.len` member is acknowledged (spec §4.5);
	// indexing and any other member are rejected here too.
	part := n.Parts[1]
	if part.Index != nil {
		return types.Type{}, unknownMember(n.Pos(), "[index]", t)
	}
	if part.Ident == "len" {
		if !t.CanHaveLenProperty() {
			return types.Type{}, unknownMember(n.Pos(), "len", t)
		}
		if len(n.Parts) > 2 {
			return types.Type{}, unknownMember(n.Pos(), n.Parts[2].String(), types.New("usize"))
		}
		return types.New("usize"), nil
	}
	return types.Type{}, unknownMember(n.Pos(), part.Ident, t)
}

func (a *Analyzer) checkBinaryOp(n *ast.BinaryOp) (types.Type, error) {
	leftType, err := a.checkExpr(n.Left)
	if err != nil {
		return types.Type{}, err
	}
	rightType, err := a.checkExpr(n.Right)
	if err != nil {
		return types.Type{}, err
	}
	if !leftType.Equal(rightType) {
		return types.Type{}, binaryOperandMismatch(n.Pos(), n.Tok.Literal, leftType, rightType)
	}
	if !(leftType.IsInteger() || leftType.IsString() || leftType.IsArray) {
		return types.Type{}, binaryOperandKind(n.Pos(), n.Tok.Literal, leftType)
	}
	return leftType, nil
}

func (a *Analyzer) checkFunctionCall(n *ast.FunctionCall) (types.Type, error) {
	fn, ok := a.funcs.Lookup(n.Name)
	if !ok {
		return types.Type{}, undefinedFunction(n.Pos(), n.Name)
	}

	if fn.Variadic {
		if len(n.Arguments) < len(fn.Params) {
			return types.Type{}, arityMismatch(n.Pos(), n.Name, len(fn.Params), len(n.Arguments))
		}
	} else if len(n.Arguments) != len(fn.Params) {
		return types.Type{}, arityMismatch(n.Pos(), n.Name, len(fn.Params), len(n.Arguments))
	}

	fixed := len(fn.Params)
	for i := 0; i < fixed; i++ {
		argType, err := a.checkExpr(n.Arguments[i])
		if err != nil {
			return types.Type{}, err
		}
		if !fn.Params[i].IsCompatibleWith(argType) {
			return types.Type{}, typeMismatch(n.Pos(), fmt.Sprintf("argument %d of %q", i+1, n.Name), fn.Params[i], argType)
		}
	}
	// Trailing variadic arguments are evaluated (for error propagation) but
	// left unchecked (spec §4.5).
	for i := fixed; i < len(n.Arguments); i++ {
		if _, err := a.checkExpr(n.Arguments[i]); err != nil {
			return types.Type{}, err
		}
	}

	return fn.ReturnType, nil
}

func (a *Analyzer) checkAssignment(n *ast.Assignment) (types.Type, error) {
	var targetType types.Type
	switch tgt := n.Target.(type) {
	case *ast.VariableAccess:
		t, ok := a.vars.Lookup(tgt.Name())
		if !ok {
			return types.Type{}, undefinedVariable(tgt.Pos(), tgt.Name())
		}
		targetType = t
	case *ast.Dereference:
		t, err := a.checkExpr(tgt)
		if err != nil {
			return types.Type{}, err
		}
		targetType = t
	default:
		return types.Type{}, &TypeError{Kind: ErrTypeMismatch, Pos: n.Pos(), Message: "invalid assignment target"}
	}

	valType, err := a.checkExpr(n.Value)
	if err != nil {
		return types.Type{}, err
	}
	if !targetType.IsCompatibleWith(valType) {
		return types.Type{}, typeMismatch(n.Pos(), "assignment", targetType, valType)
	}
	if err := a.checkIntegerRange(targetType, n.Value); err != nil {
		return types.Type{}, err
	}
	return targetType, nil
}

func (a *Analyzer) checkDereference(n *ast.Dereference) (types.Type, error) {
	t, err := a.checkExpr(n.Expr)
	if err != nil {
		return types.Type{}, err
	}
	if t.PointerLevel == 0 {
		return types.Type{}, invalidDeref(n.Pos(), t)
	}
	if t.PointerLevel == 1 && t.Name == "void" {
		return types.Type{}, invalidDeref(n.Pos(), t)
	}
	result := t
	result.PointerLevel--
	return result, nil
}

func (a *Analyzer) checkArrayLiteral(n *ast.ArrayLiteral) (types.Type, error) {
	if len(n.Elements) == 0 {
		return types.Type{}, emptyArrayLiteral(n.Pos())
	}
	first, err := a.checkExpr(n.Elements[0])
	if err != nil {
		return types.Type{}, err
	}
	for _, elem := range n.Elements[1:] {
		t, err := a.checkExpr(elem)
		if err != nil {
			return types.Type{}, err
		}
		if !first.IsCompatibleWith(t) {
			return types.Type{}, typeMismatch(elem.Pos(), "array literal element", first, t)
		}
	}
	return types.Array(first, len(n.Elements)), nil
}

func (a *Analyzer) checkPointerLiteral(n *ast.PointerLiteral) (types.Type, error) {
	if n.IsAddress {
		return types.Pointer(types.Void), nil
	}
	t, err := a.checkExpr(n.Expr)
	if err != nil {
		return types.Type{}, err
	}
	return types.Pointer(t), nil
}

// checkIntegerRange validates that a literal initializer/assigned value
// fits the declared type's range (spec §4.3, §7). Non-literal operands are
// never evaluated — the source's conservative behavior is preserved
// (spec §9, "Integer-range checks on non-literals").
func (a *Analyzer) checkIntegerRange(t types.Type, value ast.Expression) error {
	if t.IsFloat() {
		num, ok := value.(*ast.NumberLiteral)
		if !ok || !num.IsFloat {
			return nil
		}
		if t.Name == "f32" {
			v := num.FltValue
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return nil
			}
			if v < -types.MaxF32 || v > types.MaxF32 {
				return floatOutOfRange(value.Pos(), v, t)
			}
		}
		return nil
	}

	if !t.IsInteger() {
		return nil
	}

	var val int64
	switch v := value.(type) {
	case *ast.NumberLiteral:
		if v.IsFloat {
			return nil
		}
		val = v.IntValue
	case *ast.CharLiteral:
		decoded := lexer.DecodeEscapes(v.Value)
		if len(decoded) == 0 {
			return nil
		}
		val = int64(decoded[0])
	default:
		return nil
	}

	min, max, ok := types.IntRange(t.Name)
	if !ok {
		return nil
	}
	if val < min || val > max {
		return literalOutOfRange(value.Pos(), val, t, min, max)
	}
	return nil
}
