// Package codegen lowers a checked Sweet AST to NASM x86-64 assembly text
// (spec §4.6): Intel syntax, System V calling convention, RIP-relative
// addressing (`default rel`). It never shells out to an assembler or
// linker; it returns the assembly source as a string.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/token"
)

var argRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Generator holds the mutable state of one emission pass: the growing
// instruction list, the deduplicating string pool, and the per-function
// local-variable offset table live while lowering one function body.
type Generator struct {
	lines        []string
	stringLabels map[string]string
	stringOrder  []string

	currentFunc string
	varOffsets  map[string]int
	stackSize   int
}

// New returns an empty Generator.
func New() *Generator {
	return &Generator{stringLabels: make(map[string]string)}
}

// Generate lowers prog to a single NASM assembly text. prog must already
// have passed the type checker; codegen does not re-validate types, only
// the narrower set of shapes it can lower (spec §9, "type-check soundness").
func Generate(prog *ast.Program) (string, error) {
	return New().Generate(prog)
}

// Generate runs g over prog.
func (g *Generator) Generate(prog *ast.Program) (string, error) {
	var globalVars []*ast.VariableDef
	var externs []string
	var globalSymbols []string

	for _, stmt := range prog.Statements {
		switch n := stmt.(type) {
		case *ast.VariableDef:
			globalVars = append(globalVars, n)
			globalSymbols = append(globalSymbols, n.Name)
		case *ast.ExternDecl:
			externs = append(externs, n.Name)
		case *ast.FunctionDef:
			globalSymbols = append(globalSymbols, n.Name)
		}
	}

	g.emit("default rel")
	for _, sym := range globalSymbols {
		g.emit(fmt.Sprintf("global %s", sym))
	}
	for _, ext := range externs {
		g.emit(fmt.Sprintf("extern %s", ext))
	}

	if err := g.emitGlobals(globalVars); err != nil {
		return "", err
	}

	g.emitSection("text")
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if err := g.genFunction(fn); err != nil {
			return "", err
		}
	}

	g.emitStringPool()

	return strings.Join(g.lines, "\n") + "\n", nil
}

// emitGlobals emits the top-level VariableDefs' storage (spec §4.6,
// "Symbol emission for globals"). An initial NumberLiteral becomes a
// quadword of that value; an initial StringLiteral becomes a quadword
// pointer to its rodata label; any other initializer becomes a zero
// quadword in .data. A variable with no initializer at all gets only a
// .bss resq 1 entry and nothing in .data.
func (g *Generator) emitGlobals(globalVars []*ast.VariableDef) error {
	if len(globalVars) == 0 {
		return nil
	}

	g.emitSection("data")
	var uninitialized []*ast.VariableDef
	for _, gvar := range globalVars {
		if gvar.Value == nil {
			uninitialized = append(uninitialized, gvar)
			continue
		}
		switch v := gvar.Value.(type) {
		case *ast.NumberLiteral:
			g.emit(fmt.Sprintf("%s: dq %d", gvar.Name, v.IntValue))
		case *ast.StringLiteral:
			label := g.stringLabel(v.Value)
			g.emit(fmt.Sprintf("%s: dq %s", gvar.Name, label))
		default:
			g.emit(fmt.Sprintf("%s: dq 0", gvar.Name))
		}
	}

	if len(uninitialized) > 0 {
		g.emitSection("bss")
		for _, gvar := range uninitialized {
			g.emit(fmt.Sprintf("%s: resq 1", gvar.Name))
		}
	}
	return nil
}

func (g *Generator) emitStringPool() {
	if len(g.stringOrder) == 0 {
		return
	}
	g.emitSection("rodata")
	for _, s := range g.stringOrder {
		label := g.stringLabels[s]
		decoded := lexer.DecodeEscapes(s)
		bytes := make([]string, len(decoded)+1)
		for i, b := range decoded {
			bytes[i] = strconv.Itoa(int(b))
		}
		bytes[len(decoded)] = "0"
		g.emit(fmt.Sprintf("%s: db %s", label, strings.Join(bytes, ", ")))
	}
}

func (g *Generator) stringLabel(s string) string {
	if label, ok := g.stringLabels[s]; ok {
		return label
	}
	label := fmt.Sprintf("LC%d", len(g.stringOrder)+1)
	g.stringLabels[s] = label
	g.stringOrder = append(g.stringOrder, s)
	return label
}

func (g *Generator) emit(instr string) {
	g.lines = append(g.lines, "    "+instr)
}

func (g *Generator) emitLabel(label string) {
	g.lines = append(g.lines, label+":")
}

func (g *Generator) emitSection(name string) {
	g.lines = append(g.lines, "section ."+name)
}

// genFunction lowers one top-level function: a pre-pass assigns stack
// offsets to every local VariableDef, a prologue reserves the aligned
// frame, parameters are stored from their argument registers, the body
// is lowered statement by statement, and — unless the body already ends
// with a return — an epilogue is appended (spec §4.6).
func (g *Generator) genFunction(fn *ast.FunctionDef) error {
	g.currentFunc = fn.Name
	g.varOffsets = make(map[string]int)
	g.stackSize = 0
	defer func() {
		g.currentFunc = ""
		g.varOffsets = nil
		g.stackSize = 0
	}()

	g.emitLabel(fn.Name)

	offset := 0
	for _, stmt := range fn.Body {
		v, ok := stmt.(*ast.VariableDef)
		if !ok {
			continue
		}
		if v.Type.IsArray {
			return unsupported(v.Pos(), "Arrays are not supported")
		}
		offset += 8
		g.varOffsets[v.Name] = -offset
	}
	g.stackSize = offset

	g.prologue()

	if len(fn.Params) > 6 {
		return unsupported(fn.Pos(), "More than 6 parameters not supported")
	}
	for i, param := range fn.Params {
		off, ok := g.varOffsets[param.Name]
		if !ok {
			offset += 8
			off = -offset
			g.varOffsets[param.Name] = off
			g.reserveFrame(offset)
		}
		g.emit(fmt.Sprintf("mov [rbp%d], %s", off, argRegs[i]))
	}

	endsInReturn := false
	for i, stmt := range fn.Body {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
		if i == len(fn.Body)-1 {
			_, endsInReturn = stmt.(*ast.ReturnNode)
		}
	}
	if !endsInReturn {
		g.epilogue()
	}
	return nil
}

// reserveFrame grows the reserved stack frame to size bytes (rounded up
// to 16), emitting the additional `sub rsp` if the aligned size changed
// after the initial prologue reservation — mirrors the source's handling
// of parameters that need a fresh slot beyond the locals pre-pass.
func (g *Generator) reserveFrame(size int) {
	aligned := alignTo16(size)
	if aligned > g.stackSize {
		g.emit(fmt.Sprintf("sub rsp, %d", aligned-g.stackSize))
		g.stackSize = aligned
	}
}

func alignTo16(n int) int {
	return (n + 15) / 16 * 16
}

func (g *Generator) prologue() {
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	if g.stackSize > 0 {
		aligned := alignTo16(g.stackSize)
		g.emit(fmt.Sprintf("sub rsp, %d", aligned))
		g.stackSize = aligned
	}
}

func (g *Generator) epilogue() {
	g.emit("mov rsp, rbp")
	g.emit("pop rbp")
	g.emit("ret")
}

func (g *Generator) genStatement(stmt ast.Statement) error {
	switch n := stmt.(type) {
	case *ast.VariableDef:
		return g.genVariableDef(n)
	case *ast.ReturnNode:
		return g.genReturn(n)
	case *ast.ExpressionStatement:
		return g.genExpressionDiscard(n.Expression)
	case *ast.AsmBlock:
		for _, instr := range n.Instructions {
			g.emit(instr)
		}
		return nil
	case *ast.ExternDecl, *ast.ImportNode:
		return nil
	default:
		return unsupported(stmt.Pos(), "codegen for %T not implemented", stmt)
	}
}

func (g *Generator) genVariableDef(n *ast.VariableDef) error {
	if n.Type.IsArray {
		return unsupported(n.Pos(), "Arrays are not supported")
	}
	if n.Value == nil {
		return nil
	}
	if err := g.genExpression(n.Value, "rax"); err != nil {
		return err
	}
	offset := g.varOffsets[n.Name]
	g.emit(fmt.Sprintf("mov [rbp%d], rax", offset))
	return nil
}

func (g *Generator) genReturn(n *ast.ReturnNode) error {
	if n.Value != nil {
		if err := g.genExpression(n.Value, "rax"); err != nil {
			return err
		}
	} else {
		g.emit("mov rax, 0")
	}
	g.epilogue()
	return nil
}

// genExpressionDiscard lowers an expression used as a bare statement
// (e.g. a function call for its side effects); the result register is
// never read further.
func (g *Generator) genExpressionDiscard(expr ast.Expression) error {
	return g.genExpression(expr, "rax")
}

// genExpression lowers expr so its value ends up in target (spec §4.6,
// "every expression lowers to code that leaves its value in rax"; target
// other than rax is used when a caller needs the result parked
// elsewhere).
func (g *Generator) genExpression(expr ast.Expression, target string) error {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		if n.IsFloat {
			return unsupported(n.Pos(), "floating-point literals are not supported")
		}
		g.emit(fmt.Sprintf("mov %s, %d", target, n.IntValue))
		return nil
	case *ast.StringLiteral:
		label := g.stringLabel(n.Value)
		g.emit(fmt.Sprintf("lea %s, [rel %s]", target, label))
		return nil
	case *ast.BooleanLiteral:
		v := 0
		if n.Value {
			v = 1
		}
		g.emit(fmt.Sprintf("mov %s, %d", target, v))
		return nil
	case *ast.CharLiteral:
		decoded := lexer.DecodeEscapes(n.Value)
		var v byte
		if len(decoded) > 0 {
			v = decoded[0]
		}
		g.emit(fmt.Sprintf("mov %s, %d", target, v))
		return nil
	case *ast.VariableAccess:
		return g.genVariableAccess(n, target)
	case *ast.BinaryOp:
		return g.genBinaryOp(n, target)
	case *ast.FunctionCall:
		if err := g.genFunctionCall(n); err != nil {
			return err
		}
		if target != "rax" {
			g.emit(fmt.Sprintf("mov %s, rax", target))
		}
		return nil
	case *ast.Cast:
		return g.genExpression(n.Expr, target)
	case *ast.Assignment:
		return g.genAssignmentExpr(n, target)
	default:
		return unsupported(expr.Pos(), "unsupported expression node %T", expr)
	}
}

func (g *Generator) genVariableAccess(n *ast.VariableAccess, target string) error {
	if len(n.Parts) > 1 {
		if n.Parts[1].Ident == "len" {
			return unsupported(n.Pos(), "`.len` property is not supported")
		}
		return unsupported(n.Pos(), "struct member access not implemented")
	}
	part := n.Parts[0]
	if part.Index != nil {
		return unsupported(n.Pos(), "array indexing is not supported")
	}
	name := part.Ident
	if g.currentFunc != "" {
		if offset, ok := g.varOffsets[name]; ok {
			g.emit(fmt.Sprintf("mov %s, [rbp%d]", target, offset))
			return nil
		}
	}
	g.emit(fmt.Sprintf("mov %s, [%s]", target, name))
	return nil
}

var binaryOpInstrs = map[token.Type][]string{
	token.PLUS:    {"add rax, rbx"},
	token.MINUS:   {"sub rax, rbx"},
	token.STAR:    {"imul rax, rbx"},
	token.SLASH:   {"cqo", "idiv rbx"},
	token.PERCENT: {"cqo", "idiv rbx", "mov rax, rdx"},
	token.EQ:      {"cmp rax, rbx", "sete al", "movzx rax, al"},
	token.NE:      {"cmp rax, rbx", "setne al", "movzx rax, al"},
	token.LT:      {"cmp rax, rbx", "setl al", "movzx rax, al"},
	token.LE:      {"cmp rax, rbx", "setle al", "movzx rax, al"},
	token.GT:      {"cmp rax, rbx", "setg al", "movzx rax, al"},
	token.GE:      {"cmp rax, rbx", "setge al", "movzx rax, al"},
}

// genBinaryOp implements the stack-machine lowering of spec §4.6: left
// into rax, push, right into rax, move to rbx, pop left back into rax,
// then the operator-specific instruction sequence.
func (g *Generator) genBinaryOp(n *ast.BinaryOp, target string) error {
	if err := g.genExpression(n.Left, "rax"); err != nil {
		return err
	}
	g.emit("push rax")
	if err := g.genExpression(n.Right, "rax"); err != nil {
		return err
	}
	g.emit("mov rbx, rax")
	g.emit("pop rax")

	instrs, ok := binaryOpInstrs[n.Op]
	if !ok {
		return unsupported(n.Pos(), "unsupported binary operator %s", n.Tok.Literal)
	}
	for _, instr := range instrs {
		g.emit(instr)
	}
	if target != "rax" {
		g.emit(fmt.Sprintf("mov %s, rax", target))
	}
	return nil
}

// genAssignmentExpr lowers `target = value`: evaluate the RHS into rax,
// then store to the target's slot (spec §4.6, "Assignment"). The target
// must be a bare identifier; dereference and indexed targets are
// rejected here, matching codegen's narrower acceptance than the
// checker's.
func (g *Generator) genAssignmentExpr(n *ast.Assignment, target string) error {
	va, ok := n.Target.(*ast.VariableAccess)
	if !ok || len(va.Parts) != 1 || va.Parts[0].Index != nil {
		return unsupported(n.Pos(), "assignment target must be a bare identifier")
	}
	if err := g.genExpression(n.Value, "rax"); err != nil {
		return err
	}
	name := va.Name()
	offset, ok := g.varOffsets[name]
	if !ok {
		return unsupported(n.Pos(), "assignment to undeclared local %q", name)
	}
	g.emit(fmt.Sprintf("mov [rbp%d], rax", offset))
	if target != "rax" {
		g.emit(fmt.Sprintf("mov %s, rax", target))
	}
	return nil
}

// genFunctionCall lowers a call per the System V ABI (spec §4.6):
// arguments past the sixth are evaluated in reverse order and pushed;
// the first six are evaluated left-to-right into their argument
// registers; an odd stack-argument count gets an 8-byte alignment pad
// before the pushes, removed again after the call.
func (g *Generator) genFunctionCall(n *ast.FunctionCall) error {
	argc := len(n.Arguments)
	stackArgs := argc - 6
	if stackArgs < 0 {
		stackArgs = 0
	}

	adjustment := 0
	if stackArgs%2 != 0 {
		adjustment = 8
		g.emit(fmt.Sprintf("sub rsp, %d", adjustment))
	}

	for i := argc - 1; i >= 6; i-- {
		if err := g.genExpression(n.Arguments[i], "rax"); err != nil {
			return err
		}
		g.emit("push rax")
	}

	fixed := argc
	if fixed > 6 {
		fixed = 6
	}
	for i := 0; i < fixed; i++ {
		if err := g.genExpression(n.Arguments[i], "rax"); err != nil {
			return err
		}
		g.emit(fmt.Sprintf("mov %s, rax", argRegs[i]))
	}

	g.emit("xor rax, rax")
	g.emit(fmt.Sprintf("call %s", n.Name))

	if stackArgs > 0 {
		g.emit(fmt.Sprintf("add rsp, %d", stackArgs*8))
	}
	if adjustment > 0 {
		g.emit(fmt.Sprintf("add rsp, %d", adjustment))
	}
	return nil
}

