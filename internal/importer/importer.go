// Package importer resolves `import` statements (spec §4.4). It loads the
// imported module from disk relative to a search root, recursively resolves
// that module's own imports first, then splices `ExternDecl` stubs into the
// importing module's top-level statement list in place of each ImportNode —
// pruned to the transitive call closure of the requested symbols when the
// import names an explicit symbol list.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/errors"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/parser"
	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

// ImportError is returned when a module file cannot be found or fails to
// parse (spec §7, "ImportError: module file not found").
type ImportError struct {
	Message string
	Pos     token.Position
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// ToCompilerError renders the error with source context for the CLI.
func (e *ImportError) ToCompilerError(source, file string) *errors.CompilerError {
	return errors.NewCompilerError(e.Pos, e.Message, source, file)
}

// Importer resolves import statements against a fixed search root,
// tracking visited module paths so diamond and cyclic imports are
// short-circuited (spec §4.4).
type Importer struct {
	searchRoot string
	visited    map[string]bool
	imported   []string
}

// New returns an Importer that resolves `import a.b.c;` against
// <searchRoot>/a/b/c.sw.
func New(searchRoot string) *Importer {
	return &Importer{searchRoot: searchRoot, visited: make(map[string]bool)}
}

// Resolve replaces every ImportNode in prog's top-level statements with the
// ExternDecl stubs its import needs, and returns the list of module file
// paths that were imported (directly or transitively) so the caller can
// compile them separately. prog is not mutated; a new statement list is
// returned in a fresh *ast.Program.
func (im *Importer) Resolve(prog *ast.Program) (*ast.Program, []string, error) {
	resolved, err := im.resolveStatements(prog.Statements)
	if err != nil {
		return nil, nil, err
	}
	return &ast.Program{Statements: resolved}, im.imported, nil
}

func (im *Importer) resolveStatements(stmts []ast.Statement) ([]ast.Statement, error) {
	var out []ast.Statement
	for _, stmt := range stmts {
		imp, ok := stmt.(*ast.ImportNode)
		if !ok {
			out = append(out, stmt)
			continue
		}

		modulePath, err := im.resolveModulePath(strings.Split(imp.Path, "."), imp.Pos())
		if err != nil {
			return nil, err
		}
		if im.visited[modulePath] {
			continue
		}
		im.visited[modulePath] = true
		im.imported = append(im.imported, modulePath)

		moduleStmts, err := im.loadModule(modulePath, imp.Pos())
		if err != nil {
			return nil, err
		}
		// The imported module's own imports are resolved first so its
		// dependency graph and symbol set are complete before this
		// import's pruning runs.
		moduleStmts, err = im.resolveStatements(moduleStmts)
		if err != nil {
			return nil, err
		}

		needed := im.neededSymbols(imp, moduleStmts)
		for _, name := range needed {
			node := findByName(moduleStmts, name)
			if node == nil {
				continue
			}
			stub := makeExternStub(node)
			if stub != nil {
				out = append(out, stub)
			}
		}
	}
	return out, nil
}

// neededSymbols returns the exact set of top-level names to splice stubs
// for: the transitive call closure of imp.Symbols over moduleStmts' call
// graph when imp.Symbols is non-nil, else every named top-level statement.
func (im *Importer) neededSymbols(imp *ast.ImportNode, moduleStmts []ast.Statement) []string {
	if imp.Symbols == nil {
		var all []string
		for _, stmt := range moduleStmts {
			if name, ok := statementName(stmt); ok {
				all = append(all, name)
			}
		}
		return all
	}

	depGraph := buildDependencyGraph(moduleStmts)
	closure := make(map[string]bool)
	stack := append([]string(nil), imp.Symbols...)
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if closure[sym] {
			continue
		}
		closure[sym] = true
		for _, dep := range depGraph[sym] {
			if !closure[dep] {
				stack = append(stack, dep)
			}
		}
	}

	var result []string
	for sym := range closure {
		result = append(result, sym)
	}
	return result
}

// buildDependencyGraph maps each named top-level statement to the set of
// function names it calls directly, recursively through its own body
// (spec §4.4: "a mapping defined-name -> set of identifiers referenced in
// that definition's body, filtered to call sites").
func buildDependencyGraph(stmts []ast.Statement) map[string][]string {
	graph := make(map[string][]string)
	for _, stmt := range stmts {
		name, ok := statementName(stmt)
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		var deps []string
		collectCalls(stmt, func(callee string) {
			if !seen[callee] {
				seen[callee] = true
				deps = append(deps, callee)
			}
		})
		graph[name] = deps
	}
	return graph
}

func statementName(stmt ast.Statement) (string, bool) {
	switch n := stmt.(type) {
	case *ast.FunctionDef:
		return n.Name, true
	case *ast.VariableDef:
		return n.Name, true
	case *ast.ExternDecl:
		return n.Name, true
	default:
		return "", false
	}
}

// collectCalls walks stmt and every expression reachable from it, invoking
// visit for every FunctionCall name encountered.
func collectCalls(stmt ast.Statement, visit func(name string)) {
	switch n := stmt.(type) {
	case *ast.FunctionDef:
		for _, s := range n.Body {
			collectCalls(s, visit)
		}
	case *ast.VariableDef:
		if n.Value != nil {
			collectCallsExpr(n.Value, visit)
		}
	case *ast.ReturnNode:
		if n.Value != nil {
			collectCallsExpr(n.Value, visit)
		}
	case *ast.ExpressionStatement:
		collectCallsExpr(n.Expression, visit)
	}
}

func collectCallsExpr(expr ast.Expression, visit func(name string)) {
	switch n := expr.(type) {
	case *ast.FunctionCall:
		visit(n.Name)
		for _, arg := range n.Arguments {
			collectCallsExpr(arg, visit)
		}
	case *ast.BinaryOp:
		collectCallsExpr(n.Left, visit)
		collectCallsExpr(n.Right, visit)
	case *ast.Dereference:
		collectCallsExpr(n.Expr, visit)
	case *ast.Cast:
		collectCallsExpr(n.Expr, visit)
	case *ast.Assignment:
		collectCallsExpr(n.Target, visit)
		collectCallsExpr(n.Value, visit)
	case *ast.ArrayLiteral:
		for _, elem := range n.Elements {
			collectCallsExpr(elem, visit)
		}
	case *ast.PointerLiteral:
		if n.Expr != nil {
			collectCallsExpr(n.Expr, visit)
		}
	case *ast.VariableAccess:
		for _, part := range n.Parts {
			if part.Index != nil {
				collectCallsExpr(part.Index, visit)
			}
		}
	}
}

func findByName(stmts []ast.Statement, name string) ast.Statement {
	for _, stmt := range stmts {
		if n, ok := statementName(stmt); ok && n == name {
			return stmt
		}
	}
	return nil
}

// makeExternStub builds the ExternDecl spliced in place of an imported
// symbol (spec §4.4). FunctionDef becomes a non-variadic function extern
// with the same parameters (a FunctionDef has no variadic parameter form)
// and a void return type when none was declared; VariableDef becomes an is-variable
// extern carrying its declared type; an ExternDecl re-imported transitively
// is passed through unchanged.
func makeExternStub(node ast.Statement) ast.Statement {
	switch n := node.(type) {
	case *ast.FunctionDef:
		params := make([]ast.Parameter, len(n.Params))
		copy(params, n.Params)
		returnType := n.ReturnType
		if returnType.Name == "" {
			returnType = types.Void
		}
		return &ast.ExternDecl{Tok: n.Tok, Name: n.Name, Params: params, ReturnType: returnType}
	case *ast.VariableDef:
		return &ast.ExternDecl{Tok: n.Tok, Name: n.Name, ReturnType: n.Type, IsVariable: true}
	case *ast.ExternDecl:
		return n
	default:
		return nil
	}
}

func (im *Importer) resolveModulePath(parts []string, pos token.Position) (string, error) {
	rel := filepath.Join(parts...) + ".sw"
	full := filepath.Join(im.searchRoot, rel)
	if _, err := os.Stat(full); err != nil {
		return "", &ImportError{Pos: pos, Message: fmt.Sprintf("Module file not found: %s", full)}
	}
	return full, nil
}

func (im *Importer) loadModule(path string, pos token.Position) ([]ast.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImportError{Pos: pos, Message: fmt.Sprintf("Module file not found: %s", path)}
	}
	source := string(data)

	toks, err := lexer.Lex(source)
	if err != nil {
		return nil, &ImportError{Pos: pos, Message: fmt.Sprintf("failed to lex module %s: %v", path, err)}
	}
	prog, err := parser.New(toks, source, path).Parse()
	if err != nil {
		return nil, &ImportError{Pos: pos, Message: fmt.Sprintf("failed to parse module %s: %v", path, err)}
	}
	return prog.Statements, nil
}

