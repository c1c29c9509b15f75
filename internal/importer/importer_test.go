package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/parser"
)

func writeModule(t *testing.T, root, relPath, source string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(source), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
}

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks, src, "main.sw").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func externNames(stmts []ast.Statement) []string {
	var names []string
	for _, s := range stmts {
		if e, ok := s.(*ast.ExternDecl); ok {
			names = append(names, e.Name)
		}
	}
	return names
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestResolveSplicesAllSymbolsWithoutList(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a/b.sw", `
fn foo() -> int {
    return 1;
}
var bar: int = 2;
`)

	prog := parseSource(t, `import a.b;`)
	im := New(root)
	resolved, imported, err := im.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imported) != 1 {
		t.Fatalf("expected 1 imported module, got %d", len(imported))
	}
	names := externNames(resolved.Statements)
	if !containsName(names, "foo") || !containsName(names, "bar") {
		t.Fatalf("expected foo and bar spliced, got %v", names)
	}
}

func TestResolvePrunesToCallClosure(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a/b.sw", `
fn helper() -> int {
    return 1;
}
fn foo() -> int {
    return helper();
}
fn unrelated() -> int {
    return 99;
}
`)

	prog := parseSource(t, `import a.b : foo;`)
	im := New(root)
	resolved, _, err := im.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := externNames(resolved.Statements)
	if !containsName(names, "foo") {
		t.Fatalf("expected foo spliced, got %v", names)
	}
	if !containsName(names, "helper") {
		t.Fatalf("expected helper spliced (transitive call closure), got %v", names)
	}
	if containsName(names, "unrelated") {
		t.Fatalf("unrelated must be pruned out, got %v", names)
	}
}

func TestResolveFunctionStubCopiesParams(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a/b.sw", `
fn greet(name: string) -> int {
    return 0;
}
`)
	prog := parseSource(t, `import a.b : greet;`)
	im := New(root)
	resolved, _, err := im.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var stub *ast.ExternDecl
	for _, s := range resolved.Statements {
		if e, ok := s.(*ast.ExternDecl); ok && e.Name == "greet" {
			stub = e
		}
	}
	if stub == nil {
		t.Fatalf("expected greet stub")
	}
	if len(stub.Params) != 1 || stub.Params[0].Type.Name != "string" {
		t.Fatalf("unexpected params on stub: %+v", stub.Params)
	}
}

func TestResolveVariableStubMarkedIsVariable(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "cfg.sw", `
var limit: int = 10;
`)
	prog := parseSource(t, `import cfg;`)
	im := New(root)
	resolved, _, err := im.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var stub *ast.ExternDecl
	for _, s := range resolved.Statements {
		if e, ok := s.(*ast.ExternDecl); ok && e.Name == "limit" {
			stub = e
		}
	}
	if stub == nil || !stub.IsVariable {
		t.Fatalf("expected is-variable extern stub for limit, got %+v", stub)
	}
}

func TestResolveDiamondImportIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "shared.sw", `
fn shared() -> int {
    return 1;
}
`)
	writeModule(t, root, "left.sw", `import shared;`)
	writeModule(t, root, "right.sw", `import shared;`)

	prog := parseSource(t, `
import left;
import right;
import shared;
`)
	im := New(root)
	resolved, imported, err := im.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imported) != 3 {
		t.Fatalf("expected 3 distinct module paths visited, got %d: %v", len(imported), imported)
	}
	names := externNames(resolved.Statements)
	count := 0
	for _, n := range names {
		if n == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one shared stub spliced despite diamond import, got %d", count)
	}
}

func TestResolveMissingModuleIsImportError(t *testing.T) {
	root := t.TempDir()
	prog := parseSource(t, `import nope.missing;`)
	im := New(root)
	_, _, err := im.Resolve(prog)
	if err == nil {
		t.Fatalf("expected an error for a missing module")
	}
	if _, ok := err.(*ImportError); !ok {
		t.Fatalf("expected *ImportError, got %T", err)
	}
}
