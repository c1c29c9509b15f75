package semantic

import "github.com/kvalavik/sweetc/internal/types"

// VarScope is the flat local-variables table live while checking one
// function body. Entering a function saves the outer table by value
// (Snapshot) and exiting restores it; there is no lexical nesting beyond
// that single save/restore (spec §3, §4.5).
type VarScope struct {
	vars map[string]types.Type
}

// NewVarScope returns an empty variables table.
func NewVarScope() *VarScope {
	return &VarScope{vars: make(map[string]types.Type)}
}

// Define adds or overwrites a variable's type in the current table.
func (s *VarScope) Define(name string, t types.Type) {
	s.vars[name] = t
}

// Lookup returns the variable's type and whether it is defined.
func (s *VarScope) Lookup(name string) (types.Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

// Snapshot returns an independent copy, used to save the outer scope
// across a function body.
func (s *VarScope) Snapshot() *VarScope {
	cp := NewVarScope()
	for k, v := range s.vars {
		cp.vars[k] = v
	}
	return cp
}

// Callable is the function table's uniform view of a call target,
// whether declared with a body (FunctionDef) or as an ExternDecl
// (spec §3: "name → FunctionDef|ExternDecl").
type Callable struct {
	Name       string
	Params     []types.Type
	ReturnType types.Type
	Variadic   bool
}

// FunctionTable is the flat mapping of callable name to signature.
// Duplicate definitions are a checker error (spec §3, §4.5).
type FunctionTable struct {
	funcs map[string]*Callable
}

// NewFunctionTable returns an empty function table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{funcs: make(map[string]*Callable)}
}

// Define registers a callable, returning false if the name is already taken.
func (t *FunctionTable) Define(c *Callable) bool {
	if _, exists := t.funcs[c.Name]; exists {
		return false
	}
	t.funcs[c.Name] = c
	return true
}

// Lookup returns the callable and whether it exists.
func (t *FunctionTable) Lookup(name string) (*Callable, bool) {
	c, ok := t.funcs[name]
	return c, ok
}
