package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/importer"
	"github.com/kvalavik/sweetc/internal/semantic"
)

// effectiveSearchRoot returns the --search-root flag value, defaulting to
// the compiled file's own directory when unset and a real file (not stdin
// or -e) was given.
func effectiveSearchRoot(filename string) string {
	if searchRoot != "" {
		return searchRoot
	}
	if filename == "<stdin>" || filename == "<eval>" {
		return "."
	}
	return filepath.Dir(filename)
}

// resolveAndCheck runs the importer then the type checker over prog,
// returning the spliced program ready for codegen.
func resolveAndCheck(prog *ast.Program, filename string) (*ast.Program, error) {
	im := importer.New(effectiveSearchRoot(filename))
	resolved, _, err := im.Resolve(prog)
	if err != nil {
		return nil, fmt.Errorf("%s", err.Error())
	}
	if err := semantic.Check(resolved); err != nil {
		return nil, fmt.Errorf("%s", err.Error())
	}
	return resolved, nil
}
