package codegen

import (
	"fmt"

	"github.com/kvalavik/sweetc/internal/errors"
	"github.com/kvalavik/sweetc/internal/token"
)

// CodegenError is raised for AST shapes the generator does not lower
// (spec §7: arrays, indexed access, struct member access, too many
// parameters, unsupported operators/nodes). Codegen only runs after the
// type checker accepts a program, so these always indicate a construct
// the checker accepts but the generator does not yet implement.
type CodegenError struct {
	Message string
	Pos     token.Position
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("codegen error: %s at %s", e.Message, e.Pos)
}

// ToCompilerError renders the error with source context for the CLI.
func (e *CodegenError) ToCompilerError(source, file string) *errors.CompilerError {
	return errors.NewCompilerError(e.Pos, e.Message, source, file)
}

func unsupported(pos token.Position, format string, args ...any) *CodegenError {
	return &CodegenError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
