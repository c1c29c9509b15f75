package semantic

import (
	"fmt"

	"github.com/kvalavik/sweetc/internal/errors"
	"github.com/kvalavik/sweetc/internal/token"
	"github.com/kvalavik/sweetc/internal/types"
)

// ErrorKind classifies a TypeError (spec §7).
type ErrorKind string

const (
	ErrUndefinedVariable ErrorKind = "undefined_variable"
	ErrUndefinedFunction ErrorKind = "undefined_function"
	ErrDuplicateDef      ErrorKind = "duplicate_definition"
	ErrTypeMismatch      ErrorKind = "type_mismatch"
	ErrArityMismatch     ErrorKind = "arity_mismatch"
	ErrUnknownMember     ErrorKind = "unknown_member"
	ErrEmptyArrayLiteral ErrorKind = "empty_array_literal"
	ErrInvalidDeref      ErrorKind = "invalid_dereference"
	ErrOutOfRange        ErrorKind = "literal_out_of_range"
)

// TypeError is the single fatal error the checker raises. Analysis halts
// on the first one; there is no recovery or accumulation (spec §4.5, §7).
type TypeError struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Pos)
}

// ToCompilerError renders the error with source context for the CLI.
func (e *TypeError) ToCompilerError(source, file string) *errors.CompilerError {
	return errors.NewCompilerError(e.Pos, e.Message, source, file)
}

func undefinedVariable(pos token.Position, name string) *TypeError {
	return &TypeError{Kind: ErrUndefinedVariable, Pos: pos, Message: fmt.Sprintf("undefined variable %q", name)}
}

func undefinedFunction(pos token.Position, name string) *TypeError {
	return &TypeError{Kind: ErrUndefinedFunction, Pos: pos, Message: fmt.Sprintf("undefined function %q", name)}
}

func duplicateDefinition(pos token.Position, name string) *TypeError {
	return &TypeError{Kind: ErrDuplicateDef, Pos: pos, Message: fmt.Sprintf("%q is already defined", name)}
}

func typeMismatch(pos token.Position, context string, want, got types.Type) *TypeError {
	return &TypeError{
		Kind: ErrTypeMismatch, Pos: pos,
		Message: fmt.Sprintf("%s: cannot use %s where %s is expected", context, got, want),
	}
}

func binaryOperandMismatch(pos token.Position, op string, left, right types.Type) *TypeError {
	return &TypeError{
		Kind: ErrTypeMismatch, Pos: pos,
		Message: fmt.Sprintf("operator %s requires equal operand types, got %s and %s", op, left, right),
	}
}

func binaryOperandKind(pos token.Position, op string, t types.Type) *TypeError {
	return &TypeError{
		Kind: ErrTypeMismatch, Pos: pos,
		Message: fmt.Sprintf("operator %s requires an integer, string, or array operand, got %s", op, t),
	}
}

func arityMismatch(pos token.Position, name string, want, got int) *TypeError {
	return &TypeError{
		Kind: ErrArityMismatch, Pos: pos,
		Message: fmt.Sprintf("%q expects %d argument(s), got %d", name, want, got),
	}
}

func unknownMember(pos token.Position, member string, t types.Type) *TypeError {
	return &TypeError{
		Kind: ErrUnknownMember, Pos: pos,
		Message: fmt.Sprintf("%s has no member %q", t, member),
	}
}

func emptyArrayLiteral(pos token.Position) *TypeError {
	return &TypeError{Kind: ErrEmptyArrayLiteral, Pos: pos, Message: "array literal must have at least one element"}
}

func invalidDeref(pos token.Position, t types.Type) *TypeError {
	reason := "not a pointer"
	if t.PointerLevel > 0 {
		reason = "void* cannot be dereferenced"
	}
	return &TypeError{Kind: ErrInvalidDeref, Pos: pos, Message: fmt.Sprintf("cannot dereference %s: %s", t, reason)}
}

func literalOutOfRange(pos token.Position, value int64, t types.Type, min, max int64) *TypeError {
	return &TypeError{
		Kind: ErrOutOfRange, Pos: pos,
		Message: fmt.Sprintf("literal %d is out of range for %s (expected [%d, %d])", value, t, min, max),
	}
}

func floatOutOfRange(pos token.Position, value float64, t types.Type) *TypeError {
	return &TypeError{
		Kind: ErrOutOfRange, Pos: pos,
		Message: fmt.Sprintf("literal %g is out of range for %s", value, t),
	}
}
