package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/kvalavik/sweetc/internal/ast"
	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseEval    string
	parseDumpAST bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Sweet file and print its AST",
	Long: `Parse a Sweet program and print its Abstract Syntax Tree.

Reads from the given file, from stdin if no file is given, or from an
inline string passed with -e. Without --dump-ast, reprints the parsed
program via each node's String() method.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the indented AST structure")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args, parseEval)
	if err != nil {
		return err
	}

	prog, err := parseProgram(input, filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("parsing %s failed", filename)
	}

	if parseDumpAST {
		dumpProgram(prog)
	} else {
		fmt.Print(prog.String())
	}
	return nil
}

// parseProgram lexes then parses src, returning an error whose text is
// ready for direct printing: the parser's *errors.CompilerError, or a plain
// error carrying the lexer's message.
func parseProgram(src, file string) (*ast.Program, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, fmt.Errorf("%s", le.Error())
		}
		return nil, err
	}
	return parser.New(toks, src, file).Parse()
}

func dumpProgram(prog *ast.Program) {
	fmt.Printf("Program (%d statements)\n", len(prog.Statements))
	for _, stmt := range prog.Statements {
		dumpASTNode(stmt, 1)
	}
}

func dumpASTNode(node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.FunctionDef:
		fmt.Printf("%sFunctionDef %s -> %s (%d params, %d stmts)\n", pad, n.Name, n.ReturnType, len(n.Params), len(n.Body))
		for _, s := range n.Body {
			dumpASTNode(s, indent+1)
		}
	case *ast.VariableDef:
		fmt.Printf("%sVariableDef %s: %s\n", pad, n.Name, n.Type)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.ExternDecl:
		fmt.Printf("%sExternDecl %s\n", pad, n.String())
	case *ast.AsmBlock:
		fmt.Printf("%sAsmBlock (%d instructions)\n", pad, len(n.Instructions))
	case *ast.ImportNode:
		fmt.Printf("%sImportNode %s\n", pad, n.String())
	case *ast.ReturnNode:
		fmt.Printf("%sReturnNode\n", pad)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.ExpressionStatement:
		fmt.Printf("%sExpressionStatement\n", pad)
		if n.Expression != nil {
			dumpASTNode(n.Expression, indent+1)
		}
	case *ast.BinaryOp:
		fmt.Printf("%sBinaryOp %s\n", pad, n.Tok.Literal)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.Assignment:
		fmt.Printf("%sAssignment\n", pad)
		dumpASTNode(n.Target, indent+1)
		dumpASTNode(n.Value, indent+1)
	case *ast.FunctionCall:
		fmt.Printf("%sFunctionCall %s (%d args)\n", pad, n.Name, len(n.Arguments))
		for _, a := range n.Arguments {
			dumpASTNode(a, indent+1)
		}
	case *ast.VariableAccess:
		fmt.Printf("%sVariableAccess %s\n", pad, n.String())
	case *ast.NumberLiteral:
		fmt.Printf("%sNumberLiteral %s\n", pad, n.Tok.Literal)
	case *ast.StringLiteral:
		fmt.Printf("%sStringLiteral %q\n", pad, n.Value)
	case *ast.CharLiteral:
		fmt.Printf("%sCharLiteral '%s'\n", pad, n.Value)
	case *ast.BooleanLiteral:
		fmt.Printf("%sBooleanLiteral %t\n", pad, n.Value)
	case *ast.ArrayLiteral:
		fmt.Printf("%sArrayLiteral (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.PointerLiteral:
		fmt.Printf("%sPointerLiteral %s\n", pad, n.String())
	case *ast.Dereference:
		fmt.Printf("%sDereference\n", pad)
		dumpASTNode(n.Expr, indent+1)
	case *ast.Cast:
		fmt.Printf("%sCast as %s\n", pad, n.Target)
		dumpASTNode(n.Expr, indent+1)
	default:
		fmt.Printf("%s%T: %s\n", pad, node, node.String())
	}
}
