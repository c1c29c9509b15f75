package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kvalavik/sweetc/internal/lexer"
	"github.com/kvalavik/sweetc/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexShowType bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Sweet file and print the resulting tokens",
	Long: `Tokenize a Sweet program and print the resulting tokens.

Reads from the given file, from stdin if no file is given, or from an
inline string passed with -e.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args, lexEval)
	if err != nil {
		return err
	}

	toks, err := lexer.Lex(input)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			fmt.Fprint(os.Stderr, le.Error())
			fmt.Fprintln(os.Stderr)
		}
		return fmt.Errorf("lexing %s failed: %w", filename, err)
	}

	for _, tok := range toks {
		printToken(tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return nil
}

func printToken(tok token.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-10s]", tok.Type)
	}
	if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Type)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}

// readSource resolves the input source for a pipeline command: an inline
// string, a named file, or stdin, in that priority order. It returns the
// source text and a display name for diagnostics.
func readSource(args []string, inline string) (source, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(data), args[0], nil
	}
	data, readErr := io.ReadAll(os.Stdin)
	if readErr != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", readErr)
	}
	return string(data), "<stdin>", nil
}
