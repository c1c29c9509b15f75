package cmd

import (
	"fmt"
	"os"

	"github.com/kvalavik/sweetc/internal/codegen"
	"github.com/spf13/cobra"
)

var (
	compileEval   string
	compileOutput string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Sweet file to NASM x86-64 assembly",
	Long: `Run the full pipeline - lexer, parser, importer, type checker,
code generator - over a Sweet program and emit the resulting NASM
assembly text.

This command never invokes an external assembler or linker; its output
is assembly source for nasm/ld (or an equivalent toolchain). The build
subcommand runs nasm and ld itself.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileEval, "eval", "e", "", "compile inline source instead of reading from a file")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "write assembly to this file instead of stdout")
}

func runCompile(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args, compileEval)
	if err != nil {
		return err
	}

	prog, err := parseProgram(input, filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("%s failed to parse", filename)
	}

	resolved, err := resolveAndCheck(prog, filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("%s failed to check", filename)
	}

	asm, err := codegen.Generate(resolved)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("%s failed to generate code", filename)
	}

	if compileOutput == "" {
		fmt.Print(asm)
		return nil
	}
	if err := os.WriteFile(compileOutput, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", compileOutput, err)
	}
	return nil
}
