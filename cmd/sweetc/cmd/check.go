package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkEval string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Type-check a Sweet file without generating assembly",
	Long: `Run the lexer, parser, importer and type checker over a Sweet
program and report the first diagnostic, without invoking code
generation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkEval, "eval", "e", "", "check inline source instead of reading from a file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args, checkEval)
	if err != nil {
		return err
	}

	prog, err := parseProgram(input, filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("%s failed to parse", filename)
	}

	if _, err := resolveAndCheck(prog, filename); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return fmt.Errorf("%s failed to check", filename)
	}

	fmt.Printf("%s: OK\n", filename)
	return nil
}
