package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sweetc",
	Short: "Sweet ahead-of-time compiler",
	Long: `sweetc compiles Sweet (.sw) source files to x86-64 NASM assembly.

Sweet is a small statically-typed, C-like language. The pipeline is a
linear fold: lexer -> parser -> importer -> type checker -> code
generator, which emits NASM assembly text. Only the build subcommand
invokes an external assembler and linker (nasm and ld).`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&searchRoot, "search-root", "", "module search root for import resolution (default: the source file's directory)")
}

// searchRoot is the directory `import a.b.c;` resolves against. Commands
// that touch the importer default it to the compiled file's own directory
// when left empty.
var searchRoot string

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
