package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kvalavik/sweetc/internal/codegen"
	"github.com/spf13/cobra"
)

var (
	buildOutput     string
	buildAsFlags    string
	buildRun        bool
	buildKeepBuild  bool
	buildRuntimeObj string
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a Sweet file and link it into an executable",
	Long: `Run the full pipeline and then hand the emitted NASM text to an
external assembler and linker to produce a native executable.

This is the only sweetc subcommand that shells out to another process
(nasm, then ld) - the compiler core itself never does. Assembling and
linking needs nasm and ld on PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "path of the produced executable (default: the input file's base name)")
	buildCmd.Flags().StringVar(&buildAsFlags, "asflags", "", "extra flags passed through to nasm, space-separated")
	buildCmd.Flags().BoolVar(&buildRun, "run", false, "run the produced executable after a successful build")
	buildCmd.Flags().BoolVar(&buildKeepBuild, "keep-build-dir", false, "keep the intermediate .asm/.o files instead of removing them")
	buildCmd.Flags().StringVar(&buildRuntimeObj, "runtime", "", "path to a runtime object/archive to link in alongside the generated code")
}

func runBuild(cmd *cobra.Command, args []string) error {
	filename := args[0]
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	prog, err := parseProgram(string(data), filename)
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

	buildDir, err := os.MkdirTemp("", "sweetc-build-")
	if err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	if !buildKeepBuild {
		defer os.RemoveAll(buildDir)
	} else {
		fmt.Fprintf(os.Stderr, "build artifacts kept in %s\n", buildDir)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	asmPath := filepath.Join(buildDir, base+".asm")
	objPath := filepath.Join(buildDir, base+".o")
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", asmPath, err)
	}

	exePath := buildOutput
	if exePath == "" {
		exePath = base
	}

	nasmArgs := append([]string{"-f", "elf64", asmPath, "-o", objPath}, strings.Fields(buildAsFlags)...)
	if err := runTool("nasm", nasmArgs...); err != nil {
		return err
	}

	ldArgs := []string{"-o", exePath, objPath}
	if buildRuntimeObj != "" {
		ldArgs = append(ldArgs, buildRuntimeObj)
	}
	if err := runTool("ld", ldArgs...); err != nil {
		return err
	}

	fmt.Printf("built %s\n", exePath)

	if buildRun {
		runPath, err := filepath.Abs(exePath)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", exePath, err)
		}
		return runTool(runPath)
	}
	return nil
}

// runTool execs name with args, connecting its stdio to ours, and wraps a
// non-zero exit or missing-binary error with the command line that failed.
func runTool(name string, args ...string) error {
	c := exec.Command(name, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
