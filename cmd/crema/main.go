// Command crema is the Crema compiler driver (spec §6 "Driver CLI"): it
// owns the parts of the pipeline the core explicitly leaves to an external
// collaborator — reading the input file, invoking internal/parser,
// internal/analyzer and internal/emitter in sequence, and reporting
// results — while the core packages stay driver-agnostic.
//
// Grounded on sentra's cmd/sentra CLI conventions (a single root command
// with flag-driven stop points) but built on github.com/spf13/cobra rather
// than sentra's hand-rolled os.Args/alias-map parser, since cobra is what
// the rest of the retrieval pack reaches for whenever a repo's CLI surface
// grows past a handful of flags.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ainfosec/crema/internal/analyzer"
	"github.com/ainfosec/crema/internal/ast"
	"github.com/ainfosec/crema/internal/emitter"
	"github.com/ainfosec/crema/internal/parser"
)

var (
	inputPath    string
	stopAfterP   bool
	stopAfterS   bool
	irOutputPath string
	outputName   string
	verbose      bool
)

func main() {
	root := &cobra.Command{
		Use:           "crema",
		Short:         "Compile a Crema source file to LLVM IR",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.Flags().StringVarP(&inputPath, "file", "f", "", "input Crema source file")
	root.Flags().BoolVarP(&stopAfterP, "parse-only", "p", false, "stop after parse, print the AST")
	root.Flags().BoolVarP(&stopAfterS, "semantic-only", "s", false, "stop after semantic analysis")
	root.Flags().StringVarP(&irOutputPath, "emit-llvm", "S", "", "write textual LLVM IR to this path")
	root.Flags().StringVarP(&outputName, "output", "o", "a.out", "output program name")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump the AST and size information")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if inputPath == "" {
		return fmt.Errorf("crema: -f PATH is required")
	}
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("crema: reading %s: %w", inputPath, err)
	}

	unitID := uuid.New()
	colorize := isatty.IsTerminal(os.Stdout.Fd())
	if verbose {
		logf(colorize, "compilation unit %s: %s", unitID, humanize.Bytes(uint64(len(src))))
	}

	lex := parser.NewLexer(string(src))
	tokens := lex.ScanTokens()
	if errs := lex.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}

	p := parser.NewParser(tokens)
	root := p.Parse()
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}

	if stopAfterP || verbose {
		ast.Print(os.Stdout, root)
	}
	if stopAfterP {
		return nil
	}

	ctx, ok := analyzer.Analyze(root)
	for _, d := range ctx.Sink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if !ok {
		os.Exit(1)
	}
	if stopAfterS {
		return nil
	}

	module, err := emitter.Emit(root, unitID.String())
	if err != nil {
		log.Fatalf("crema: %v", err)
	}

	text := module.String()
	if irOutputPath != "" {
		if err := os.WriteFile(irOutputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("crema: writing %s: %w", irOutputPath, err)
		}
		if verbose {
			logf(colorize, "wrote %s (%s)", irOutputPath, humanize.Bytes(uint64(len(text))))
		}
	} else {
		fmt.Print(text)
	}

	_ = outputName // native codegen/linking from the .ll text is outside this core's scope (spec §1)
	return nil
}

func logf(colorize bool, format string, args ...interface{}) {
	if colorize {
		fmt.Fprintf(os.Stderr, "\x1b[2m"+format+"\x1b[0m\n", args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
