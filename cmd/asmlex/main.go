// Command asmlex is the command-line entry point for the assembly lexer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/asmlex/pkg/config"
	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/help"
)

// Exit codes.
const (
	exitOK    = 0
	exitUsage = 1
	exitLex   = 2
)

// exitError carries a process exit code out of a command whose output has
// already been written.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type options struct {
	repl   bool
	tokens bool
	pretty bool
	format string
	prompt string

	cfg *config.Config
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	var exitErr *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exitErr):
		return exitErr.code
	default:
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitUsage
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "asmlex [file]",
		Short:         "Lexical front end for 6502-style assembly",
		Long:          help.QUICKREF,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.repl:
				return runREPL(cmd, opts)
			case opts.tokens:
				if len(args) == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "usage: asmlex --tokens <file|->")
					return &exitError{code: exitUsage}
				}
				return runScan(cmd, opts, args[0])
			}
			fmt.Fprint(cmd.ErrOrStderr(), help.QUICKREF)
			return &exitError{code: exitUsage}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable diagnostics instead of JSON")
	flags.StringVar(&opts.format, "format", "", "token output format: debug, json, or dump")
	root.Flags().BoolVarP(&opts.repl, "repl", "r", false, "scan lines interactively")
	root.Flags().BoolVarP(&opts.tokens, "tokens", "t", false, "print the tokens of the file argument")

	root.AddCommand(
		newScanCmd(opts),
		newCheckCmd(opts),
		newREPLCmd(opts),
		newConfigCmd(opts),
	)
	root.SetHelpCommand(newHelpCmd())
	return root
}

// loadConfig resolves file settings, then applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *options) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "")
		fmt.Fprintln(cmd.ErrOrStderr(), diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, opts.pretty))
		return &exitError{code: exitUsage}
	}

	if cmd.Flags().Changed("format") {
		if err := config.ValidateFormat(opts.format); err != nil {
			diag := diagnostics.MakeDiag(diagnostics.EUsage, err.Error(), nil, "")
			fmt.Fprintln(cmd.ErrOrStderr(), diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, opts.pretty))
			return &exitError{code: exitUsage}
		}
		cfg.Format = opts.format
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Pretty = opts.pretty
	}
	opts.cfg = cfg
	return nil
}
