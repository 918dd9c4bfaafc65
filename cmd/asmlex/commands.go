package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/asmlex/pkg/config"
	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/driver"
	"github.com/thomasrohde/asmlex/pkg/help"
	"github.com/thomasrohde/asmlex/pkg/repl"
)

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file|->",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, args[0])
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|->",
		Short: "Report lexical errors without printing tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}
}

func newREPLCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Scan lines interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.prompt, "prompt", config.DefaultPrompt, "prompt printed before each line")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, opts)
		},
	}
}

func newHelpCmd() *cobra.Command {
	var showIndex bool
	cmd := &cobra.Command{
		Use:   "help [topic]",
		Short: "Show the quick reference, a help topic, or a mnemonic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := ""
			if len(args) > 0 {
				topic = args[0]
			}
			return runHelp(cmd, topic, showIndex)
		},
	}
	cmd.Flags().BoolVar(&showIndex, "index", false, "list every entry of the topic")
	return cmd
}

func runScan(cmd *cobra.Command, opts *options, file string) error {
	source, filename, err := readSource(cmd, opts, file)
	if err != nil {
		return err
	}

	drv := driver.New(driver.WithConfig(opts.cfg))
	result, err := drv.Run(cmd.Context(), source, filename)
	var diagErr *driver.DiagnosticError
	if err != nil && !errors.As(err, &diagErr) {
		return err
	}

	out, fmtErr := drv.Format(result.Tokens)
	if fmtErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error formatting tokens: %s\n", fmtErr)
		return &exitError{code: exitUsage}
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))

	if diagErr != nil {
		return reportDiagnostics(cmd, opts, diagErr)
	}
	return nil
}

func runCheck(cmd *cobra.Command, opts *options, file string) error {
	source, filename, err := readSource(cmd, opts, file)
	if err != nil {
		return err
	}

	_, err = driver.New(driver.WithConfig(opts.cfg)).Run(cmd.Context(), source, filename)
	var diagErr *driver.DiagnosticError
	if errors.As(err, &diagErr) {
		return reportDiagnostics(cmd, opts, diagErr)
	}
	if err != nil {
		return err
	}

	if opts.cfg.Pretty {
		fmt.Fprintln(cmd.OutOrStdout(), "No errors found.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
	}
	return nil
}

// reportDiagnostics writes the diagnostics carried by err to stderr and maps
// them to the lexical-error exit code.
func reportDiagnostics(cmd *cobra.Command, opts *options, err *driver.DiagnosticError) error {
	fmt.Fprintln(cmd.ErrOrStderr(), diagnostics.FormatDiagnostics(err.Diagnostics, opts.cfg.Pretty))
	return &exitError{code: exitLex}
}

func runREPL(cmd *cobra.Command, opts *options) error {
	replOpts := []repl.Option{repl.WithConfig(opts.cfg)}
	if f := cmd.Flags().Lookup("prompt"); f != nil && f.Changed {
		replOpts = append(replOpts, repl.WithPrompt(opts.prompt))
	}
	return repl.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), replOpts...)
}

type configView struct {
	Source    string   `json:"source,omitempty"`
	Prompt    string   `json:"prompt"`
	Format    string   `json:"format"`
	Pretty    bool     `json:"pretty"`
	Mnemonics []string `json:"mnemonics"`
}

func runConfig(cmd *cobra.Command, opts *options) error {
	cfg := opts.cfg
	b, _ := json.MarshalIndent(configView{
		Source:    cfg.Source,
		Prompt:    cfg.Prompt,
		Format:    cfg.Format,
		Pretty:    cfg.Pretty,
		Mnemonics: cfg.Mnemonics(),
	}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func runHelp(cmd *cobra.Command, topic string, showIndex bool) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if showIndex {
		if topic == "" {
			fmt.Fprintln(stderr, "error: --index requires a topic (e.g., asmlex help mnemonics --index)")
			return &exitError{code: exitUsage}
		}
		if topic != "mnemonics" {
			fmt.Fprintln(stderr, "error: --index is only supported for the mnemonics topic")
			return &exitError{code: exitUsage}
		}
		fmt.Fprint(stdout, help.MnemonicIndex())
		return nil
	}

	if topic == "" {
		fmt.Fprint(stdout, help.QUICKREF)
		return nil
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return &exitError{code: exitUsage}
	}
	fmt.Fprint(stdout, content)
	return nil
}

// readSource reads file, or standard input for "-". Read failures are
// reported as E_IO diagnostics.
func readSource(cmd *cobra.Command, opts *options, file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error reading stdin: %s\n", err)
			return "", "", &exitError{code: exitUsage}
		}
		return string(data), "<stdin>", nil
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(cmd.ErrOrStderr(), diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, opts.cfg.Pretty))
		return "", "", &exitError{code: exitUsage}
	}
	return string(source), file, nil
}
