// Package driver ties the lexer, keyword table, and formatter together for
// the command line and the REPL.
package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomasrohde/asmlex/pkg/config"
	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/formatter"
	"github.com/thomasrohde/asmlex/pkg/lexer"
	"github.com/thomasrohde/asmlex/pkg/mnemonic"
)

// Result holds the outcome of scanning one buffer.
type Result struct {
	Tokens      []lexer.Token
	Diagnostics []diagnostics.Diagnostic
}

// HasErrors reports whether the scan produced any diagnostics. Callers
// should not trust Tokens as a valid program when it does.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Driver scans source buffers with a fixed keyword table and output format.
type Driver struct {
	table  *mnemonic.Table
	format string
	report func(*lexer.LexError)
}

// Option is a functional option for configuring the Driver.
type Option func(*Driver)

// WithTable sets the keyword table.
func WithTable(t *mnemonic.Table) Option {
	return func(d *Driver) {
		d.table = t
	}
}

// WithFormat sets the output format used by Format.
func WithFormat(format string) Option {
	return func(d *Driver) {
		d.format = format
	}
}

// WithReporter sets a callback invoked as each lex error is detected.
func WithReporter(fn func(*lexer.LexError)) Option {
	return func(d *Driver) {
		d.report = fn
	}
}

// WithConfig applies the table and format from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(d *Driver) {
		if cfg == nil {
			return
		}
		if cfg.Table != nil {
			d.table = cfg.Table
		}
		if cfg.Format != "" {
			d.format = cfg.Format
		}
	}
}

// New creates a Driver with the given options.
// By default the full mnemonic table and the debug format are used.
func New(opts ...Option) *Driver {
	d := &Driver{
		table:  mnemonic.Default(),
		format: formatter.FormatDebug,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scan tokenizes source. It always returns a result; lexical errors are
// carried as diagnostics.
func (d *Driver) Scan(source, filename string) *Result {
	opts := []lexer.Option{lexer.WithTable(d.table), lexer.WithFilename(filename)}
	if d.report != nil {
		opts = append(opts, lexer.WithReporter(d.report))
	}
	tokens, errs := lexer.Scan(source, opts...)
	return &Result{Tokens: tokens, Diagnostics: lexer.Diagnostics(errs)}
}

// Run scans source and returns a *DiagnosticError alongside the result when
// the scan produced errors. It returns ctx.Err() without scanning once ctx
// is done.
func (d *Driver) Run(ctx context.Context, source, filename string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := d.Scan(source, filename)
	if result.HasErrors() {
		return result, &DiagnosticError{Diagnostics: result.Diagnostics}
	}
	return result, nil
}

// Format renders tokens in the driver's output format.
func (d *Driver) Format(tokens []lexer.Token) (string, error) {
	return formatter.Format(tokens, d.format)
}

// Table returns the keyword table the driver scans with.
func (d *Driver) Table() *mnemonic.Table {
	return d.table
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, diagnostics.FormatLine(d))
	}
	return strings.Join(msgs, "; ")
}
