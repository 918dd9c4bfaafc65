// Package repl implements the interactive read-scan-print loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thomasrohde/asmlex/pkg/config"
	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/driver"
	"github.com/thomasrohde/asmlex/pkg/help"
	"github.com/thomasrohde/asmlex/pkg/lexer"
)

// Option configures a REPL session.
type Option func(*session)

// WithConfig applies prompt, format, and keyword table settings.
func WithConfig(cfg *config.Config) Option {
	return func(s *session) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithPrompt overrides the prompt.
func WithPrompt(prompt string) Option {
	return func(s *session) {
		s.prompt = &prompt
	}
}

type session struct {
	cfg    *config.Config
	prompt *string
	out    io.Writer
	drv    *driver.Driver
}

var errQuit = errors.New("quit")

// Run reads lines from in until end of input, ctx is done, or :quit, and
// writes each line's tokens or errors to out. A line is scanned whole,
// including its terminator.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) error {
	s := &session{cfg: config.Default(), out: out}
	for _, opt := range opts {
		opt(s)
	}
	prompt := s.cfg.Prompt
	if s.prompt != nil {
		prompt = *s.prompt
	}
	s.drv = driver.New(driver.WithConfig(s.cfg), driver.WithReporter(s.reportError))

	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, prompt)

		line, err := reader.ReadString('\n')
		if line != "" {
			if herr := s.handle(line); herr != nil {
				if errors.Is(herr, errQuit) {
					return nil
				}
				return herr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", err)
			return err
		}
	}
}

func (s *session) reportError(e *lexer.LexError) {
	fmt.Fprintf(s.out, "Error: %s\n", diagnostics.FormatLine(e.Diag))
}

// commands lists the meta-command names. Any other line, including one
// starting with ':', is scanned.
var commands = map[string]bool{
	"q": true, "quit": true, "exit": true,
	"help": true, "h": true,
	"ops": true,
}

func (s *session) handle(line string) error {
	if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, ":") {
		name, _, _ := strings.Cut(trimmed[1:], " ")
		if commands[name] {
			return s.command(trimmed[1:])
		}
	}

	result := s.drv.Scan(line, "<stdin>")
	if result.HasErrors() {
		fmt.Fprintln(s.out, "Error occurred")
		return nil
	}
	formatted, err := s.drv.Format(result.Tokens)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %s\n", err)
		return nil
	}
	fmt.Fprintln(s.out, strings.TrimRight(formatted, "\n"))
	return nil
}

func (s *session) command(cmd string) error {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit", "exit":
		return errQuit
	case "help", "h":
		if arg == "" {
			fmt.Fprint(s.out, help.QUICKREF)
			return nil
		}
		_, content, err := help.MatchTopic(arg)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %s\n", err)
			return nil
		}
		fmt.Fprint(s.out, content)
	case "ops":
		if arg == "" {
			fmt.Fprintln(s.out, "Error: usage: :ops <query>")
			return nil
		}
		matches := s.drv.Table().Suggest(arg)
		if len(matches) == 0 {
			fmt.Fprintf(s.out, "no mnemonics match %q\n", arg)
			return nil
		}
		for _, op := range matches {
			fmt.Fprintf(s.out, "%-4s %s\n", op, op.Describe())
		}
	}
	return nil
}
