// Package lexer implements the assembly source tokenizer.
package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/mnemonic"
	"github.com/thomasrohde/asmlex/pkg/source"
)

// Kind identifies which shape a Token has.
type Kind int

const (
	KindNumber Kind = iota
	KindIdentifier
	KindKeyword
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindIdentifier:
		return "identifier"
	case KindKeyword:
		return "keyword"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token represents a single lexer token. Value is set only for numbers and
// Op only for keywords; Text always holds the lexeme as written.
type Token struct {
	Kind   Kind
	Value  uint32
	Text   string
	Op     mnemonic.Op
	Offset int
	Length int
	Span   source.Span
}

func (t Token) String() string {
	switch t.Kind {
	case KindNumber:
		return fmt.Sprintf("Number(%d)", t.Value)
	case KindKeyword:
		return fmt.Sprintf("Keyword(%s)", t.Op)
	default:
		return fmt.Sprintf("Identifier(%s)", t.Text)
	}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Line    int
	Message string
	Diag    diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
}

const msgInvalidNumber = "invalid number"

// Option configures a scan.
type Option func(*scanner)

// WithTable sets the keyword table identifiers are matched against.
func WithTable(t *mnemonic.Table) Option {
	return func(s *scanner) {
		if t != nil {
			s.table = t
		}
	}
}

// WithFilename sets the file name recorded in token and error spans.
func WithFilename(name string) Option {
	return func(s *scanner) {
		s.filename = name
	}
}

// WithReporter registers fn to be called with each error as soon as it is
// detected, before Scan returns.
func WithReporter(fn func(*LexError)) Option {
	return func(s *scanner) {
		s.report = fn
	}
}

type scanner struct {
	source   string
	filename string
	table    *mnemonic.Table
	report   func(*LexError)
	pos      int
	line     int
	col      int

	tokens []Token
	errs   []*LexError
}

func newScanner(src string, opts ...Option) *scanner {
	s := &scanner{
		source: src,
		table:  mnemonic.Default(),
		line:   1,
		col:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

// peek returns the next rune without consuming it. Callers must check atEnd
// first.
func (s *scanner) peek() rune {
	if s.atEnd() {
		panic("lexer: peek past end of input")
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	return r
}

func (s *scanner) advance() rune {
	if s.atEnd() {
		panic("lexer: advance past end of input")
	}
	r, size := utf8.DecodeRuneInString(s.source[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) span(startLine, startCol int) source.Span {
	return source.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func isDecimal(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHex(r rune) bool {
	return isDecimal(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// isAlpha reports whether r has the Unicode Alphabetic property: letters,
// letter numbers such as Ⅻ, and the combining vowel signs of scripts like
// Devanagari.
func isAlpha(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_Alphabetic, r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || unicode.IsNumber(r)
}

func (s *scanner) scanNumber(radix int) (Token, *LexError) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	inRun := isDecimal
	if radix == 16 {
		s.advance() // consume '$'
		inRun = isHex
	}

	digitsStart := s.pos
	for !s.atEnd() && inRun(s.peek()) {
		s.advance()
	}
	digits := s.source[digitsStart:s.pos]

	n, err := strconv.ParseUint(digits, radix, 32)
	if err != nil {
		hint := fmt.Sprintf("malformed base-%d literal %q", radix, digits)
		if digits == "" {
			hint = "expected hexadecimal digits after '$'"
		} else if errors.Is(err, strconv.ErrRange) {
			hint = "literal does not fit in 32 bits"
		}
		return Token{}, s.lexError(startLine, startCol, msgInvalidNumber, hint)
	}

	return Token{
		Kind:   KindNumber,
		Value:  uint32(n),
		Text:   s.source[startPos:s.pos],
		Offset: startPos,
		Length: s.pos - startPos,
		Span:   s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	tok := Token{
		Kind:   KindIdentifier,
		Text:   text,
		Offset: startPos,
		Length: s.pos - startPos,
		Span:   s.span(startLine, startCol),
	}
	if op, ok := s.table.Lookup(text); ok {
		tok.Kind = KindKeyword
		tok.Op = op
	}
	return tok
}

func (s *scanner) lexError(line, col int, msg, hint string) *LexError {
	span := s.span(line, col)
	return &LexError{
		Line:    line,
		Message: msg,
		Diag:    diagnostics.MakeDiag(diagnostics.ELex, msg, &span, hint),
	}
}

// next scans one lexeme. It returns ok=false when the character under the
// cursor was discarded.
func (s *scanner) next() (tok Token, lexErr *LexError, ok bool) {
	ch := s.peek()

	switch {
	case ch == '$':
		tok, lexErr = s.scanNumber(16)
		return tok, lexErr, true
	case isDecimal(ch):
		tok, lexErr = s.scanNumber(10)
		return tok, lexErr, true
	case isAlpha(ch):
		return s.scanIdentOrKeyword(), nil, true
	}

	s.advance()
	return Token{}, nil, false
}

func (s *scanner) run() {
	for !s.atEnd() {
		tok, lexErr, ok := s.next()
		switch {
		case !ok:
		case lexErr != nil:
			s.errs = append(s.errs, lexErr)
			if s.report != nil {
				s.report(lexErr)
			}
		default:
			s.tokens = append(s.tokens, tok)
		}
	}
}

// Scan breaks source into tokens. Malformed numbers are collected as errors
// and scanning resumes after them; Scan itself never fails.
func Scan(source string, opts ...Option) ([]Token, []*LexError) {
	s := newScanner(source, opts...)
	s.run()
	return s.tokens, s.errs
}

// Diagnostics extracts the diagnostics carried by errs.
func Diagnostics(errs []*LexError) []diagnostics.Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	diags := make([]diagnostics.Diagnostic, len(errs))
	for i, e := range errs {
		diags[i] = e.Diag
	}
	return diags
}
