package lexer

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/thomasrohde/asmlex/pkg/diagnostics"
	"github.com/thomasrohde/asmlex/pkg/mnemonic"
)

// helper to scan and fail on error
func mustScan(t *testing.T, source string) []Token {
	t.Helper()
	tokens, errs := Scan(source, WithFilename("test.s"))
	if len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	return tokens
}

// renders tokens as their String() forms for compact assertions
func render(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// checkAccounting verifies that every byte of source is covered by a token,
// by an error lexeme, or is a discarded character.
func checkAccounting(t *testing.T, source string, tokens []Token, errs []*LexError) {
	t.Helper()
	covered := make([]bool, len(source))
	prevEnd := 0
	for _, tok := range tokens {
		if tok.Offset < prevEnd {
			t.Fatalf("token %v at %d overlaps previous token ending at %d", tok, tok.Offset, prevEnd)
		}
		if tok.Length <= 0 || tok.Offset+tok.Length > len(source) {
			t.Fatalf("token %v has bad extent %d+%d for %d-byte input", tok, tok.Offset, tok.Length, len(source))
		}
		if got := source[tok.Offset : tok.Offset+tok.Length]; got != tok.Text {
			t.Fatalf("token text %q does not match source slice %q", tok.Text, got)
		}
		for i := tok.Offset; i < tok.Offset+tok.Length; i++ {
			covered[i] = true
		}
		prevEnd = tok.Offset + tok.Length
		if tok.Kind != KindNumber && prevEnd < len(source) {
			if r, _ := utf8.DecodeRuneInString(source[prevEnd:]); isAlphaNumeric(r) {
				t.Fatalf("identifier %v stops before alphanumeric rune %q", tok, r)
			}
		}
	}

	// Uncovered runs must consist of discard characters, or start with '$' or
	// a digit (an errored number lexeme).
	errLexemes := 0
	for i := 0; i < len(source); {
		if covered[i] {
			i++
			continue
		}
		r, size := rune(source[i]), 1
		if r >= 0x80 {
			r, size = utf8.DecodeRuneInString(source[i:])
		}
		if isAlpha(r) {
			t.Fatalf("alphabetic rune %q at %d not covered by any token", r, i)
		}
		if r == '$' || isDecimal(r) {
			errLexemes++
			i += size
			for i < len(source) && !covered[i] && isHex(rune(source[i])) {
				i++
			}
			continue
		}
		i += size
	}
	if errLexemes != len(errs) {
		t.Fatalf("found %d uncovered number lexemes but %d errors", errLexemes, len(errs))
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces nothing
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens, errs := Scan("")
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %v", tokens)
	}
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// ---------------------------------------------------------------------------
// Test: radix handling
// ---------------------------------------------------------------------------
func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		value uint32
	}{
		{"0", 0},
		{"255", 255},
		{"007", 7},
		{"$FF", 255},
		{"$ff", 255},
		{"$fF", 255},
		{"$0", 0},
		{"$10", 16},
		{"$DEADBEEF", 0xDEADBEEF},
		{"4294967295", 4294967295},
		{"$FFFFFFFF", 0xFFFFFFFF},
		{"$00000000FF", 255},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustScan(t, tt.input)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Kind != KindNumber {
				t.Errorf("expected KindNumber, got %v", tokens[0].Kind)
			}
			if tokens[0].Value != tt.value {
				t.Errorf("expected value %d, got %d", tt.value, tokens[0].Value)
			}
			if tokens[0].Text != tt.input {
				t.Errorf("expected text %q, got %q", tt.input, tokens[0].Text)
			}
		})
	}
}

func TestInvalidNumbers(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens string
		hint   string
	}{
		{"bare dollar", "$", "[]", "expected hexadecimal digits after '$'"},
		{"dollar then space", "$ ", "[]", "expected hexadecimal digits after '$'"},
		{"decimal overflow", "4294967296", "[]", "literal does not fit in 32 bits"},
		{"hex overflow", "$100000000", "[]", "literal does not fit in 32 bits"},
		{"non-hex after dollar", "$GG", "[Identifier(GG)]", "expected hexadecimal digits after '$'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Scan(tt.input)
			if got := render(tokens); got != tt.tokens {
				t.Errorf("tokens: got %s, want %s", got, tt.tokens)
			}
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d", len(errs))
			}
			if errs[0].Message != "invalid number" {
				t.Errorf("expected message %q, got %q", "invalid number", errs[0].Message)
			}
			if errs[0].Line != 1 {
				t.Errorf("expected line 1, got %d", errs[0].Line)
			}
			if errs[0].Diag.Hint != tt.hint {
				t.Errorf("expected hint %q, got %q", tt.hint, errs[0].Diag.Hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: hex numbers are only entered through '$'
// ---------------------------------------------------------------------------
func TestHexLettersStartIdentifiers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ff", "[Identifier(ff)]"},
		{"beef", "[Identifier(beef)]"},
		{"$beef", "[Number(48879)]"},
		{"12ab", "[Number(12), Identifier(ab)]"},
		{"$12abz", "[Number(4779), Identifier(z)]"},
		{"$ab12", "[Number(43794)]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := render(mustScan(t, tt.input)); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: keyword matching
// ---------------------------------------------------------------------------
func TestKeywordsIgnoreCase(t *testing.T) {
	for _, input := range []string{"ADC", "adc", "Adc", "aDC"} {
		t.Run(input, func(t *testing.T) {
			tokens := mustScan(t, input)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Kind != KindKeyword || tokens[0].Op != mnemonic.ADC {
				t.Errorf("expected Keyword(ADC), got %v", tokens[0])
			}
			if tokens[0].Text != input {
				t.Errorf("expected text %q, got %q", input, tokens[0].Text)
			}
		})
	}
}

func TestEveryMnemonicIsKeyword(t *testing.T) {
	for _, op := range mnemonic.All() {
		tokens := mustScan(t, strings.ToLower(op.String()))
		if len(tokens) != 1 || tokens[0].Kind != KindKeyword || tokens[0].Op != op {
			t.Errorf("%s: got %s", op, render(tokens))
		}
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"adcx", "[Identifier(adcx)]"},
		{"ADC1", "[Identifier(ADC1)]"},
		{"ad", "[Identifier(ad)]"},
		{"X", "[Identifier(X)]"},
		{"Loop", "[Identifier(Loop)]"},
		{"lda2", "[Identifier(lda2)]"},
		{"lda 2", "[Keyword(LDA), Number(2)]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := render(mustScan(t, tt.input)); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCustomTable(t *testing.T) {
	table := mnemonic.NewTable(mnemonic.ADC)
	tokens, errs := Scan("adc lda", WithTable(table))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := render(tokens); got != "[Keyword(ADC), Identifier(lda)]" {
		t.Errorf("got %s", got)
	}
}

func TestNilTableKeepsDefault(t *testing.T) {
	tokens, _ := Scan("lda", WithTable(nil))
	if got := render(tokens); got != "[Keyword(LDA)]" {
		t.Errorf("got %s", got)
	}
}

// ---------------------------------------------------------------------------
// Test: discarded characters
// ---------------------------------------------------------------------------
func TestDiscardedCharacters(t *testing.T) {
	inputs := []string{" ", "\t", "\r\n", ",", "#", "(", ")", ";", "+-*/", ":", "_", "%01"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens, errs := Scan(input)
			if len(errs) != 0 {
				t.Errorf("expected no errors for %q, got %v", input, errs)
			}
			if input == "%01" {
				if got := render(tokens); got != "[Number(1)]" {
					t.Errorf("got %s", got)
				}
				return
			}
			if len(tokens) != 0 {
				t.Errorf("expected no tokens for %q, got %s", input, render(tokens))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: whole lines
// ---------------------------------------------------------------------------
func TestMixedLines(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"LDA $10,X", "[Keyword(LDA), Number(16), Identifier(X)]"},
		{"LDA $10,X\n", "[Keyword(LDA), Number(16), Identifier(X)]"},
		{"  sta ($20),y", "[Keyword(STA), Number(32), Identifier(y)]"},
		{"loop: dex", "[Identifier(loop), Keyword(DEX)]"},
		{"bne loop ; again", "[Keyword(BNE), Identifier(loop), Identifier(again)]"},
		{"lda #$FF", "[Keyword(LDA), Number(255)]"},
		{"jmp ($FFFC)", "[Keyword(JMP), Number(65532)]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := render(mustScan(t, tt.input)); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestErrorsDoNotHaltScan(t *testing.T) {
	tokens, errs := Scan("lda $ ; $100000000 sta $20")
	if got := render(tokens); got != "[Keyword(LDA), Keyword(STA), Number(32)]" {
		t.Errorf("got %s", got)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Diag.Span.StartCol != 5 {
		t.Errorf("first error col: got %d, want 5", errs[0].Diag.Span.StartCol)
	}
	if errs[1].Diag.Span.StartCol != 9 {
		t.Errorf("second error col: got %d, want 9", errs[1].Diag.Span.StartCol)
	}
}

func TestConcatenationWithWhitespace(t *testing.T) {
	left, right := "LDA $10,X", "adc 7 beef"
	leftTokens := mustScan(t, left)
	rightTokens := mustScan(t, right)
	both := mustScan(t, left+" "+right)

	if got, want := render(both), render(append(leftTokens, rightTokens...)); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// ---------------------------------------------------------------------------
// Test: line and column tracking
// ---------------------------------------------------------------------------
func TestLineTracking(t *testing.T) {
	tokens, errs := Scan("1\n$\nlda", WithFilename("prog.s"))
	if got := render(tokens); got != "[Number(1), Keyword(LDA)]" {
		t.Fatalf("got %s", got)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Line != 2 {
		t.Errorf("error line: got %d, want 2", errs[0].Line)
	}
	if errs[0].Error() != "Line 2: invalid number" {
		t.Errorf("Error(): got %q", errs[0].Error())
	}
	if tokens[1].Span.StartLine != 3 || tokens[1].Span.StartCol != 1 {
		t.Errorf("lda span: got %+v", tokens[1].Span)
	}
	if tokens[1].Span.File != "prog.s" {
		t.Errorf("span file: got %q", tokens[1].Span.File)
	}
}

func TestTrailingNewlineKeepsLine(t *testing.T) {
	_, errs := Scan("lda $\n")
	if len(errs) != 1 || errs[0].Line != 1 {
		t.Fatalf("expected one error on line 1, got %v", errs)
	}
}

func TestSpanEndPositions(t *testing.T) {
	tokens := mustScan(t, "lda $FF")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	lda, num := tokens[0].Span, tokens[1].Span
	if lda.StartCol != 1 || lda.EndCol != 4 {
		t.Errorf("lda span: got %+v", lda)
	}
	if num.StartCol != 5 || num.EndCol != 8 {
		t.Errorf("$FF span: got %+v", num)
	}
	if tokens[1].Offset != 4 || tokens[1].Length != 3 {
		t.Errorf("$FF extent: got %d+%d", tokens[1].Offset, tokens[1].Length)
	}
}

// ---------------------------------------------------------------------------
// Test: multi-byte input
// ---------------------------------------------------------------------------
func TestUnicodeIdentifiers(t *testing.T) {
	tokens := mustScan(t, "überlauf ñ1 λx")
	if got := render(tokens); got != "[Identifier(überlauf), Identifier(ñ1), Identifier(λx)]" {
		t.Errorf("got %s", got)
	}
	if tokens[1].Span.StartCol != 10 {
		t.Errorf("columns count runes: got %d, want 10", tokens[1].Span.StartCol)
	}
}

func TestAlphabeticProperty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"combining vowel signs", "हिंदी", "[Identifier(हिंदी)]"},
		{"letter number", "Ⅻ", "[Identifier(Ⅻ)]"},
		{"letter number continues", "xⅣ lda", "[Identifier(xⅣ), Keyword(LDA)]"},
		{"other number continues", "a² ²", "[Identifier(a²)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Scan(tt.input)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if got := render(tokens); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			checkAccounting(t, tt.input, tokens, errs)
		})
	}
}

func TestNonLetterRunesDiscarded(t *testing.T) {
	tokens, errs := Scan("→ lda ✓ \xff")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := render(tokens); got != "[Keyword(LDA)]" {
		t.Errorf("got %s", got)
	}
}

// ---------------------------------------------------------------------------
// Test: error reporting side channel
// ---------------------------------------------------------------------------
func TestReporterSeesErrorsInOrder(t *testing.T) {
	var seen []string
	_, errs := Scan("$ 1\n99999999999", WithReporter(func(e *LexError) {
		seen = append(seen, e.Error())
	}))
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	want := []string{"Line 1: invalid number", "Line 2: invalid number"}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", seen, want)
	}
}

func TestDiagnosticsFromErrors(t *testing.T) {
	if Diagnostics(nil) != nil {
		t.Error("expected nil diagnostics for no errors")
	}
	_, errs := Scan("$", WithFilename("x.s"))
	diags := Diagnostics(errs)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Code != diagnostics.ELex {
		t.Errorf("code: got %q", diags[0].Code)
	}
	if diags[0].Span == nil || diags[0].Span.String() != "x.s:1:1" {
		t.Errorf("span: got %v", diags[0].Span)
	}
}

// ---------------------------------------------------------------------------
// Test: internal invariants
// ---------------------------------------------------------------------------
func TestPeekPastEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	s := newScanner("")
	s.peek()
}

func TestAccounting(t *testing.T) {
	inputs := []string{
		"",
		"LDA $10,X",
		"$GG",
		"$$$ 12$ab",
		"4294967296 lda",
		"héllo wörld 42",
		"\xff\xfe$1",
	}
	for _, input := range inputs {
		tokens, errs := Scan(input)
		checkAccounting(t, input, tokens, errs)
	}
}

func TestKindString(t *testing.T) {
	if KindKeyword.String() != "keyword" {
		t.Errorf("got %q", KindKeyword.String())
	}
	if Kind(9).String() != "Kind(9)" {
		t.Errorf("got %q", Kind(9).String())
	}
}

func TestConcurrentScans(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens, errs := Scan("LDA $10,X")
			if len(errs) != 0 || render(tokens) != "[Keyword(LDA), Number(16), Identifier(X)]" {
				t.Errorf("got %s, %v", render(tokens), errs)
			}
		}()
	}
	wg.Wait()
}
