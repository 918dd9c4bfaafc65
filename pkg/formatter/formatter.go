// Package formatter renders token sequences for display.
package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/thomasrohde/asmlex/pkg/lexer"
	"github.com/thomasrohde/asmlex/pkg/source"
)

// Output formats accepted by Format.
const (
	FormatDebug = "debug"
	FormatJSON  = "json"
	FormatDump  = "dump"
)

// Formats lists the accepted output format names.
var Formats = []string{FormatDebug, FormatJSON, FormatDump}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Format renders tokens in the named format.
func Format(tokens []lexer.Token, format string) (string, error) {
	switch format {
	case "", FormatDebug:
		return Debug(tokens), nil
	case FormatJSON:
		b, err := JSON(tokens)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatDump:
		return Dump(tokens), nil
	default:
		return "", fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Debug renders tokens as a bracketed list, e.g.
// [Keyword(LDA), Number(16), Identifier(X)].
func Debug(tokens []lexer.Token) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tok.String())
	}
	b.WriteByte(']')
	return b.String()
}

type jsonToken struct {
	Kind  string      `json:"kind"`
	Text  string      `json:"text"`
	Value *uint32     `json:"value,omitempty"`
	Op    string      `json:"op,omitempty"`
	Span  source.Span `json:"span"`
}

// JSON renders tokens as a compact JSON array.
func JSON(tokens []lexer.Token) ([]byte, error) {
	out := make([]jsonToken, len(tokens))
	for i, tok := range tokens {
		jt := jsonToken{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
		}
		switch tok.Kind {
		case lexer.KindNumber:
			v := tok.Value
			jt.Value = &v
		case lexer.KindKeyword:
			jt.Op = tok.Op.String()
		}
		out[i] = jt
	}
	return json.Marshal(out)
}

// Dump renders the full token structs, for debugging.
func Dump(tokens []lexer.Token) string {
	return dumper.Sdump(tokens)
}
