// Package help holds the asmlex quick reference and help topics.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/thomasrohde/asmlex/pkg/mnemonic"
)

// Version is reported in the quick reference.
const Version = "v0.1"

// QUICKREF is printed by `asmlex help` with no topic.
const QUICKREF = `asmlex ` + Version + ` - lexical front end for 6502-style assembly

Usage:
  asmlex scan <file|->      print the tokens of a source file
  asmlex check <file|->     report lexical errors only
  asmlex repl               scan lines interactively
  asmlex help [topic]       show a help topic or a mnemonic

Topics: syntax, numbers, mnemonics, diagnostics, repl, examples
Any mnemonic (e.g. "asmlex help lda") prints its summary.
`

// TopicList is the ordered list of help topic names.
var TopicList = []string{"syntax", "numbers", "mnemonics", "diagnostics", "repl", "examples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `Tokens
  Number      decimal (255) or hexadecimal with a '$' prefix ($FF)
  Identifier  a letter followed by letters and digits (loop, X, buf2)
  Keyword     an identifier that names a mnemonic, in any case (LDA, lda)

Everything else (spaces, commas, '#', parentheses, ';', ':') is skipped.
Identifiers and numbers are matched greedily: "adcx" is one identifier.
`,
	"numbers": `Numbers
  Decimal literals start with a digit: 0, 42, 007.
  Hexadecimal literals start with '$': $0, $ff, $DEADBEEF.
  A letter never starts a number, so "ff" is an identifier.
  Values must fit in 32 bits (0 to 4294967295); anything larger, or a '$'
  with no hex digits after it, is reported as "invalid number".
`,
	"mnemonics": `Mnemonics
  The 56 official 6502 instructions are recognized as keywords.
  Run "asmlex help --index mnemonics" for the full list, or
  "asmlex help <mnemonic>" for one of them.
  A project .asmlex.json may restrict the set with "mnemonics": [...].
`,
	"diagnostics": `Diagnostics
  E_LEX     invalid number (empty '$' literal or value over 32 bits)
  E_IO      a source file could not be read
  E_USAGE   bad command line
  E_CONFIG  a config file could not be loaded

Scanning never stops at an error; every error on every line is reported.
Exit codes: 0 ok, 1 usage or I/O failure, 2 lexical errors.
`,
	"repl": `REPL
  Each line is scanned as soon as it is entered.
  Errors print as "Error: Line N: message", followed by "Error occurred".
  :help [topic]   show help
  :ops <query>    fuzzy-search mnemonics
  :quit           leave (end of input works too)
`,
	"examples": `Examples
  LDA $10,X      [Keyword(LDA), Number(16), Identifier(X)]
  adc #255       [Keyword(ADC), Number(255)]
  $GG            error: invalid number, then [Identifier(GG)]
`,
}

// MatchTopic resolves a topic name. It accepts an exact topic, a mnemonic,
// or a topic prefix, in that order.
func MatchTopic(topic string) (string, string, error) {
	key := strings.ToLower(strings.TrimSpace(topic))
	if content, ok := Topics[key]; ok {
		return key, content, nil
	}

	if op, ok := mnemonic.Parse(key); ok {
		return op.String(), describe(op), nil
	}

	if key != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, key) {
				return name, Topics[name], nil
			}
		}
	}

	if suggestions := suggest(key); len(suggestions) > 0 {
		return "", "", fmt.Errorf("unknown help topic %q (did you mean: %s?)", topic, strings.Join(suggestions, ", "))
	}
	return "", "", fmt.Errorf("unknown help topic %q", topic)
}

func describe(op mnemonic.Op) string {
	return fmt.Sprintf("%s: %s\n", op, op.Describe())
}

func suggest(key string) []string {
	if key == "" {
		return nil
	}
	candidates := append([]string{}, TopicList...)
	for _, op := range mnemonic.All() {
		candidates = append(candidates, strings.ToLower(op.String()))
	}
	ranks := fuzzy.RankFindNormalizedFold(key, candidates)
	sort.Stable(ranks)

	var out []string
	for _, r := range ranks {
		out = append(out, r.Target)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// MnemonicIndex lists every mnemonic with its summary.
func MnemonicIndex() string {
	var b strings.Builder
	all := mnemonic.All()
	for _, op := range all {
		fmt.Fprintf(&b, "  %-4s %s\n", op, op.Describe())
	}
	fmt.Fprintf(&b, "\nTotal: %d mnemonics\n", len(all))
	return b.String()
}
