// Package mnemonic defines the closed set of recognized instruction mnemonics
// and the read-only keyword table the lexer matches identifiers against.
package mnemonic

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Op identifies one instruction mnemonic.
type Op uint8

const (
	// Invalid is the zero Op; it never appears in a table.
	Invalid Op = iota

	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	opCount
)

type opInfo struct {
	name string
	desc string
}

var ops = [opCount]opInfo{
	Invalid: {"INVALID", ""},
	ADC:     {"ADC", "add memory to accumulator with carry"},
	AND:     {"AND", "AND memory with accumulator"},
	ASL:     {"ASL", "shift one bit left"},
	BCC:     {"BCC", "branch on carry clear"},
	BCS:     {"BCS", "branch on carry set"},
	BEQ:     {"BEQ", "branch on result zero"},
	BIT:     {"BIT", "test bits in memory with accumulator"},
	BMI:     {"BMI", "branch on result minus"},
	BNE:     {"BNE", "branch on result not zero"},
	BPL:     {"BPL", "branch on result plus"},
	BRK:     {"BRK", "force break"},
	BVC:     {"BVC", "branch on overflow clear"},
	BVS:     {"BVS", "branch on overflow set"},
	CLC:     {"CLC", "clear carry flag"},
	CLD:     {"CLD", "clear decimal mode"},
	CLI:     {"CLI", "clear interrupt disable bit"},
	CLV:     {"CLV", "clear overflow flag"},
	CMP:     {"CMP", "compare memory with accumulator"},
	CPX:     {"CPX", "compare memory and index X"},
	CPY:     {"CPY", "compare memory and index Y"},
	DEC:     {"DEC", "decrement memory by one"},
	DEX:     {"DEX", "decrement index X by one"},
	DEY:     {"DEY", "decrement index Y by one"},
	EOR:     {"EOR", "exclusive-OR memory with accumulator"},
	INC:     {"INC", "increment memory by one"},
	INX:     {"INX", "increment index X by one"},
	INY:     {"INY", "increment index Y by one"},
	JMP:     {"JMP", "jump to new location"},
	JSR:     {"JSR", "jump to new location saving return address"},
	LDA:     {"LDA", "load accumulator with memory"},
	LDX:     {"LDX", "load index X with memory"},
	LDY:     {"LDY", "load index Y with memory"},
	LSR:     {"LSR", "shift one bit right"},
	NOP:     {"NOP", "no operation"},
	ORA:     {"ORA", "OR memory with accumulator"},
	PHA:     {"PHA", "push accumulator on stack"},
	PHP:     {"PHP", "push processor status on stack"},
	PLA:     {"PLA", "pull accumulator from stack"},
	PLP:     {"PLP", "pull processor status from stack"},
	ROL:     {"ROL", "rotate one bit left"},
	ROR:     {"ROR", "rotate one bit right"},
	RTI:     {"RTI", "return from interrupt"},
	RTS:     {"RTS", "return from subroutine"},
	SBC:     {"SBC", "subtract memory from accumulator with borrow"},
	SEC:     {"SEC", "set carry flag"},
	SED:     {"SED", "set decimal flag"},
	SEI:     {"SEI", "set interrupt disable status"},
	STA:     {"STA", "store accumulator in memory"},
	STX:     {"STX", "store index X in memory"},
	STY:     {"STY", "store index Y in memory"},
	TAX:     {"TAX", "transfer accumulator to index X"},
	TAY:     {"TAY", "transfer accumulator to index Y"},
	TSX:     {"TSX", "transfer stack pointer to index X"},
	TXA:     {"TXA", "transfer index X to accumulator"},
	TXS:     {"TXS", "transfer index X to stack register"},
	TYA:     {"TYA", "transfer index Y to accumulator"},
}

// String returns the upper-case mnemonic.
func (op Op) String() string {
	if op >= opCount {
		return "INVALID"
	}
	return ops[op].name
}

// Describe returns a one-line summary of what the instruction does.
func (op Op) Describe() string {
	if op >= opCount {
		return ""
	}
	return ops[op].desc
}

// Valid reports whether op is one of the recognized mnemonics.
func (op Op) Valid() bool {
	return op > Invalid && op < opCount
}

// All returns every recognized mnemonic in declaration order.
func All() []Op {
	all := make([]Op, 0, opCount-1)
	for op := Invalid + 1; op < opCount; op++ {
		all = append(all, op)
	}
	return all
}

// Table maps lowercase mnemonic text to its Op. A Table is never modified
// after construction, so it may be shared between goroutines.
type Table struct {
	byName map[string]Op
}

var defaultTable = NewTable(All()...)

// Default returns the process-wide table holding every recognized mnemonic.
func Default() *Table {
	return defaultTable
}

// NewTable builds a table restricted to the given mnemonics. Invalid ops are
// ignored.
func NewTable(members ...Op) *Table {
	t := &Table{byName: make(map[string]Op, len(members))}
	for _, op := range members {
		if !op.Valid() {
			continue
		}
		t.byName[strings.ToLower(op.String())] = op
	}
	return t
}

// Parse looks text up in the default table, ignoring case.
func Parse(text string) (Op, bool) {
	return defaultTable.Lookup(text)
}

// Lookup returns the Op whose mnemonic equals text, ignoring case.
func (t *Table) Lookup(text string) (Op, bool) {
	op, ok := t.byName[strings.ToLower(text)]
	return op, ok
}

// Len returns the number of mnemonics in the table.
func (t *Table) Len() int {
	return len(t.byName)
}

// Ops returns the table's members in declaration order.
func (t *Table) Ops() []Op {
	members := make([]Op, 0, len(t.byName))
	for _, op := range t.byName {
		members = append(members, op)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members
}

// Suggest returns the members whose mnemonic fuzzily matches query, closest
// first. Matching ignores case.
func (t *Table) Suggest(query string) []Op {
	if query == "" {
		return nil
	}
	members := t.Ops()
	names := make([]string, len(members))
	for i, op := range members {
		names[i] = op.String()
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]Op, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, members[r.OriginalIndex])
	}
	return out
}
