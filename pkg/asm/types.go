/*
Copyright © 2023 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package asm

import "fmt"

// ------------
// Source lines
// ------------

// SourceLine is one normalized line of assembly source. Num is the
// physical line number within Name, counting from 1, so that errors
// can point back at the source file after comments and blank lines
// have been dropped.
type SourceLine struct {
	Name string
	Num  int
	Text string
}

func (sl SourceLine) String() string {
	return fmt.Sprintf("%s:%d: %s", sl.Name, sl.Num, sl.Text)
}

// ------------
// Instructions
// ------------

// Instruction kinds
type Kind int

const (
	KindAddress Kind = iota // @value or @symbol
	KindCompute             // dest=comp;jump
	KindLabel               // (symbol)
)

var kindToString = []string{
	"address",
	"compute",
	"label",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindToString) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindToString[k]
}

// Instruction is the classified form of one source line. Which fields
// are meaningful depends on Kind:
//
//	KindAddress: Symbol, or Literal when IsLiteral is set
//	KindCompute: Dest, Comp, Jump (absent fields are "null")
//	KindLabel:   Symbol
type Instruction struct {
	Kind      Kind
	Symbol    string
	Literal   uint16
	IsLiteral bool
	Dest      string
	Comp      string
	Jump      string
}

func (in Instruction) String() string {
	switch in.Kind {
	case KindAddress:
		if in.IsLiteral {
			return fmt.Sprintf("{address %d}", in.Literal)
		}
		return fmt.Sprintf("{address %s}", in.Symbol)
	case KindCompute:
		return fmt.Sprintf("{compute %s=%s;%s}", in.Dest, in.Comp, in.Jump)
	case KindLabel:
		return fmt.Sprintf("{label %s}", in.Symbol)
	}
	return fmt.Sprintf("{%s}", in.Kind)
}

// An instruction together with the line it came from.
type classifiedLine struct {
	inst Instruction
	src  SourceLine
}

// -------
// Symbols
// -------

// Where a symbol's binding came from. The order is the order in which
// the table is populated during a run.
type SymbolKind int

const (
	SymPredefined SymbolKind = iota
	SymLabel
	SymVariable
)

var symbolKindToString = []string{
	"predefined",
	"label",
	"variable",
}

func (sk SymbolKind) String() string {
	if sk < 0 || int(sk) >= len(symbolKindToString) {
		return fmt.Sprintf("symbolKind(%d)", int(sk))
	}
	return symbolKindToString[sk]
}

type symbol struct {
	sName string
	sAddr uint16
	sKind SymbolKind
}

func newSymbol(sName string, sAddr uint16, sKind SymbolKind) *symbol {
	return &symbol{sName, sAddr, sKind}
}

func (s *symbol) name() string {
	return s.sName
}

func (s *symbol) addr() uint16 {
	return s.sAddr
}

func (s *symbol) kind() SymbolKind {
	return s.sKind
}

// ------------
// Symbol table
// ------------

// SymbolTable maps case-sensitive symbol names to 16-bit addresses.
// Bind overwrites; callers that want first-writer-wins check Contains
// first.
type SymbolTable struct {
	symbols map[string]*symbol
}

// NewSymbolTable returns a table holding only the predefined symbols.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{symbols: make(map[string]*symbol)}
	registerBuiltins(st)
	return st
}

func (st *SymbolTable) Contains(name string) bool {
	_, ok := st.symbols[name]
	return ok
}

// Get returns the address bound to name. The result is only
// meaningful when Contains(name) is true.
func (st *SymbolTable) Get(name string) uint16 {
	if sym, ok := st.symbols[name]; ok {
		return sym.addr()
	}
	return 0
}

func (st *SymbolTable) Bind(name string, addr uint16, kind SymbolKind) {
	st.symbols[name] = newSymbol(name, addr, kind)
}

// Kind reports how name was bound.
func (st *SymbolTable) Kind(name string) (SymbolKind, bool) {
	sym, ok := st.symbols[name]
	if !ok {
		return 0, false
	}
	return sym.kind(), true
}

func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// -----------------------
// State of the assembler.
// -----------------------

// Phases of one translation run. A run moves forward through these
// and never revisits one; any error moves it to phaseFailed.
type phase int

const (
	phaseUninitialized phase = iota
	phasePass1Running
	phasePass1Done
	phasePass2Running
	phaseDone
	phaseFailed
)

var phaseToString = []string{
	"uninitialized",
	"pass 1 running",
	"pass 1 done",
	"pass 2 running",
	"done",
	"failed",
}

func (p phase) String() string {
	if p < 0 || int(p) >= len(phaseToString) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseToString[p]
}

type globalState struct {
	phase   phase
	opts    Options
	lines   []classifiedLine
	symbols *SymbolTable
	pc      int    // ROM address of the next real instruction (pass 1)
	varNext uint16 // next free variable address (pass 2)
	rom     []uint16
	romSrc  []SourceLine
}

func newGlobalState(opts Options) *globalState {
	return &globalState{
		phase:   phaseUninitialized,
		opts:    opts,
		varNext: VariableBase,
	}
}

// Move to the next phase. Moving backwards, or anywhere out of a
// terminal phase, is an internal error.
func (gs *globalState) enter(next phase) {
	if gs.phase == phaseDone || gs.phase == phaseFailed || (next != phaseFailed && next <= gs.phase) {
		panic(fmt.Sprintf("internal error: phase %s -> %s", gs.phase, next))
	}
	if debug {
		logf("phase %s -> %s", gs.phase, next)
	}
	gs.phase = next
}
