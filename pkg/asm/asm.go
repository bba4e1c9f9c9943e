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

// Package asm translates symbolic assembly for a 16-bit machine with
// three kinds of source line (address instructions, compute instructions
// and label declarations) into 16-bit machine words.
//
// Translation takes two passes over a list of lines that has been
// classified once up front. Pass 1 binds each label to the ROM address
// of the instruction that follows it and emits nothing. Pass 2 emits one
// word per real instruction, resolving symbols against the table that
// pass 1 completed and giving every other symbol a RAM cell starting at
// 16, in order of first use. A run either produces the whole program or
// fails; no partial output is returned.
package asm

import (
	"errors"
	"io"
	"log"
	"sort"
)

var debug = false

// SetDebug turns tracing of symbol bindings and phase changes on or off.
func SetDebug(setting bool) {
	debug = setting
}

func logf(format string, args ...interface{}) {
	log.Printf("asm: "+format, args...)
}

// Options adjusts a translation run.
type Options struct {
	// Lenient skips compute instructions with unknown mnemonics, with
	// a warning, instead of failing the run. Skipped lines take no ROM
	// address, so labels after them move down.
	Lenient bool
}

// SymbolEntry is one binding from a finished run.
type SymbolEntry struct {
	Name string
	Addr uint16
	Kind SymbolKind
}

// Program is the result of a successful run. Lines[i] is the source of
// Words[i]. Symbols is sorted by name.
type Program struct {
	Words   []uint16
	Lines   []SourceLine
	Symbols []SymbolEntry
}

// AssembleReader normalizes the source in r and translates it.
func AssembleReader(name string, r io.Reader, opts Options) (*Program, error) {
	lines, err := Normalize(name, r)
	if err != nil {
		return nil, err
	}
	return Assemble(lines, opts)
}

// Assemble translates normalized source lines. Each call uses its own
// symbol table, which does not outlive the call.
func Assemble(lines []SourceLine, opts Options) (*Program, error) {
	gs := newGlobalState(opts)
	if err := classifyAll(gs, lines); err != nil {
		gs.enter(phaseFailed)
		return nil, err
	}
	gs.symbols = NewSymbolTable()

	gs.enter(phasePass1Running)
	if err := pass1(gs); err != nil {
		gs.enter(phaseFailed)
		return nil, err
	}
	gs.enter(phasePass1Done)

	gs.enter(phasePass2Running)
	if err := pass2(gs); err != nil {
		gs.enter(phaseFailed)
		return nil, err
	}
	gs.enter(phaseDone)
	return gs.program(), nil
}

// Classify every line, collecting all the errors rather than stopping
// at the first, so one run reports every bad line.
func classifyAll(gs *globalState, lines []SourceLine) error {
	var errs []error
	gs.lines = make([]classifiedLine, 0, len(lines))
	for _, sl := range lines {
		inst, err := Classify(sl.Text)
		if err != nil {
			if gs.opts.Lenient && errors.Is(err, ErrUnknownMnemonic) {
				log.Printf("warning: %s: skipped", at(err, sl))
				continue
			}
			errs = append(errs, at(err, sl))
			continue
		}
		gs.lines = append(gs.lines, classifiedLine{inst, sl})
	}
	return errors.Join(errs...)
}

// Pass 1: bind labels. Nothing is emitted.
func pass1(gs *globalState) error {
	gs.pc = 0
	for _, cl := range gs.lines {
		if cl.inst.Kind == KindLabel {
			if err := defineLabel(gs, cl); err != nil {
				return err
			}
			continue
		}
		if gs.pc >= RomSize {
			return at(&Error{Kind: ErrProgramTooLarge}, cl.src)
		}
		gs.pc++
	}
	return nil
}

// Pass 2: generate code, allocating variables as they are first seen.
func pass2(gs *globalState) error {
	gs.rom = make([]uint16, 0, gs.pc)
	gs.romSrc = make([]SourceLine, 0, gs.pc)
	for _, cl := range gs.lines {
		switch cl.inst.Kind {
		case KindLabel:
			continue
		case KindAddress:
			addr, err := resolveReference(gs, cl)
			if err != nil {
				return err
			}
			gs.emit(addr, cl.src)
		case KindCompute:
			word, err := EncodeCompute(cl.inst.Dest, cl.inst.Comp, cl.inst.Jump)
			if err != nil {
				return at(err, cl.src)
			}
			gs.emit(word, cl.src)
		}
	}
	return nil
}

func (gs *globalState) emit(word uint16, src SourceLine) {
	gs.rom = append(gs.rom, word)
	gs.romSrc = append(gs.romSrc, src)
}

func (gs *globalState) program() *Program {
	syms := make([]SymbolEntry, 0, gs.symbols.Len())
	for _, s := range gs.symbols.symbols {
		syms = append(syms, SymbolEntry{s.name(), s.addr(), s.kind()})
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	return &Program{Words: gs.rom, Lines: gs.romSrc, Symbols: syms}
}
