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

// Package sim executes translated programs one instruction per cycle.
// It models the ROM, 32K words of RAM (including the screen and keyboard
// regions, which are plain memory here), and the A, D and PC registers.

package sim

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gmofishsauce/hackasm/pkg/asm"
)

const RamSize = 0x8000

var (
	ErrCycleLimit = errors.New("cycle limit reached")
	ErrBadAddress = errors.New("memory address out of range")
	ErrBadOpcode  = errors.New("invalid instruction")
)

// Compute instruction fields.
const (
	computeMask = 0xE000
	aBit        = 0x1000
	zx          = 0x0800
	nx          = 0x0400
	zy          = 0x0200
	ny          = 0x0100
	fAdd        = 0x0080
	no          = 0x0040
	destA       = 0x0020
	destD       = 0x0010
	destM       = 0x0008
	jumpLT      = 0x0004
	jumpEQ      = 0x0002
	jumpGT      = 0x0001
)

type Mem []uint16

type Machine struct {
	rom Mem
	ram Mem

	a  uint16
	d  uint16
	pc uint16

	halted bool
	cycles int

	// Trace, when set, receives one line per executed instruction.
	Trace *log.Logger
}

func NewMachine(rom []uint16) *Machine {
	return &Machine{
		rom: rom,
		ram: make(Mem, RamSize),
	}
}

// Load reads a program in .hack text form.
func Load(r io.Reader) (*Machine, error) {
	words, err := asm.ReadHack(r)
	if err != nil {
		return nil, err
	}
	return NewMachine(words), nil
}

func (m *Machine) A() uint16    { return m.a }
func (m *Machine) D() uint16    { return m.d }
func (m *Machine) PC() uint16   { return m.pc }
func (m *Machine) Cycles() int  { return m.cycles }
func (m *Machine) Halted() bool { return m.halted }

func (m *Machine) Peek(addr uint16) (uint16, error) {
	if int(addr) >= len(m.ram) {
		return 0, fmt.Errorf("peek %d: %w", addr, ErrBadAddress)
	}
	return m.ram[addr], nil
}

func (m *Machine) Poke(addr uint16, value uint16) error {
	if int(addr) >= len(m.ram) {
		return fmt.Errorf("poke %d: %w", addr, ErrBadAddress)
	}
	m.ram[addr] = value
	return nil
}

// Run steps the machine until it halts or maxCycles instructions have
// executed. The machine halts when the PC leaves the program, or when
// it reaches the usual end-of-program idiom: a taken jump to an
// address instruction that loads its own address, immediately before
// the jump (@END / 0;JMP).
func (m *Machine) Run(maxCycles int) (int, error) {
	start := m.cycles
	for !m.halted {
		if m.cycles-start >= maxCycles {
			return m.cycles - start, ErrCycleLimit
		}
		if err := m.Step(); err != nil {
			return m.cycles - start, err
		}
	}
	return m.cycles - start, nil
}

// Step executes the instruction at PC.
func (m *Machine) Step() error {
	if int(m.pc) >= len(m.rom) {
		m.halted = true
		return nil
	}
	pc := m.pc
	inst := m.rom[pc]
	if m.Trace != nil {
		m.Trace.Printf("%5d %04X %-16s A=%d D=%d", pc, inst, asm.Disassemble(inst), m.a, m.d)
	}
	m.cycles++

	if inst&0x8000 == 0 {
		m.a = inst
		m.pc++
		return nil
	}
	if inst&computeMask != computeMask {
		return fmt.Errorf("pc %d: %04X: %w", pc, inst, ErrBadOpcode)
	}

	y := m.a
	if inst&aBit != 0 {
		if int(m.a) >= len(m.ram) {
			return fmt.Errorf("pc %d: read M at %d: %w", pc, m.a, ErrBadAddress)
		}
		y = m.ram[m.a]
	}
	out := alu(m.d, y, inst)

	// M is addressed by A as it was before this instruction.
	if inst&destM != 0 {
		if int(m.a) >= len(m.ram) {
			return fmt.Errorf("pc %d: write M at %d: %w", pc, m.a, ErrBadAddress)
		}
		m.ram[m.a] = out
	}
	target := m.a
	if inst&destA != 0 {
		m.a = out
	}
	if inst&destD != 0 {
		m.d = out
	}

	if jumps(out, inst) {
		if pc > 0 && target == pc-1 && m.rom[target] == target {
			m.halted = true
		}
		m.pc = target
		return nil
	}
	m.pc++
	return nil
}

func alu(x, y, inst uint16) uint16 {
	if inst&zx != 0 {
		x = 0
	}
	if inst&nx != 0 {
		x = ^x
	}
	if inst&zy != 0 {
		y = 0
	}
	if inst&ny != 0 {
		y = ^y
	}
	var out uint16
	if inst&fAdd != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if inst&no != 0 {
		out = ^out
	}
	return out
}

func jumps(out, inst uint16) bool {
	v := int16(out)
	return inst&jumpLT != 0 && v < 0 ||
		inst&jumpEQ != 0 && v == 0 ||
		inst&jumpGT != 0 && v > 0
}
