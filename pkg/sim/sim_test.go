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

package sim_test

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gmofishsauce/hackasm/pkg/asm"
	"github.com/gmofishsauce/hackasm/pkg/sim"
)

const addProgram = `
// Computes R0 = 2 + 3
@2
D=A
@3
D=D+A
@0
M=D
`

const maxProgram = `
// R2 = max(R0, R1)
@R0
D=M
@R1
D=D-M
@OUTPUT_FIRST
D;JGT
@R1
D=M
@OUTPUT_D
0;JMP
(OUTPUT_FIRST)
@R0
D=M
(OUTPUT_D)
@R2
M=D
(INFINITE_LOOP)
@INFINITE_LOOP
0;JMP
`

const sumProgram = `
// sum = 1 + 2 + ... + 10
@i
M=1
@sum
M=0
(LOOP)
@i
D=M
@10
D=D-A
@END
D;JGT
@i
D=M
@sum
M=D+M
@i
M=M+1
@LOOP
0;JMP
(END)
@END
0;JMP
`

func load(source string) *sim.Machine {
	prog, err := asm.AssembleReader("test.asm", strings.NewReader(source), asm.Options{})
	Expect(err).NotTo(HaveOccurred())
	return sim.NewMachine(prog.Words)
}

func peek(m *sim.Machine, addr uint16) uint16 {
	v, err := m.Peek(addr)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Machine", func() {
	It("should run straight-line code off the end of ROM", func() {
		m := load(addProgram)
		cycles, err := m.Run(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(cycles).To(Equal(6))
		Expect(m.Halted()).To(BeTrue())
		Expect(peek(m, 0)).To(Equal(uint16(5)))
	})

	It("should follow forward jumps to labels", func() {
		for _, c := range [][3]uint16{{3, 9, 9}, {12, 7, 12}, {4, 4, 4}} {
			m := load(maxProgram)
			Expect(m.Poke(0, c[0])).To(Succeed())
			Expect(m.Poke(1, c[1])).To(Succeed())
			_, err := m.Run(1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Halted()).To(BeTrue())
			Expect(peek(m, 2)).To(Equal(c[2]))
		}
	})

	It("should place variables from address 16", func() {
		m := load(sumProgram)
		_, err := m.Run(10000)
		Expect(err).NotTo(HaveOccurred())
		Expect(peek(m, 16)).To(Equal(uint16(11)))
		Expect(peek(m, 17)).To(Equal(uint16(55)))
	})

	It("should stop at the cycle limit", func() {
		m := load("(L)\nD=D+1\n@L\n0;JMP\n")
		cycles, err := m.Run(100)
		Expect(err).To(MatchError(sim.ErrCycleLimit))
		Expect(cycles).To(Equal(100))
		Expect(m.Halted()).To(BeFalse())
	})

	It("should reject memory access past RAM", func() {
		m := load("D=-1\nA=D\nM=1\n")
		_, err := m.Run(10)
		Expect(err).To(MatchError(sim.ErrBadAddress))

		_, err = m.Peek(sim.RamSize)
		Expect(err).To(MatchError(sim.ErrBadAddress))
	})

	It("should reject words that are neither instruction kind", func() {
		m := sim.NewMachine([]uint16{0x8000})
		_, err := m.Run(10)
		Expect(err).To(MatchError(sim.ErrBadOpcode))
	})

	It("should trace executed instructions", func() {
		var buf bytes.Buffer
		m := load(addProgram)
		m.Trace = log.New(&buf, "", 0)
		_, err := m.Run(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("D=D+A"))
		Expect(strings.Count(buf.String(), "\n")).To(Equal(6))
	})

	It("should load .hack text", func() {
		prog, err := asm.AssembleReader("add.asm", strings.NewReader(addProgram), asm.Options{})
		Expect(err).NotTo(HaveOccurred())
		var buf bytes.Buffer
		Expect(asm.WriteHack(&buf, prog.Words)).To(Succeed())

		m, err := sim.Load(&buf)
		Expect(err).NotTo(HaveOccurred())
		_, err = m.Run(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(peek(m, 0)).To(Equal(uint16(5)))
	})

	Describe("ALU", func() {
		const d, a, mem = uint16(5), uint16(100), uint16(9)

		// What each computation should yield for y = A or y = M.
		expected := map[string]func(x, y uint16) uint16{
			"0":   func(x, y uint16) uint16 { return 0 },
			"1":   func(x, y uint16) uint16 { return 1 },
			"-1":  func(x, y uint16) uint16 { return 0xFFFF },
			"D":   func(x, y uint16) uint16 { return x },
			"!D":  func(x, y uint16) uint16 { return ^x },
			"-D":  func(x, y uint16) uint16 { return -x },
			"D+1": func(x, y uint16) uint16 { return x + 1 },
			"D-1": func(x, y uint16) uint16 { return x - 1 },
			"Y":   func(x, y uint16) uint16 { return y },
			"!Y":  func(x, y uint16) uint16 { return ^y },
			"-Y":  func(x, y uint16) uint16 { return -y },
			"Y+1": func(x, y uint16) uint16 { return y + 1 },
			"Y-1": func(x, y uint16) uint16 { return y - 1 },
			"D+Y": func(x, y uint16) uint16 { return x + y },
			"D-Y": func(x, y uint16) uint16 { return x - y },
			"Y-D": func(x, y uint16) uint16 { return y - x },
			"D&Y": func(x, y uint16) uint16 { return x & y },
			"D|Y": func(x, y uint16) uint16 { return x | y },
		}

		run := func(comp string) uint16 {
			word, err := asm.EncodeCompute("D", comp, "null")
			Expect(err).NotTo(HaveOccurred())
			// @5, D=A, @100, D=comp
			m := sim.NewMachine([]uint16{d, 0xEC10, a, word})
			Expect(m.Poke(a, mem)).To(Succeed())
			_, err = m.Run(10)
			Expect(err).NotTo(HaveOccurred())
			return m.D()
		}

		It("should compute every mnemonic", func() {
			count := 0
			for pattern, f := range expected {
				if !strings.Contains(pattern, "Y") {
					Expect(run(pattern)).To(Equal(f(d, 0)), pattern)
					count++
					continue
				}
				aForm := strings.Replace(pattern, "Y", "A", 1)
				mForm := strings.Replace(pattern, "Y", "M", 1)
				Expect(run(aForm)).To(Equal(f(d, a)), aForm)
				Expect(run(mForm)).To(Equal(f(d, mem)), mForm)
				count += 2
			}
			Expect(count).To(Equal(28))
		})

		It("should jump on the sign of the result", func() {
			setD := func(value uint16) []uint16 {
				if value&0x8000 != 0 {
					word, err := asm.EncodeCompute("D", "-1", "null")
					Expect(err).NotTo(HaveOccurred())
					return []uint16{word}
				}
				word, err := asm.EncodeCompute("D", "A", "null")
				Expect(err).NotTo(HaveOccurred())
				return []uint16{value, word}
			}
			for _, c := range []struct {
				jump  string
				value uint16
				taken bool
			}{
				{"JGT", 1, true}, {"JGT", 0, false}, {"JEQ", 0, true},
				{"JGE", 0xFFFF, false}, {"JLT", 0xFFFF, true}, {"JNE", 0, false},
				{"JLE", 0, true}, {"JMP", 7, true}, {"null", 0, false},
			} {
				word, err := asm.EncodeCompute("null", "D", c.jump)
				Expect(err).NotTo(HaveOccurred())
				rom := append(setD(c.value), 40, word)
				m := sim.NewMachine(rom)
				for range rom {
					Expect(m.Step()).To(Succeed())
				}
				if c.taken {
					Expect(m.PC()).To(Equal(uint16(40)), c.jump)
				} else {
					Expect(m.PC()).To(Equal(uint16(len(rom))), c.jump)
				}
			}
		})
	})
})
