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

// The ALU of the target machine has no opcode field. Instead six
// control bits steer a fixed datapath over x (always D) and y (A, or
// the memory cell addressed by A when the a-bit is set):
//
//	zx  zero the x input
//	nx  negate (bitwise) the x input
//	zy  zero the y input
//	ny  negate (bitwise) the y input
//	f   1 for x+y, 0 for x&y
//	no  negate (bitwise) the output
//
// A compute instruction word is laid out as
//
//	15 14 13 | 12 | 11 10  9  8  7  6 | 5  4  3 | 2  1  0
//	 1  1  1 |  a | zx nx zy ny  f no | d1 d2 d3 | j1 j2 j3
//
// where d1..d3 select A, D and M as destinations and j1..j3 jump on
// out<0, out=0 and out>0 respectively.

package asm

import "strconv"

const computePrefix = 0xE000 // 111 in bits 15..13

// ALU control bits (within the 6 bit comp field)
const (
	aluZX = 0x20
	aluNX = 0x10
	aluZY = 0x08
	aluNY = 0x04
	aluF  = 0x02
	aluNO = 0x01
)

// The a-bit, as it appears in the 7 bit comp code.
const compUseMemory = 0x40

// The 28 comp mnemonics. M forms share the six ALU bits of the
// corresponding A form and add compUseMemory.
var compCodes = map[string]uint16{
	"0":   aluZX | aluZY | aluF,                                 // 101010
	"1":   aluZX | aluNX | aluZY | aluNY | aluF | aluNO,         // 111111
	"-1":  aluZX | aluNX | aluZY | aluF,                         // 111010
	"D":   aluZY | aluNY,                                        // 001100
	"A":   aluZX | aluNX,                                        // 110000
	"!D":  aluZY | aluNY | aluNO,                                // 001101
	"!A":  aluZX | aluNX | aluNO,                                // 110001
	"-D":  aluZY | aluNY | aluF | aluNO,                         // 001111
	"-A":  aluZX | aluNX | aluF | aluNO,                         // 110011
	"D+1": aluNX | aluZY | aluNY | aluF | aluNO,                 // 011111
	"A+1": aluZX | aluNX | aluNY | aluF | aluNO,                 // 110111
	"D-1": aluZY | aluNY | aluF,                                 // 001110
	"A-1": aluZX | aluNX | aluF,                                 // 110010
	"D+A": aluF,                                                 // 000010
	"D-A": aluNX | aluF | aluNO,                                 // 010011
	"A-D": aluNY | aluF | aluNO,                                 // 000111
	"D&A": 0,                                                    // 000000
	"D|A": aluNX | aluNY | aluNO,                                // 010101

	"M":   compUseMemory | aluZX | aluNX,
	"!M":  compUseMemory | aluZX | aluNX | aluNO,
	"-M":  compUseMemory | aluZX | aluNX | aluF | aluNO,
	"M+1": compUseMemory | aluZX | aluNX | aluNY | aluF | aluNO,
	"M-1": compUseMemory | aluZX | aluNX | aluF,
	"D+M": compUseMemory | aluF,
	"D-M": compUseMemory | aluNX | aluF | aluNO,
	"M-D": compUseMemory | aluNY | aluF | aluNO,
	"D&M": compUseMemory,
	"D|M": compUseMemory | aluNX | aluNY | aluNO,
}

// Destination bits: A (d1), D (d2), M (d3).
const (
	destA = 0x4
	destD = 0x2
	destM = 0x1
)

var destCodes = map[string]uint16{
	"null": 0,
	"M":    destM,
	"D":    destD,
	"MD":   destD | destM,
	"A":    destA,
	"AM":   destA | destM,
	"AD":   destA | destD,
	"AMD":  destA | destD | destM,
}

// Jump bits: out<0 (j1), out=0 (j2), out>0 (j3).
const (
	jumpLT = 0x4
	jumpEQ = 0x2
	jumpGT = 0x1
)

var jumpCodes = map[string]uint16{
	"null": 0,
	"JGT":  jumpGT,
	"JEQ":  jumpEQ,
	"JGE":  jumpGT | jumpEQ,
	"JLT":  jumpLT,
	"JNE":  jumpLT | jumpGT,
	"JLE":  jumpLT | jumpEQ,
	"JMP":  jumpLT | jumpEQ | jumpGT,
}

// EncodeDest returns the 3 bit destination code for a mnemonic.
func EncodeDest(mnemonic string) (uint16, error) {
	if code, ok := destCodes[mnemonic]; ok {
		return code, nil
	}
	return 0, unknownMnemonic("dest", mnemonic)
}

// EncodeComp returns the 7 bit computation code (a-bit and six ALU
// control bits) for a mnemonic.
func EncodeComp(mnemonic string) (uint16, error) {
	if code, ok := compCodes[mnemonic]; ok {
		return code, nil
	}
	return 0, unknownMnemonic("comp", mnemonic)
}

// EncodeJump returns the 3 bit jump code for a mnemonic.
func EncodeJump(mnemonic string) (uint16, error) {
	if code, ok := jumpCodes[mnemonic]; ok {
		return code, nil
	}
	return 0, unknownMnemonic("jump", mnemonic)
}

// EncodeCompute assembles a full compute instruction word. The first
// field found outside its vocabulary, in dest, comp, jump order, is
// reported.
func EncodeCompute(dest, comp, jump string) (uint16, error) {
	d, err := EncodeDest(dest)
	if err != nil {
		return 0, err
	}
	c, err := EncodeComp(comp)
	if err != nil {
		return 0, err
	}
	j, err := EncodeJump(jump)
	if err != nil {
		return 0, err
	}
	return computePrefix | c<<6 | d<<3 | j, nil
}

// Reverse tables for DecodeCompute, built once from the forward ones.
var compNames, destNames, jumpNames = invert(compCodes), invert(destCodes), invert(jumpCodes)

func invert(m map[string]uint16) map[uint16]string {
	r := make(map[uint16]string, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

// IsCompute reports whether word is a compute instruction.
func IsCompute(word uint16) bool {
	return word&computePrefix == computePrefix
}

// DecodeCompute renders a compute instruction word back to mnemonic
// form, omitting null dest and jump fields. Bit patterns that no
// mnemonic produces decode as "?".
func DecodeCompute(word uint16) string {
	comp, ok := compNames[(word>>6)&0x7F]
	if !ok {
		comp = "?"
	}
	result := comp
	if d := destNames[(word>>3)&0x7]; d != "null" {
		result = d + "=" + result
	}
	if j := jumpNames[word&0x7]; j != "null" {
		result = result + ";" + j
	}
	return result
}

// Disassemble renders any word: address instructions as @value.
func Disassemble(word uint16) string {
	if word&0x8000 == 0 {
		return "@" + strconv.Itoa(int(word))
	}
	if !IsCompute(word) {
		return "?"
	}
	return DecodeCompute(word)
}
