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

// Architecture constants.
const (
	VariableBase  = 16     // first RAM cell handed out to variables
	ScreenBase    = 0x4000 // memory-mapped screen, 16384
	KeyboardAddr  = 0x6000 // memory-mapped keyboard, 24576
	VariableLimit = ScreenBase - 1
	RomSize       = 0x8000
	MaxLiteral    = 0x7FFF // address instructions carry 15 bits
)

// Named pointers, at fixed low addresses.
var builtinPointers = []struct {
	name string
	addr uint16
}{
	{"SP", 0},
	{"LCL", 1},
	{"ARG", 2},
	{"THIS", 3},
	{"THAT", 4},
}

// Seed a symbol table with the names every program may use without
// declaring them. R0..R15 deliberately overlap SP..THAT.
func registerBuiltins(st *SymbolTable) {
	for _, p := range builtinPointers {
		st.Bind(p.name, p.addr, SymPredefined)
	}
	for r := uint16(0); r < 16; r++ {
		st.Bind(fmt.Sprintf("R%d", r), r, SymPredefined)
	}
	st.Bind("SCREEN", ScreenBase, SymPredefined)
	st.Bind("KBD", KeyboardAddr, SymPredefined)
}
