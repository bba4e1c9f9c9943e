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

import (
	"strconv"
)

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Parse a string of decimal digits that must fit in an address
// instruction.
func parseLiteral(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n > MaxLiteral {
		return 0, &Error{Kind: ErrMalformedReference, Value: s}
	}
	return uint16(n), nil
}

func isSymbolStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' ||
		b == '_' || b == '.' || b == '$' || b == ':'
}

// A symbol is a run of letters, digits, '_', '.', '$' and ':' that
// does not begin with a digit.
func isSymbol(s string) bool {
	if s == "" || !isSymbolStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isSymbolStart(s[i]) && (s[i] < '0' || s[i] > '9') {
			return false
		}
	}
	return true
}

// A label declaration has been found in pass 1. Labels may not be
// declared twice, nor shadow a predefined name. The label is bound to
// the address of the next real instruction, which must itself fit in
// an address instruction.
func defineLabel(gs *globalState, cl classifiedLine) error {
	name := cl.inst.Symbol
	if gs.pc > MaxLiteral {
		return at(&Error{Kind: ErrProgramTooLarge, Value: name}, cl.src)
	}
	if gs.symbols.Contains(name) {
		return at(&Error{Kind: ErrDuplicateLabel, Value: name}, cl.src)
	}
	gs.symbols.Bind(name, uint16(gs.pc), SymLabel)
	if debug {
		logf("label %s = %d", name, gs.pc)
	}
	return nil
}

// Resolve an address instruction in pass 2. Literals are used as they
// are. Known symbols resolve to their binding; any other symbol is a
// new variable and gets the next free RAM cell.
func resolveReference(gs *globalState, cl classifiedLine) (uint16, error) {
	inst := cl.inst
	if inst.IsLiteral {
		return inst.Literal, nil
	}
	if gs.symbols.Contains(inst.Symbol) {
		return gs.symbols.Get(inst.Symbol), nil
	}
	if gs.varNext > VariableLimit {
		return 0, at(&Error{Kind: ErrVariableSpaceExhausted, Value: inst.Symbol}, cl.src)
	}
	addr := gs.varNext
	gs.symbols.Bind(inst.Symbol, addr, SymVariable)
	gs.varNext++
	if debug {
		logf("variable %s = %d", inst.Symbol, addr)
	}
	return addr, nil
}
