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
	"bufio"
	"fmt"
	"io"
	"strings"
)

const commentMarker = "//"

// Normalize reads assembly source and returns its non-empty lines with
// comments and surrounding whitespace removed. Full-line comments and
// blank lines are dropped; anything after the first "//" on a line is
// discarded. Line numbers refer to the physical lines of r.
func Normalize(name string, r io.Reader) ([]SourceLine, error) {
	var lines []SourceLine
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := normalizeLine(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, SourceLine{Name: name, Num: num, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lines, nil
}

func normalizeLine(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, commentMarker) {
		return ""
	}
	if i := strings.Index(text, commentMarker); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return text
}

// Classify determines the shape of one normalized, non-empty line and
// extracts its fields. It looks only at the first character to pick
// the shape: '@' is an address instruction, '(' a label declaration,
// anything else a compute instruction. Compute mnemonics are checked
// against their vocabularies here so that a bad field is reported once,
// before either pass runs.
func Classify(text string) (Instruction, error) {
	switch {
	case strings.HasPrefix(text, "@"):
		return classifyAddress(text[1:])
	case strings.HasPrefix(text, "("):
		return classifyLabel(text)
	}
	return classifyCompute(text)
}

func classifyAddress(ref string) (Instruction, error) {
	if isDecimal(ref) {
		n, err := parseLiteral(ref)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: KindAddress, Literal: n, IsLiteral: true}, nil
	}
	if !isSymbol(ref) {
		return Instruction{}, &Error{Kind: ErrMalformedReference, Value: ref}
	}
	return Instruction{Kind: KindAddress, Symbol: ref}, nil
}

func classifyLabel(text string) (Instruction, error) {
	if len(text) < 2 || !strings.HasSuffix(text, ")") {
		return Instruction{}, &Error{Kind: ErrMalformedLabel, Value: text}
	}
	name := text[1 : len(text)-1]
	if !isSymbol(name) {
		return Instruction{}, &Error{Kind: ErrMalformedLabel, Value: name}
	}
	return Instruction{Kind: KindLabel, Symbol: name}, nil
}

// [dest=]comp[;jump]
func classifyCompute(text string) (Instruction, error) {
	dest, rest := "null", text
	if i := strings.IndexByte(text, '='); i >= 0 {
		dest, rest = strings.TrimSpace(text[:i]), text[i+1:]
	}
	comp, jump := strings.TrimSpace(rest), "null"
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		comp, jump = strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+1:])
	}
	if _, err := EncodeCompute(dest, comp, jump); err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: KindCompute, Dest: dest, Comp: comp, Jump: jump}, nil
}
