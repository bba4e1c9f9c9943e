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

	"github.com/jedib0t/go-pretty/v6/table"
)

const wordBits = 16

// WriteHack writes one line of 16 binary digits per word, most
// significant bit first.
func WriteHack(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%016b\n", word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadHack reads words in the format written by WriteHack. Blank lines
// are ignored; any other line must be exactly 16 binary digits.
func ReadHack(r io.Reader) ([]uint16, error) {
	var words []uint16
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		word, err := parseWord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", num, err)
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func parseWord(text string) (uint16, error) {
	if len(text) != wordBits {
		return 0, fmt.Errorf("%q: expected %d binary digits", text, wordBits)
	}
	var word uint16
	for i := 0; i < wordBits; i++ {
		word <<= 1
		switch text[i] {
		case '0':
		case '1':
			word |= 1
		default:
			return 0, fmt.Errorf("%q: not a binary digit at column %d", text, i+1)
		}
	}
	return word, nil
}

// WriteListing renders the program as a table of ROM address, word,
// decoded instruction and the source line it came from.
func WriteListing(w io.Writer, prog *Program) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ROM", "WORD", "DECODED", "LINE", "SOURCE"})
	for i, word := range prog.Words {
		src := prog.Lines[i]
		t.AppendRow(table.Row{i, fmt.Sprintf("%016b", word), Disassemble(word), src.Num, src.Text})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriteSymbols dumps the symbol table of a finished run in name order.
// Predefined symbols are left out unless all is set.
func WriteSymbols(w io.Writer, prog *Program, all bool) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"SYMBOL", "VALUE", "KIND"})
	for _, s := range prog.Symbols {
		if s.Kind == SymPredefined && !all {
			continue
		}
		t.AppendRow(table.Row{s.Name, s.Addr, s.Kind})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
