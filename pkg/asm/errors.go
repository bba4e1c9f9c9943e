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
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these, so callers
// can test with errors.Is.
var (
	ErrMalformedReference     = errors.New("malformed reference")
	ErrMalformedLabel         = errors.New("malformed label")
	ErrUnknownMnemonic        = errors.New("unknown mnemonic")
	ErrDuplicateLabel         = errors.New("duplicate label")
	ErrVariableSpaceExhausted = errors.New("variable space exhausted")
	ErrProgramTooLarge        = errors.New("program too large")
)

// Error describes a failure tied to one source line. Field and Value
// are set for unknown mnemonics ("dest", "comp" or "jump" and the
// offending text) and for malformed references and labels (Value only).
type Error struct {
	Kind  error
	Field string
	Value string
	Line  SourceLine
}

func (e *Error) Error() string {
	what := e.Kind.Error()
	switch {
	case e.Field != "":
		what = fmt.Sprintf("%s: %s %q", what, e.Field, e.Value)
	case e.Value != "":
		what = fmt.Sprintf("%s: %q", what, e.Value)
	}
	if e.Line.Num == 0 {
		return what
	}
	return fmt.Sprintf("%s:%d: %s (in %q)", e.Line.Name, e.Line.Num, what, e.Line.Text)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Attach the source line to an error from the classifier or encoder.
// Errors that are not *Error are wrapped with the position instead.
func at(err error, sl SourceLine) error {
	var ae *Error
	if errors.As(err, &ae) {
		located := *ae
		located.Line = sl
		return &located
	}
	return fmt.Errorf("%s:%d: %w", sl.Name, sl.Num, err)
}

func unknownMnemonic(field, value string) *Error {
	return &Error{Kind: ErrUnknownMnemonic, Field: field, Value: value}
}
