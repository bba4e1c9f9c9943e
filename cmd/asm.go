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


package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/gmofishsauce/hackasm/pkg/asm"
)

var asmFlags struct {
	output  string
	listing bool
	symbols bool
	lenient bool
}

// asmCmd represents the asm command
var asmCmd = &cobra.Command{
	Use:   "asm sourceFile",
	Short: "Translate Hack assembly to .hack machine code",
	Long: `Asm translates one Hack assembly source file into a text file with
one line of 16 binary digits per machine word. The output file name is
the source name with its extension replaced (.hack by default) unless
-o is given. With -o -, the words are written to standard output, or a
listing is shown instead if standard output is a terminal.

The output file is written only if the whole translation succeeds. All
bad lines are reported, not just the first. With --lenient, compute
instructions with unknown mnemonics are skipped with a warning.
`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := asmOptions{
			source:    args[0],
			output:    asmFlags.output,
			outputExt: cfg.OutputExt,
			listing:   flagBool(cmd, "listing", asmFlags.listing, cfg.Listing),
			symbols:   flagBool(cmd, "symbols", asmFlags.symbols, cfg.Symbols),
			lenient:   flagBool(cmd, "lenient", asmFlags.lenient, cfg.Lenient),
		}
		return runAsm(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringVarP(&asmFlags.output, "output", "o", "", "output file, or - for standard output")
	asmCmd.Flags().BoolVar(&asmFlags.listing, "listing", false, "print a listing")
	asmCmd.Flags().BoolVar(&asmFlags.symbols, "symbols", false, "print the label and variable table")
	asmCmd.Flags().BoolVar(&asmFlags.lenient, "lenient", false, "skip lines with unknown mnemonics")
}

type asmOptions struct {
	source    string
	output    string
	outputExt string
	listing   bool
	symbols   bool
	lenient   bool
}

// outputPath returns where the words go, "-" meaning stdout.
func (o asmOptions) outputPath() string {
	if o.output != "" {
		return o.output
	}
	return strings.TrimSuffix(o.source, filepath.Ext(o.source)) + o.outputExt
}

func runAsm(opts asmOptions, stdout io.Writer) error {
	f, err := os.Open(opts.source)
	if err != nil {
		return err
	}
	defer f.Close()

	prog, err := asm.AssembleReader(opts.source, f, asm.Options{Lenient: opts.lenient})
	if err != nil {
		return err
	}

	out := opts.outputPath()
	if filepath.Clean(out) == filepath.Clean(opts.source) {
		return fmt.Errorf("%s: output would replace the source file", opts.source)
	}
	if out == "-" {
		if isTerminal(stdout) {
			err = asm.WriteListing(stdout, prog)
		} else {
			err = asm.WriteHack(stdout, prog.Words)
		}
		if err != nil {
			return err
		}
	} else {
		if err := writeHackFile(out, prog.Words); err != nil {
			return err
		}
		if opts.listing {
			if err := asm.WriteListing(stdout, prog); err != nil {
				return err
			}
		}
	}
	if opts.symbols {
		return asm.WriteSymbols(stdout, prog, false)
	}
	return nil
}

// Write the words next to path and rename into place, so a failed or
// interrupted run never leaves a partial file under the final name.
func writeHackFile(path string, words []uint16) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hackasm-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	atexit.Register(func() { os.Remove(tmpName) })

	if err := asm.WriteHack(tmp, words); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
