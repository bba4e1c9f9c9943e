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
	"strings"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/hackasm/pkg/asm"
	"github.com/gmofishsauce/hackasm/pkg/host"
)

// encCmd represents the enc command
var encCmd = &cobra.Command{
	Use:   "enc",
	Short: "Translate assembly lines interactively",
	Long: `Enc reads assembly lines from standard input and prints the machine
word for each one. Every line is translated on its own, with a fresh
symbol table, so a symbolic reference always gets the first variable
address unless it names a predefined symbol. Errors are printed and
the next line is read. End of input ends the session.`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := host.NewInput(cmd.InOrStdin(), cmd.OutOrStdout(), "enc> ")
		runEnc(input, cmd.OutOrStdout(), cfg.Lenient)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encCmd)
}

func runEnc(input *host.Input, out io.Writer, lenient bool) {
	for {
		line, ok := input.Get()
		if !ok {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		prog, err := asm.AssembleReader("stdin", strings.NewReader(line), asm.Options{Lenient: lenient})
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		for _, w := range prog.Words {
			fmt.Fprintf(out, "%016b  0x%04X  %s\n", w, w, asm.Disassemble(w))
		}
		for _, s := range prog.Symbols {
			if s.Kind == asm.SymLabel {
				fmt.Fprintf(out, "%s = %d\n", s.Name, s.Addr)
			}
		}
	}
}
