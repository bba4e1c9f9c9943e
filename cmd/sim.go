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
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/hackasm/pkg/asm"
	"github.com/gmofishsauce/hackasm/pkg/sim"
)

var simFlags struct {
	cycles int
	peek   []string
	trace  bool
}

// simCmd represents the sim command
var simCmd = &cobra.Command{
	Use:   "sim hackFile",
	Short: "The Hack simulator",
	Long: `Sim loads a .hack file into the ROM of a simulated Hack computer and
runs it until the program counter leaves the program, the program
reaches its final @END / 0;JMP loop, or the cycle limit is reached.
The RAM cells named by --peek are then printed. Cells may be given as
numbers or as predefined symbols such as R0 or SCREEN.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycles := cfg.Sim.MaxCycles
		if cmd.Flags().Changed("cycles") {
			cycles = simFlags.cycles
		}
		return runSim(args[0], cycles, simFlags.peek, simFlags.trace, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.Flags().IntVar(&simFlags.cycles, "cycles", 0, "maximum instructions to execute")
	simCmd.Flags().StringSliceVar(&simFlags.peek, "peek", nil, "RAM cells to print after the run")
	simCmd.Flags().BoolVar(&simFlags.trace, "trace", false, "print each instruction as it executes")
}

func runSim(path string, cycles int, peeks []string, trace bool, out io.Writer) error {
	addrs, err := peekAddresses(peeks)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := sim.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if trace {
		m.Trace = log.New(out, "", 0)
	}

	n, runErr := m.Run(cycles)
	switch {
	case runErr == nil:
		fmt.Fprintf(out, "halted at pc %d after %d cycles\n", m.PC(), n)
	case errors.Is(runErr, sim.ErrCycleLimit):
		fmt.Fprintf(out, "stopped at pc %d after %d cycles\n", m.PC(), n)
	default:
		return fmt.Errorf("pc %d: %w", m.PC(), runErr)
	}

	for i, addr := range addrs {
		v, err := m.Peek(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "RAM[%s] = %d\n", peeks[i], int16(v))
	}
	return runErr
}

func peekAddresses(peeks []string) ([]uint16, error) {
	var st *asm.SymbolTable
	result := make([]uint16, 0, len(peeks))
	for _, p := range peeks {
		if n, err := strconv.ParseUint(p, 10, 16); err == nil {
			if n >= sim.RamSize {
				return nil, fmt.Errorf("peek %s: %w", p, sim.ErrBadAddress)
			}
			result = append(result, uint16(n))
			continue
		}
		if st == nil {
			st = asm.NewSymbolTable()
		}
		if !st.Contains(p) {
			return nil, fmt.Errorf("peek %s: not an address or predefined symbol", p)
		}
		result = append(result, st.Get(p))
	}
	return result, nil
}
