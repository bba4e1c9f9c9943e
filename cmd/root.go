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
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gmofishsauce/hackasm/pkg/arduino"
	"github.com/gmofishsauce/hackasm/pkg/asm"
	"github.com/gmofishsauce/hackasm/pkg/config"
	"github.com/gmofishsauce/hackasm/pkg/host"
)

var (
	cfgFile   string
	debugFlag bool

	// Settings from the config file, loaded before any subcommand runs.
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hackasm",
	Short: "Assembler, simulator and ROM loader for the Hack computer",
	Long: `Hackasm translates Hack assembly language into the 16-bit words of
the Hack machine, runs them in a simulator, and downloads them to a
ROM programmer attached by a serial line.

Settings are read from ./hackasm.yaml if it exists, or from the file
named by --config. Command line flags override the file.`,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		explicit := cmd.Flags().Changed("config")
		if !explicit {
			path = config.DefaultFile
		}
		loaded, err := config.Load(path, explicit)
		if err != nil {
			return err
		}
		cfg = loaded
		setDebug(flagBool(cmd, "debug", debugFlag, cfg.Debug))
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetFlags(log.Lmsgprefix | log.Lmicroseconds)
	log.SetPrefix("hackasm: ")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "settings file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "trace internal operations")
}

func setDebug(on bool) {
	asm.SetDebug(on)
	host.SetDebug(on)
	arduino.SetDebug(on)
}

// flagBool returns the flag's value if it was given on the command
// line, else the value from the settings file.
func flagBool(cmd *cobra.Command, name string, flagValue, fileValue bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return fileValue
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
