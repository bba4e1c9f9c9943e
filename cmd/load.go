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
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/hackasm/pkg/arduino"
	"github.com/gmofishsauce/hackasm/pkg/asm"
	"github.com/gmofishsauce/hackasm/pkg/host"
)

var loadFlags struct {
	device string
	baud   int
}

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load hackFile",
	Short: "Download a .hack file to the ROM programmer",
	Long: `Load opens the serial line to the Arduino Nano which drives the ROM
programmer, waits out the reset caused by opening the port, and writes
the program into ROM starting at address 0. The device and baud rate
come from --device and --baud or from the serial section of the
settings file. The port is released when the download ends.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device := cfg.Serial.Device
		if cmd.Flags().Changed("device") {
			device = loadFlags.device
		}
		baud := cfg.Serial.Baud
		if cmd.Flags().Changed("baud") {
			baud = loadFlags.baud
		}
		return runLoad(args[0], device, baud)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadFlags.device, "device", "", "serial device, e.g. /dev/cu.usbserial-1410")
	loadCmd.Flags().IntVar(&loadFlags.baud, "baud", 0, "serial line speed")
}

func readHackFile(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	words, err := asm.ReadHack(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

func runLoad(path string, device string, baud int) error {
	words, err := readHackFile(path)
	if err != nil {
		return err
	}
	if device == "" {
		return fmt.Errorf("no serial device: use --device or set serial.device in %s", cfgFile)
	}
	if baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", baud)
	}

	log.Printf("opening %s at %d baud", device, baud)
	nano, err := arduino.New(device, baud)
	if err != nil {
		return err
	}
	defer nano.Close()
	return host.Download(nano, words)
}
