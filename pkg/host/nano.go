// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

package host

// Command framing and session setup for the ROM programmer.

import (
	"fmt"
	"log"
	"time"
)

var debug = false

func SetDebug(setting bool) {
	debug = setting
}

const responseDelay = 20 * time.Millisecond

// Delay between unanswered sync attempts.
var syncRetryDelay = 1 * time.Second

// Device is the byte-level link to the board. *arduino.Arduino
// satisfies it.
type Device interface {
	ReadFor(timeout time.Duration) (byte, error)
	Write(b byte) error
}

type UnexpectedResponseError struct {
	Command  byte
	Response byte
}

func (u *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("command 0x%02X (%s): unexpected response 0x%02X",
		u.Command, cmdName(u.Command), u.Response)
}

// Discard anything the board sends on its own, then sync and check
// the protocol version.
func establishConnection(dev Device) error {
	if err := drain(dev); err != nil {
		return err
	}
	if err := getSyncResponse(dev); err != nil {
		return err
	}
	if err := checkProtocolVersion(dev); err != nil {
		return err
	}
	if debug {
		log.Println("protocol version OK")
	}
	return nil
}

// The board never sends more than an ack, a count below 256 and that
// many bytes without being asked, so if it is still talking after that
// much, something is wrong.
func drain(dev Device) error {
	for i := 0; i < 300; i++ {
		if _, err := dev.ReadFor(responseDelay); err != nil {
			if debug {
				log.Println("board is drained")
			}
			return nil
		}
	}
	return fmt.Errorf("board is transmitting continuously")
}

// Send syncs, slowly, until one is acknowledged.
func getSyncResponse(dev Device) error {
	const tries = 3
	for i := 0; i < tries; i++ {
		err := doCommand(dev, CmdSync)
		if err == nil {
			return nil
		}
		log.Printf("sync command failed: %s", err)
		time.Sleep(syncRetryDelay)
	}
	return fmt.Errorf("failed to synchronize")
}

func checkProtocolVersion(dev Device) error {
	b, err := doFixedCommand(dev, []byte{CmdGetVer}, 1)
	if err != nil {
		return err
	}
	if b[0] != ProtocolVersion {
		return fmt.Errorf("protocol version mismatch: host 0x%02X, board 0x%02X",
			ProtocolVersion, b[0])
	}
	return nil
}

// Do a command with no arguments and no response.
func doCommand(dev Device, cmd byte) error {
	_, err := doFixedCommand(dev, []byte{cmd}, 0)
	return err
}

func getAck(dev Device, cmd byte) error {
	b, err := dev.ReadFor(responseDelay)
	if err != nil {
		return fmt.Errorf("command 0x%02X (%s): %w", cmd, cmdName(cmd), err)
	}
	if b != Ack(cmd) {
		return &UnexpectedResponseError{cmd, b}
	}
	return nil
}

func writeBytes(dev Device, bytes []byte) error {
	for _, b := range bytes {
		if err := dev.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// Send a command byte and its fixed arguments, wait for the ack, and
// read the expected number of fixed response bytes.
func doFixedCommand(dev Device, fixed []byte, expected int) ([]byte, error) {
	if len(fixed) < 1 || len(fixed) > 8 {
		return nil, fmt.Errorf("invalid fixed command length")
	}
	if expected < 0 || expected > 8 {
		return nil, fmt.Errorf("invalid fixed response expected")
	}
	if debug {
		log.Printf("doFixedCommand: sending %v", fixed)
	}
	if err := writeBytes(dev, fixed); err != nil {
		return nil, err
	}
	if err := getAck(dev, fixed[0]); err != nil {
		return nil, err
	}

	response := make([]byte, expected)
	for i := 0; i < expected; i++ {
		b, err := dev.ReadFor(responseDelay)
		if err != nil {
			return nil, err
		}
		response[i] = b
	}
	return response, nil
}

// Send a command whose last fixed byte is a count, followed by that
// many bytes of data once the command is acknowledged.
func doCountedSend(dev Device, fixed []byte, counted []byte) error {
	count := int(fixed[len(fixed)-1])
	if len(counted) != count {
		return fmt.Errorf("counted send: have %d bytes, count is %d", len(counted), count)
	}
	if _, err := doFixedCommand(dev, fixed, 0); err != nil {
		return err
	}
	return writeBytes(dev, counted)
}
