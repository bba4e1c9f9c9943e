// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

// Package arduino provides synchronous byte I/O with the microcontroller
// that programs the target board's ROM. The board is reached over a USB
// serial port. Opening a USB serial port raises DTR, which resets most
// Arduino-class boards, so New waits out the reset before returning.
//
// All I/O is done from the caller's goroutine. The serial port object is
// not safe for concurrent Read and Close, and the read timeout offered by
// go.bug.st/serial makes a reader goroutine unnecessary.

package arduino

import (
	"fmt"
	"log"
	"syscall"
	"time"

	"go.bug.st/serial"
)

// ResetDelay is how long New waits after opening the port.
var ResetDelay = 3 * time.Second

var debug bool = false

func SetDebug(setting bool) {
	debug = setting
}

type Arduino struct {
	port serial.Port
}

type NoResponseError time.Duration

func (nre NoResponseError) Error() string {
	return fmt.Sprintf("read from board: no response after %v", time.Duration(nre))
}

// New opens deviceName at baudRate, 8 data bits, no parity, one stop bit.
func New(deviceName string, baudRate int) (*Arduino, error) {
	mode := &serial.Mode{BaudRate: baudRate, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	port, err := serial.Open(deviceName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", deviceName, err)
	}

	// The bootloader eats the first bytes after a reset looking for a
	// programmer, so nothing may be sent until it has given up.
	log.Printf("serial port %s is open - delaying %v for board reset", deviceName, ResetDelay)
	time.Sleep(ResetDelay)
	return &Arduino{port: port}, nil
}

// ReadFor waits up to timeout for one byte.
func (arduino *Arduino) ReadFor(timeout time.Duration) (byte, error) {
	b := make([]byte, 1)
	var n int
	var err error

	if err = arduino.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	// Retry only on EINTR, which the Go runtime's signals cause often.
	for {
		n, err = arduino.port.Read(b)
		if !isRetryableSyscallError(err) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, NoResponseError(timeout)
	}
	if debug {
		log.Printf("arduino: read 0x%02X", b[0])
	}
	return b[0], nil
}

// Write sends one byte.
func (arduino *Arduino) Write(toWrite byte) error {
	if debug {
		log.Printf("arduino: write 0x%02X", toWrite)
	}
	b := []byte{toWrite}
	var n int
	var err error

	for {
		n, err = arduino.port.Write(b)
		if !isRetryableSyscallError(err) {
			break
		}
	}
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("write consumed %d bytes", n)
	}
	return nil
}

func (arduino *Arduino) Close() error {
	if arduino.port == nil {
		return fmt.Errorf("internal error: close: port not open")
	}
	err := arduino.port.Close()
	arduino.port = nil
	if err != nil {
		log.Printf("close serial port: %s", err)
		return err
	}
	log.Println("serial port closed")
	return nil
}

func isRetryableSyscallError(err error) bool {
	errno, ok := err.(syscall.Errno)
	return ok && errno == syscall.EINTR
}
