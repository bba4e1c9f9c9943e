// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

package host

// Line input for interactive commands, with a prompt shown only when
// the input is a terminal.

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"
)

type Input struct {
	channel      chan string
	out          io.Writer
	prompt       string
	interactive  bool
	promptNeeded bool
}

// NewInput starts reading lines from in. Prompts go to out, and only
// if in is a terminal.
func NewInput(in io.Reader, out io.Writer, prompt string) *Input {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	result := &Input{
		channel:      make(chan string),
		out:          out,
		prompt:       prompt,
		interactive:  interactive,
		promptNeeded: interactive,
	}
	go result.reader(in)
	return result
}

func (input *Input) Interactive() bool {
	return input.interactive
}

func (input *Input) promptIfTerminal() {
	if input.promptNeeded {
		fmt.Fprint(input.out, input.prompt)
		input.promptNeeded = false
	}
}

// Goroutine to consume the input and send it to the channel. The
// channel is closed at end of input.
func (input *Input) reader(in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		s, err := reader.ReadString('\n')
		if len(s) > 0 {
			input.channel <- strings.TrimRight(s, "\r\n")
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("reading input: %v", err)
			}
			close(input.channel)
			return
		}
	}
}

// Get returns the next line without its line ending. The second result
// is false at end of input.
func (input *Input) Get() (string, bool) {
	input.promptIfTerminal()
	line, ok := <-input.channel
	if ok {
		input.promptNeeded = input.interactive
	}
	return line, ok
}
