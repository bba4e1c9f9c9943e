// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

package host

// Downloader: writes a translated program into the board's ROM.

import (
	"log"
)

// Words per page. A page is sent as 2*PageWords bytes, which must fit
// the one-byte count of CmdWritePage.
const PageWords = 127

// Download connects to the board and writes words to ROM starting at
// address 0, high byte first.
func Download(dev Device, words []uint16) error {
	if err := establishConnection(dev); err != nil {
		return err
	}
	log.Printf("downloading %d words", len(words))
	for addr := 0; addr < len(words); addr += PageWords {
		end := addr + PageWords
		if end > len(words) {
			end = len(words)
		}
		if err := writePage(dev, uint16(addr), words[addr:end]); err != nil {
			return err
		}
	}
	log.Println("download complete")
	return nil
}

func writePage(dev Device, addr uint16, page []uint16) error {
	if err := doCommand3(dev, CmdSetAddr, byte(addr>>8), byte(addr)); err != nil {
		return err
	}
	data := make([]byte, 0, 2*len(page))
	for _, w := range page {
		data = append(data, byte(w>>8), byte(w))
	}
	if debug {
		log.Printf("writePage: addr %d, %d bytes", addr, len(data))
	}
	return doCountedSend(dev, []byte{CmdWritePage, byte(len(data))}, data)
}

func doCommand3(dev Device, cmd, arg1, arg2 byte) error {
	_, err := doFixedCommand(dev, []byte{cmd, arg1, arg2}, 0)
	return err
}
