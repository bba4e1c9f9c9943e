// Copyright (c) Jeff Berkowitz 2021, 2023. All rights reserved.

package host

// Serial protocol spoken by the ROM programmer firmware.
//
// The host sends a command byte followed by the command's fixed bytes.
// The board answers with the complement of the command byte (ack), then
// any fixed response. Counted data, if the command carries any, follows
// the ack and is not itself acknowledged.

const ProtocolVersion = 0x01

const (
	CmdSync      = 0xFF // no args, no response
	CmdGetVer    = 0xFE // no args, 1 byte response (ProtocolVersion)
	CmdSetAddr   = 0xFD // AH AL: ROM word address for the next page
	CmdWritePage = 0xFC // N, then N data bytes written from the current address
)

// Ack returns the acknowledgement the board sends for cmd.
func Ack(cmd byte) byte {
	return ^cmd
}

var cmdToString = map[byte]string{
	CmdSync:      "sync",
	CmdGetVer:    "getver",
	CmdSetAddr:   "setaddr",
	CmdWritePage: "writepage",
}

func cmdName(cmd byte) string {
	if s, ok := cmdToString[cmd]; ok {
		return s
	}
	return "unknown"
}
