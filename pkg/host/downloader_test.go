package host

import (
	"fmt"
	"time"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gmofishsauce/hackasm/pkg/arduino"
)

// fakeBoard implements the board side of the protocol in memory.
type fakeBoard struct {
	version byte
	pending []byte // bytes the board has yet to send
	rom     map[uint16]uint16
	addr    uint16

	cmd     byte
	args    []byte
	nargs   int
	data    []byte
	counted int
	pages   int
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{version: ProtocolVersion, rom: make(map[uint16]uint16), nargs: -1}
}

func (fb *fakeBoard) ReadFor(timeout time.Duration) (byte, error) {
	if len(fb.pending) == 0 {
		return 0, arduino.NoResponseError(timeout)
	}
	b := fb.pending[0]
	fb.pending = fb.pending[1:]
	return b, nil
}

func (fb *fakeBoard) Write(b byte) error {
	switch {
	case fb.counted > 0:
		fb.data = append(fb.data, b)
		fb.counted--
		if fb.counted == 0 {
			for i := 0; i+1 < len(fb.data); i += 2 {
				fb.rom[fb.addr] = uint16(fb.data[i])<<8 | uint16(fb.data[i+1])
				fb.addr++
			}
			fb.data = nil
			fb.pages++
		}
		return nil
	case fb.nargs < 0:
		fb.cmd, fb.args = b, nil
		switch b {
		case CmdSetAddr:
			fb.nargs = 2
		case CmdWritePage:
			fb.nargs = 1
		default:
			fb.nargs = 0
		}
	default:
		fb.args = append(fb.args, b)
	}
	if len(fb.args) < fb.nargs {
		return nil
	}
	fb.nargs = -1
	fb.pending = append(fb.pending, Ack(fb.cmd))
	switch fb.cmd {
	case CmdGetVer:
		fb.pending = append(fb.pending, fb.version)
	case CmdSetAddr:
		fb.addr = uint16(fb.args[0])<<8 | uint16(fb.args[1])
	case CmdWritePage:
		fb.counted = int(fb.args[0])
	}
	return nil
}

var _ = Describe("Downloader", func() {
	var (
		mockCtrl   *gomock.Controller
		mockDevice *MockDevice
		noResponse error
	)

	BeforeEach(func() {
		syncRetryDelay = 0
		mockCtrl = gomock.NewController(GinkgoT())
		mockDevice = NewMockDevice(mockCtrl)
		noResponse = arduino.NoResponseError(responseDelay)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write the program to ROM in pages", func() {
		board := newFakeBoard()
		words := make([]uint16, 2*PageWords+5)
		for i := range words {
			words[i] = uint16(0xE000 + i)
		}

		Expect(Download(board, words)).To(Succeed())

		Expect(board.pages).To(Equal(3))
		Expect(board.rom).To(HaveLen(len(words)))
		for i, w := range words {
			Expect(board.rom[uint16(i)]).To(Equal(w))
		}
	})

	It("should handle an empty program", func() {
		board := newFakeBoard()
		Expect(Download(board, nil)).To(Succeed())
		Expect(board.pages).To(Equal(0))
	})

	It("should refuse a board with another protocol version", func() {
		board := newFakeBoard()
		board.version = ProtocolVersion + 1
		err := Download(board, []uint16{1})
		Expect(err).To(MatchError(ContainSubstring("protocol version mismatch")))
		Expect(board.rom).To(BeEmpty())
	})

	It("should give up when sync is never acknowledged", func() {
		mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(0), noResponse).Times(4)
		mockDevice.EXPECT().Write(byte(CmdSync)).Return(nil).Times(3)

		err := Download(mockDevice, []uint16{1})
		Expect(err).To(MatchError("failed to synchronize"))
	})

	It("should report a bad ack", func() {
		gomock.InOrder(
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(0), noResponse),
			mockDevice.EXPECT().Write(byte(CmdSync)).Return(nil),
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(Ack(CmdSync), nil),
			mockDevice.EXPECT().Write(byte(CmdGetVer)).Return(nil),
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(Ack(CmdGetVer), nil),
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(ProtocolVersion), nil),
			mockDevice.EXPECT().Write(byte(CmdSetAddr)).Return(nil),
			mockDevice.EXPECT().Write(byte(0)).Return(nil).Times(2),
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(0x55), nil),
		)

		err := Download(mockDevice, []uint16{1})
		var ure *UnexpectedResponseError
		Expect(err).To(BeAssignableToTypeOf(ure))
		Expect(err.(*UnexpectedResponseError).Command).To(Equal(byte(CmdSetAddr)))
		Expect(err.(*UnexpectedResponseError).Response).To(Equal(byte(0x55)))
	})

	It("should fail when the board never stops talking", func() {
		mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(0x41), nil).Times(300)

		err := Download(mockDevice, nil)
		Expect(err).To(MatchError(ContainSubstring("transmitting continuously")))
	})

	It("should stop on a write error", func() {
		gomock.InOrder(
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(byte(0), noResponse),
			mockDevice.EXPECT().Write(byte(CmdSync)).Return(nil),
			mockDevice.EXPECT().ReadFor(gomock.Any()).Return(Ack(CmdSync), nil),
			mockDevice.EXPECT().Write(byte(CmdGetVer)).Return(errWriteFailed),
		)

		err := Download(mockDevice, []uint16{1})
		Expect(err).To(MatchError(errWriteFailed))
	})
})

var errWriteFailed = fmt.Errorf("write failed")
