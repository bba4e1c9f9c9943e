package host

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Input", func() {
	It("should return lines without endings and report end of input", func() {
		var out bytes.Buffer
		input := NewInput(strings.NewReader("D=A\r\n@5\nlast"), &out, "enc> ")
		Expect(input.Interactive()).To(BeFalse())

		var lines []string
		for {
			line, ok := input.Get()
			if !ok {
				break
			}
			lines = append(lines, line)
		}
		Expect(lines).To(Equal([]string{"D=A", "@5", "last"}))
		Expect(out.String()).To(BeEmpty())
	})
})
