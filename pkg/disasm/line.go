package disasm

import (
	"strconv"

	"github.com/oisee/i8080-disasm/pkg/inst"
)

// Line is one decoded instruction.
type Line struct {
	Address    int
	Opcode     byte
	Operands   []byte // always Descriptor.Operands() long, in stream order
	Descriptor inst.Descriptor
	Truncated  bool // operand bytes ran past the image and were read as zero
}

// Bytes returns the instruction's encoding, opcode first.
func (l Line) Bytes() []byte {
	b := make([]byte, 0, 1+len(l.Operands))
	b = append(b, l.Opcode)
	return append(b, l.Operands...)
}

// String renders the listing line: a four digit lowercase address, a space,
// the mnemonic as stored in the table and then the operand, if any. Two byte
// operands are written high byte first.
func (l Line) String() string {
	buf := make([]byte, 0, 24)
	buf = appendHex(buf, uint64(l.Address), 4)
	buf = append(buf, ' ')
	buf = append(buf, l.Descriptor.Mnemonic...)

	switch l.Descriptor.Length {
	case 2:
		buf = append(buf, l.Descriptor.Style.Prefix())
		buf = appendHex(buf, uint64(l.Operands[0]), 2)
	case 3:
		buf = append(buf, l.Descriptor.Style.Prefix())
		buf = appendHex(buf, uint64(l.Operands[1]), 2)
		buf = appendHex(buf, uint64(l.Operands[0]), 2)
	}
	return string(buf)
}

func appendHex(buf []byte, v uint64, width int) []byte {
	s := strconv.FormatUint(v, 16)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}
