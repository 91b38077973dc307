package disasm

import "fmt"

// TruncatedError reports an instruction whose declared length runs past the
// end of the image.
type TruncatedError struct {
	Address   int
	Opcode    byte
	Length    int // declared instruction length
	Available int // bytes left in the image from Address
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated instruction at 0x%04x: opcode 0x%02x needs %d bytes, %d available",
		e.Address, e.Opcode, e.Length, e.Available)
}
