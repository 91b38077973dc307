package inst

import "strings"

// OperandStyle selects how the operand bytes of an instruction are rendered.
type OperandStyle uint8

const (
	StyleNone      OperandStyle = iota // no operand bytes
	StyleImmediate                     // literal data, rendered with '#'
	StylePort                          // I/O port number, rendered with '$'
	StyleAddress                       // memory address, rendered with '$'
)

// Prefix returns the character written in front of the operand, or 0 for
// StyleNone.
func (s OperandStyle) Prefix() byte {
	switch s {
	case StyleImmediate:
		return '#'
	case StylePort, StyleAddress:
		return '$'
	}
	return 0
}

func (s OperandStyle) String() string {
	switch s {
	case StyleNone:
		return "none"
	case StyleImmediate:
		return "immediate"
	case StylePort:
		return "port"
	case StyleAddress:
		return "address"
	}
	return "unknown"
}

// Descriptor is the static description of one opcode.
//
// Mnemonic is stored exactly as the table source spells it, including any
// padding and trailing separator ("mvi    c,"), so a listing line is the
// address, a space, the mnemonic and the operand with nothing in between.
type Descriptor struct {
	Mnemonic string
	Length   int // total bytes including the opcode: 1, 2 or 3
	Style    OperandStyle
}

// Operands returns the number of operand bytes following the opcode.
func (d Descriptor) Operands() int {
	return d.Length - 1
}

// styleFor tags a descriptor from its mnemonic text. Two-byte instructions
// whose mnemonic contains "out" or "in" take a port; three-byte instructions
// take an address unless the mnemonic contains "lxi". The match is a plain
// substring search, so any mnemonic containing "in" gets the port form.
func styleFor(mnemonic string, length int) OperandStyle {
	m := strings.ToLower(mnemonic)
	switch length {
	case 2:
		if strings.Contains(m, "out") || strings.Contains(m, "in") {
			return StylePort
		}
		return StyleImmediate
	case 3:
		if strings.Contains(m, "lxi") {
			return StyleImmediate
		}
		return StyleAddress
	}
	return StyleNone
}
