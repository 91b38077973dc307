package inst

import (
	"bytes"
	_ "embed"
	"fmt"
)

// OpcodeCount is the number of opcodes in the 8080 instruction set.
const OpcodeCount = 256

//go:embed instructions.json
var defaultTable []byte

// Table maps every opcode byte to its Descriptor. A Table is only built
// through New, which guarantees all 256 entries are present and well formed,
// so Lookup never fails. It is read-only once built.
type Table struct {
	entries [OpcodeCount]Descriptor
}

// New builds a Table from entries in ascending opcode order.
func New(entries []Entry) (*Table, error) {
	if len(entries) != OpcodeCount {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrTableSize, len(entries), OpcodeCount)
	}

	t := &Table{}
	for op, e := range entries {
		if e.Mnemonic == "" {
			return nil, &TableError{Opcode: op, Err: ErrMnemonic}
		}
		if e.Length < 1 || e.Length > 3 {
			return nil, &TableError{Opcode: op, Err: fmt.Errorf("%w: %d", ErrLength, e.Length)}
		}
		t.entries[op] = Descriptor{
			Mnemonic: e.Mnemonic,
			Length:   e.Length,
			Style:    styleFor(e.Mnemonic, e.Length),
		}
	}
	return t, nil
}

// Default returns the built-in Intel 8080 table. Undocumented opcodes carry
// the mnemonic of the instruction they alias, prefixed with '*'.
func Default() (*Table, error) {
	t, err := Load(bytes.NewReader(defaultTable), FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("built-in table: %w", err)
	}
	return t, nil
}

// Lookup returns the descriptor for an opcode byte.
func (t *Table) Lookup(op byte) Descriptor {
	return t.entries[op]
}

// Entries returns a copy of all descriptors in opcode order.
func (t *Table) Entries() []Descriptor {
	out := make([]Descriptor, OpcodeCount)
	copy(out, t.entries[:])
	return out
}
