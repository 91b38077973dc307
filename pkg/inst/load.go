package inst

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrTableSize = errors.New("opcode table must have exactly 256 entries")
	ErrLength    = errors.New("instruction length must be 1, 2 or 3")
	ErrMnemonic  = errors.New("empty mnemonic")
	ErrEntry     = errors.New("malformed table entry")
)

// TableError reports a problem with the entry for a single opcode.
type TableError struct {
	Opcode int
	Err    error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("opcode 0x%02x: %v", e.Opcode, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// Entry is one row of a table source: a two element array holding the
// mnemonic and the instruction length, e.g. ["mvi    c,", 2].
type Entry struct {
	Mnemonic string
	Length   int
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrEntry, b)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: want [mnemonic, length], got %d elements", ErrEntry, len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Mnemonic); err != nil {
		return fmt.Errorf("%w: mnemonic %s", ErrEntry, raw[0])
	}
	if err := json.Unmarshal(raw[1], &e.Length); err != nil {
		return fmt.Errorf("%w: length %s", ErrEntry, raw[1])
	}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Mnemonic, e.Length})
}

func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("%w: line %d: want [mnemonic, length]", ErrEntry, value.Line)
	}
	mnem, length := value.Content[0], value.Content[1]
	if mnem.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: mnemonic is not a scalar", ErrEntry, value.Line)
	}
	e.Mnemonic = mnem.Value
	if err := length.Decode(&e.Length); err != nil {
		return fmt.Errorf("%w: line %d: length %q", ErrEntry, value.Line, length.Value)
	}
	return nil
}

// Format is the encoding of a table source.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks the table format from a file extension. Anything
// that is not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load parses a table source and validates it.
func Load(r io.Reader, format Format) (*Table, error) {
	var entries []Entry
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("decoding JSON table: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("decoding YAML table: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown table format %d", format)
	}
	return New(entries)
}

// LoadFile reads a table from disk, choosing the format by extension.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
