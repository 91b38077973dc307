package listing

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/oisee/i8080-disasm/pkg/disasm"
)

// Record is the serialised form of one listing line.
type Record struct {
	Address   int    `json:"address"`
	Bytes     string `json:"bytes"` // instruction encoding in hex, opcode first
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

// NewRecord converts a decoded line.
func NewRecord(l disasm.Line) Record {
	return Record{
		Address:   l.Address,
		Bytes:     hex.EncodeToString(l.Bytes()),
		Text:      l.String(),
		Truncated: l.Truncated,
	}
}

// Listing collects decoded lines. It implements disasm.Sink.
type Listing struct {
	lines []disasm.Line
}

// New creates an empty listing.
func New() *Listing {
	return &Listing{}
}

// Emit appends a line.
func (ls *Listing) Emit(l disasm.Line) error {
	ls.lines = append(ls.lines, l)
	return nil
}

// Lines returns a copy of the collected lines in address order.
func (ls *Listing) Lines() []disasm.Line {
	out := make([]disasm.Line, len(ls.lines))
	copy(out, ls.lines)
	return out
}

// Len returns the number of lines.
func (ls *Listing) Len() int {
	return len(ls.lines)
}

// Records returns the listing in serialisable form.
func (ls *Listing) Records() []Record {
	out := make([]Record, len(ls.lines))
	for i, l := range ls.lines {
		out[i] = NewRecord(l)
	}
	return out
}

// WriteText writes one newline terminated line per instruction.
func (ls *Listing) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, l := range ls.lines {
		if _, err := fmt.Fprintln(bw, l.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSON writes the listing as a JSON array of records.
func (ls *Listing) WriteJSON(w io.Writer, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(ls.Records())
}

// ReadJSON reads records written by WriteJSON.
func ReadJSON(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	return recs, nil
}

// Diff compares two listings and describes the first difference, or
// returns nil when they match.
func Diff(want, got []Record) error {
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			return fmt.Errorf("line %d differs: want %q got %q", i+1, want[i].Text, got[i].Text)
		}
	}
	switch {
	case len(want) > len(got):
		return fmt.Errorf("missing %d lines from %q", len(want)-len(got), want[len(got)].Text)
	case len(got) > len(want):
		return fmt.Errorf("%d extra lines from %q", len(got)-len(want), got[len(want)].Text)
	}
	return nil
}
