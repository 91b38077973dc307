package disasm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/oisee/i8080-disasm/pkg/inst"
)

// Policy decides what happens when the last instruction of an image is cut
// short.
type Policy int

const (
	// WarnOnTruncate emits the instruction with its missing operand bytes
	// read as zero, marks the line Truncated and logs a warning.
	WarnOnTruncate Policy = iota
	// FailOnTruncate stops before the truncated instruction and returns a
	// *TruncatedError.
	FailOnTruncate
)

func (p Policy) String() string {
	switch p {
	case WarnOnTruncate:
		return "warn"
	case FailOnTruncate:
		return "fail"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Set parses a policy name. Together with String and Type it lets a Policy
// be used directly as a command line flag.
func (p *Policy) Set(s string) error {
	switch s {
	case "warn":
		*p = WarnOnTruncate
	case "fail":
		*p = FailOnTruncate
	default:
		return fmt.Errorf("unknown truncation policy %q (want warn or fail)", s)
	}
	return nil
}

func (p *Policy) Type() string {
	return "policy"
}

// Config holds decoder configuration.
type Config struct {
	OnTruncate Policy
}

// Stats summarises a decode run.
type Stats struct {
	Instructions int
	Bytes        int // bytes read from the image, excluding zero padding
	Truncated    []*TruncatedError
}

// Decoder walks a program image linearly from address 0.
type Decoder struct {
	table *inst.Table
	cfg   Config
	log   *slog.Logger
}

// New creates a decoder. Every decoded line is also written to log at Info
// level; a nil log discards diagnostics.
func New(table *inst.Table, cfg Config, log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Decoder{table: table, cfg: cfg, log: log}
}

// Decode emits one line per instruction in image to sink, in address order.
// It stops at the first sink error, or at a truncated instruction when the
// policy is FailOnTruncate; lines emitted before that stay emitted.
func (d *Decoder) Decode(image []byte, sink Sink) (Stats, error) {
	var stats Stats
	ctx := context.Background()

	for pc := 0; pc < len(image); {
		op := image[pc]
		desc := d.table.Lookup(op)

		line := Line{
			Address:    pc,
			Opcode:     op,
			Operands:   make([]byte, desc.Operands()),
			Descriptor: desc,
		}
		end := min(pc+desc.Length, len(image))
		n := copy(line.Operands, image[pc+1:end])

		if n < len(line.Operands) {
			terr := &TruncatedError{
				Address:   pc,
				Opcode:    op,
				Length:    desc.Length,
				Available: end - pc,
			}
			if d.cfg.OnTruncate == FailOnTruncate {
				d.log.Error("decode stopped", "addr", pc, "err", terr)
				return stats, terr
			}
			line.Truncated = true
			stats.Truncated = append(stats.Truncated, terr)
			d.log.Warn("truncated instruction", "addr", pc, "opcode", op,
				"length", desc.Length, "available", terr.Available)
		}

		pc += desc.Length

		text := line.String()
		if err := sink.Emit(line); err != nil {
			return stats, fmt.Errorf("emitting line at 0x%04x: %w", line.Address, err)
		}
		stats.Instructions++
		stats.Bytes += end - line.Address
		d.log.LogAttrs(ctx, slog.LevelInfo, "decoded",
			slog.Int("addr", line.Address), slog.String("line", text))
	}

	return stats, nil
}

// Lines decodes image and returns the lines as a slice.
func (d *Decoder) Lines(image []byte) ([]Line, Stats, error) {
	var lines []Line
	stats, err := d.Decode(image, SinkFunc(func(l Line) error {
		lines = append(lines, l)
		return nil
	}))
	return lines, stats, err
}
