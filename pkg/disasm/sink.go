package disasm

import (
	"bufio"
	"io"
)

// Sink receives decoded lines in address order.
type Sink interface {
	Emit(line Line) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(line Line) error

func (f SinkFunc) Emit(line Line) error {
	return f(line)
}

// TextSink writes each line's text, newline terminated. Call Flush when
// decoding is done.
type TextSink struct {
	w *bufio.Writer
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: bufio.NewWriter(w)}
}

func (s *TextSink) Emit(line Line) error {
	if _, err := s.w.WriteString(line.String()); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Flush writes any buffered output.
func (s *TextSink) Flush() error {
	return s.w.Flush()
}
