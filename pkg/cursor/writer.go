package cursor

import (
	"encoding/binary"
	"math"
)

// ByteOrder is a byte order that can both decode and append.
// binary.BigEndian and binary.LittleEndian satisfy it.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Writer appends fixed-width values to a growing buffer. It is the encoding
// mirror of Cursor and cannot fail.
type Writer struct {
	buf   []byte
	order ByteOrder
}

// NewWriter returns a big-endian writer.
func NewWriter() *Writer {
	return &Writer{order: binary.BigEndian}
}

// NewWriterOrder returns a writer that encodes with order by default.
func NewWriterOrder(order ByteOrder) *Writer {
	return &Writer{order: order}
}

// Bytes returns the encoded data. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Data appends raw bytes.
func (w *Writer) Data(b []byte) { w.buf = append(w.buf, b...) }

// U8 appends one byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// I8 appends one signed byte.
func (w *Writer) I8(v int8) { w.U8(uint8(v)) }

// U16 appends a 16 bit value.
func (w *Writer) U16(v uint16) { w.buf = w.order.AppendUint16(w.buf, v) }

// I16 appends a signed 16 bit value.
func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

// U32 appends a 32 bit value.
func (w *Writer) U32(v uint32) { w.buf = w.order.AppendUint32(w.buf, v) }

// I32 appends a signed 32 bit value.
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

// U64 appends a 64 bit value.
func (w *Writer) U64(v uint64) { w.buf = w.order.AppendUint64(w.buf, v) }

// I64 appends a signed 64 bit value.
func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

// F32 appends an IEEE 754 single precision value.
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// F64 appends an IEEE 754 double precision value.
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

// Write encodes v with the writer's default byte order.
func Write[T Fixed](w *Writer, v T) {
	WriteOrder(w, w.order, v)
}

// WriteOrder encodes v with order.
func WriteOrder[T Fixed](w *Writer, order binary.ByteOrder, v T) {
	w.buf, _ = binary.Append(w.buf, order, v)
}
