// Package cursor reads and writes fixed-width values over in-memory byte
// buffers with strict bounds checking.
package cursor

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Fixed is the set of value types a Cursor can decode directly.
type Fixed interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// Decoder is implemented by structured types that read themselves off a cursor.
type Decoder interface {
	Decode(c *Cursor) error
}

// Cursor is a sequential reader over a byte slice. The position only moves
// forward; every read fails with an *EOFError if fewer bytes remain than
// requested.
type Cursor struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// New returns a big-endian cursor over data.
func New(data []byte) *Cursor {
	return &Cursor{data: data, order: binary.BigEndian}
}

// NewOrder returns a cursor over data that decodes with order by default.
func NewOrder(data []byte, order binary.ByteOrder) *Cursor {
	return &Cursor{data: data, order: order}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Order returns the cursor's default byte order.
func (c *Cursor) Order() binary.ByteOrder { return c.order }

// take consumes n bytes and returns them without copying.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, &EOFError{Offset: c.pos, Want: n, Have: len(c.data) - c.pos}
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Bytes consumes n bytes and returns a copy of them.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Rest consumes and returns a copy of every remaining byte.
func (c *Cursor) Rest() []byte {
	out := make([]byte, c.Remaining())
	copy(out, c.data[c.pos:])
	c.pos = len(c.data)
	return out
}

// Skip consumes n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

// ExpectEnd fails with a *TrailingError if any bytes remain unread.
func (c *Cursor) ExpectEnd() error {
	if r := c.Remaining(); r != 0 {
		return &TrailingError{Offset: c.pos, Remaining: r}
	}
	return nil
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed byte.
func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

// U16 reads an unsigned 16 bit value in the default order.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// I16 reads a signed 16 bit value in the default order.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads an unsigned 32 bit value in the default order.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// I32 reads a signed 32 bit value in the default order.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// U64 reads an unsigned 64 bit value in the default order.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(b), nil
}

// I64 reads a signed 64 bit value in the default order.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// F32 reads an IEEE 754 single precision value.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// F64 reads an IEEE 754 double precision value.
func (c *Cursor) F64() (float64, error) {
	v, err := c.U64()
	return math.Float64frombits(v), err
}

// Read decodes one T using the cursor's default byte order.
func Read[T Fixed](c *Cursor) (T, error) {
	return ReadOrder[T](c, c.order)
}

// ReadOrder decodes one T using order, leaving the default untouched.
func ReadOrder[T Fixed](c *Cursor, order binary.ByteOrder) (T, error) {
	var v T
	b, err := c.take(binary.Size(v))
	if err != nil {
		return v, err
	}
	if _, err := binary.Decode(b, order, &v); err != nil {
		return v, errors.Wrapf(err, "decoding %T at offset %d", v, c.pos-len(b))
	}
	return v, nil
}

// ReadMany decodes n consecutive values of T. The result is not
// preallocated beyond what the remaining input could hold, so a corrupt
// count fails with an *EOFError instead of a huge allocation.
func ReadMany[T Fixed](c *Cursor, n int) ([]T, error) {
	if n < 0 {
		return nil, &EOFError{Offset: c.pos, Want: n, Have: c.Remaining()}
	}
	out := make([]T, 0, min(n, c.Remaining()))
	for i := 0; i < n; i++ {
		v, err := Read[T](c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadVec decodes n consecutive structured values, each through its own
// Decode method.
func ReadVec[T any, PT interface {
	*T
	Decoder
}](c *Cursor, n int) ([]T, error) {
	out := make([]T, n)
	for i := range out {
		if err := PT(&out[i]).Decode(c); err != nil {
			return nil, errors.Wrapf(err, "element %d of %d", i, n)
		}
	}
	return out, nil
}

// ReadU16Vec reads a u2 count followed by that many structured values.
func ReadU16Vec[T any, PT interface {
	*T
	Decoder
}](c *Cursor) ([]T, error) {
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	return ReadVec[T, PT](c, int(n))
}
