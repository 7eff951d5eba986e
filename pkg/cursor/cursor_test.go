package cursor

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorBigEndianReads(t *testing.T) {
	c := New([]byte{
		0xCA, 0xFE, 0xBA, 0xBE,
		0x00, 0x34,
		0xFF,
		0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	})

	magic, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), magic)

	major, err := c.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(52), major)

	b, err := c.I8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), b)

	l, err := c.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8000000000000001), l)

	assert.Equal(t, 0, c.Remaining())
	assert.NoError(t, c.ExpectEnd())
}

func TestCursorPerReadOrder(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}

	be, err := Read[uint32](New(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), be)

	le, err := ReadOrder[uint32](New(data), binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), le)

	c := NewOrder(data, binary.LittleEndian)
	v, err := c.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)
	assert.Equal(t, binary.LittleEndian, c.Order())
}

func TestCursorEOF(t *testing.T) {
	tests := []struct {
		name string
		read func(c *Cursor) error
		want EOFError
	}{
		{"u16 on one byte", func(c *Cursor) error { _, err := c.U16(); return err }, EOFError{Offset: 0, Want: 2, Have: 1}},
		{"u32 on one byte", func(c *Cursor) error { _, err := c.U32(); return err }, EOFError{Offset: 0, Want: 4, Have: 1}},
		{"bytes past end", func(c *Cursor) error { _, err := c.Bytes(3); return err }, EOFError{Offset: 0, Want: 3, Have: 1}},
		{"generic i64", func(c *Cursor) error { _, err := Read[int64](c); return err }, EOFError{Offset: 0, Want: 8, Have: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New([]byte{0x7F})
			err := tt.read(c)
			var eof *EOFError
			require.True(t, errors.As(err, &eof), "got %v", err)
			assert.Equal(t, tt.want, *eof)
			assert.Equal(t, 0, c.Pos(), "failed read must not advance")
		})
	}
}

func TestCursorTrailing(t *testing.T) {
	c := New([]byte{1, 2, 3})
	_, err := c.U8()
	require.NoError(t, err)

	err = c.ExpectEnd()
	var trailing *TrailingError
	require.True(t, errors.As(err, &trailing))
	assert.Equal(t, 1, trailing.Offset)
	assert.Equal(t, 2, trailing.Remaining)
}

func TestReadMany(t *testing.T) {
	c := New([]byte{0x00, 0x01, 0x00, 0x02, 0xFF, 0xFE})
	v, err := ReadMany[int16](c, 3)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, -2}, v)

	_, err = ReadMany[int16](c, 1)
	assert.Error(t, err)
}

type pair struct {
	A uint16
	B uint8
}

func (p *pair) Decode(c *Cursor) error {
	var err error
	if p.A, err = c.U16(); err != nil {
		return err
	}
	p.B, err = c.U8()
	return err
}

func TestReadVec(t *testing.T) {
	c := New([]byte{0x00, 0x02, 0x00, 0x0A, 0x01, 0x00, 0x0B, 0x02})
	got, err := ReadU16Vec[pair](c)
	require.NoError(t, err)
	assert.Equal(t, []pair{{A: 10, B: 1}, {A: 11, B: 2}}, got)

	_, err = ReadVec[pair](New([]byte{0x00, 0x01}), 1)
	var eof *EOFError
	assert.True(t, errors.As(err, &eof))
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.I16(-2)
	w.U32(0xCAFEBABE)
	w.F32(1.5)
	w.F64(-0.25)
	w.I64(-9)
	WriteOrder(w, binary.LittleEndian, uint16(0x0102))

	c := New(w.Bytes())
	u8, _ := c.U8()
	i16, _ := c.I16()
	u32, _ := c.U32()
	f32, _ := c.F32()
	f64, _ := c.F64()
	i64, _ := c.I64()
	le, err := ReadOrder[uint16](c, binary.LittleEndian)
	require.NoError(t, err)

	assert.Equal(t, uint8(0xAB), u8)
	assert.Equal(t, int16(-2), i16)
	assert.Equal(t, uint32(0xCAFEBABE), u32)
	assert.Equal(t, float32(1.5), f32)
	assert.Equal(t, -0.25, f64)
	assert.Equal(t, int64(-9), i64)
	assert.Equal(t, uint16(0x0102), le)
	assert.NoError(t, c.ExpectEnd())
}

func TestWriterLittleEndian(t *testing.T) {
	w := NewWriterOrder(binary.LittleEndian)
	w.U16(0x0102)
	w.I32(-2)
	w.U64(0x0102030405060708)
	Write(w, uint16(0xBEEF))
	WriteOrder(w, binary.BigEndian, uint16(0xCAFE))
	assert.Equal(t, []byte{
		0x02, 0x01,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0xEF, 0xBE,
		0xCA, 0xFE,
	}, w.Bytes())

	c := NewOrder(w.Bytes(), binary.LittleEndian)
	u16, _ := c.U16()
	i32, _ := c.I32()
	u64, _ := c.U64()
	assert.Equal(t, uint16(0x0102), u16)
	assert.Equal(t, int32(-2), i32)
	assert.Equal(t, uint64(0x0102030405060708), u64)
}

func TestRest(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	c := New(data)
	_, err := c.U8()
	require.NoError(t, err)

	rest := c.Rest()
	assert.Equal(t, []byte{2, 3, 4}, rest)
	assert.Equal(t, 0, c.Remaining())
	assert.NoError(t, c.ExpectEnd())

	rest[0] = 0xFF
	assert.Equal(t, byte(2), data[1])
	assert.Empty(t, c.Rest())
}
