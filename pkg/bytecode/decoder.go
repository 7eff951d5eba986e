// Package bytecode decodes the code array of a Code attribute into
// instructions.
package bytecode

import (
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/cursor"
)

// Decode splits code into instructions. Decoding stops at the first error;
// on success the sizes of the returned instructions sum to len(code).
func Decode(code []byte) ([]Instruction, error) {
	c := cursor.New(code)
	var out []Instruction
	for c.Remaining() > 0 {
		in, err := decodeOne(c)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func decodeOne(c *cursor.Cursor) (Instruction, error) {
	start := c.Pos()
	b, err := c.U8()
	if err != nil {
		return Instruction{}, err
	}
	in := Instruction{Offset: start, Opcode: Opcode(b)}

	shape := ShapeOf(in.Opcode)
	switch shape {
	case ShapeInvalid:
		return Instruction{}, &OpcodeError{Opcode: b, Offset: start}
	case ShapeNone:
	case ShapeTableSwitch, ShapeLookupSwitch:
		in.Padding = ((start+1+3)&^3) - start - 1
		if err := c.Skip(in.Padding); err != nil {
			return Instruction{}, err
		}
		if shape == ShapeTableSwitch {
			in.Operands, err = decodeTableSwitch(c, start)
		} else {
			in.Operands, err = decodeLookupSwitch(c, start)
		}
		if err != nil {
			return Instruction{}, errors.Wrapf(err, "%s at offset %d", in.Opcode, start)
		}
	case ShapeWide:
		next, err := c.U8()
		if err != nil {
			return Instruction{}, err
		}
		op := Opcode(next)
		if !wideable(op) {
			return Instruction{}, &WideError{Opcode: next, Offset: start + 1}
		}
		in.Opcode, in.Wide = op, true
		n := 2
		if op == OpIinc {
			n = 4
		}
		if in.Operands, err = c.Bytes(n); err != nil {
			return Instruction{}, err
		}
	default:
		if in.Operands, err = c.Bytes(shape.operandLen()); err != nil {
			return Instruction{}, err
		}
	}
	return in, nil
}

// decodeTableSwitch reads default, low, high and the jump table, and
// re-encodes them with targets made absolute.
func decodeTableSwitch(c *cursor.Cursor, start int) ([]byte, error) {
	def, err := c.I32()
	if err != nil {
		return nil, err
	}
	low, err := c.I32()
	if err != nil {
		return nil, err
	}
	high, err := c.I32()
	if err != nil {
		return nil, err
	}
	if low > high {
		return nil, &RangeError{Low: low, High: high, Offset: start}
	}
	offsets, err := cursor.ReadMany[int32](c, int(int64(high)-int64(low)+1))
	if err != nil {
		return nil, err
	}

	w := cursor.NewWriter()
	w.I32(def + int32(start))
	w.I32(low)
	w.I32(high)
	for _, off := range offsets {
		w.I32(off + int32(start))
	}
	return w.Bytes(), nil
}

// decodeLookupSwitch reads default and the match/offset pairs, and
// re-encodes them with targets made absolute.
func decodeLookupSwitch(c *cursor.Cursor, start int) ([]byte, error) {
	def, err := c.I32()
	if err != nil {
		return nil, err
	}
	npairs, err := c.I32()
	if err != nil {
		return nil, err
	}
	if npairs < 0 {
		return nil, &RangeError{Low: 0, High: npairs - 1, Offset: start}
	}
	pairs, err := cursor.ReadMany[int32](c, 2*int(npairs))
	if err != nil {
		return nil, err
	}

	w := cursor.NewWriter()
	w.I32(def + int32(start))
	w.I32(npairs)
	for i := 0; i < len(pairs); i += 2 {
		w.I32(pairs[i])
		w.I32(pairs[i+1] + int32(start))
	}
	return w.Bytes(), nil
}
