package attribute

import (
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// VerificationTag identifies a verification type.
type VerificationTag uint8

const (
	ItemTop VerificationTag = iota
	ItemInteger
	ItemFloat
	ItemDouble
	ItemLong
	ItemNull
	ItemUninitializedThis
	ItemObject
	ItemUninitialized
)

var verificationNames = [...]string{
	ItemTop:               "top",
	ItemInteger:           "int",
	ItemFloat:             "float",
	ItemDouble:            "double",
	ItemLong:              "long",
	ItemNull:              "null",
	ItemUninitializedThis: "uninitializedThis",
	ItemObject:            "object",
	ItemUninitialized:     "uninitialized",
}

func (t VerificationTag) String() string {
	if int(t) < len(verificationNames) {
		return verificationNames[t]
	}
	return "invalid"
}

// VerificationType is one local or stack slot type. CPoolIndex is set for
// ItemObject and Offset for ItemUninitialized (the offset of the new
// instruction that created the value).
type VerificationType struct {
	Tag        VerificationTag
	CPoolIndex uint16
	Offset     uint16
}

func (v *VerificationType) Decode(c *cursor.Cursor) error {
	at := c.Pos()
	tag, err := c.U8()
	if err != nil {
		return err
	}
	v.Tag = VerificationTag(tag)
	switch v.Tag {
	case ItemTop, ItemInteger, ItemFloat, ItemDouble, ItemLong, ItemNull, ItemUninitializedThis:
		return nil
	case ItemObject:
		v.CPoolIndex, err = c.U16()
		return err
	case ItemUninitialized:
		v.Offset, err = c.U16()
		return err
	}
	return &classfile.TagError{Kind: "verification type", Tag: int(tag), Offset: at}
}

// Frame is one stack map frame. The concrete type is one of *SameFrame,
// *SameLocals1StackItemFrame, *ChopFrame, *AppendFrame or *FullFrame.
type Frame interface {
	FrameType() uint8
	Delta() uint16
}

// FrameHeader holds the fields every frame has. For the short forms
// OffsetDelta is derived from Type.
type FrameHeader struct {
	Type        uint8
	OffsetDelta uint16
}

func (h *FrameHeader) FrameType() uint8 { return h.Type }
func (h *FrameHeader) Delta() uint16    { return h.OffsetDelta }

// SameFrame has the same locals as the previous frame and an empty stack
// (types 0-63 and 251).
type SameFrame struct {
	FrameHeader
}

// SameLocals1StackItemFrame has the previous locals and one stack item
// (types 64-127 and 247).
type SameLocals1StackItemFrame struct {
	FrameHeader
	Stack VerificationType
}

// ChopFrame drops the last Chopped() locals (types 248-250).
type ChopFrame struct {
	FrameHeader
}

// Chopped returns how many locals the frame removes.
func (f *ChopFrame) Chopped() int { return 251 - int(f.Type) }

// AppendFrame adds locals (types 252-254).
type AppendFrame struct {
	FrameHeader
	Locals []VerificationType
}

// FullFrame lists every local and stack item (type 255).
type FullFrame struct {
	FrameHeader
	Locals []VerificationType
	Stack  []VerificationType
}

func decodeFrame(c *cursor.Cursor) (Frame, error) {
	at := c.Pos()
	t, err := c.U8()
	if err != nil {
		return nil, err
	}
	h := FrameHeader{Type: t}
	switch {
	case t <= 63:
		h.OffsetDelta = uint16(t)
		return &SameFrame{h}, nil
	case t <= 127:
		h.OffsetDelta = uint16(t - 64)
		f := &SameLocals1StackItemFrame{FrameHeader: h}
		return f, f.Stack.Decode(c)
	case t <= 246:
		return nil, &classfile.TagError{Kind: "stack map frame type", Tag: int(t), Offset: at}
	}

	if h.OffsetDelta, err = c.U16(); err != nil {
		return nil, err
	}
	switch {
	case t == 247:
		f := &SameLocals1StackItemFrame{FrameHeader: h}
		return f, f.Stack.Decode(c)
	case t <= 250:
		return &ChopFrame{h}, nil
	case t == 251:
		return &SameFrame{h}, nil
	case t <= 254:
		f := &AppendFrame{FrameHeader: h}
		f.Locals, err = cursor.ReadVec[VerificationType](c, int(t)-251)
		return f, err
	}

	f := &FullFrame{FrameHeader: h}
	if f.Locals, err = cursor.ReadU16Vec[VerificationType](c); err != nil {
		return nil, errors.Wrap(err, "full frame locals")
	}
	if f.Stack, err = cursor.ReadU16Vec[VerificationType](c); err != nil {
		return nil, errors.Wrap(err, "full frame stack")
	}
	return f, nil
}

// StackMapTable belongs to a Code attribute.
type StackMapTable struct {
	Header
	Entries []Frame
}

func (*StackMapTable) AttributeName() string { return NameStackMapTable }

func (a *StackMapTable) Decode(c *cursor.Cursor) error {
	n, err := c.U16()
	if err != nil {
		return err
	}
	a.Entries = make([]Frame, 0, min(int(n), c.Remaining()))
	for i := 0; i < int(n); i++ {
		f, err := decodeFrame(c)
		if err != nil {
			return errors.Wrapf(err, "frame %d of %d", i, n)
		}
		a.Entries = append(a.Entries, f)
	}
	return nil
}

// Offsets returns the absolute code offset each frame applies to.
func (a *StackMapTable) Offsets() []int {
	out := make([]int, len(a.Entries))
	prev := -1
	for i, f := range a.Entries {
		prev += int(f.Delta()) + 1
		out[i] = prev
	}
	return out
}

// DecodeStackMapTable decodes a StackMapTable attribute.
func DecodeStackMapTable(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*StackMapTable, error) {
	return decodeAs[StackMapTable](cp, info, NameStackMapTable)
}
