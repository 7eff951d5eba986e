package attribute_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jclass/internal/classtest"
	"github.com/daimatz/jclass/pkg/attribute"
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

func TestStackMapTable(t *testing.T) {
	b := newBuilder()
	str := b.Class("java/lang/String")
	info := b.Attribute("StackMapTable", classtest.Body(func(w *cursor.Writer) {
		w.U16(7)
		w.U8(3) // same, delta 3
		w.U8(64 + 2)
		w.U8(uint8(attribute.ItemInteger)) // same_locals_1_stack_item, delta 2
		w.U8(247)
		w.U16(300)
		w.U8(uint8(attribute.ItemObject))
		w.U16(str)
		w.U8(249) // chop 2
		w.U16(4)
		w.U8(251)
		w.U16(1000)
		w.U8(253) // append 2
		w.U16(0)
		w.U8(uint8(attribute.ItemLong))
		w.U8(uint8(attribute.ItemUninitialized))
		w.U16(17)
		w.U8(255)
		w.U16(5)
		w.U16(1)
		w.U8(uint8(attribute.ItemUninitializedThis))
		w.U16(2)
		w.U8(uint8(attribute.ItemNull))
		w.U8(uint8(attribute.ItemTop))
	}))

	sm, err := attribute.DecodeStackMapTable(b.Pool(), &info)
	require.NoError(t, err)
	require.Len(t, sm.Entries, 7)

	assert.Equal(t, &attribute.SameFrame{FrameHeader: attribute.FrameHeader{Type: 3, OffsetDelta: 3}}, sm.Entries[0])
	assert.Equal(t, &attribute.SameLocals1StackItemFrame{
		FrameHeader: attribute.FrameHeader{Type: 66, OffsetDelta: 2},
		Stack:       attribute.VerificationType{Tag: attribute.ItemInteger},
	}, sm.Entries[1])
	assert.Equal(t, &attribute.SameLocals1StackItemFrame{
		FrameHeader: attribute.FrameHeader{Type: 247, OffsetDelta: 300},
		Stack:       attribute.VerificationType{Tag: attribute.ItemObject, CPoolIndex: str},
	}, sm.Entries[2])

	chop, ok := sm.Entries[3].(*attribute.ChopFrame)
	require.True(t, ok)
	assert.Equal(t, 2, chop.Chopped())

	assert.Equal(t, &attribute.SameFrame{FrameHeader: attribute.FrameHeader{Type: 251, OffsetDelta: 1000}}, sm.Entries[4])
	assert.Equal(t, &attribute.AppendFrame{
		FrameHeader: attribute.FrameHeader{Type: 253},
		Locals: []attribute.VerificationType{
			{Tag: attribute.ItemLong},
			{Tag: attribute.ItemUninitialized, Offset: 17},
		},
	}, sm.Entries[5])
	assert.Equal(t, &attribute.FullFrame{
		FrameHeader: attribute.FrameHeader{Type: 255, OffsetDelta: 5},
		Locals:      []attribute.VerificationType{{Tag: attribute.ItemUninitializedThis}},
		Stack:       []attribute.VerificationType{{Tag: attribute.ItemNull}, {Tag: attribute.ItemTop}},
	}, sm.Entries[6])

	assert.Equal(t, []int{3, 6, 307, 312, 1313, 1314, 1320}, sm.Offsets())
	assert.Equal(t, "uninitializedThis", attribute.ItemUninitializedThis.String())
}

func TestStackMapInvalidTags(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		kind   string
		tag    int
		offset int
	}{
		{"reserved frame 128", []byte{0, 1, 128}, "stack map frame type", 128, 2},
		{"reserved frame 246", []byte{0, 2, 0, 246}, "stack map frame type", 246, 3},
		{"verification 9", []byte{0, 1, 64, 9}, "verification type", 9, 3},
		{"append verification", []byte{0, 1, 252, 0, 0, 0xFF}, "verification type", 0xFF, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			info := b.Attribute("StackMapTable", tt.body)
			_, err := attribute.DecodeStackMapTable(b.Pool(), &info)
			var te *classfile.TagError
			require.True(t, errors.As(err, &te), "%v", err)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, tt.tag, te.Tag)
			assert.Equal(t, tt.offset, te.Offset)
		})
	}
}

func TestStackMapTruncated(t *testing.T) {
	b := newBuilder()
	info := b.Attribute("StackMapTable", []byte{0, 2, 255, 0, 1, 0, 3, 1})
	_, err := attribute.DecodeStackMapTable(b.Pool(), &info)
	var eof *cursor.EOFError
	require.True(t, errors.As(err, &eof), "%v", err)
}
