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

func TestRuntimeVisibleAnnotations(t *testing.T) {
	b := newBuilder()
	typ := b.Utf8("Lcom/example/Tag;")
	value := b.Utf8("value")
	info := b.Attribute("RuntimeVisibleAnnotations", classtest.Body(func(w *cursor.Writer) {
		w.U16(1)
		w.U16(typ)
		w.U16(4)
		// value = "x"
		w.U16(value)
		w.U8('s')
		w.U16(10)
		// kind = ElementType.FIELD
		w.U16(value)
		w.U8('e')
		w.U16(11)
		w.U16(12)
		// type = String.class
		w.U16(value)
		w.U8('c')
		w.U16(13)
		// nested = {{1}, @Inner}
		w.U16(value)
		w.U8('[')
		w.U16(2)
		w.U8('[')
		w.U16(1)
		w.U8('I')
		w.U16(14)
		w.U8('@')
		w.U16(typ)
		w.U16(0)
	}))
	cp := b.Pool()

	a, err := attribute.DecodeRuntimeVisibleAnnotations(cp, &info)
	require.NoError(t, err)
	require.Len(t, a.Annotations, 1)

	ann := a.Annotations[0]
	name, err := ann.TypeName(cp)
	require.NoError(t, err)
	assert.Equal(t, "Lcom/example/Tag;", name)
	require.Len(t, ann.Pairs, 4)

	assert.Equal(t, &attribute.ConstValue{Tag: 's', ConstValueIndex: 10}, ann.Pairs[0].Value)
	assert.Equal(t, &attribute.EnumValue{TypeNameIndex: 11, ConstNameIndex: 12}, ann.Pairs[1].Value)
	assert.Equal(t, &attribute.ClassValue{ClassInfoIndex: 13}, ann.Pairs[2].Value)
	assert.Equal(t, &attribute.ArrayValue{Values: []attribute.ElementValue{
		&attribute.ArrayValue{Values: []attribute.ElementValue{&attribute.ConstValue{Tag: 'I', ConstValueIndex: 14}}},
		&attribute.AnnotationValue{Annotation: attribute.Annotation{TypeIndex: typ, Pairs: []attribute.ElementValuePair{}}},
	}}, ann.Pairs[3].Value)
	assert.Equal(t, byte('['), ann.Pairs[3].Value.ElementTag())

	// The same payload under the other name decodes to the other type.
	info = b.Attribute("RuntimeInvisibleAnnotations", info.Data)
	got, err := attribute.Decode(b.Pool(), &info)
	require.NoError(t, err)
	inv, ok := got.(*attribute.RuntimeInvisibleAnnotations)
	require.True(t, ok)
	assert.Equal(t, a.Annotations, inv.Annotations)
}

func TestElementValueInvalidTag(t *testing.T) {
	for _, tag := range []byte{'x', 'L', 0, '['} {
		body := []byte{tag, 0, 1}
		if tag == '[' {
			body = []byte{'[', 0, 1, 'q'}
		}
		_, err := attribute.DecodeElementValue(cursor.New(body))
		var te *classfile.TagError
		require.True(t, errors.As(err, &te), "tag %q: %v", tag, err)
		assert.Equal(t, "element value tag", te.Kind)
	}
}

// nestedArrays returns an element value of depth arrays, each holding the
// next, around a single int constant.
func nestedArrays(depth int) []byte {
	w := cursor.NewWriter()
	for range depth {
		w.U8('[')
		w.U16(1)
	}
	w.U8('I')
	w.U16(1)
	return w.Bytes()
}

func TestElementValueDepth(t *testing.T) {
	c := cursor.New(nestedArrays(attribute.MaxElementDepth))
	v, err := attribute.DecodeElementValue(c)
	require.NoError(t, err)
	require.NoError(t, c.ExpectEnd())
	for range attribute.MaxElementDepth {
		arr, ok := v.(*attribute.ArrayValue)
		require.True(t, ok)
		require.Len(t, arr.Values, 1)
		v = arr.Values[0]
	}
	assert.Equal(t, &attribute.ConstValue{Tag: 'I', ConstValueIndex: 1}, v)

	for _, depth := range []int{attribute.MaxElementDepth + 1, 100000} {
		_, err := attribute.DecodeElementValue(cursor.New(nestedArrays(depth)))
		var fe *classfile.FormatError
		require.True(t, errors.As(err, &fe), "depth %d: %v", depth, err)
		assert.Equal(t, 3*attribute.MaxElementDepth, fe.Offset)
	}
}

func TestNestedAnnotationDepth(t *testing.T) {
	// Each level is an annotation with one element whose value is the
	// next annotation.
	w := cursor.NewWriter()
	w.U16(1)
	w.U16(1)
	w.U16(2)
	for range attribute.MaxElementDepth + 1 {
		w.U8('@')
		w.U16(1)
		w.U16(1)
		w.U16(2)
	}
	w.U8('Z')
	w.U16(3)

	var a attribute.Annotation
	err := a.Decode(cursor.New(w.Bytes()))
	var fe *classfile.FormatError
	require.True(t, errors.As(err, &fe), "%v", err)
	assert.Contains(t, fe.Reason, "nested deeper than")
}

func TestParameterAnnotations(t *testing.T) {
	b := newBuilder()
	typ := b.Utf8("Ljavax/annotation/Nonnull;")
	info := b.Attribute("RuntimeVisibleParameterAnnotations", classtest.Body(func(w *cursor.Writer) {
		w.U8(2)
		w.U16(0)
		w.U16(1)
		w.U16(typ)
		w.U16(0)
	}))
	pa, err := attribute.DecodeRuntimeVisibleParameterAnnotations(b.Pool(), &info)
	require.NoError(t, err)
	require.Len(t, pa.Parameters, 2)
	assert.Empty(t, pa.Parameters[0])
	require.Len(t, pa.Parameters[1], 1)
	assert.Equal(t, typ, pa.Parameters[1][0].TypeIndex)

	info = b.Attribute("RuntimeInvisibleParameterAnnotations", []byte{1, 0, 0})
	ipa, err := attribute.DecodeRuntimeInvisibleParameterAnnotations(b.Pool(), &info)
	require.NoError(t, err)
	assert.Len(t, ipa.Parameters, 1)
}

func TestAnnotationDefault(t *testing.T) {
	b := newBuilder()
	info := b.Attribute("AnnotationDefault", []byte{'Z', 0, 3})
	d, err := attribute.DecodeAnnotationDefault(b.Pool(), &info)
	require.NoError(t, err)
	assert.Equal(t, &attribute.ConstValue{Tag: 'Z', ConstValueIndex: 3}, d.Value)
}

func typeAnnotationBody(target []byte) []byte {
	return classtest.Body(func(w *cursor.Writer) {
		w.U16(1)
		w.Data(target)
		w.U8(2)
		w.Data([]byte{3, 0, 0, 1})
		w.U16(9)
		w.U16(0)
	})
}

func TestTypeAnnotationTargets(t *testing.T) {
	tests := []struct {
		target []byte
		want   attribute.TargetInfo
	}{
		{[]byte{0x00, 1}, &attribute.TypeParameterTarget{TypeParameterIndex: 1}},
		{[]byte{0x01, 2}, &attribute.TypeParameterTarget{TypeParameterIndex: 2}},
		{[]byte{0x10, 0xFF, 0xFF}, &attribute.SupertypeTarget{SupertypeIndex: 0xFFFF}},
		{[]byte{0x11, 1, 2}, &attribute.TypeParameterBoundTarget{TypeParameterIndex: 1, BoundIndex: 2}},
		{[]byte{0x12, 0, 1}, &attribute.TypeParameterBoundTarget{BoundIndex: 1}},
		{[]byte{0x13}, &attribute.EmptyTarget{}},
		{[]byte{0x14}, &attribute.EmptyTarget{}},
		{[]byte{0x15}, &attribute.EmptyTarget{}},
		{[]byte{0x16, 3}, &attribute.FormalParameterTarget{FormalParameterIndex: 3}},
		{[]byte{0x17, 0, 4}, &attribute.ThrowsTarget{ThrowsTypeIndex: 4}},
		{[]byte{0x40, 0, 1, 0, 2, 0, 8, 0, 1}, &attribute.LocalVarTarget{
			Table: []attribute.LocalVarTargetEntry{{StartPC: 2, Length: 8, Index: 1}},
		}},
		{[]byte{0x41, 0, 0}, &attribute.LocalVarTarget{Table: []attribute.LocalVarTargetEntry{}}},
		{[]byte{0x42, 0, 5}, &attribute.CatchTarget{ExceptionTableIndex: 5}},
		{[]byte{0x43, 0, 6}, &attribute.OffsetTarget{Offset: 6}},
		{[]byte{0x46, 0, 7}, &attribute.OffsetTarget{Offset: 7}},
		{[]byte{0x47, 0, 8, 1}, &attribute.TypeArgumentTarget{Offset: 8, TypeArgumentIndex: 1}},
		{[]byte{0x4B, 0, 9, 0}, &attribute.TypeArgumentTarget{Offset: 9}},
	}
	for _, tt := range tests {
		b := newBuilder()
		info := b.Attribute("RuntimeVisibleTypeAnnotations", typeAnnotationBody(tt.target))
		ta, err := attribute.DecodeRuntimeVisibleTypeAnnotations(b.Pool(), &info)
		require.NoError(t, err, "target 0x%02x", tt.target[0])
		require.Len(t, ta.Annotations, 1)

		a := ta.Annotations[0]
		assert.Equal(t, tt.target[0], a.TargetType)
		assert.Equal(t, tt.want, a.Target, "target 0x%02x", tt.target[0])
		assert.Equal(t, []attribute.TypePathEntry{{TypePathKind: 3}, {TypeArgumentIndex: 1}}, a.TypePath)
		assert.Equal(t, uint16(9), a.TypeIndex)
	}
}

func TestTypeAnnotationInvalidTarget(t *testing.T) {
	for _, target := range []byte{0x02, 0x18, 0x20, 0x3F, 0x4C, 0xFF} {
		b := newBuilder()
		info := b.Attribute("RuntimeInvisibleTypeAnnotations", typeAnnotationBody([]byte{target}))
		_, err := attribute.DecodeRuntimeInvisibleTypeAnnotations(b.Pool(), &info)
		var te *classfile.TagError
		require.True(t, errors.As(err, &te), "target 0x%02x: %v", target, err)
		assert.Equal(t, "type annotation target type", te.Kind)
		assert.Equal(t, int(target), te.Tag)
		assert.Equal(t, 2, te.Offset)
	}
}
