package attribute

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// ElementValue is the value of an annotation element. The concrete type is
// one of *ConstValue, *EnumValue, *ClassValue, *AnnotationValue or
// *ArrayValue.
type ElementValue interface {
	ElementTag() byte
}

// ConstValue is a primitive or String constant (tags B C D F I J S Z s).
type ConstValue struct {
	Tag             byte
	ConstValueIndex uint16
}

func (v *ConstValue) ElementTag() byte { return v.Tag }

// EnumValue names an enum constant.
type EnumValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

func (*EnumValue) ElementTag() byte { return 'e' }

// ClassValue is a class literal; ClassInfoIndex points at a return
// descriptor such as "Ljava/lang/String;" or "V".
type ClassValue struct {
	ClassInfoIndex uint16
}

func (*ClassValue) ElementTag() byte { return 'c' }

// AnnotationValue is a nested annotation.
type AnnotationValue struct {
	Annotation Annotation
}

func (*AnnotationValue) ElementTag() byte { return '@' }

// ArrayValue holds element values of any kind, including further arrays.
type ArrayValue struct {
	Values []ElementValue
}

func (*ArrayValue) ElementTag() byte { return '[' }

// MaxElementDepth bounds how deeply annotations and arrays may nest inside
// one element value.
const MaxElementDepth = 256

// DecodeElementValue reads one tagged element value.
func DecodeElementValue(c *cursor.Cursor) (ElementValue, error) {
	return decodeElementValue(c, 0)
}

func decodeElementValue(c *cursor.Cursor, depth int) (ElementValue, error) {
	at := c.Pos()
	tag, err := c.U8()
	if err != nil {
		return nil, err
	}
	if (tag == '@' || tag == '[') && depth >= MaxElementDepth {
		return nil, &classfile.FormatError{
			Offset: at,
			Reason: fmt.Sprintf("element values nested deeper than %d", MaxElementDepth),
		}
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		v := &ConstValue{Tag: tag}
		v.ConstValueIndex, err = c.U16()
		return v, err
	case 'e':
		v := &EnumValue{}
		if v.TypeNameIndex, err = c.U16(); err != nil {
			return nil, err
		}
		v.ConstNameIndex, err = c.U16()
		return v, err
	case 'c':
		v := &ClassValue{}
		v.ClassInfoIndex, err = c.U16()
		return v, err
	case '@':
		v := &AnnotationValue{}
		return v, v.Annotation.decode(c, depth+1)
	case '[':
		n, err := c.U16()
		if err != nil {
			return nil, err
		}
		v := &ArrayValue{Values: make([]ElementValue, 0, min(int(n), c.Remaining()))}
		for i := 0; i < int(n); i++ {
			elem, err := decodeElementValue(c, depth+1)
			if err != nil {
				return nil, errors.Wrapf(err, "array element %d", i)
			}
			v.Values = append(v.Values, elem)
		}
		return v, nil
	}
	return nil, &classfile.TagError{Kind: "element value tag", Tag: int(tag), Offset: at}
}

// ElementValuePair is one name = value element of an annotation.
type ElementValuePair struct {
	NameIndex uint16
	Value     ElementValue
}

func (p *ElementValuePair) Decode(c *cursor.Cursor) error {
	return p.decode(c, 0)
}

func (p *ElementValuePair) decode(c *cursor.Cursor, depth int) (err error) {
	if p.NameIndex, err = c.U16(); err != nil {
		return err
	}
	p.Value, err = decodeElementValue(c, depth)
	return err
}

// decodePairs reads a u2 count of element value pairs whose values sit at
// depth.
func decodePairs(c *cursor.Cursor, depth int) ([]ElementValuePair, error) {
	n, err := c.U16()
	if err != nil {
		return nil, err
	}
	out := make([]ElementValuePair, n)
	for i := range out {
		if err := out[i].decode(c, depth); err != nil {
			return nil, errors.Wrapf(err, "element %d of %d", i, n)
		}
	}
	return out, nil
}

// Annotation is a type index followed by its element value pairs.
type Annotation struct {
	TypeIndex uint16
	Pairs     []ElementValuePair
}

func (a *Annotation) Decode(c *cursor.Cursor) error {
	return a.decode(c, 0)
}

func (a *Annotation) decode(c *cursor.Cursor, depth int) (err error) {
	if a.TypeIndex, err = c.U16(); err != nil {
		return err
	}
	a.Pairs, err = decodePairs(c, depth)
	return err
}

// TypeName resolves the annotation's type descriptor.
func (a *Annotation) TypeName(cp *classfile.ConstantPool) (string, error) {
	return cp.Utf8(a.TypeIndex)
}

type annotationList struct {
	Header
	Annotations []Annotation
}

func (a *annotationList) Decode(c *cursor.Cursor) (err error) {
	a.Annotations, err = cursor.ReadU16Vec[Annotation](c)
	return err
}

// RuntimeVisibleAnnotations are annotations retained for reflection.
type RuntimeVisibleAnnotations struct {
	annotationList
}

func (*RuntimeVisibleAnnotations) AttributeName() string { return NameRuntimeVisibleAnnotations }

// DecodeRuntimeVisibleAnnotations decodes a RuntimeVisibleAnnotations attribute.
func DecodeRuntimeVisibleAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeVisibleAnnotations, error) {
	return decodeAs[RuntimeVisibleAnnotations](cp, info, NameRuntimeVisibleAnnotations)
}

// RuntimeInvisibleAnnotations are annotations with CLASS retention.
type RuntimeInvisibleAnnotations struct {
	annotationList
}

func (*RuntimeInvisibleAnnotations) AttributeName() string { return NameRuntimeInvisibleAnnotations }

// DecodeRuntimeInvisibleAnnotations decodes a RuntimeInvisibleAnnotations attribute.
func DecodeRuntimeInvisibleAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeInvisibleAnnotations, error) {
	return decodeAs[RuntimeInvisibleAnnotations](cp, info, NameRuntimeInvisibleAnnotations)
}

type parameterAnnotationList struct {
	Header
	Parameters [][]Annotation
}

// Parameter annotations have a one byte parameter count.
func (a *parameterAnnotationList) Decode(c *cursor.Cursor) error {
	n, err := c.U8()
	if err != nil {
		return err
	}
	a.Parameters = make([][]Annotation, n)
	for i := range a.Parameters {
		if a.Parameters[i], err = cursor.ReadU16Vec[Annotation](c); err != nil {
			return errors.Wrapf(err, "parameter %d", i)
		}
	}
	return nil
}

// RuntimeVisibleParameterAnnotations holds per-parameter annotations.
type RuntimeVisibleParameterAnnotations struct {
	parameterAnnotationList
}

func (*RuntimeVisibleParameterAnnotations) AttributeName() string {
	return NameRuntimeVisibleParameterAnnotations
}

// DecodeRuntimeVisibleParameterAnnotations decodes a
// RuntimeVisibleParameterAnnotations attribute.
func DecodeRuntimeVisibleParameterAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeVisibleParameterAnnotations, error) {
	return decodeAs[RuntimeVisibleParameterAnnotations](cp, info, NameRuntimeVisibleParameterAnnotations)
}

// RuntimeInvisibleParameterAnnotations holds per-parameter annotations with
// CLASS retention.
type RuntimeInvisibleParameterAnnotations struct {
	parameterAnnotationList
}

func (*RuntimeInvisibleParameterAnnotations) AttributeName() string {
	return NameRuntimeInvisibleParameterAnnotations
}

// DecodeRuntimeInvisibleParameterAnnotations decodes a
// RuntimeInvisibleParameterAnnotations attribute.
func DecodeRuntimeInvisibleParameterAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeInvisibleParameterAnnotations, error) {
	return decodeAs[RuntimeInvisibleParameterAnnotations](cp, info, NameRuntimeInvisibleParameterAnnotations)
}

// AnnotationDefault is the default value of an annotation interface element.
type AnnotationDefault struct {
	Header
	Value ElementValue
}

func (*AnnotationDefault) AttributeName() string { return NameAnnotationDefault }

func (a *AnnotationDefault) Decode(c *cursor.Cursor) (err error) {
	a.Value, err = DecodeElementValue(c)
	return err
}

// DecodeAnnotationDefault decodes an AnnotationDefault attribute.
func DecodeAnnotationDefault(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*AnnotationDefault, error) {
	return decodeAs[AnnotationDefault](cp, info, NameAnnotationDefault)
}
