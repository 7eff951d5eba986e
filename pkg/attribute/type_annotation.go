package attribute

import (
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// TargetInfo says which type in a declaration or expression a type
// annotation applies to.
type TargetInfo interface {
	targetInfo()
}

// TypeParameterTarget is used for target types 0x00 and 0x01.
type TypeParameterTarget struct {
	TypeParameterIndex uint8
}

// SupertypeTarget is used for 0x10. Index 65535 means the superclass.
type SupertypeTarget struct {
	SupertypeIndex uint16
}

// TypeParameterBoundTarget is used for 0x11 and 0x12.
type TypeParameterBoundTarget struct {
	TypeParameterIndex uint8
	BoundIndex         uint8
}

// EmptyTarget is used for 0x13 to 0x15.
type EmptyTarget struct{}

// FormalParameterTarget is used for 0x16.
type FormalParameterTarget struct {
	FormalParameterIndex uint8
}

// ThrowsTarget is used for 0x17.
type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

// LocalVarTargetEntry is one live range of an annotated local variable.
type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

func (e *LocalVarTargetEntry) Decode(c *cursor.Cursor) error {
	v, err := cursor.ReadMany[uint16](c, 3)
	if err != nil {
		return err
	}
	*e = LocalVarTargetEntry{StartPC: v[0], Length: v[1], Index: v[2]}
	return nil
}

// LocalVarTarget is used for 0x40 and 0x41.
type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

// CatchTarget is used for 0x42.
type CatchTarget struct {
	ExceptionTableIndex uint16
}

// OffsetTarget is used for 0x43 to 0x46.
type OffsetTarget struct {
	Offset uint16
}

// TypeArgumentTarget is used for 0x47 to 0x4B.
type TypeArgumentTarget struct {
	Offset            uint16
	TypeArgumentIndex uint8
}

func (*TypeParameterTarget) targetInfo()      {}
func (*SupertypeTarget) targetInfo()          {}
func (*TypeParameterBoundTarget) targetInfo() {}
func (*EmptyTarget) targetInfo()              {}
func (*FormalParameterTarget) targetInfo()    {}
func (*ThrowsTarget) targetInfo()             {}
func (*LocalVarTarget) targetInfo()           {}
func (*CatchTarget) targetInfo()              {}
func (*OffsetTarget) targetInfo()             {}
func (*TypeArgumentTarget) targetInfo()       {}

func decodeTarget(c *cursor.Cursor, targetType uint8, at int) (TargetInfo, error) {
	var err error
	switch {
	case targetType <= 0x01:
		t := &TypeParameterTarget{}
		t.TypeParameterIndex, err = c.U8()
		return t, err
	case targetType == 0x10:
		t := &SupertypeTarget{}
		t.SupertypeIndex, err = c.U16()
		return t, err
	case targetType == 0x11, targetType == 0x12:
		t := &TypeParameterBoundTarget{}
		if t.TypeParameterIndex, err = c.U8(); err != nil {
			return nil, err
		}
		t.BoundIndex, err = c.U8()
		return t, err
	case targetType >= 0x13 && targetType <= 0x15:
		return &EmptyTarget{}, nil
	case targetType == 0x16:
		t := &FormalParameterTarget{}
		t.FormalParameterIndex, err = c.U8()
		return t, err
	case targetType == 0x17:
		t := &ThrowsTarget{}
		t.ThrowsTypeIndex, err = c.U16()
		return t, err
	case targetType == 0x40, targetType == 0x41:
		t := &LocalVarTarget{}
		t.Table, err = cursor.ReadU16Vec[LocalVarTargetEntry](c)
		return t, err
	case targetType == 0x42:
		t := &CatchTarget{}
		t.ExceptionTableIndex, err = c.U16()
		return t, err
	case targetType >= 0x43 && targetType <= 0x46:
		t := &OffsetTarget{}
		t.Offset, err = c.U16()
		return t, err
	case targetType >= 0x47 && targetType <= 0x4B:
		t := &TypeArgumentTarget{}
		if t.Offset, err = c.U16(); err != nil {
			return nil, err
		}
		t.TypeArgumentIndex, err = c.U8()
		return t, err
	}
	return nil, &classfile.TagError{Kind: "type annotation target type", Tag: int(targetType), Offset: at}
}

// TypePathEntry is one step into a nested, array or parameterized type.
type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

// TypeAnnotation is an annotation on a use of a type.
type TypeAnnotation struct {
	TargetType uint8
	Target     TargetInfo
	TypePath   []TypePathEntry
	TypeIndex  uint16
	Pairs      []ElementValuePair
}

func (a *TypeAnnotation) Decode(c *cursor.Cursor) (err error) {
	at := c.Pos()
	if a.TargetType, err = c.U8(); err != nil {
		return err
	}
	if a.Target, err = decodeTarget(c, a.TargetType, at); err != nil {
		return err
	}
	n, err := c.U8()
	if err != nil {
		return errors.Wrap(err, "type path")
	}
	path, err := cursor.ReadMany[uint8](c, 2*int(n))
	if err != nil {
		return errors.Wrap(err, "type path")
	}
	a.TypePath = make([]TypePathEntry, n)
	for i := range a.TypePath {
		a.TypePath[i] = TypePathEntry{TypePathKind: path[2*i], TypeArgumentIndex: path[2*i+1]}
	}
	if a.TypeIndex, err = c.U16(); err != nil {
		return err
	}
	a.Pairs, err = decodePairs(c, 0)
	return err
}

type typeAnnotationList struct {
	Header
	Annotations []TypeAnnotation
}

func (a *typeAnnotationList) Decode(c *cursor.Cursor) (err error) {
	a.Annotations, err = cursor.ReadU16Vec[TypeAnnotation](c)
	return err
}

// RuntimeVisibleTypeAnnotations are type annotations retained for reflection.
type RuntimeVisibleTypeAnnotations struct {
	typeAnnotationList
}

func (*RuntimeVisibleTypeAnnotations) AttributeName() string {
	return NameRuntimeVisibleTypeAnnotations
}

// DecodeRuntimeVisibleTypeAnnotations decodes a RuntimeVisibleTypeAnnotations attribute.
func DecodeRuntimeVisibleTypeAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeVisibleTypeAnnotations, error) {
	return decodeAs[RuntimeVisibleTypeAnnotations](cp, info, NameRuntimeVisibleTypeAnnotations)
}

// RuntimeInvisibleTypeAnnotations are type annotations with CLASS retention.
type RuntimeInvisibleTypeAnnotations struct {
	typeAnnotationList
}

func (*RuntimeInvisibleTypeAnnotations) AttributeName() string {
	return NameRuntimeInvisibleTypeAnnotations
}

// DecodeRuntimeInvisibleTypeAnnotations decodes a RuntimeInvisibleTypeAnnotations attribute.
func DecodeRuntimeInvisibleTypeAnnotations(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*RuntimeInvisibleTypeAnnotations, error) {
	return decodeAs[RuntimeInvisibleTypeAnnotations](cp, info, NameRuntimeInvisibleTypeAnnotations)
}
