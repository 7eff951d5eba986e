package attribute

import (
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// LineNumber maps a code offset to a source line.
type LineNumber struct {
	StartPC    uint16
	LineNumber uint16
}

func (e *LineNumber) Decode(c *cursor.Cursor) (err error) {
	if e.StartPC, err = c.U16(); err != nil {
		return err
	}
	e.LineNumber, err = c.U16()
	return err
}

// LineNumberTable belongs to a Code attribute.
type LineNumberTable struct {
	Header
	Entries []LineNumber
}

func (*LineNumberTable) AttributeName() string { return NameLineNumberTable }

func (a *LineNumberTable) Decode(c *cursor.Cursor) (err error) {
	a.Entries, err = cursor.ReadU16Vec[LineNumber](c)
	return err
}

// LineAt returns the source line of the instruction at pc, or 0 when no
// entry covers it.
func (a *LineNumberTable) LineAt(pc int) int {
	line, best := 0, -1
	for _, e := range a.Entries {
		if int(e.StartPC) <= pc && int(e.StartPC) > best {
			line, best = int(e.LineNumber), int(e.StartPC)
		}
	}
	return line
}

// DecodeLineNumberTable decodes a LineNumberTable attribute.
func DecodeLineNumberTable(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*LineNumberTable, error) {
	return decodeAs[LineNumberTable](cp, info, NameLineNumberTable)
}

// LocalVariable describes a local variable's live range. In a
// LocalVariableTypeTable, DescriptorIndex points at a generic signature.
type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

func (e *LocalVariable) Decode(c *cursor.Cursor) error {
	v, err := cursor.ReadMany[uint16](c, 5)
	if err != nil {
		return err
	}
	*e = LocalVariable{StartPC: v[0], Length: v[1], NameIndex: v[2], DescriptorIndex: v[3], Index: v[4]}
	return nil
}

// LocalVariableTable belongs to a Code attribute.
type LocalVariableTable struct {
	Header
	Entries []LocalVariable
}

func (*LocalVariableTable) AttributeName() string { return NameLocalVariableTable }

func (a *LocalVariableTable) Decode(c *cursor.Cursor) (err error) {
	a.Entries, err = cursor.ReadU16Vec[LocalVariable](c)
	return err
}

// DecodeLocalVariableTable decodes a LocalVariableTable attribute.
func DecodeLocalVariableTable(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*LocalVariableTable, error) {
	return decodeAs[LocalVariableTable](cp, info, NameLocalVariableTable)
}

// LocalVariableTypeTable is LocalVariableTable for generic signatures.
type LocalVariableTypeTable struct {
	Header
	Entries []LocalVariable
}

func (*LocalVariableTypeTable) AttributeName() string { return NameLocalVariableTypeTable }

func (a *LocalVariableTypeTable) Decode(c *cursor.Cursor) (err error) {
	a.Entries, err = cursor.ReadU16Vec[LocalVariable](c)
	return err
}

// DecodeLocalVariableTypeTable decodes a LocalVariableTypeTable attribute.
func DecodeLocalVariableTypeTable(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*LocalVariableTypeTable, error) {
	return decodeAs[LocalVariableTypeTable](cp, info, NameLocalVariableTypeTable)
}

// InnerClass is one row of InnerClasses. Zero indexes mean absent.
type InnerClass struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags classfile.AccessFlags
}

func (e *InnerClass) Decode(c *cursor.Cursor) error {
	v, err := cursor.ReadMany[uint16](c, 4)
	if err != nil {
		return err
	}
	*e = InnerClass{
		InnerClassInfoIndex:   v[0],
		OuterClassInfoIndex:   v[1],
		InnerNameIndex:        v[2],
		InnerClassAccessFlags: classfile.AccessFlags(v[3]),
	}
	return nil
}

// InnerClasses lists the nested classes a class refers to.
type InnerClasses struct {
	Header
	Classes []InnerClass
}

func (*InnerClasses) AttributeName() string { return NameInnerClasses }

func (a *InnerClasses) Decode(c *cursor.Cursor) (err error) {
	a.Classes, err = cursor.ReadU16Vec[InnerClass](c)
	return err
}

// DecodeInnerClasses decodes an InnerClasses attribute.
func DecodeInnerClasses(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*InnerClasses, error) {
	return decodeAs[InnerClasses](cp, info, NameInnerClasses)
}

// MethodParameter names one formal parameter. NameIndex is zero for an
// unnamed parameter.
type MethodParameter struct {
	NameIndex   uint16
	AccessFlags classfile.AccessFlags
}

func (e *MethodParameter) Decode(c *cursor.Cursor) error {
	v, err := cursor.ReadMany[uint16](c, 2)
	if err != nil {
		return err
	}
	e.NameIndex, e.AccessFlags = v[0], classfile.AccessFlags(v[1])
	return nil
}

// MethodParameters has a one byte count, unlike the other tables.
type MethodParameters struct {
	Header
	Parameters []MethodParameter
}

func (*MethodParameters) AttributeName() string { return NameMethodParameters }

func (a *MethodParameters) Decode(c *cursor.Cursor) error {
	n, err := c.U8()
	if err != nil {
		return err
	}
	a.Parameters, err = cursor.ReadVec[MethodParameter](c, int(n))
	return err
}

// DecodeMethodParameters decodes a MethodParameters attribute.
func DecodeMethodParameters(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*MethodParameters, error) {
	return decodeAs[MethodParameters](cp, info, NameMethodParameters)
}

// BootstrapMethod is one invokedynamic bootstrap specifier.
type BootstrapMethod struct {
	MethodRef          uint16
	BootstrapArguments []uint16
}

func (e *BootstrapMethod) Decode(c *cursor.Cursor) (err error) {
	if e.MethodRef, err = c.U16(); err != nil {
		return err
	}
	n, err := c.U16()
	if err != nil {
		return err
	}
	e.BootstrapArguments, err = cursor.ReadMany[uint16](c, int(n))
	return err
}

// BootstrapMethods is referenced by CONSTANT_InvokeDynamic entries.
type BootstrapMethods struct {
	Header
	Methods []BootstrapMethod
}

func (*BootstrapMethods) AttributeName() string { return NameBootstrapMethods }

func (a *BootstrapMethods) Decode(c *cursor.Cursor) (err error) {
	a.Methods, err = cursor.ReadU16Vec[BootstrapMethod](c)
	return err
}

// DecodeBootstrapMethods decodes a BootstrapMethods attribute.
func DecodeBootstrapMethods(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*BootstrapMethods, error) {
	return decodeAs[BootstrapMethods](cp, info, NameBootstrapMethods)
}
