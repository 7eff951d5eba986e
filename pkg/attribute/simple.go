package attribute

import (
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// ConstantValue holds the pool index of a constant field's value.
type ConstantValue struct {
	Header
	ValueIndex uint16
}

func (*ConstantValue) AttributeName() string { return NameConstantValue }

func (a *ConstantValue) Decode(c *cursor.Cursor) (err error) {
	a.ValueIndex, err = c.U16()
	return err
}

// DecodeConstantValue decodes a ConstantValue attribute.
func DecodeConstantValue(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*ConstantValue, error) {
	return decodeAs[ConstantValue](cp, info, NameConstantValue)
}

// Exceptions lists the checked exceptions a method declares.
type Exceptions struct {
	Header
	ExceptionIndexes []uint16
}

func (*Exceptions) AttributeName() string { return NameExceptions }

func (a *Exceptions) Decode(c *cursor.Cursor) error {
	n, err := c.U16()
	if err != nil {
		return err
	}
	a.ExceptionIndexes, err = cursor.ReadMany[uint16](c, int(n))
	return err
}

// ClassNames resolves the declared exception classes.
func (a *Exceptions) ClassNames(cp *classfile.ConstantPool) ([]string, error) {
	names := make([]string, len(a.ExceptionIndexes))
	for i, idx := range a.ExceptionIndexes {
		name, err := cp.ClassName(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "exception %d", i)
		}
		names[i] = name
	}
	return names, nil
}

// DecodeExceptions decodes an Exceptions attribute.
func DecodeExceptions(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*Exceptions, error) {
	return decodeAs[Exceptions](cp, info, NameExceptions)
}

// Signature holds the pool index of a generic signature string. Its body is
// exactly two bytes.
type Signature struct {
	Header
	SignatureIndex uint16
}

func (*Signature) AttributeName() string { return NameSignature }

func (a *Signature) Decode(c *cursor.Cursor) (err error) {
	if err := expectLength(c, NameSignature, 2); err != nil {
		return err
	}
	a.SignatureIndex, err = c.U16()
	return err
}

// Value resolves the signature string.
func (a *Signature) Value(cp *classfile.ConstantPool) (string, error) {
	return cp.Utf8(a.SignatureIndex)
}

// DecodeSignature decodes a Signature attribute.
func DecodeSignature(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*Signature, error) {
	return decodeAs[Signature](cp, info, NameSignature)
}

// SourceFile holds the pool index of the source file name.
type SourceFile struct {
	Header
	SourceFileIndex uint16
}

func (*SourceFile) AttributeName() string { return NameSourceFile }

func (a *SourceFile) Decode(c *cursor.Cursor) (err error) {
	a.SourceFileIndex, err = c.U16()
	return err
}

// FileName resolves the source file name.
func (a *SourceFile) FileName(cp *classfile.ConstantPool) (string, error) {
	return cp.Utf8(a.SourceFileIndex)
}

// DecodeSourceFile decodes a SourceFile attribute.
func DecodeSourceFile(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*SourceFile, error) {
	return decodeAs[SourceFile](cp, info, NameSourceFile)
}

// Synthetic marks a compiler-generated member. Its body is empty.
type Synthetic struct {
	Header
}

func (*Synthetic) AttributeName() string { return NameSynthetic }

func (a *Synthetic) Decode(c *cursor.Cursor) error {
	return expectLength(c, NameSynthetic, 0)
}

// DecodeSynthetic decodes a Synthetic attribute.
func DecodeSynthetic(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*Synthetic, error) {
	return decodeAs[Synthetic](cp, info, NameSynthetic)
}

// Deprecated marks a deprecated class or member. Its body is empty.
type Deprecated struct {
	Header
}

func (*Deprecated) AttributeName() string { return NameDeprecated }

func (a *Deprecated) Decode(c *cursor.Cursor) error {
	return expectLength(c, NameDeprecated, 0)
}

// DecodeDeprecated decodes a Deprecated attribute.
func DecodeDeprecated(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*Deprecated, error) {
	return decodeAs[Deprecated](cp, info, NameDeprecated)
}

// SourceDebugExtension carries tool-specific debug data, kept verbatim.
type SourceDebugExtension struct {
	Header
	DebugExtension []byte
}

func (*SourceDebugExtension) AttributeName() string { return NameSourceDebugExtension }

func (a *SourceDebugExtension) Decode(c *cursor.Cursor) error {
	a.DebugExtension = c.Rest()
	return nil
}

// Text decodes the extension as modified UTF-8.
func (a *SourceDebugExtension) Text() (string, error) {
	return classfile.DecodeModifiedUTF8(a.DebugExtension)
}

// DecodeSourceDebugExtension decodes a SourceDebugExtension attribute.
func DecodeSourceDebugExtension(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*SourceDebugExtension, error) {
	return decodeAs[SourceDebugExtension](cp, info, NameSourceDebugExtension)
}

// EnclosingMethod identifies the class and, for classes declared inside a
// method body, the method that encloses a local or anonymous class.
// MethodIndex is zero when there is no enclosing method.
type EnclosingMethod struct {
	Header
	ClassIndex  uint16
	MethodIndex uint16
}

func (*EnclosingMethod) AttributeName() string { return NameEnclosingMethod }

func (a *EnclosingMethod) Decode(c *cursor.Cursor) (err error) {
	if a.ClassIndex, err = c.U16(); err != nil {
		return err
	}
	a.MethodIndex, err = c.U16()
	return err
}

// DecodeEnclosingMethod decodes an EnclosingMethod attribute.
func DecodeEnclosingMethod(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*EnclosingMethod, error) {
	return decodeAs[EnclosingMethod](cp, info, NameEnclosingMethod)
}
