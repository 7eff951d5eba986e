// Package attribute decodes the raw attribute blobs kept by classfile into
// typed values.
//
// Every decoder first resolves the attribute's name through the constant
// pool and refuses to decode an attribute of another kind, then re-reads
// the raw bytes with a fresh cursor that must be consumed exactly.
package attribute

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// Attribute names.
const (
	NameConstantValue                        = "ConstantValue"
	NameCode                                 = "Code"
	NameStackMapTable                        = "StackMapTable"
	NameExceptions                           = "Exceptions"
	NameInnerClasses                         = "InnerClasses"
	NameEnclosingMethod                      = "EnclosingMethod"
	NameSynthetic                            = "Synthetic"
	NameSignature                            = "Signature"
	NameSourceFile                           = "SourceFile"
	NameSourceDebugExtension                 = "SourceDebugExtension"
	NameLineNumberTable                      = "LineNumberTable"
	NameLocalVariableTable                   = "LocalVariableTable"
	NameLocalVariableTypeTable               = "LocalVariableTypeTable"
	NameDeprecated                           = "Deprecated"
	NameRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	NameRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	NameRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	NameRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	NameRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	NameRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	NameAnnotationDefault                    = "AnnotationDefault"
	NameBootstrapMethods                     = "BootstrapMethods"
	NameMethodParameters                     = "MethodParameters"
)

// Attribute is a decoded attribute.
type Attribute interface {
	AttributeName() string
}

// Header is embedded by every decoded attribute and keeps the pool index
// of its name.
type Header struct {
	NameIndex uint16
}

func (h *Header) header() *Header { return h }

type body interface {
	cursor.Decoder
	header() *Header
}

// MismatchError reports a decoder invoked on an attribute of another kind.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("incorrect attribute type: expected %q, got %q", e.Expected, e.Actual)
}

// LengthError reports a fixed-length attribute with the wrong length.
type LengthError struct {
	Name string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s attribute must be %d bytes, got %d", e.Name, e.Want, e.Got)
}

func expectLength(c *cursor.Cursor, name string, n int) error {
	if c.Len() != n {
		return &LengthError{Name: name, Want: n, Got: c.Len()}
	}
	return nil
}

// open checks that info is named name and returns a cursor over its body.
func open(cp *classfile.ConstantPool, info *classfile.AttributeInfo, name string) (*cursor.Cursor, error) {
	actual, err := info.Name(cp)
	if err != nil {
		return nil, errors.Wrap(err, "resolving attribute name")
	}
	if actual != name {
		return nil, &MismatchError{Expected: name, Actual: actual}
	}
	return cursor.New(info.Data), nil
}

func decodeAs[T any, PT interface {
	*T
	body
}](cp *classfile.ConstantPool, info *classfile.AttributeInfo, name string) (*T, error) {
	c, err := open(cp, info, name)
	if err != nil {
		return nil, err
	}
	v := new(T)
	PT(v).header().NameIndex = info.NameIndex
	if err := PT(v).Decode(c); err != nil {
		return nil, errors.Wrapf(err, "decoding %s attribute", name)
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, errors.Wrapf(err, "decoding %s attribute", name)
	}
	return v, nil
}

type decodeFunc func(*classfile.ConstantPool, *classfile.AttributeInfo) (Attribute, error)

func entry[T any, PT interface {
	*T
	body
	Attribute
}](name string) decodeFunc {
	return func(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (Attribute, error) {
		v, err := decodeAs[T, PT](cp, info, name)
		if err != nil {
			return nil, err
		}
		return PT(v), nil
	}
}

var decoders = map[string]decodeFunc{
	NameConstantValue:                        entry[ConstantValue](NameConstantValue),
	NameCode:                                 entry[Code](NameCode),
	NameStackMapTable:                        entry[StackMapTable](NameStackMapTable),
	NameExceptions:                           entry[Exceptions](NameExceptions),
	NameInnerClasses:                         entry[InnerClasses](NameInnerClasses),
	NameEnclosingMethod:                      entry[EnclosingMethod](NameEnclosingMethod),
	NameSynthetic:                            entry[Synthetic](NameSynthetic),
	NameSignature:                            entry[Signature](NameSignature),
	NameSourceFile:                           entry[SourceFile](NameSourceFile),
	NameSourceDebugExtension:                 entry[SourceDebugExtension](NameSourceDebugExtension),
	NameLineNumberTable:                      entry[LineNumberTable](NameLineNumberTable),
	NameLocalVariableTable:                   entry[LocalVariableTable](NameLocalVariableTable),
	NameLocalVariableTypeTable:               entry[LocalVariableTypeTable](NameLocalVariableTypeTable),
	NameDeprecated:                           entry[Deprecated](NameDeprecated),
	NameRuntimeVisibleAnnotations:            entry[RuntimeVisibleAnnotations](NameRuntimeVisibleAnnotations),
	NameRuntimeInvisibleAnnotations:          entry[RuntimeInvisibleAnnotations](NameRuntimeInvisibleAnnotations),
	NameRuntimeVisibleParameterAnnotations:   entry[RuntimeVisibleParameterAnnotations](NameRuntimeVisibleParameterAnnotations),
	NameRuntimeInvisibleParameterAnnotations: entry[RuntimeInvisibleParameterAnnotations](NameRuntimeInvisibleParameterAnnotations),
	NameRuntimeVisibleTypeAnnotations:        entry[RuntimeVisibleTypeAnnotations](NameRuntimeVisibleTypeAnnotations),
	NameRuntimeInvisibleTypeAnnotations:      entry[RuntimeInvisibleTypeAnnotations](NameRuntimeInvisibleTypeAnnotations),
	NameAnnotationDefault:                    entry[AnnotationDefault](NameAnnotationDefault),
	NameBootstrapMethods:                     entry[BootstrapMethods](NameBootstrapMethods),
	NameMethodParameters:                     entry[MethodParameters](NameMethodParameters),
}

// Unknown is an attribute this package has no decoder for. Its bytes are
// kept verbatim.
type Unknown struct {
	Header
	Name string
	Data []byte
}

func (u *Unknown) AttributeName() string { return u.Name }

// Decode resolves the name of info and decodes it with the matching typed
// decoder. Attributes with unrecognised names are returned as *Unknown.
func Decode(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (Attribute, error) {
	name, err := info.Name(cp)
	if err != nil {
		return nil, errors.Wrap(err, "resolving attribute name")
	}
	if fn, ok := decoders[name]; ok {
		return fn(cp, info)
	}
	return &Unknown{Header: Header{NameIndex: info.NameIndex}, Name: name, Data: info.Data}, nil
}

// DecodeAll decodes every attribute in attrs, stopping at the first failure.
func DecodeAll(cp *classfile.ConstantPool, attrs []classfile.AttributeInfo) ([]Attribute, error) {
	out := make([]Attribute, 0, len(attrs))
	for i := range attrs {
		a, err := Decode(cp, &attrs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %d", i)
		}
		out = append(out, a)
	}
	return out, nil
}

// MethodCode decodes the Code attribute of m. It returns nil without error
// for abstract and native methods, which have none.
func MethodCode(cf *classfile.ClassFile, m *classfile.MethodInfo) (*Code, error) {
	info := m.FindAttribute(cf.ConstantPool, NameCode)
	if info == nil {
		return nil, nil
	}
	return DecodeCode(cf.ConstantPool, info)
}
