package classfile

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/cursor"
)

const (
	// Magic is the first four bytes of every class file.
	Magic = 0xCAFEBABE
	// MinMajorVersion is JDK 1.1.
	MinMajorVersion = 45
	// MaxMajorVersion is Java SE 8; later versions are rejected.
	MaxMajorVersion = 52
)

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a .class file from the given reader and returns a ClassFile.
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading class data")
	}
	return ParseBytes(data)
}

// ParseBytes parses a complete class file held in memory. No partially
// parsed ClassFile is returned on error.
func ParseBytes(data []byte) (*ClassFile, error) {
	c := cursor.New(data)
	cf := &ClassFile{}
	var err error

	// Magic number
	if cf.Magic, err = c.U32(); err != nil {
		return nil, errors.Wrap(err, "reading magic number")
	}
	if cf.Magic != Magic {
		return nil, &MagicError{Got: cf.Magic}
	}

	// Version
	if cf.MinorVersion, err = c.U16(); err != nil {
		return nil, errors.Wrap(err, "reading minor version")
	}
	if cf.MajorVersion, err = c.U16(); err != nil {
		return nil, errors.Wrap(err, "reading major version")
	}
	if cf.MajorVersion < MinMajorVersion || cf.MajorVersion > MaxMajorVersion {
		return nil, &VersionError{Major: cf.MajorVersion, Minor: cf.MinorVersion}
	}

	// Constant pool
	cpCount, err := c.U16()
	if err != nil {
		return nil, errors.Wrap(err, "reading constant pool count")
	}
	if cf.ConstantPool, err = decodeConstantPool(c, cpCount); err != nil {
		return nil, errors.Wrap(err, "parsing constant pool")
	}

	// Access flags, this_class, super_class
	flags, err := c.U16()
	if err != nil {
		return nil, errors.Wrap(err, "reading access flags")
	}
	cf.AccessFlags = AccessFlags(flags)
	if cf.ThisClass, err = c.U16(); err != nil {
		return nil, errors.Wrap(err, "reading this_class")
	}
	super, err := c.U16()
	if err != nil {
		return nil, errors.Wrap(err, "reading super_class")
	}
	if super != 0 {
		cf.SuperClass = &super
	}

	// Interfaces
	ifCount, err := c.U16()
	if err != nil {
		return nil, errors.Wrap(err, "reading interfaces count")
	}
	if cf.Interfaces, err = cursor.ReadMany[uint16](c, int(ifCount)); err != nil {
		return nil, errors.Wrap(err, "reading interfaces")
	}

	if cf.Fields, err = cursor.ReadU16Vec[FieldInfo](c); err != nil {
		return nil, errors.Wrap(err, "parsing fields")
	}
	if cf.Methods, err = cursor.ReadU16Vec[MethodInfo](c); err != nil {
		return nil, errors.Wrap(err, "parsing methods")
	}
	if cf.Attributes, err = cursor.ReadU16Vec[AttributeInfo](c); err != nil {
		return nil, errors.Wrap(err, "parsing class attributes")
	}

	if err := c.ExpectEnd(); err != nil {
		return nil, errors.Wrap(err, "after class attributes")
	}
	return cf, nil
}

// Encode writes cf back in class file layout.
func (cf *ClassFile) Encode(w *cursor.Writer) {
	w.U32(cf.Magic)
	w.U16(cf.MinorVersion)
	w.U16(cf.MajorVersion)
	cf.ConstantPool.Encode(w)
	w.U16(uint16(cf.AccessFlags))
	w.U16(cf.ThisClass)
	if cf.SuperClass != nil {
		w.U16(*cf.SuperClass)
	} else {
		w.U16(0)
	}
	w.U16(uint16(len(cf.Interfaces)))
	for _, i := range cf.Interfaces {
		w.U16(i)
	}
	w.U16(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		encodeMember(w, f.AccessFlags, f.NameIndex, f.DescriptorIndex, f.Attributes)
	}
	w.U16(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		encodeMember(w, m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes)
	}
	encodeAttributes(w, cf.Attributes)
}

func encodeMember(w *cursor.Writer, flags AccessFlags, name, desc uint16, attrs []AttributeInfo) {
	w.U16(uint16(flags))
	w.U16(name)
	w.U16(desc)
	encodeAttributes(w, attrs)
}

func encodeAttributes(w *cursor.Writer, attrs []AttributeInfo) {
	w.U16(uint16(len(attrs)))
	for i := range attrs {
		attrs[i].Encode(w)
	}
}
