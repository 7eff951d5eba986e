package classfile

import (
	"github.com/daimatz/jclass/pkg/cursor"
)

// ClassFile represents a parsed .class file. It owns its ConstantPool;
// every other record refers into it by index.
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	// SuperClass is nil only for java/lang/Object.
	SuperClass *uint16
	Interfaces []uint16
	Fields     []FieldInfo
	Methods    []MethodInfo
	Attributes []AttributeInfo
}

// ClassName returns the fully qualified internal name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the super class.
// Returns "" if this is java/lang/Object.
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == nil {
		return "", nil
	}
	return cf.ConstantPool.ClassName(*cf.SuperClass)
}

// InterfaceNames resolves the direct superinterfaces.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := cf.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if n, _ := m.Name(cf.ConstantPool); n != name {
			continue
		}
		if d, _ := m.Descriptor(cf.ConstantPool); d == descriptor {
			return m
		}
	}
	return nil
}

// FindMethodByName finds a method by name only (first match).
func (cf *ClassFile) FindMethodByName(name string) *MethodInfo {
	for i := range cf.Methods {
		if n, _ := cf.Methods[i].Name(cf.ConstantPool); n == name {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindField finds a field by name.
func (cf *ClassFile) FindField(name string) *FieldInfo {
	for i := range cf.Fields {
		if n, _ := cf.Fields[i].Name(cf.ConstantPool); n == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// FindAttribute returns the first class-level attribute called name.
func (cf *ClassFile) FindAttribute(name string) *AttributeInfo {
	return FindAttribute(cf.ConstantPool, cf.Attributes, name)
}

// FieldInfo represents a field in a class file.
type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// Decode implements cursor.Decoder.
func (f *FieldInfo) Decode(c *cursor.Cursor) error {
	var err error
	f.AccessFlags, f.NameIndex, f.DescriptorIndex, f.Attributes, err = decodeMember(c)
	return err
}

func (f *FieldInfo) Name(cp *ConstantPool) (string, error) { return cp.Utf8(f.NameIndex) }

func (f *FieldInfo) Descriptor(cp *ConstantPool) (string, error) {
	return cp.Utf8(f.DescriptorIndex)
}

// FindAttribute returns the first attribute of the field called name.
func (f *FieldInfo) FindAttribute(cp *ConstantPool, name string) *AttributeInfo {
	return FindAttribute(cp, f.Attributes, name)
}

// MethodInfo represents a method in a class file.
type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// Decode implements cursor.Decoder.
func (m *MethodInfo) Decode(c *cursor.Cursor) error {
	var err error
	m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes, err = decodeMember(c)
	return err
}

func (m *MethodInfo) Name(cp *ConstantPool) (string, error) { return cp.Utf8(m.NameIndex) }

func (m *MethodInfo) Descriptor(cp *ConstantPool) (string, error) {
	return cp.Utf8(m.DescriptorIndex)
}

// FindAttribute returns the first attribute of the method called name.
func (m *MethodInfo) FindAttribute(cp *ConstantPool, name string) *AttributeInfo {
	return FindAttribute(cp, m.Attributes, name)
}

func decodeMember(c *cursor.Cursor) (AccessFlags, uint16, uint16, []AttributeInfo, error) {
	flags, err := c.U16()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	nameIndex, err := c.U16()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	descIndex, err := c.U16()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	attrs, err := cursor.ReadU16Vec[AttributeInfo](c)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	return AccessFlags(flags), nameIndex, descIndex, attrs, nil
}

// AttributeInfo is a raw attribute: a name index and exactly
// attribute_length bytes. Typed decoding happens on demand.
type AttributeInfo struct {
	NameIndex uint16
	Data      []byte
}

// Decode implements cursor.Decoder.
func (a *AttributeInfo) Decode(c *cursor.Cursor) error {
	var err error
	if a.NameIndex, err = c.U16(); err != nil {
		return err
	}
	length, err := c.U32()
	if err != nil {
		return err
	}
	a.Data, err = c.Bytes(int(length))
	return err
}

// Encode writes the attribute back in class file layout.
func (a *AttributeInfo) Encode(w *cursor.Writer) {
	w.U16(a.NameIndex)
	w.U32(uint32(len(a.Data)))
	w.Data(a.Data)
}

// Name resolves the attribute name.
func (a *AttributeInfo) Name(cp *ConstantPool) (string, error) { return cp.Utf8(a.NameIndex) }

// FindAttribute returns the first attribute in attrs called name, or nil.
// Attributes whose name does not resolve are skipped.
func FindAttribute(cp *ConstantPool, attrs []AttributeInfo, name string) *AttributeInfo {
	for i := range attrs {
		if n, err := attrs[i].Name(cp); err == nil && n == name {
			return &attrs[i]
		}
	}
	return nil
}
