// Package classtest assembles synthetic class files for tests.
package classtest

import (
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// Builder accumulates a constant pool and class members and encodes them
// as a class file. Utf8, Class and NameAndType entries are interned.
type Builder struct {
	entries  []classfile.ConstantPoolEntry
	next     uint16
	interned map[string]uint16
	cf       classfile.ClassFile
}

// New starts a public class called name extending super. An empty super
// leaves super_class as 0.
func New(name, super string) *Builder {
	b := &Builder{next: 1, interned: map[string]uint16{}}
	b.cf = classfile.ClassFile{
		Magic:        classfile.Magic,
		MajorVersion: 52,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
	}
	b.cf.ThisClass = b.Class(name)
	if super != "" {
		s := b.Class(super)
		b.cf.SuperClass = &s
	}
	return b
}

// Version overrides the class file version.
func (b *Builder) Version(major, minor uint16) *Builder {
	b.cf.MajorVersion, b.cf.MinorVersion = major, minor
	return b
}

// Flags overrides the class access flags.
func (b *Builder) Flags(f classfile.AccessFlags) *Builder {
	b.cf.AccessFlags = f
	return b
}

// Add appends e to the pool and returns its index.
func (b *Builder) Add(e classfile.ConstantPoolEntry) uint16 {
	idx := b.next
	b.entries = append(b.entries, e)
	if e.Tag().Wide() {
		b.next += 2
	} else {
		b.next++
	}
	return idx
}

func (b *Builder) intern(key string, mk func() classfile.ConstantPoolEntry) uint16 {
	if idx, ok := b.interned[key]; ok {
		return idx
	}
	idx := b.Add(mk())
	b.interned[key] = idx
	return idx
}

func (b *Builder) Utf8(s string) uint16 {
	return b.intern("u:"+s, func() classfile.ConstantPoolEntry { return &classfile.ConstantUtf8{Value: s} })
}

func (b *Builder) Class(name string) uint16 {
	n := b.Utf8(name)
	return b.intern("c:"+name, func() classfile.ConstantPoolEntry { return &classfile.ConstantClass{NameIndex: n} })
}

func (b *Builder) String(s string) uint16 {
	n := b.Utf8(s)
	return b.Add(&classfile.ConstantString{StringIndex: n})
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.intern("nt:"+name+":"+desc, func() classfile.ConstantPoolEntry {
		return &classfile.ConstantNameAndType{NameIndex: n, DescriptorIndex: d}
	})
}

func (b *Builder) Methodref(class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	return b.Add(&classfile.ConstantMethodref{ClassIndex: c, NameAndTypeIndex: nt})
}

func (b *Builder) Fieldref(class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	return b.Add(&classfile.ConstantFieldref{ClassIndex: c, NameAndTypeIndex: nt})
}

// Interface adds a direct superinterface.
func (b *Builder) Interface(name string) *Builder {
	b.cf.Interfaces = append(b.cf.Interfaces, b.Class(name))
	return b
}

// Attribute makes a raw attribute whose name is interned in the pool.
func (b *Builder) Attribute(name string, data []byte) classfile.AttributeInfo {
	return classfile.AttributeInfo{NameIndex: b.Utf8(name), Data: data}
}

// Field adds a field.
func (b *Builder) Field(flags classfile.AccessFlags, name, desc string, attrs ...classfile.AttributeInfo) *Builder {
	b.cf.Fields = append(b.cf.Fields, classfile.FieldInfo{
		AccessFlags:     flags,
		NameIndex:       b.Utf8(name),
		DescriptorIndex: b.Utf8(desc),
		Attributes:      attrs,
	})
	return b
}

// Method adds a method.
func (b *Builder) Method(flags classfile.AccessFlags, name, desc string, attrs ...classfile.AttributeInfo) *Builder {
	b.cf.Methods = append(b.cf.Methods, classfile.MethodInfo{
		AccessFlags:     flags,
		NameIndex:       b.Utf8(name),
		DescriptorIndex: b.Utf8(desc),
		Attributes:      attrs,
	})
	return b
}

// ClassAttribute adds a class-level attribute.
func (b *Builder) ClassAttribute(a classfile.AttributeInfo) *Builder {
	b.cf.Attributes = append(b.cf.Attributes, a)
	return b
}

// Handler is one exception_table row.
type Handler struct {
	StartPC, EndPC, HandlerPC, CatchType uint16
}

// Code encodes a Code attribute body.
func (b *Builder) Code(maxStack, maxLocals uint16, code []byte, handlers []Handler, attrs ...classfile.AttributeInfo) classfile.AttributeInfo {
	w := cursor.NewWriter()
	w.U16(maxStack)
	w.U16(maxLocals)
	w.U32(uint32(len(code)))
	w.Data(code)
	w.U16(uint16(len(handlers)))
	for _, h := range handlers {
		w.U16(h.StartPC)
		w.U16(h.EndPC)
		w.U16(h.HandlerPC)
		w.U16(h.CatchType)
	}
	w.U16(uint16(len(attrs)))
	for i := range attrs {
		attrs[i].Encode(w)
	}
	return b.Attribute("Code", w.Bytes())
}

// Pool returns the constant pool built so far.
func (b *Builder) Pool() *classfile.ConstantPool {
	return classfile.NewConstantPool(b.entries...)
}

// ClassFile returns the structural model without encoding it.
func (b *Builder) ClassFile() *classfile.ClassFile {
	cf := b.cf
	cf.ConstantPool = b.Pool()
	return &cf
}

// Bytes encodes the class file.
func (b *Builder) Bytes() []byte {
	w := cursor.NewWriter()
	b.ClassFile().Encode(w)
	return w.Bytes()
}

// Body is a convenience for building attribute payloads inline.
func Body(fn func(w *cursor.Writer)) []byte {
	w := cursor.NewWriter()
	fn(w)
	return w.Bytes()
}
