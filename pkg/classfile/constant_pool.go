package classfile

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/cursor"
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag uint8

// Constant pool tags
const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagInvokeDynamic      ConstantTag = 18
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagInvokeDynamic:      "InvokeDynamic",
}

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Wide reports whether entries with this tag occupy two pool slots.
func (t ConstantTag) Wide() bool { return t == TagLong || t == TagDouble }

// MethodHandleKind is the reference_kind of a CONSTANT_MethodHandle.
type MethodHandleKind uint8

const (
	RefGetField         MethodHandleKind = 1
	RefGetStatic        MethodHandleKind = 2
	RefPutField         MethodHandleKind = 3
	RefPutStatic        MethodHandleKind = 4
	RefInvokeVirtual    MethodHandleKind = 5
	RefInvokeStatic     MethodHandleKind = 6
	RefInvokeSpecial    MethodHandleKind = 7
	RefNewInvokeSpecial MethodHandleKind = 8
	RefInvokeInterface  MethodHandleKind = 9
)

// ConstantPoolEntry is implemented by all constant pool types. Entries are
// fully typed at parse time.
type ConstantPoolEntry interface {
	Tag() ConstantTag
	// Encode writes the tag byte followed by the entry's fields.
	Encode(w *cursor.Writer)
}

type ConstantUtf8 struct {
	Value string
}

func (c *ConstantUtf8) Tag() ConstantTag { return TagUtf8 }
func (c *ConstantUtf8) Encode(w *cursor.Writer) {
	b := EncodeModifiedUTF8(c.Value)
	w.U8(uint8(TagUtf8))
	w.U16(uint16(len(b)))
	w.Data(b)
}

type ConstantInteger struct {
	Value int32
}

func (c *ConstantInteger) Tag() ConstantTag { return TagInteger }
func (c *ConstantInteger) Encode(w *cursor.Writer) {
	w.U8(uint8(TagInteger))
	w.I32(c.Value)
}

type ConstantFloat struct {
	Value float32
}

func (c *ConstantFloat) Tag() ConstantTag { return TagFloat }
func (c *ConstantFloat) Encode(w *cursor.Writer) {
	w.U8(uint8(TagFloat))
	w.F32(c.Value)
}

type ConstantLong struct {
	Value int64
}

func (c *ConstantLong) Tag() ConstantTag { return TagLong }
func (c *ConstantLong) Encode(w *cursor.Writer) {
	w.U8(uint8(TagLong))
	w.U32(uint32(uint64(c.Value) >> 32))
	w.U32(uint32(c.Value))
}

type ConstantDouble struct {
	Value float64
}

func (c *ConstantDouble) Tag() ConstantTag { return TagDouble }
func (c *ConstantDouble) Encode(w *cursor.Writer) {
	w.U8(uint8(TagDouble))
	w.F64(c.Value)
}

type ConstantClass struct {
	NameIndex uint16
}

func (c *ConstantClass) Tag() ConstantTag { return TagClass }
func (c *ConstantClass) Encode(w *cursor.Writer) {
	w.U8(uint8(TagClass))
	w.U16(c.NameIndex)
}

type ConstantString struct {
	StringIndex uint16
}

func (c *ConstantString) Tag() ConstantTag { return TagString }
func (c *ConstantString) Encode(w *cursor.Writer) {
	w.U8(uint8(TagString))
	w.U16(c.StringIndex)
}

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() ConstantTag { return TagFieldref }
func (c *ConstantFieldref) Encode(w *cursor.Writer) {
	encodeRef(w, TagFieldref, c.ClassIndex, c.NameAndTypeIndex)
}

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() ConstantTag { return TagMethodref }
func (c *ConstantMethodref) Encode(w *cursor.Writer) {
	encodeRef(w, TagMethodref, c.ClassIndex, c.NameAndTypeIndex)
}

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() ConstantTag { return TagInterfaceMethodref }
func (c *ConstantInterfaceMethodref) Encode(w *cursor.Writer) {
	encodeRef(w, TagInterfaceMethodref, c.ClassIndex, c.NameAndTypeIndex)
}

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() ConstantTag { return TagNameAndType }
func (c *ConstantNameAndType) Encode(w *cursor.Writer) {
	encodeRef(w, TagNameAndType, c.NameIndex, c.DescriptorIndex)
}

type ConstantMethodHandle struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandle) Tag() ConstantTag { return TagMethodHandle }
func (c *ConstantMethodHandle) Encode(w *cursor.Writer) {
	w.U8(uint8(TagMethodHandle))
	w.U8(uint8(c.ReferenceKind))
	w.U16(c.ReferenceIndex)
}

type ConstantMethodType struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodType) Tag() ConstantTag { return TagMethodType }
func (c *ConstantMethodType) Encode(w *cursor.Writer) {
	w.U8(uint8(TagMethodType))
	w.U16(c.DescriptorIndex)
}

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamic) Tag() ConstantTag { return TagInvokeDynamic }
func (c *ConstantInvokeDynamic) Encode(w *cursor.Writer) {
	encodeRef(w, TagInvokeDynamic, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
}

func encodeRef(w *cursor.Writer, tag ConstantTag, a, b uint16) {
	w.U8(uint8(tag))
	w.U16(a)
	w.U16(b)
}

// DecodeConstant reads one tagged constant pool entry.
func DecodeConstant(c *cursor.Cursor) (ConstantPoolEntry, error) {
	offset := c.Pos()
	t, err := c.U8()
	if err != nil {
		return nil, err
	}
	tag := ConstantTag(t)
	switch tag {
	case TagUtf8:
		length, err := c.U16()
		if err != nil {
			return nil, err
		}
		start := c.Pos()
		raw, err := c.Bytes(int(length))
		if err != nil {
			return nil, err
		}
		s, err := DecodeModifiedUTF8(raw)
		if err != nil {
			if fe, ok := err.(*FormatError); ok {
				fe.Offset += start
			}
			return nil, err
		}
		return &ConstantUtf8{Value: s}, nil

	case TagInteger:
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		return &ConstantInteger{Value: v}, nil

	case TagFloat:
		v, err := c.F32()
		if err != nil {
			return nil, err
		}
		return &ConstantFloat{Value: v}, nil

	case TagLong:
		hi, lo, err := readHalves(c)
		if err != nil {
			return nil, err
		}
		return &ConstantLong{Value: int64(uint64(hi)<<32 | uint64(lo))}, nil

	case TagDouble:
		v, err := c.F64()
		if err != nil {
			return nil, err
		}
		return &ConstantDouble{Value: v}, nil

	case TagClass:
		v, err := c.U16()
		if err != nil {
			return nil, err
		}
		return &ConstantClass{NameIndex: v}, nil

	case TagString:
		v, err := c.U16()
		if err != nil {
			return nil, err
		}
		return &ConstantString{StringIndex: v}, nil

	case TagMethodType:
		v, err := c.U16()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodType{DescriptorIndex: v}, nil

	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagInvokeDynamic:
		a, b, err := readPair(c)
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFieldref:
			return &ConstantFieldref{ClassIndex: a, NameAndTypeIndex: b}, nil
		case TagMethodref:
			return &ConstantMethodref{ClassIndex: a, NameAndTypeIndex: b}, nil
		case TagInterfaceMethodref:
			return &ConstantInterfaceMethodref{ClassIndex: a, NameAndTypeIndex: b}, nil
		case TagNameAndType:
			return &ConstantNameAndType{NameIndex: a, DescriptorIndex: b}, nil
		default:
			return &ConstantInvokeDynamic{BootstrapMethodAttrIndex: a, NameAndTypeIndex: b}, nil
		}

	case TagMethodHandle:
		kind, err := c.U8()
		if err != nil {
			return nil, err
		}
		index, err := c.U16()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodHandle{ReferenceKind: MethodHandleKind(kind), ReferenceIndex: index}, nil

	default:
		return nil, &TagError{Kind: "constant pool tag", Tag: int(t), Offset: offset}
	}
}

func readHalves(c *cursor.Cursor) (uint32, uint32, error) {
	hi, err := c.U32()
	if err != nil {
		return 0, 0, err
	}
	lo, err := c.U32()
	return hi, lo, err
}

func readPair(c *cursor.Cursor) (uint16, uint16, error) {
	a, err := c.U16()
	if err != nil {
		return 0, 0, err
	}
	b, err := c.U16()
	return a, b, err
}

// ConstantPool is the 1-indexed constant pool of a class file. Slot 0 and
// the slot after every Long or Double are never populated.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// NewConstantPool builds a pool from entries in slot order starting at
// index 1. Long and Double entries reserve the following slot, which must
// not be given a separate entry.
func NewConstantPool(entries ...ConstantPoolEntry) *ConstantPool {
	cp := &ConstantPool{entries: []ConstantPoolEntry{nil}}
	for _, e := range entries {
		cp.entries = append(cp.entries, e)
		if e.Tag().Wide() {
			cp.entries = append(cp.entries, nil)
		}
	}
	return cp
}

// decodeConstantPool reads constant_pool_count-1 slots worth of entries.
func decodeConstantPool(c *cursor.Cursor, count uint16) (*ConstantPool, error) {
	cp := &ConstantPool{entries: make([]ConstantPoolEntry, count)}
	for i := 1; i < int(count); {
		entry, err := DecodeConstant(c)
		if err != nil {
			return nil, errors.Wrapf(err, "constant pool entry %d", i)
		}
		cp.entries[i] = entry
		if entry.Tag().Wide() {
			i += 2
		} else {
			i++
		}
	}
	return cp, nil
}

// Count returns constant_pool_count, one more than the highest index.
func (cp *ConstantPool) Count() int { return len(cp.entries) }

// Get returns the entry at index.
func (cp *ConstantPool) Get(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) >= len(cp.entries) {
		return nil, &IndexError{Index: index, Count: len(cp.entries)}
	}
	e := cp.entries[index]
	if e == nil {
		return nil, &IndexError{Index: index, Count: len(cp.entries), Reserved: true}
	}
	return e, nil
}

// Each calls fn for every populated slot in index order.
func (cp *ConstantPool) Each(fn func(index uint16, e ConstantPoolEntry)) {
	for i, e := range cp.entries {
		if e != nil {
			fn(uint16(i), e)
		}
	}
}

// Encode writes constant_pool_count followed by every entry.
func (cp *ConstantPool) Encode(w *cursor.Writer) {
	w.U16(uint16(len(cp.entries)))
	for _, e := range cp.entries {
		if e != nil {
			e.Encode(w)
		}
	}
}

// entryAs fetches index and asserts it is a T.
func entryAs[T ConstantPoolEntry](cp *ConstantPool, index uint16) (T, error) {
	var zero T
	e, err := cp.Get(index)
	if err != nil {
		return zero, err
	}
	v, ok := e.(T)
	if !ok {
		return zero, &EntryTypeError{Index: index, Want: zero.Tag(), Got: e.Tag()}
	}
	return v, nil
}

// Utf8 returns the string stored at a CONSTANT_Utf8 index.
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	e, err := entryAs[*ConstantUtf8](cp, index)
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

// ClassName returns the internal name referenced by a CONSTANT_Class entry.
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	e, err := entryAs[*ConstantClass](cp, index)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.NameIndex)
}

// StringValue returns the literal referenced by a CONSTANT_String entry.
func (cp *ConstantPool) StringValue(index uint16) (string, error) {
	e, err := entryAs[*ConstantString](cp, index)
	if err != nil {
		return "", err
	}
	return cp.Utf8(e.StringIndex)
}

// NameAndType resolves a CONSTANT_NameAndType entry.
func (cp *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	e, err := entryAs[*ConstantNameAndType](cp, index)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.Utf8(e.NameIndex); err != nil {
		return "", "", errors.Wrap(err, "resolving name")
	}
	if descriptor, err = cp.Utf8(e.DescriptorIndex); err != nil {
		return "", "", errors.Wrap(err, "resolving descriptor")
	}
	return name, descriptor, nil
}

// MemberRef is a resolved field or method reference.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (cp *ConstantPool) resolveMember(classIndex, natIndex uint16) (*MemberRef, error) {
	className, err := cp.ClassName(classIndex)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class")
	}
	name, desc, err := cp.NameAndType(natIndex)
	if err != nil {
		return nil, err
	}
	return &MemberRef{ClassName: className, Name: name, Descriptor: desc}, nil
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func (cp *ConstantPool) ResolveFieldref(index uint16) (*MemberRef, error) {
	e, err := entryAs[*ConstantFieldref](cp, index)
	if err != nil {
		return nil, err
	}
	ref, err := cp.resolveMember(e.ClassIndex, e.NameAndTypeIndex)
	return ref, errors.Wrapf(err, "resolving Fieldref %d", index)
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func (cp *ConstantPool) ResolveMethodref(index uint16) (*MemberRef, error) {
	e, err := entryAs[*ConstantMethodref](cp, index)
	if err != nil {
		return nil, err
	}
	ref, err := cp.resolveMember(e.ClassIndex, e.NameAndTypeIndex)
	return ref, errors.Wrapf(err, "resolving Methodref %d", index)
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func (cp *ConstantPool) ResolveInterfaceMethodref(index uint16) (*MemberRef, error) {
	e, err := entryAs[*ConstantInterfaceMethodref](cp, index)
	if err != nil {
		return nil, err
	}
	ref, err := cp.resolveMember(e.ClassIndex, e.NameAndTypeIndex)
	return ref, errors.Wrapf(err, "resolving InterfaceMethodref %d", index)
}
