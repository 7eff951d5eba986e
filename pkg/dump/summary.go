// Package dump renders parsed class files for people and tools: a
// structured Summary in several output formats and a javap-style
// disassembly of method bodies.
package dump

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/attribute"
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/descriptor"
)

// Summary describes a class file. It carries names rather than constant
// pool indexes so it stands on its own once encoded.
type Summary struct {
	Name         string   `json:"name" yaml:"name"`
	Super        string   `json:"super,omitempty" yaml:"super,omitempty"`
	Interfaces   []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	MajorVersion uint16   `json:"major" yaml:"major"`
	MinorVersion uint16   `json:"minor" yaml:"minor"`
	Flags        []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	SourceFile   string   `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
	Signature    string   `json:"signature,omitempty" yaml:"signature,omitempty"`
	ConstantPool int      `json:"constantPool" yaml:"constantPool"`
	Fields       []Member `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods      []Member `json:"methods,omitempty" yaml:"methods,omitempty"`
	Attributes   []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Member is a field or method.
type Member struct {
	Name       string     `json:"name" yaml:"name"`
	Descriptor string     `json:"descriptor" yaml:"descriptor"`
	Type       string     `json:"type" yaml:"type"`
	Flags      []string   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Attributes []string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Code       *CodeStats `json:"code,omitempty" yaml:"code,omitempty"`
}

// CodeStats summarizes a Code attribute.
type CodeStats struct {
	MaxStack     uint16 `json:"maxStack" yaml:"maxStack"`
	MaxLocals    uint16 `json:"maxLocals" yaml:"maxLocals"`
	Length       int    `json:"length" yaml:"length"`
	Instructions int    `json:"instructions" yaml:"instructions"`
	Handlers     int    `json:"handlers,omitempty" yaml:"handlers,omitempty"`
}

// Version returns the class file version as "major.minor".
func (s *Summary) Version() string {
	return fmt.Sprintf("%d.%d", s.MajorVersion, s.MinorVersion)
}

// Summarize resolves the names in cf and decodes its attributes.
func Summarize(cf *classfile.ClassFile) (*Summary, error) {
	cp := cf.ConstantPool
	s := &Summary{
		MajorVersion: cf.MajorVersion,
		MinorVersion: cf.MinorVersion,
		Flags:        cf.AccessFlags.Names(classfile.ClassContext),
		ConstantPool: cp.Count(),
	}

	var err error
	if s.Name, err = cf.ClassName(); err != nil {
		return nil, errors.Wrap(err, "this_class")
	}
	if s.Super, err = cf.SuperClassName(); err != nil {
		return nil, errors.Wrap(err, "super_class")
	}
	if len(cf.Interfaces) > 0 {
		if s.Interfaces, err = cf.InterfaceNames(); err != nil {
			return nil, errors.Wrap(err, "interfaces")
		}
	}

	attrs, err := attribute.DecodeAll(cp, cf.Attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "class %s", s.Name)
	}
	for _, a := range attrs {
		s.Attributes = append(s.Attributes, a.AttributeName())
		switch a := a.(type) {
		case *attribute.SourceFile:
			if s.SourceFile, err = a.FileName(cp); err != nil {
				return nil, err
			}
		case *attribute.Signature:
			if s.Signature, err = a.Value(cp); err != nil {
				return nil, err
			}
		}
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		m, err := summarizeMember(cp, f.NameIndex, f.DescriptorIndex, f.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d of %s", i, s.Name)
		}
		t, err := descriptor.ParseField(m.Descriptor)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", s.Name, m.Name)
		}
		m.Type = t.String()
		m.Flags = f.AccessFlags.Names(classfile.FieldContext)
		s.Fields = append(s.Fields, *m)
	}

	for i := range cf.Methods {
		mi := &cf.Methods[i]
		m, err := summarizeMember(cp, mi.NameIndex, mi.DescriptorIndex, mi.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "method %d of %s", i, s.Name)
		}
		md, err := descriptor.ParseMethod(m.Descriptor)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s.%s", s.Name, m.Name)
		}
		m.Type = md.String()
		m.Flags = mi.AccessFlags.Names(classfile.MethodContext)

		code, err := attribute.MethodCode(cf, mi)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s.%s%s", s.Name, m.Name, m.Descriptor)
		}
		if code != nil {
			m.Code = &CodeStats{
				MaxStack:     code.MaxStack,
				MaxLocals:    code.MaxLocals,
				Length:       len(code.Code),
				Instructions: len(code.Instructions),
				Handlers:     len(code.ExceptionHandlers),
			}
		}
		s.Methods = append(s.Methods, *m)
	}
	return s, nil
}

func summarizeMember(cp *classfile.ConstantPool, nameIndex, descIndex uint16, attrs []classfile.AttributeInfo) (*Member, error) {
	name, err := cp.Utf8(nameIndex)
	if err != nil {
		return nil, errors.Wrap(err, "name")
	}
	desc, err := cp.Utf8(descIndex)
	if err != nil {
		return nil, errors.Wrapf(err, "descriptor of %s", name)
	}
	m := &Member{Name: name, Descriptor: desc}
	for _, a := range attrs {
		n, err := a.Name(cp)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute of %s", name)
		}
		m.Attributes = append(m.Attributes, n)
	}
	return m, nil
}
