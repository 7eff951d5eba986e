package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/attribute"
	"github.com/daimatz/jclass/pkg/bytecode"
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/descriptor"
)

// Disassemble writes every method of cf with its instructions, exception
// table and line numbers. Abstract and native methods print their
// signature only.
func Disassemble(w io.Writer, cf *classfile.ClassFile) error {
	cp := cf.ConstantPool
	name, err := cf.ClassName()
	if err != nil {
		return errors.Wrap(err, "this_class")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s {\n", joinNonEmpty(cf.AccessFlags.Format(classfile.ClassContext), "class", name))
	for i := range cf.Methods {
		if i > 0 {
			sb.WriteString("\n")
		}
		if err := disassembleMethod(&sb, cf, &cf.Methods[i]); err != nil {
			n, _ := cf.Methods[i].Name(cp)
			return errors.Wrapf(err, "method %s.%s", name, n)
		}
	}
	sb.WriteString("}\n")
	_, err = io.WriteString(w, sb.String())
	return err
}

func disassembleMethod(sb *strings.Builder, cf *classfile.ClassFile, m *classfile.MethodInfo) error {
	cp := cf.ConstantPool
	name, err := m.Name(cp)
	if err != nil {
		return err
	}
	desc, err := m.Descriptor(cp)
	if err != nil {
		return err
	}
	md, err := descriptor.ParseMethod(desc)
	if err != nil {
		return err
	}

	params := make([]string, len(md.Params))
	for i, p := range md.Params {
		params[i] = p.String()
	}
	ret := "void"
	if md.Return != nil {
		ret = md.Return.String()
	}
	fmt.Fprintf(sb, "  %s(%s);\n", joinNonEmpty(m.AccessFlags.Format(classfile.MethodContext), ret, name),
		strings.Join(params, ", "))
	fmt.Fprintf(sb, "    descriptor: %s\n", desc)

	code, err := attribute.MethodCode(cf, m)
	if err != nil || code == nil {
		return err
	}
	fmt.Fprintf(sb, "    Code: stack=%d, locals=%d\n", code.MaxStack, code.MaxLocals)
	for i := range code.Instructions {
		in := &code.Instructions[i]
		text := in.String()
		if comment := constantComment(cp, in); comment != "" {
			fmt.Fprintf(sb, "      %4d: %-24s // %s\n", in.Offset, text, comment)
		} else {
			fmt.Fprintf(sb, "      %4d: %s\n", in.Offset, text)
		}
	}

	if len(code.ExceptionHandlers) > 0 {
		sb.WriteString("    Exception table:\n")
		sb.WriteString("       from    to  target type\n")
		for _, h := range code.ExceptionHandlers {
			catch := "any"
			if h.CatchType != 0 {
				if catch, err = cp.ClassName(h.CatchType); err != nil {
					return errors.Wrap(err, "catch_type")
				}
			}
			fmt.Fprintf(sb, "      %5d %5d %5d   %s\n", h.StartPC, h.EndPC, h.HandlerPC, catch)
		}
	}

	lines, err := code.LineNumbers(cp)
	if err != nil {
		return err
	}
	if lines != nil {
		sb.WriteString("    LineNumberTable:\n")
		for _, e := range lines.Entries {
			fmt.Fprintf(sb, "      line %d: %d\n", e.LineNumber, e.StartPC)
		}
	}
	return nil
}

// constantComment resolves the constant pool operand of in, or returns ""
// for instructions without one. Unresolvable operands are left to the
// numeric form.
func constantComment(cp *classfile.ConstantPool, in *bytecode.Instruction) string {
	if bytecode.OperandOf(in.Opcode) != bytecode.OperandPool {
		return ""
	}
	idx, _ := in.Index()
	e, err := cp.Get(idx)
	if err != nil {
		return ""
	}

	switch e := e.(type) {
	case *classfile.ConstantFieldref:
		if ref, err := cp.ResolveFieldref(idx); err == nil {
			return fmt.Sprintf("Field %s.%s:%s", ref.ClassName, ref.Name, ref.Descriptor)
		}
	case *classfile.ConstantMethodref:
		if ref, err := cp.ResolveMethodref(idx); err == nil {
			return fmt.Sprintf("Method %s.%s:%s", ref.ClassName, ref.Name, ref.Descriptor)
		}
	case *classfile.ConstantInterfaceMethodref:
		if ref, err := cp.ResolveInterfaceMethodref(idx); err == nil {
			return fmt.Sprintf("InterfaceMethod %s.%s:%s", ref.ClassName, ref.Name, ref.Descriptor)
		}
	case *classfile.ConstantClass:
		if name, err := cp.ClassName(idx); err == nil {
			return "class " + name
		}
	case *classfile.ConstantString:
		if s, err := cp.StringValue(idx); err == nil {
			return fmt.Sprintf("String %q", s)
		}
	case *classfile.ConstantInteger:
		return fmt.Sprintf("int %d", e.Value)
	case *classfile.ConstantFloat:
		return fmt.Sprintf("float %gf", e.Value)
	case *classfile.ConstantLong:
		return fmt.Sprintf("long %dl", e.Value)
	case *classfile.ConstantDouble:
		return fmt.Sprintf("double %gd", e.Value)
	case *classfile.ConstantMethodType:
		if d, err := cp.Utf8(e.DescriptorIndex); err == nil {
			return "MethodType " + d
		}
	case *classfile.ConstantMethodHandle:
		return fmt.Sprintf("MethodHandle kind %d #%d", e.ReferenceKind, e.ReferenceIndex)
	case *classfile.ConstantInvokeDynamic:
		if name, desc, err := cp.NameAndType(e.NameAndTypeIndex); err == nil {
			return fmt.Sprintf("InvokeDynamic #%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc)
		}
	}
	return ""
}
