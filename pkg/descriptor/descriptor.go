// Package descriptor parses JVM field and method descriptors such as
// "[Ljava/lang/String;" and "(IJ)V".
package descriptor

import (
	"fmt"
	"strings"
)

// Kind classifies a field type.
type Kind byte

const (
	Byte    Kind = 'B'
	Char    Kind = 'C'
	Double  Kind = 'D'
	Float   Kind = 'F'
	Int     Kind = 'I'
	Long    Kind = 'J'
	Short   Kind = 'S'
	Boolean Kind = 'Z'
	Object  Kind = 'L'
	Array   Kind = '['
)

var baseNames = map[Kind]string{
	Byte:    "byte",
	Char:    "char",
	Double:  "double",
	Float:   "float",
	Int:     "int",
	Long:    "long",
	Short:   "short",
	Boolean: "boolean",
}

// Type is a parsed field type. ClassName is set for Object, Elem for Array.
type Type struct {
	Kind      Kind
	ClassName string
	Elem      *Type
}

// Dimensions returns the array depth of t.
func (t *Type) Dimensions() int {
	n := 0
	for e := t; e.Kind == Array; e = e.Elem {
		n++
	}
	return n
}

// Slots returns the number of local variable slots a value of t occupies.
func (t *Type) Slots() int {
	if t.Kind == Long || t.Kind == Double {
		return 2
	}
	return 1
}

// Descriptor renders t back to descriptor form.
func (t *Type) Descriptor() string {
	switch t.Kind {
	case Object:
		return "L" + t.ClassName + ";"
	case Array:
		return "[" + t.Elem.Descriptor()
	default:
		return string(t.Kind)
	}
}

// String renders t in Java source form, e.g. "java.lang.String[]".
func (t *Type) String() string {
	switch t.Kind {
	case Object:
		return strings.ReplaceAll(t.ClassName, "/", ".")
	case Array:
		return t.Elem.String() + "[]"
	default:
		return baseNames[t.Kind]
	}
}

// Method is a parsed method descriptor. Return is nil for void.
type Method struct {
	Params []*Type
	Return *Type
}

// ArgSlots returns the local variable slots taken by the parameters.
func (m *Method) ArgSlots() int {
	n := 0
	for _, p := range m.Params {
		n += p.Slots()
	}
	return n
}

// String renders the method as "ret (p1, p2)".
func (m *Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	ret := "void"
	if m.Return != nil {
		ret = m.Return.String()
	}
	return fmt.Sprintf("%s (%s)", ret, strings.Join(params, ", "))
}

// Error reports a malformed descriptor.
type Error struct {
	Descriptor string
	Offset     int
	Reason     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid descriptor %q at offset %d: %s", e.Descriptor, e.Offset, e.Reason)
}

// ParseField parses a complete field descriptor.
func ParseField(s string) (*Type, error) {
	offset := 0
	t, err := parseType(s, &offset)
	if err != nil {
		return nil, err
	}
	if offset != len(s) {
		return nil, &Error{s, offset, "trailing characters"}
	}
	return t, nil
}

// ParseMethod parses a complete method descriptor.
func ParseMethod(s string) (*Method, error) {
	if len(s) == 0 || s[0] != '(' {
		return nil, &Error{s, 0, "missing '('"}
	}
	offset := 1
	m := &Method{}
	for {
		if offset >= len(s) {
			return nil, &Error{s, offset, "missing ')'"}
		}
		if s[offset] == ')' {
			offset++
			break
		}
		p, err := parseType(s, &offset)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, p)
	}
	if offset < len(s) && s[offset] == 'V' {
		offset++
	} else {
		ret, err := parseType(s, &offset)
		if err != nil {
			return nil, err
		}
		m.Return = ret
	}
	if offset != len(s) {
		return nil, &Error{s, offset, "trailing characters"}
	}
	return m, nil
}

// MaxArrayDimensions is the most dimensions an array type may have.
const MaxArrayDimensions = 255

// parseType returns the type starting at offset, leaving offset one byte
// beyond the end of it.
func parseType(s string, offset *int) (*Type, error) {
	if *offset >= len(s) {
		return nil, &Error{s, *offset, "unexpected end"}
	}
	start := *offset
	k := Kind(s[start])
	*offset++
	switch k {
	case Byte, Char, Double, Float, Int, Long, Short, Boolean:
		return &Type{Kind: k}, nil
	case Object:
		end := strings.IndexByte(s[*offset:], ';')
		if end < 0 {
			return nil, &Error{s, start, "class name missing terminating ';'"}
		}
		if end == 0 {
			return nil, &Error{s, start, "empty class name"}
		}
		name := s[*offset : *offset+end]
		*offset += end + 1
		return &Type{Kind: Object, ClassName: name}, nil
	case Array:
		dims := 1
		for *offset < len(s) && Kind(s[*offset]) == Array {
			dims++
			*offset++
		}
		if dims > MaxArrayDimensions {
			return nil, &Error{s, start, fmt.Sprintf("%d array dimensions, more than %d", dims, MaxArrayDimensions)}
		}
		t, err := parseType(s, offset)
		if err != nil {
			return nil, err
		}
		for range dims {
			t = &Type{Kind: Array, Elem: t}
		}
		return t, nil
	default:
		return nil, &Error{s, start, fmt.Sprintf("unknown type tag '%c'", s[start])}
	}
}
