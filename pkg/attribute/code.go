package attribute

import (
	"github.com/pkg/errors"

	"github.com/daimatz/jclass/pkg/bytecode"
	"github.com/daimatz/jclass/pkg/classfile"
	"github.com/daimatz/jclass/pkg/cursor"
)

// ExceptionHandler represents an entry in the exception table. CatchType
// zero catches everything (finally blocks).
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

func (h *ExceptionHandler) Decode(c *cursor.Cursor) error {
	v, err := cursor.ReadMany[uint16](c, 4)
	if err != nil {
		return err
	}
	*h = ExceptionHandler{StartPC: v[0], EndPC: v[1], HandlerPC: v[2], CatchType: v[3]}
	return nil
}

// Code is the body of a non-abstract, non-native method. Instructions is
// decoded from exactly the code_length bytes of Code.
type Code struct {
	Header
	MaxStack          uint16
	MaxLocals         uint16
	Code              []byte
	Instructions      []bytecode.Instruction
	ExceptionHandlers []ExceptionHandler
	Attributes        []classfile.AttributeInfo
}

func (*Code) AttributeName() string { return NameCode }

func (a *Code) Decode(c *cursor.Cursor) (err error) {
	if a.MaxStack, err = c.U16(); err != nil {
		return err
	}
	if a.MaxLocals, err = c.U16(); err != nil {
		return err
	}
	n, err := c.U32()
	if err != nil {
		return err
	}
	if a.Code, err = c.Bytes(int(n)); err != nil {
		return err
	}
	if a.Instructions, err = bytecode.Decode(a.Code); err != nil {
		return errors.Wrap(err, "decoding instructions")
	}
	if a.ExceptionHandlers, err = cursor.ReadU16Vec[ExceptionHandler](c); err != nil {
		return errors.Wrap(err, "exception table")
	}
	a.Attributes, err = cursor.ReadU16Vec[classfile.AttributeInfo](c)
	return errors.Wrap(err, "code attributes")
}

// FindAttribute returns the nested attribute with the given name.
func (a *Code) FindAttribute(cp *classfile.ConstantPool, name string) *classfile.AttributeInfo {
	return classfile.FindAttribute(cp, a.Attributes, name)
}

// LineNumbers decodes the nested LineNumberTable, or returns nil if there
// is none.
func (a *Code) LineNumbers(cp *classfile.ConstantPool) (*LineNumberTable, error) {
	info := a.FindAttribute(cp, NameLineNumberTable)
	if info == nil {
		return nil, nil
	}
	return DecodeLineNumberTable(cp, info)
}

// StackMap decodes the nested StackMapTable, or returns nil if there is
// none.
func (a *Code) StackMap(cp *classfile.ConstantPool) (*StackMapTable, error) {
	info := a.FindAttribute(cp, NameStackMapTable)
	if info == nil {
		return nil, nil
	}
	return DecodeStackMapTable(cp, info)
}

// DecodeCode decodes a Code attribute including its instructions.
func DecodeCode(cp *classfile.ConstantPool, info *classfile.AttributeInfo) (*Code, error) {
	return decodeAs[Code](cp, info, NameCode)
}
