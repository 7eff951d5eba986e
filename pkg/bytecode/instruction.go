package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instruction is one decoded bytecode instruction. Operands holds the bytes
// after the opcode (after the wide prefix's second byte when Wide is set).
// Switch operands are stored big-endian with every jump target already
// converted to an absolute code offset.
type Instruction struct {
	Offset   int
	Opcode   Opcode
	Wide     bool
	Padding  int
	Operands []byte
}

// Size returns the number of code bytes the instruction occupies.
func (in *Instruction) Size() int {
	n := 1 + in.Padding + len(in.Operands)
	if in.Wide {
		n++
	}
	return n
}

// Index returns the constant pool or local variable index carried by the
// instruction.
func (in *Instruction) Index() (uint16, bool) {
	switch OperandOf(in.Opcode) {
	case OperandPool, OperandLocal:
	default:
		return 0, false
	}
	if in.Wide || len(in.Operands) >= 2 && in.Opcode != OpIinc {
		return binary.BigEndian.Uint16(in.Operands), true
	}
	return uint16(in.Operands[0]), true
}

// Const returns the immediate value of bipush, sipush, newarray and iinc.
func (in *Instruction) Const() (int32, bool) {
	switch in.Opcode {
	case OpBipush:
		return int32(int8(in.Operands[0])), true
	case OpSipush:
		return int32(int16(binary.BigEndian.Uint16(in.Operands))), true
	case OpNewarray:
		return int32(in.Operands[0]), true
	case OpIinc:
		if in.Wide {
			return int32(int16(binary.BigEndian.Uint16(in.Operands[2:]))), true
		}
		return int32(int8(in.Operands[1])), true
	}
	return 0, false
}

// Branch returns the absolute target of a branch instruction.
func (in *Instruction) Branch() (int, bool) {
	if OperandOf(in.Opcode) != OperandBranch {
		return 0, false
	}
	if in.Opcode == OpGotoW || in.Opcode == OpJsrW {
		return in.Offset + int(int32(binary.BigEndian.Uint32(in.Operands))), true
	}
	return in.Offset + int(int16(binary.BigEndian.Uint16(in.Operands))), true
}

// Switch is the decoded body of a tableswitch or lookupswitch. All targets
// are absolute code offsets.
type Switch struct {
	Default int32
	Low     int32
	High    int32
	Offsets []int32
	Pairs   []MatchOffset
}

// MatchOffset is one lookupswitch arm.
type MatchOffset struct {
	Match  int32
	Offset int32
}

// Switch returns the switch body of a tableswitch or lookupswitch.
func (in *Instruction) Switch() (*Switch, bool) {
	u4 := func(i int) int32 { return int32(binary.BigEndian.Uint32(in.Operands[4*i:])) }
	switch in.Opcode {
	case OpTableswitch:
		s := &Switch{Default: u4(0), Low: u4(1), High: u4(2)}
		n := len(in.Operands)/4 - 3
		s.Offsets = make([]int32, n)
		for i := range s.Offsets {
			s.Offsets[i] = u4(3 + i)
		}
		return s, true
	case OpLookupswitch:
		s := &Switch{Default: u4(0)}
		n := int(u4(1))
		s.Pairs = make([]MatchOffset, n)
		for i := range s.Pairs {
			s.Pairs[i] = MatchOffset{Match: u4(2 + 2*i), Offset: u4(3 + 2*i)}
		}
		return s, true
	}
	return nil, false
}

var arrayTypes = map[byte]string{
	4: "boolean", 5: "char", 6: "float", 7: "double",
	8: "byte", 9: "short", 10: "int", 11: "long",
}

// String renders the instruction in javap style, e.g. "invokevirtual #7",
// "iinc 1, 2" or "goto 14". Pool operands are shown as "#n".
func (in *Instruction) String() string {
	var sb strings.Builder
	if in.Wide {
		sb.WriteString("wide ")
	}
	sb.WriteString(in.Opcode.Name())

	switch OperandOf(in.Opcode) {
	case OperandLocal:
		idx, _ := in.Index()
		fmt.Fprintf(&sb, " %d", idx)
		if in.Opcode == OpIinc {
			v, _ := in.Const()
			fmt.Fprintf(&sb, ", %d", v)
		}
	case OperandConst:
		v, _ := in.Const()
		if in.Opcode == OpNewarray {
			if name, ok := arrayTypes[byte(v)]; ok {
				fmt.Fprintf(&sb, " %s", name)
				break
			}
		}
		fmt.Fprintf(&sb, " %d", v)
	case OperandPool:
		idx, _ := in.Index()
		fmt.Fprintf(&sb, " #%d", idx)
		if in.Opcode == OpInvokeinterface || in.Opcode == OpMultianewarray {
			fmt.Fprintf(&sb, ", %d", in.Operands[2])
		}
	case OperandBranch:
		target, _ := in.Branch()
		fmt.Fprintf(&sb, " %d", target)
	case OperandSwitch:
		s, _ := in.Switch()
		sb.WriteString(" {")
		if in.Opcode == OpTableswitch {
			for i, off := range s.Offsets {
				fmt.Fprintf(&sb, " %d: %d,", int64(s.Low)+int64(i), off)
			}
		} else {
			for _, p := range s.Pairs {
				fmt.Fprintf(&sb, " %d: %d,", p.Match, p.Offset)
			}
		}
		fmt.Fprintf(&sb, " default: %d }", s.Default)
	}
	return sb.String()
}
