package bytecode

// Shape classifies the operand layout that follows an opcode. ShapeU1U1 is
// iinc (local index, signed const), ShapeU2U1 is multianewarray and ShapeU4
// covers goto_w, jsr_w, invokeinterface and invokedynamic.
type Shape uint8

const (
	ShapeInvalid Shape = iota
	ShapeNone
	ShapeU1
	ShapeU1U1
	ShapeU2
	ShapeU2U1
	ShapeU4
	ShapeTableSwitch
	ShapeLookupSwitch
	ShapeWide
)

// operandLen is the fixed operand length for non-variable shapes.
func (s Shape) operandLen() int {
	switch s {
	case ShapeU1:
		return 1
	case ShapeU1U1, ShapeU2:
		return 2
	case ShapeU2U1:
		return 3
	case ShapeU4:
		return 4
	}
	return 0
}

// Operand says what the stored operand bytes mean, for rendering.
type Operand uint8

const (
	OperandNone Operand = iota
	OperandLocal
	OperandConst
	OperandPool
	OperandBranch
	OperandSwitch
)

// ShapeOf returns the operand shape of op, or ShapeInvalid when op is not
// a Java SE 8 instruction.
func ShapeOf(op Opcode) Shape {
	switch {
	case op <= OpDconst1:
		return ShapeNone
	case op == OpBipush, op == OpLdc, op == OpNewarray, op == OpRet:
		return ShapeU1
	case op == OpSipush, op == OpLdcW, op == OpLdc2W:
		return ShapeU2
	case op >= OpIload && op <= OpAload, op >= OpIstore && op <= OpAstore:
		return ShapeU1
	case op >= OpIload0 && op <= OpSaload, op >= OpIstore0 && op <= OpLxor:
		return ShapeNone
	case op == OpIinc:
		return ShapeU1U1
	case op >= OpI2l && op <= OpDcmpg:
		return ShapeNone
	case op >= OpIfeq && op <= OpJsr:
		return ShapeU2
	case op == OpTableswitch:
		return ShapeTableSwitch
	case op == OpLookupswitch:
		return ShapeLookupSwitch
	case op >= OpIreturn && op <= OpReturn:
		return ShapeNone
	case op >= OpGetstatic && op <= OpInvokestatic:
		return ShapeU2
	case op == OpInvokeinterface, op == OpInvokedynamic, op == OpGotoW, op == OpJsrW:
		return ShapeU4
	case op == OpNew, op == OpAnewarray, op == OpCheckcast, op == OpInstanceof,
		op == OpIfnull, op == OpIfnonnull:
		return ShapeU2
	case op == OpArraylength, op == OpAthrow, op == OpMonitorenter, op == OpMonitorexit:
		return ShapeNone
	case op == OpWide:
		return ShapeWide
	case op == OpMultianewarray:
		return ShapeU2U1
	}
	return ShapeInvalid
}

// OperandOf returns how the leading operand of op is interpreted.
func OperandOf(op Opcode) Operand {
	switch {
	case op == OpBipush, op == OpSipush, op == OpNewarray:
		return OperandConst
	case op >= OpIload && op <= OpAload, op >= OpIstore && op <= OpAstore,
		op == OpRet, op == OpIinc:
		return OperandLocal
	case op == OpLdc, op == OpLdcW, op == OpLdc2W,
		op >= OpGetstatic && op <= OpInvokedynamic,
		op == OpNew, op == OpAnewarray, op == OpCheckcast, op == OpInstanceof,
		op == OpMultianewarray:
		return OperandPool
	case op >= OpIfeq && op <= OpJsr, op == OpIfnull, op == OpIfnonnull,
		op == OpGotoW, op == OpJsrW:
		return OperandBranch
	case op == OpTableswitch, op == OpLookupswitch:
		return OperandSwitch
	}
	return OperandNone
}

// wideable reports whether op may follow the wide prefix.
func wideable(op Opcode) bool {
	switch {
	case op >= OpIload && op <= OpAload, op >= OpIstore && op <= OpAstore,
		op == OpRet, op == OpIinc:
		return true
	}
	return false
}
