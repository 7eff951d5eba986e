package bytecode

import "fmt"

// OpcodeError reports a byte that is not a known instruction.
type OpcodeError struct {
	Opcode uint8
	Offset int
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unsupported operation 0x%02x at offset %d", e.Opcode, e.Offset)
}

// WideError reports an opcode after wide that cannot be widened.
type WideError struct {
	Opcode uint8
	Offset int
}

func (e *WideError) Error() string {
	return fmt.Sprintf("unexpected opcode 0x%02x after wide at offset %d", e.Opcode, e.Offset)
}

// RangeError reports a tableswitch whose low bound exceeds its high bound,
// or a lookupswitch with a negative pair count (Low 0, High count-1).
type RangeError struct {
	Low    int32
	High   int32
	Offset int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid switch range [%d, %d] at offset %d", e.Low, e.High, e.Offset)
}
