package cursor

import "fmt"

// EOFError reports a read that asked for more bytes than remain.
type EOFError struct {
	Offset int
	Want   int
	Have   int
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("unexpected end of data at offset %d: need %d bytes, have %d", e.Offset, e.Want, e.Have)
}

// TrailingError reports bytes left over after a length-delimited structure
// was fully decoded.
type TrailingError struct {
	Offset    int
	Remaining int
}

func (e *TrailingError) Error() string {
	return fmt.Sprintf("%d unread bytes after offset %d", e.Remaining, e.Offset)
}
