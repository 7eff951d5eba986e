package classfile

import "fmt"

// MagicError is returned when the file does not start with 0xCAFEBABE.
type MagicError struct {
	Got uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("invalid magic number: 0x%08X (expected 0x%08X)", e.Got, uint32(Magic))
}

// VersionError is returned for class file versions outside
// [MinMajorVersion, MaxMajorVersion].
type VersionError struct {
	Major uint16
	Minor uint16
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported class file version %d.%d (supported: %d-%d)",
		e.Major, e.Minor, MinMajorVersion, MaxMajorVersion)
}

// TagError reports an unrecognised discriminant. Kind names the variant
// family ("constant pool tag", "stack map frame type", ...) and Offset is
// the position of the discriminant within the buffer being decoded.
type TagError struct {
	Kind   string
	Tag    int
	Offset int
}

func (e *TagError) Error() string {
	return fmt.Sprintf("unknown %s %d (0x%02X) at offset %d", e.Kind, e.Tag, e.Tag, e.Offset)
}

// IndexError reports a constant pool lookup outside the populated slots.
// Reserved is set when the index is the unusable slot following a Long or
// Double entry.
type IndexError struct {
	Index    uint16
	Count    int
	Reserved bool
}

func (e *IndexError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("constant pool index %d is reserved by the preceding 8-byte entry", e.Index)
	}
	return fmt.Sprintf("invalid constant pool index %d (pool count %d)", e.Index, e.Count)
}

// EntryTypeError reports a constant pool entry of an unexpected kind.
type EntryTypeError struct {
	Index uint16
	Want  ConstantTag
	Got   ConstantTag
}

func (e *EntryTypeError) Error() string {
	return fmt.Sprintf("constant pool index %d is %s, want %s", e.Index, e.Got, e.Want)
}

// FormatError reports a structurally malformed value at Offset.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed class data at offset %d: %s", e.Offset, e.Reason)
}
