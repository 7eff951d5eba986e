package classfile

import (
	"unicode/utf16"
	"unicode/utf8"
)

// DecodeModifiedUTF8 converts the modified UTF-8 used by CONSTANT_Utf8
// entries into a Go string. NUL is encoded as 0xC0 0x80 and supplementary
// characters as two 3-byte surrogates. An unpaired surrogate is kept as its
// 3-byte generalized UTF-8 form, so the result is not always valid UTF-8
// but always encodes back to the same bytes.
func DecodeModifiedUTF8(b []byte) (string, error) {
	ascii := true
	for _, x := range b {
		if x == 0 || x >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		x := b[i]
		switch {
		case x == 0:
			return "", &FormatError{Offset: i, Reason: "NUL byte in modified UTF-8"}
		case x < 0x80:
			units = append(units, uint16(x))
			i++
		case x&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", &FormatError{Offset: i, Reason: "truncated 2-byte modified UTF-8 sequence"}
			}
			units = append(units, uint16(x&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case x&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", &FormatError{Offset: i, Reason: "truncated 3-byte modified UTF-8 sequence"}
			}
			units = append(units, uint16(x&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", &FormatError{Offset: i, Reason: "invalid modified UTF-8 lead byte"}
		}
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case utf16.IsSurrogate(rune(u)):
			if i+1 < len(units) {
				if r := utf16.DecodeRune(rune(u), rune(units[i+1])); r != utf8.RuneError {
					out = utf8.AppendRune(out, r)
					i++
					continue
				}
			}
			out = append(out, 0xE0|byte(u>>12), 0x80|byte(u>>6&0x3F), 0x80|byte(u&0x3F))
		default:
			out = utf8.AppendRune(out, rune(u))
		}
	}
	return string(out), nil
}

// EncodeModifiedUTF8 is the inverse of DecodeModifiedUTF8. Invalid UTF-8 in
// s other than a 3-byte surrogate encodes as U+FFFD.
func EncodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			if u, ok := surrogateAt(s[i:]); ok {
				out = appendUnit(out, u)
				i += 3
				continue
			}
			out = appendUnit(out, uint16(utf8.RuneError))
		case r >= 0x10000:
			hi, lo := utf16.EncodeRune(r)
			out = appendUnit(out, uint16(hi))
			out = appendUnit(out, uint16(lo))
		default:
			out = appendUnit(out, uint16(r))
		}
		i += size
	}
	return out
}

// surrogateAt reports whether s starts with a surrogate code unit in its
// 3-byte form, ED A0..BF 80..BF.
func surrogateAt(s string) (uint16, bool) {
	if len(s) < 3 || s[0] != 0xED || s[1]&0xE0 != 0xA0 || s[2]&0xC0 != 0x80 {
		return 0, false
	}
	return 0xD000 | uint16(s[1]&0x3F)<<6 | uint16(s[2]&0x3F), true
}

func appendUnit(out []byte, u uint16) []byte {
	switch {
	case u != 0 && u < 0x80:
		return append(out, byte(u))
	case u < 0x800:
		return append(out, 0xC0|byte(u>>6), 0x80|byte(u&0x3F))
	default:
		return append(out, 0xE0|byte(u>>12), 0x80|byte(u>>6&0x3F), 0x80|byte(u&0x3F))
	}
}
