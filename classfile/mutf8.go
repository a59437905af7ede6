package classfile

import (
	"fmt"
	"unicode/utf8"
)

// EncodeModifiedUTF8 returns s in the JVM's modified UTF-8 form: NUL is
// written as two bytes and supplementary characters as a surrogate pair of
// three-byte sequences. It panics if s is not valid UTF-8.
func EncodeModifiedUTF8(s string) []byte {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := decodeRune(s, i)
		b = AppendModifiedUTF8(b, r)
		i += size
	}
	return b
}

// decodeRune decodes the rune at s[i:]. Bytes that are not valid UTF-8,
// including encoded surrogates, panic rather than being replaced.
func decodeRune(s string, i int) (rune, int) {
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && size == 1 {
		panic(fmt.Sprintf("classfile: invalid utf-8 at byte %d of %q", i, s))
	}
	return r, size
}

// AppendModifiedUTF8 appends the modified UTF-8 encoding of r to b.
// It panics if r is not a Unicode scalar value.
func AppendModifiedUTF8(b []byte, r rune) []byte {
	v := uint32(r)
	switch {
	case r < 0 || r > utf8.MaxRune:
		panic(fmt.Sprintf("classfile: invalid unicode scalar value: %#x", v))
	case v > 0 && v < 0x80:
		return append(b, byte(v))
	case v < 0x800:
		return append(b,
			0xC0|byte(v>>6),
			0x80|byte(v&0x3F))
	case v <= 0xFFFF:
		return append(b,
			0xE0|byte(v>>12),
			0x80|byte((v>>6)&0x3F),
			0x80|byte(v&0x3F))
	default:
		v -= 0x10000
		return append(b,
			0xED,
			0xA0|byte(v>>16),
			0x80|byte((v>>10)&0x3F),
			0xED,
			0xB0|byte((v>>6)&0xF),
			0x80|byte(v&0x3F))
	}
}

// ModifiedUTF8Len reports the length of EncodeModifiedUTF8(s) without
// allocating.
func ModifiedUTF8Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := decodeRune(s, i)
		i += size
		switch {
		case r > 0 && r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r <= 0xFFFF:
			n += 3
		default:
			n += 6
		}
	}
	return n
}
