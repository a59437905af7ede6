package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeModifiedUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{
			name:     "empty",
			input:    "",
			expected: []byte{},
		},
		{
			name:     "ascii",
			input:    "java/lang/Object",
			expected: []byte("java/lang/Object"),
		},
		{
			name:     "nul",
			input:    "a\x00b",
			expected: []byte{'a', 0xC0, 0x80, 'b'},
		},
		{
			name:     "two bytes",
			input:    "\u00e9",
			expected: []byte{0xC3, 0xA9},
		},
		{
			name:     "largest two byte",
			input:    "\u07ff",
			expected: []byte{0xDF, 0xBF},
		},
		{
			name:     "three bytes",
			input:    "\u20ac",
			expected: []byte{0xE2, 0x82, 0xAC},
		},
		{
			name:     "largest three byte",
			input:    "\uffff",
			expected: []byte{0xEF, 0xBF, 0xBF},
		},
		{
			name:  "supplementary",
			input: "\U0001F600",
			expected: []byte{
				0xED, 0xA0, 0xBD, // high surrogate U+D83D
				0xED, 0xB8, 0x80, // low surrogate U+DE00
			},
		},
		{
			name:  "first supplementary",
			input: "\U00010000",
			expected: []byte{
				0xED, 0xA0, 0x80, // U+D800
				0xED, 0xB0, 0x80, // U+DC00
			},
		},
		{
			name:  "last code point",
			input: "\U0010FFFF",
			expected: []byte{
				0xED, 0xAF, 0xBF, // U+DBFF
				0xED, 0xBF, 0xBF, // U+DFFF
			},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := EncodeModifiedUTF8(tc.input)
			require.Equal(t, tc.expected, got)
			require.Equal(t, len(tc.expected), ModifiedUTF8Len(tc.input))
			require.Equal(t, tc.input, decodeModifiedUtf8(got))
		})
	}
}

func TestEncodeModifiedUTF8_ASCIIUnchanged(t *testing.T) {
	var ascii []byte
	for b := byte(1); b < 0x80; b++ {
		ascii = append(ascii, b)
	}
	require.Equal(t, ascii, EncodeModifiedUTF8(string(ascii)))
}

func TestEncodeModifiedUTF8_NeverWritesZero(t *testing.T) {
	got := EncodeModifiedUTF8("\x00\x00\u0100\x00")
	require.False(t, bytes.Contains(got, []byte{0}))
	require.Equal(t, []byte{0xC0, 0x80, 0xC0, 0x80, 0xC4, 0x80, 0xC0, 0x80}, got)
}

func TestEncodeModifiedUTF8_RoundTrip(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"<init>",
		"(Ljava/lang/String;)V",
		"日本語のクラス",
		"mixed \x00 nul and 😀 emoji 𝄞",
		"\U0001F600\U0001F601\x00\u0800",
	}
	for _, s := range inputs {
		require.Equal(t, s, decodeModifiedUtf8(EncodeModifiedUTF8(s)), "input %q", s)
	}
}

func TestAppendModifiedUTF8_InvalidScalar(t *testing.T) {
	require.PanicsWithValue(t, "classfile: invalid unicode scalar value: 0x110000", func() {
		AppendModifiedUTF8(nil, 0x110000)
	})
	require.Panics(t, func() { AppendModifiedUTF8(nil, -1) })
}

func TestEncodeModifiedUTF8_InvalidUTF8Panics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "stray byte", input: "a\xffb", expected: "classfile: invalid utf-8 at byte 1 of \"a\\xffb\""},
		{name: "encoded surrogate", input: "\xed\xa0\x80", expected: "classfile: invalid utf-8 at byte 0 of \"\\xed\\xa0\\x80\""},
		{name: "truncated sequence", input: "ok\xe2\x82", expected: "classfile: invalid utf-8 at byte 2 of \"ok\\xe2\\x82\""},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.PanicsWithValue(t, tc.expected, func() { EncodeModifiedUTF8(tc.input) })
			require.PanicsWithValue(t, tc.expected, func() { ModifiedUTF8Len(tc.input) })
		})
	}
}

func TestEncodeModifiedUTF8_ReplacementCharacterIsValid(t *testing.T) {
	require.Equal(t, []byte{0xEF, 0xBF, 0xBD}, EncodeModifiedUTF8("�"))
}
