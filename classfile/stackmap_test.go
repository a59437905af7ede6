package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeInfo_Encode(t *testing.T) {
	tests := []struct {
		name     string
		input    TypeInfo
		expected []byte
	}{
		{name: "top", input: TopInfo, expected: []byte{0}},
		{name: "integer", input: IntegerInfo, expected: []byte{1}},
		{name: "float", input: FloatInfo, expected: []byte{2}},
		{name: "double", input: DoubleInfo, expected: []byte{3}},
		{name: "long", input: LongInfo, expected: []byte{4}},
		{name: "null", input: NullInfo, expected: []byte{5}},
		{name: "uninitialized this", input: UninitializedThisInfo, expected: []byte{6}},
		{name: "object", input: ObjectInfo{ClassIndex: 0x0102}, expected: []byte{7, 0x01, 0x02}},
		{name: "uninitialized", input: UninitializedInfo{Offset: 17}, expected: []byte{8, 0x00, 0x11}},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newWriter(&buf)
			tc.input.encode(w)
			require.NoError(t, w.err)
			require.Equal(t, tc.expected, buf.Bytes())
			require.Equal(t, tc.expected[0], uint8(tc.input.VerificationTag()))
		})
	}
}

func TestStackMapFrame_Encode(t *testing.T) {
	tests := []struct {
		name     string
		input    StackMapFrame
		expected []byte
	}{
		{
			name:     "same",
			input:    SameFrame{},
			expected: []byte{0},
		},
		{
			name:     "same with delta",
			input:    SameFrame{OffsetDelta: 63},
			expected: []byte{63},
		},
		{
			name:     "same locals 1 stack item",
			input:    SameLocals1StackItemFrame{Type: 12, Stack: IntegerInfo},
			expected: []byte{12, 1},
		},
		{
			name:     "same locals 1 stack item extended",
			input:    SameLocals1StackItemExtendedFrame{OffsetDelta: 0x0100, Stack: ObjectInfo{ClassIndex: 3}},
			expected: []byte{247, 0x01, 0x00, 7, 0x00, 0x03},
		},
		{
			name:     "chop 1",
			input:    ChopFrame{Chopped: 1, OffsetDelta: 4},
			expected: []byte{250, 0x00, 0x04},
		},
		{
			name:     "chop 2",
			input:    ChopFrame{Chopped: 2, OffsetDelta: 0x0203},
			expected: []byte{249, 0x02, 0x03},
		},
		{
			name:     "chop 3",
			input:    ChopFrame{Chopped: 3, OffsetDelta: 1},
			expected: []byte{248, 0x00, 0x01},
		},
		{
			name:     "same extended",
			input:    SameExtendedFrame{OffsetDelta: 300},
			expected: []byte{251, 0x01, 0x2C},
		},
		{
			name:     "append 1",
			input:    AppendFrame{OffsetDelta: 5, Locals: []TypeInfo{IntegerInfo}},
			expected: []byte{252, 0x00, 0x05, 1},
		},
		{
			name:  "append 3",
			input: AppendFrame{OffsetDelta: 6, Locals: []TypeInfo{LongInfo, ObjectInfo{ClassIndex: 2}, FloatInfo}},
			expected: []byte{254, 0x00, 0x06,
				4,             // long
				7, 0x00, 0x02, // object
				2, // float
			},
		},
		{
			name:     "full empty",
			input:    FullFrame{OffsetDelta: 0x0A0B},
			expected: []byte{255, 0x0A, 0x0B, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "full",
			input: FullFrame{
				OffsetDelta: 9,
				Locals:      []TypeInfo{ObjectInfo{ClassIndex: 1}, TopInfo},
				Stack:       []TypeInfo{UninitializedInfo{Offset: 2}},
			},
			expected: []byte{255, 0x00, 0x09,
				0x00, 0x02, 7, 0x00, 0x01, 0,
				0x00, 0x01, 8, 0x00, 0x02,
			},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newWriter(&buf)
			tc.input.encode(w)
			require.NoError(t, w.err)
			require.Equal(t, tc.expected, buf.Bytes())
			require.Equal(t, tc.expected[0], tc.input.FrameType())
		})
	}
}

func TestStackMapFrame_OutOfRange(t *testing.T) {
	frames := []StackMapFrame{
		SameFrame{OffsetDelta: 64},
		ChopFrame{Chopped: 0},
		ChopFrame{Chopped: 4},
		AppendFrame{},
		AppendFrame{Locals: []TypeInfo{TopInfo, TopInfo, TopInfo, TopInfo}},
	}
	for _, frame := range frames {
		var buf bytes.Buffer
		w := newWriter(&buf)
		frame.encode(w)
		require.ErrorIs(t, w.err, ErrFrameOutOfRange, "frame %#v", frame)
		require.Zero(t, buf.Len())
	}
}

func TestStackMapTableAttribute_Encode(t *testing.T) {
	smt := &StackMapTableAttribute{Entries: []StackMapFrame{
		AppendFrame{OffsetDelta: 8, Locals: []TypeInfo{IntegerInfo}},
		SameFrame{OffsetDelta: 3},
		ChopFrame{Chopped: 1, OffsetDelta: 2},
	}}
	var buf bytes.Buffer
	w := newWriter(&buf)
	smt.encode(w)
	require.NoError(t, w.err)
	require.Equal(t, []byte{
		0x00, 0x03, // number_of_entries
		252, 0x00, 0x08, 1,
		3,
		250, 0x00, 0x02,
	}, buf.Bytes())
}

func TestStackMapFrame_NilTypeInfo(t *testing.T) {
	require.Panics(t, func() {
		w := newWriter(&bytes.Buffer{})
		FullFrame{Locals: []TypeInfo{nil}}.encode(w)
	})
}
