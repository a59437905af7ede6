package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeAttribute(t *testing.T, a AttributeInfo) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := newWriter(&buf)
	a.encode(w)
	require.NoError(t, w.err)
	return buf.Bytes()
}

func TestAttribute_Encode(t *testing.T) {
	tests := []struct {
		name     string
		input    AttributeInfo
		expected []byte
	}{
		{
			name:  "constant value",
			input: AttributeInfo{NameIndex: 5, Length: 2, Payload: &ConstantValueAttribute{ConstantValueIndex: 0x0A}},
			expected: []byte{
				0x00, 0x05, // name
				0x00, 0x00, 0x00, 0x02, // length
				0x00, 0x0A,
			},
		},
		{
			name: "code",
			input: AttributeInfo{NameIndex: 1, Length: 33, Payload: &CodeAttribute{
				MaxStack:  2,
				MaxLocals: 1,
				Code:      []byte{0x2A, 0xB7, 0x00, 0x01, 0xB1},
				ExceptionTable: []ExceptionTableEntry{
					{StartPC: 0, EndPC: 4, HandlerPC: 4, CatchType: 9},
				},
				Attributes: []AttributeInfo{
					{NameIndex: 2, Length: 2, Payload: &LineNumberTableAttribute{}},
				},
			}},
			expected: []byte{
				0x00, 0x01, // name
				0x00, 0x00, 0x00, 0x21, // length
				0x00, 0x02, // max_stack
				0x00, 0x01, // max_locals
				0x00, 0x00, 0x00, 0x05, // code_length
				0x2A, 0xB7, 0x00, 0x01, 0xB1,
				0x00, 0x01, // exception_table_length
				0x00, 0x00, 0x00, 0x04, 0x00, 0x04, 0x00, 0x09,
				0x00, 0x01, // attributes_count
				0x00, 0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00,
			},
		},
		{
			name: "stack map table",
			input: AttributeInfo{NameIndex: 3, Length: 10, Payload: &StackMapTableAttribute{Entries: []StackMapFrame{
				SameFrame{},
				FullFrame{OffsetDelta: 1},
			}}},
			expected: []byte{
				0x00, 0x03,
				0x00, 0x00, 0x00, 0x0A,
				0x00, 0x02,
				0,
				255, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name:     "length written as declared",
			input:    AttributeInfo{NameIndex: 4, Length: 99, Payload: &SyntheticAttribute{}},
			expected: []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0x63},
		},
		{
			name: "exceptions",
			input: AttributeInfo{NameIndex: 6, Length: 6, Payload: &ExceptionsAttribute{
				ExceptionIndexTable: []uint16{7, 8},
			}},
			expected: []byte{0x00, 0x06, 0x00, 0x00, 0x00, 0x06, 0x00, 0x02, 0x00, 0x07, 0x00, 0x08},
		},
		{
			name: "method parameters",
			input: AttributeInfo{NameIndex: 7, Length: 5, Payload: &MethodParametersAttribute{
				Parameters: []MethodParameter{{NameIndex: 3, AccessFlags: AccFinal}},
			}},
			expected: []byte{0x00, 0x07, 0x00, 0x00, 0x00, 0x05, 0x01, 0x00, 0x03, 0x00, 0x10},
		},
		{
			name: "bootstrap methods",
			input: AttributeInfo{NameIndex: 8, Length: 10, Payload: &BootstrapMethodsAttribute{
				BootstrapMethods: []BootstrapMethod{{BootstrapMethodRef: 4, BootstrapArguments: []uint16{5, 6}}},
			}},
			expected: []byte{0x00, 0x08, 0x00, 0x00, 0x00, 0x0A,
				0x00, 0x01, // num_bootstrap_methods
				0x00, 0x04, 0x00, 0x02, 0x00, 0x05, 0x00, 0x06,
			},
		},
		{
			name:     "source debug extension",
			input:    AttributeInfo{NameIndex: 9, Length: 3, Payload: &SourceDebugExtensionAttribute{DebugExtension: "a\x00"}},
			expected: []byte{0x00, 0x09, 0x00, 0x00, 0x00, 0x03, 'a', 0xC0, 0x80},
		},
		{
			name: "local variable table",
			input: AttributeInfo{NameIndex: 11, Length: 12, Payload: &LocalVariableTableAttribute{
				LocalVariableTable: []LocalVariableEntry{{StartPC: 0, Length: 5, NameIndex: 3, DescriptorIndex: 4, Index: 0}},
			}},
			expected: []byte{
				0x00, 0x0B, // name
				0x00, 0x00, 0x00, 0x0C, // length
				0x00, 0x01, // local_variable_table_length
				0x00, 0x00, // start_pc
				0x00, 0x05, // length
				0x00, 0x03, // name_index
				0x00, 0x04, // descriptor_index
				0x00, 0x00, // index
			},
		},
		{
			name: "local variable type table",
			input: AttributeInfo{NameIndex: 12, Length: 12, Payload: &LocalVariableTypeTableAttribute{
				LocalVariableTypeTable: []LocalVariableTypeEntry{{StartPC: 2, Length: 3, NameIndex: 5, SignatureIndex: 6, Index: 1}},
			}},
			expected: []byte{
				0x00, 0x0C,
				0x00, 0x00, 0x00, 0x0C,
				0x00, 0x01,
				0x00, 0x02, // start_pc
				0x00, 0x03, // length
				0x00, 0x05, // name_index
				0x00, 0x06, // signature_index
				0x00, 0x01, // index
			},
		},
		{
			name: "inner classes",
			input: AttributeInfo{NameIndex: 13, Length: 10, Payload: &InnerClassesAttribute{
				Classes: []InnerClassEntry{{
					InnerClassInfoIndex:   2,
					OuterClassInfoIndex:   4,
					InnerNameIndex:        6,
					InnerClassAccessFlags: AccPublic | AccStatic,
				}},
			}},
			expected: []byte{
				0x00, 0x0D,
				0x00, 0x00, 0x00, 0x0A,
				0x00, 0x01, // number_of_classes
				0x00, 0x02, // inner_class_info_index
				0x00, 0x04, // outer_class_info_index
				0x00, 0x06, // inner_name_index
				0x00, 0x09, // public static
			},
		},
		{
			name:  "enclosing method",
			input: AttributeInfo{NameIndex: 14, Length: 4, Payload: &EnclosingMethodAttribute{ClassIndex: 7}},
			expected: []byte{
				0x00, 0x0E,
				0x00, 0x00, 0x00, 0x04,
				0x00, 0x07, // class_index
				0x00, 0x00, // method_index, none
			},
		},
		{
			name:  "module packages",
			input: AttributeInfo{NameIndex: 15, Length: 6, Payload: &ModulePackagesAttribute{PackageIndex: []uint16{3, 5}}},
			expected: []byte{
				0x00, 0x0F,
				0x00, 0x00, 0x00, 0x06,
				0x00, 0x02, // package_count
				0x00, 0x03, 0x00, 0x05,
			},
		},
		{
			name:     "module main class",
			input:    AttributeInfo{NameIndex: 16, Length: 2, Payload: &ModuleMainClassAttribute{MainClassIndex: 8}},
			expected: []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x02, 0x00, 0x08},
		},
		{
			name:     "raw",
			input:    AttributeInfo{NameIndex: 10, Length: 3, Payload: &RawAttribute{Name: "Custom", Info: []byte{1, 2, 3}}},
			expected: []byte{0x00, 0x0A, 0x00, 0x00, 0x00, 0x03, 1, 2, 3},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, encodeAttribute(t, tc.input))
		})
	}
}

func TestNewAttribute(t *testing.T) {
	var cp ConstantPool
	lnt, err := NewAttribute(&cp, &LineNumberTableAttribute{LineNumberTable: []LineNumberEntry{{StartPC: 0, LineNumber: 1}}})
	require.NoError(t, err)
	require.Equal(t, uint32(6), lnt.Length)
	require.Equal(t, "LineNumberTable", cp.GetUtf8(lnt.NameIndex))

	code, err := NewAttribute(&cp, &CodeAttribute{
		MaxStack:   1,
		MaxLocals:  1,
		Code:       []byte{0x03, 0xAC},
		Attributes: []AttributeInfo{lnt},
	})
	require.NoError(t, err)
	// 2+2+4+2 +2 (exceptions) +2 (count) + 6+6 (nested attribute)
	require.Equal(t, uint32(26), code.Length)
	require.Equal(t, "Code", cp.GetUtf8(code.NameIndex))

	encoded := encodeAttribute(t, code)
	require.Len(t, encoded, 6+26)

	_, err = NewAttribute(&cp, &StackMapTableAttribute{Entries: []StackMapFrame{ChopFrame{Chopped: 9}}})
	require.ErrorIs(t, err, ErrFrameOutOfRange)
}

func TestAttribute_NilPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload AttributePayload
	}{
		{name: "nil interface", payload: nil},
		{name: "nil code", payload: (*CodeAttribute)(nil)},
		{name: "nil raw", payload: (*RawAttribute)(nil)},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.PanicsWithValue(t, "classfile: attribute 3 has no payload to encode", func() {
				w := newWriter(&bytes.Buffer{})
				AttributeInfo{NameIndex: 3, Payload: tc.payload}.encode(w)
			})

			var cp ConstantPool
			_, err := NewAttribute(&cp, tc.payload)
			require.ErrorIs(t, err, ErrNoPayload)
			require.Empty(t, cp)

			cf := New(52, 0)
			cf.Attributes = []AttributeInfo{{NameIndex: 3, Payload: tc.payload}}
			require.ErrorIs(t, cf.Validate(), ErrNoPayload)
		})
	}
}
