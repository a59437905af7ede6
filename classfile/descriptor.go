package classfile

import "strings"

type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

var baseTypeDescriptors = map[string]byte{
	"byte":    'B',
	"char":    'C',
	"double":  'D',
	"float":   'F',
	"int":     'I',
	"long":    'J',
	"short":   'S',
	"boolean": 'Z',
}

// Descriptor renders ft back into its field descriptor form.
func (ft *FieldType) Descriptor() string {
	var sb strings.Builder
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteByte('[')
	}
	if ft.BaseType != "" {
		sb.WriteByte(baseTypeDescriptors[ft.BaseType])
	} else {
		sb.WriteByte('L')
		sb.WriteString(ft.ClassName)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Slots is the number of local variable slots a value of this type takes.
func (ft *FieldType) Slots() int {
	if ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double") {
		return 2
	}
	return 1
}

// TypeInfo returns the verification type of a value of this type, adding
// the class entry of reference types to cp.
func (ft *FieldType) TypeInfo(cp *ConstantPool) TypeInfo {
	if ft.IsReference() {
		if ft.ArrayDepth > 0 {
			return ObjectInfo{ClassIndex: cp.AddClass(ft.Descriptor())}
		}
		return ObjectInfo{ClassIndex: cp.AddClass(ft.ClassName)}
	}
	switch ft.BaseType {
	case "float":
		return FloatInfo
	case "long":
		return LongInfo
	case "double":
		return DoubleInfo
	default:
		return IntegerInfo
	}
}

// ArgSlots is the number of local variable slots taken by the parameters,
// not counting the receiver of instance methods.
func (md *MethodDescriptor) ArgSlots() int {
	n := 0
	for i := range md.Parameters {
		n += md.Parameters[i].Slots()
	}
	return n
}

func ParseFieldDescriptor(desc string) *FieldType {
	ft, _ := parseFieldType(desc, 0)
	return ft
}

func ParseMethodDescriptor(desc string) *MethodDescriptor {
	if len(desc) == 0 || desc[0] != '(' {
		return nil
	}

	md := &MethodDescriptor{}
	i := 1

	for i < len(desc) && desc[i] != ')' {
		ft, consumed := parseFieldType(desc, i)
		if ft == nil {
			return nil
		}
		md.Parameters = append(md.Parameters, *ft)
		i += consumed
	}

	if i >= len(desc) || desc[i] != ')' {
		return nil
	}
	i++

	if i < len(desc) {
		if desc[i] == 'V' {
			md.ReturnType = nil
		} else {
			md.ReturnType, _ = parseFieldType(desc, i)
		}
	}

	return md
}

func parseFieldType(desc string, start int) (*FieldType, int) {
	if start >= len(desc) {
		return nil, 0
	}

	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0
	}

	switch desc[i] {
	case 'B':
		ft.BaseType = "byte"
		return ft, i - start + 1
	case 'C':
		ft.BaseType = "char"
		return ft, i - start + 1
	case 'D':
		ft.BaseType = "double"
		return ft, i - start + 1
	case 'F':
		ft.BaseType = "float"
		return ft, i - start + 1
	case 'I':
		ft.BaseType = "int"
		return ft, i - start + 1
	case 'J':
		ft.BaseType = "long"
		return ft, i - start + 1
	case 'S':
		ft.BaseType = "short"
		return ft, i - start + 1
	case 'Z':
		ft.BaseType = "boolean"
		return ft, i - start + 1
	case 'L':
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon == -1 {
			return nil, 0
		}
		ft.ClassName = desc[i+1 : i+semicolon]
		return ft, i - start + semicolon + 1
	default:
		return nil, 0
	}
}
