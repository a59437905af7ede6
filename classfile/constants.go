package classfile

import "fmt"

const (
	Magic uint32 = 0xCAFEBABE
)

type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) IsStatic() bool     { return f&AccStatic != 0 }
func (f AccessFlags) IsNative() bool     { return f&AccNative != 0 }
func (f AccessFlags) IsInterface() bool  { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool   { return f&AccAbstract != 0 }
func (f AccessFlags) IsAnnotation() bool { return f&AccAnnotation != 0 }
func (f AccessFlags) IsEnum() bool       { return f&AccEnum != 0 }
func (f AccessFlags) IsModule() bool     { return f&AccModule != 0 }

type ConstantTag uint8

const (
	ConstantUtf8               ConstantTag = 1
	ConstantInteger            ConstantTag = 3
	ConstantFloat              ConstantTag = 4
	ConstantLong               ConstantTag = 5
	ConstantDouble             ConstantTag = 6
	ConstantClass              ConstantTag = 7
	ConstantString             ConstantTag = 8
	ConstantFieldref           ConstantTag = 9
	ConstantMethodref          ConstantTag = 10
	ConstantInterfaceMethodref ConstantTag = 11
	ConstantNameAndType        ConstantTag = 12
	ConstantMethodHandle       ConstantTag = 15
	ConstantMethodType         ConstantTag = 16
	ConstantDynamic            ConstantTag = 17
	ConstantInvokeDynamic      ConstantTag = 18
	ConstantModule             ConstantTag = 19
	ConstantPackage            ConstantTag = 20
)

var constantTagNames = map[ConstantTag]string{
	ConstantUtf8:               "Utf8",
	ConstantInteger:            "Integer",
	ConstantFloat:              "Float",
	ConstantLong:               "Long",
	ConstantDouble:             "Double",
	ConstantClass:              "Class",
	ConstantString:             "String",
	ConstantFieldref:           "Fieldref",
	ConstantMethodref:          "Methodref",
	ConstantInterfaceMethodref: "InterfaceMethodref",
	ConstantNameAndType:        "NameAndType",
	ConstantMethodHandle:       "MethodHandle",
	ConstantMethodType:         "MethodType",
	ConstantDynamic:            "Dynamic",
	ConstantInvokeDynamic:      "InvokeDynamic",
	ConstantModule:             "Module",
	ConstantPackage:            "Package",
}

func (t ConstantTag) String() string {
	if name, ok := constantTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Wide reports whether an entry with this tag occupies two constant pool slots.
func (t ConstantTag) Wide() bool {
	return t == ConstantLong || t == ConstantDouble
}

type MethodHandleKind uint8

const (
	RefGetField         MethodHandleKind = 1
	RefGetStatic        MethodHandleKind = 2
	RefPutField         MethodHandleKind = 3
	RefPutStatic        MethodHandleKind = 4
	RefInvokeVirtual    MethodHandleKind = 5
	RefInvokeStatic     MethodHandleKind = 6
	RefInvokeSpecial    MethodHandleKind = 7
	RefNewInvokeSpecial MethodHandleKind = 8
	RefInvokeInterface  MethodHandleKind = 9
)

var methodHandleKindNames = [...]string{
	RefGetField:         "getfield",
	RefGetStatic:        "getstatic",
	RefPutField:         "putfield",
	RefPutStatic:        "putstatic",
	RefInvokeVirtual:    "invokevirtual",
	RefInvokeStatic:     "invokestatic",
	RefInvokeSpecial:    "invokespecial",
	RefNewInvokeSpecial: "newinvokespecial",
	RefInvokeInterface:  "invokeinterface",
}

// String returns the lower-case name of the instruction the handle behaves
// like, such as "invokestatic".
func (k MethodHandleKind) String() string {
	if int(k) < len(methodHandleKindNames) && methodHandleKindNames[k] != "" {
		return methodHandleKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseMethodHandleKind is the inverse of MethodHandleKind.String.
func ParseMethodHandleKind(name string) (MethodHandleKind, bool) {
	for k, n := range methodHandleKindNames {
		if n != "" && n == name {
			return MethodHandleKind(k), true
		}
	}
	return 0, false
}

// VerificationTag is the discriminant of a verification_type_info entry.
// Double sorts before Long.
type VerificationTag uint8

const (
	ItemTop               VerificationTag = 0
	ItemInteger           VerificationTag = 1
	ItemFloat             VerificationTag = 2
	ItemDouble            VerificationTag = 3
	ItemLong              VerificationTag = 4
	ItemNull              VerificationTag = 5
	ItemUninitializedThis VerificationTag = 6
	ItemObject            VerificationTag = 7
	ItemUninitialized     VerificationTag = 8
)

// Stack map frame tags with fixed values. Chop and Append frames are
// computed relative to FrameSameExtended.
const (
	FrameSame                         uint8 = 0
	FrameSameLocals1StackItemExtended uint8 = 247
	FrameSameExtended                 uint8 = 251
	FrameFull                         uint8 = 255
)
