package format

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/classgen/classfile"
)

// LineEncoder writes one tab separated record per line: the class header,
// every constant pool slot, fields, methods with their code and stack map
// frames, and class attributes.
type LineEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	cf := e.cf
	cp := cf.ConstantPool

	fmt.Fprintf(&sb, "%s\t%s\t%s\t%d.%d\n",
		classKind(cf), cf.ClassName(), modifiers(cf.AccessFlags, classFlags), cf.MajorVersion, cf.MinorVersion)
	if super := cf.SuperClassName(); super != "" {
		fmt.Fprintf(&sb, "super\t%s\n", super)
	}
	for _, name := range cf.InterfaceNames() {
		fmt.Fprintf(&sb, "implements\t%s\n", name)
	}

	for i, entry := range cp {
		if entry == nil {
			continue
		}
		fmt.Fprintf(&sb, "const\t%d\t%s\t%s\n", i+1, entry.Tag(), constantValue(cp, uint16(i+1)))
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\n", f.Name(cp), f.Descriptor(cp), modifiers(f.AccessFlags, fieldFlags))
		writeAttributes(&sb, cp, f.Attributes)
	}

	for i := range cf.Methods {
		m := &cf.Methods[i]
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\n", m.Name(cp), m.Descriptor(cp), modifiers(m.AccessFlags, methodFlags))
		writeAttributes(&sb, cp, m.Attributes)
	}

	writeAttributes(&sb, cp, cf.Attributes)
	return []byte(sb.String()), nil
}

func writeAttributes(sb *strings.Builder, cp classfile.ConstantPool, attrs []classfile.AttributeInfo) {
	for i := range attrs {
		a := &attrs[i]
		name := cp.GetUtf8(a.NameIndex)
		switch p := a.Payload.(type) {
		case *classfile.CodeAttribute:
			fmt.Fprintf(sb, "code\t%d\t%d\t%s\n", p.MaxStack, p.MaxLocals, hex.EncodeToString(p.Code))
			for _, h := range p.ExceptionTable {
				catch := "any"
				if h.CatchType != 0 {
					catch = cp.GetClassName(h.CatchType)
				}
				fmt.Fprintf(sb, "handler\t%d\t%d\t%d\t%s\n", h.StartPC, h.EndPC, h.HandlerPC, catch)
			}
			writeAttributes(sb, cp, p.Attributes)
		case *classfile.StackMapTableAttribute:
			for _, f := range p.Entries {
				fmt.Fprintf(sb, "frame\t%d\t%s\n", f.FrameType(), frameString(cp, f))
			}
		case *classfile.LineNumberTableAttribute:
			for _, l := range p.LineNumberTable {
				fmt.Fprintf(sb, "line\t%d\t%d\n", l.StartPC, l.LineNumber)
			}
		case *classfile.LocalVariableTableAttribute:
			for _, l := range p.LocalVariableTable {
				fmt.Fprintf(sb, "local\t%d\t%d\t%d\t%s\t%s\n",
					l.Index, l.StartPC, l.Length, cp.GetUtf8(l.NameIndex), cp.GetUtf8(l.DescriptorIndex))
			}
		case *classfile.ConstantValueAttribute:
			fmt.Fprintf(sb, "attr\t%s\t#%d\n", name, p.ConstantValueIndex)
		case *classfile.SourceFileAttribute:
			fmt.Fprintf(sb, "attr\t%s\t%s\n", name, cp.GetUtf8(p.SourceFileIndex))
		case *classfile.SignatureAttribute:
			fmt.Fprintf(sb, "attr\t%s\t%s\n", name, cp.GetUtf8(p.SignatureIndex))
		case *classfile.ExceptionsAttribute:
			var names []string
			for _, index := range p.ExceptionIndexTable {
				names = append(names, cp.GetClassName(index))
			}
			fmt.Fprintf(sb, "attr\t%s\t%s\n", name, strings.Join(names, ","))
		default:
			fmt.Fprintf(sb, "attr\t%s\t%d\n", name, a.Length)
		}
	}
}

func constantValue(cp classfile.ConstantPool, index uint16) string {
	switch c := cp.Entry(index).(type) {
	case *classfile.ConstantUtf8Info:
		return strconv.Quote(c.Value)
	case *classfile.ConstantIntegerInfo:
		v, _ := cp.GetInteger(index)
		return strconv.FormatInt(int64(v), 10)
	case *classfile.ConstantFloatInfo:
		v, _ := cp.GetFloat(index)
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case *classfile.ConstantLongInfo:
		v, _ := cp.GetLong(index)
		return strconv.FormatInt(v, 10)
	case *classfile.ConstantDoubleInfo:
		v, _ := cp.GetDouble(index)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *classfile.ConstantClassInfo:
		return fmt.Sprintf("#%d\t%s", c.NameIndex, cp.GetClassName(index))
	case *classfile.ConstantStringInfo:
		return fmt.Sprintf("#%d\t%s", c.StringIndex, strconv.Quote(cp.GetString(index)))
	case *classfile.ConstantFieldrefInfo:
		return memberRef(cp, index, c.ClassIndex, c.NameAndTypeIndex)
	case *classfile.ConstantMethodrefInfo:
		return memberRef(cp, index, c.ClassIndex, c.NameAndTypeIndex)
	case *classfile.ConstantInterfaceMethodrefInfo:
		return memberRef(cp, index, c.ClassIndex, c.NameAndTypeIndex)
	case *classfile.ConstantNameAndTypeInfo:
		name, descriptor := cp.GetNameAndType(index)
		return fmt.Sprintf("#%d:#%d\t%s:%s", c.NameIndex, c.DescriptorIndex, name, descriptor)
	case *classfile.ConstantMethodHandleInfo:
		owner, name, descriptor, _ := cp.MemberRef(c.ReferenceIndex)
		return fmt.Sprintf("%s:#%d\t%s.%s:%s", c.ReferenceKind, c.ReferenceIndex, owner, name, descriptor)
	case *classfile.ConstantMethodTypeInfo:
		return fmt.Sprintf("#%d\t%s", c.DescriptorIndex, cp.GetMethodType(index))
	case *classfile.ConstantDynamicInfo:
		return dynamicRef(cp, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case *classfile.ConstantInvokeDynamicInfo:
		return dynamicRef(cp, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case *classfile.ConstantModuleInfo:
		return fmt.Sprintf("#%d\t%s", c.NameIndex, cp.GetModuleName(index))
	case *classfile.ConstantPackageInfo:
		return fmt.Sprintf("#%d\t%s", c.NameIndex, cp.GetPackageName(index))
	}
	return "?"
}

func memberRef(cp classfile.ConstantPool, index, classIndex, nameAndTypeIndex uint16) string {
	owner, name, descriptor, _ := cp.MemberRef(index)
	return fmt.Sprintf("#%d.#%d\t%s.%s:%s", classIndex, nameAndTypeIndex, owner, name, descriptor)
}

// dynamicRef names the bootstrap method by its index in BootstrapMethods.
func dynamicRef(cp classfile.ConstantPool, bootstrap, nameAndTypeIndex uint16) string {
	name, descriptor := cp.GetNameAndType(nameAndTypeIndex)
	return fmt.Sprintf("%d:#%d\t%s:%s", bootstrap, nameAndTypeIndex, name, descriptor)
}

func frameString(cp classfile.ConstantPool, f classfile.StackMapFrame) string {
	switch f := f.(type) {
	case classfile.SameFrame:
		return fmt.Sprintf("same\t%d", f.OffsetDelta)
	case classfile.SameLocals1StackItemFrame:
		return fmt.Sprintf("same_locals_1_stack_item\t%d\t%s", int(f.Type)-64, typeInfoString(cp, f.Stack))
	case classfile.SameLocals1StackItemExtendedFrame:
		return fmt.Sprintf("same_locals_1_stack_item_extended\t%d\t%s", f.OffsetDelta, typeInfoString(cp, f.Stack))
	case classfile.ChopFrame:
		return fmt.Sprintf("chop\t%d\t%d", f.OffsetDelta, f.Chopped)
	case classfile.SameExtendedFrame:
		return fmt.Sprintf("same_extended\t%d", f.OffsetDelta)
	case classfile.AppendFrame:
		return fmt.Sprintf("append\t%d\t%s", f.OffsetDelta, typeInfosString(cp, f.Locals))
	case classfile.FullFrame:
		return fmt.Sprintf("full\t%d\t%s\t%s", f.OffsetDelta, typeInfosString(cp, f.Locals), typeInfosString(cp, f.Stack))
	}
	return "?"
}

func typeInfosString(cp classfile.ConstantPool, infos []classfile.TypeInfo) string {
	if len(infos) == 0 {
		return "-"
	}
	parts := make([]string, len(infos))
	for i, info := range infos {
		parts[i] = typeInfoString(cp, info)
	}
	return strings.Join(parts, ",")
}

func typeInfoString(cp classfile.ConstantPool, info classfile.TypeInfo) string {
	switch info := info.(type) {
	case classfile.ObjectInfo:
		return cp.GetClassName(info.ClassIndex)
	case classfile.UninitializedInfo:
		return fmt.Sprintf("uninitialized@%d", info.Offset)
	case fmt.Stringer:
		return info.String()
	}
	return "?"
}

type namedFlag struct {
	flag classfile.AccessFlags
	name string
}

var classFlags = []namedFlag{
	{classfile.AccPublic, "public"},
	{classfile.AccFinal, "final"},
	{classfile.AccSuper, "super"},
	{classfile.AccInterface, "interface"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccSynthetic, "synthetic"},
	{classfile.AccAnnotation, "annotation"},
	{classfile.AccEnum, "enum"},
	{classfile.AccModule, "module"},
}

var fieldFlags = []namedFlag{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccVolatile, "volatile"},
	{classfile.AccTransient, "transient"},
	{classfile.AccSynthetic, "synthetic"},
	{classfile.AccEnum, "enum"},
}

var methodFlags = []namedFlag{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccSynchronized, "synchronized"},
	{classfile.AccBridge, "bridge"},
	{classfile.AccVarargs, "varargs"},
	{classfile.AccNative, "native"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccStrict, "strict"},
	{classfile.AccSynthetic, "synthetic"},
}

func modifiers(flags classfile.AccessFlags, names []namedFlag) string {
	var mods []string
	for _, f := range names {
		if flags&f.flag != 0 {
			mods = append(mods, f.name)
		}
	}
	if len(mods) == 0 {
		return "-"
	}
	return strings.Join(mods, ",")
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsEnum():
		return "enum"
	case cf.IsInterface():
		return "interface"
	case cf.IsModule():
		return "module"
	default:
		return "class"
	}
}
