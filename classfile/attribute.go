package classfile

import (
	"fmt"
	"math"
	"reflect"
)

// AttributeInfo is an attribute_info structure. Length is written as
// given; NewAttribute fills it in from the payload.
type AttributeInfo struct {
	NameIndex uint16
	Length    uint32
	Payload   AttributePayload
}

// AttributePayload is the body of an attribute following its name index
// and length.
type AttributePayload interface {
	AttributeName() string
	encode(w *writer)
}

// NewAttribute interns the payload's name in cp and returns an attribute
// whose Length matches the encoded payload.
func NewAttribute(cp *ConstantPool, payload AttributePayload) (AttributeInfo, error) {
	if isNilPayload(payload) {
		return AttributeInfo{}, ErrNoPayload
	}
	size, err := encodedSize(payload)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("%s attribute: %w", payload.AttributeName(), err)
	}
	if size > math.MaxUint32 {
		return AttributeInfo{}, fmt.Errorf("%s attribute: %w", payload.AttributeName(), ErrCountOverflow)
	}
	return AttributeInfo{
		NameIndex: cp.AddUtf8(payload.AttributeName()),
		Length:    uint32(size),
		Payload:   payload,
	}, nil
}

// isNilPayload also catches a nil pointer stored in the interface, such as
// (*CodeAttribute)(nil).
func isNilPayload(p AttributePayload) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (a AttributeInfo) encode(w *writer) {
	if isNilPayload(a.Payload) {
		panic(fmt.Sprintf("classfile: attribute %d has no payload to encode", a.NameIndex))
	}
	w.writeU2(a.NameIndex)
	w.writeU4(a.Length)
	a.Payload.encode(w)
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (*ConstantValueAttribute) AttributeName() string { return "ConstantValue" }

func (a *ConstantValueAttribute) encode(w *writer) {
	w.writeU2(a.ConstantValueIndex)
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

func (*CodeAttribute) AttributeName() string { return "Code" }

func (a *CodeAttribute) encode(w *writer) {
	w.writeU2(a.MaxStack)
	w.writeU2(a.MaxLocals)
	w.writeBytes4(a.Code)
	writeSeq(w, a.ExceptionTable)
	writeSeq(w, a.Attributes)
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

func (e ExceptionTableEntry) encode(w *writer) {
	w.writeU2(e.StartPC)
	w.writeU2(e.EndPC)
	w.writeU2(e.HandlerPC)
	w.writeU2(e.CatchType)
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (*SourceFileAttribute) AttributeName() string { return "SourceFile" }

func (a *SourceFileAttribute) encode(w *writer) {
	w.writeU2(a.SourceFileIndex)
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (*ExceptionsAttribute) AttributeName() string { return "Exceptions" }

func (a *ExceptionsAttribute) encode(w *writer) {
	writeU2Seq(w, a.ExceptionIndexTable)
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

func (*LineNumberTableAttribute) AttributeName() string { return "LineNumberTable" }

func (a *LineNumberTableAttribute) encode(w *writer) {
	writeSeq(w, a.LineNumberTable)
}

func (e LineNumberEntry) encode(w *writer) {
	w.writeU2(e.StartPC)
	w.writeU2(e.LineNumber)
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

func (*LocalVariableTableAttribute) AttributeName() string { return "LocalVariableTable" }

func (a *LocalVariableTableAttribute) encode(w *writer) {
	writeSeq(w, a.LocalVariableTable)
}

func (e LocalVariableEntry) encode(w *writer) {
	w.writeU2(e.StartPC)
	w.writeU2(e.Length)
	w.writeU2(e.NameIndex)
	w.writeU2(e.DescriptorIndex)
	w.writeU2(e.Index)
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableTypeEntry
}

type LocalVariableTypeEntry struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

func (*LocalVariableTypeTableAttribute) AttributeName() string { return "LocalVariableTypeTable" }

func (a *LocalVariableTypeTableAttribute) encode(w *writer) {
	writeSeq(w, a.LocalVariableTypeTable)
}

func (e LocalVariableTypeEntry) encode(w *writer) {
	w.writeU2(e.StartPC)
	w.writeU2(e.Length)
	w.writeU2(e.NameIndex)
	w.writeU2(e.SignatureIndex)
	w.writeU2(e.Index)
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

func (*SignatureAttribute) AttributeName() string { return "Signature" }

func (a *SignatureAttribute) encode(w *writer) {
	w.writeU2(a.SignatureIndex)
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

func (*InnerClassesAttribute) AttributeName() string { return "InnerClasses" }

func (a *InnerClassesAttribute) encode(w *writer) {
	writeSeq(w, a.Classes)
}

func (e InnerClassEntry) encode(w *writer) {
	w.writeU2(e.InnerClassInfoIndex)
	w.writeU2(e.OuterClassInfoIndex)
	w.writeU2(e.InnerNameIndex)
	w.writeU2(uint16(e.InnerClassAccessFlags))
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

func (*BootstrapMethodsAttribute) AttributeName() string { return "BootstrapMethods" }

func (a *BootstrapMethodsAttribute) encode(w *writer) {
	writeSeq(w, a.BootstrapMethods)
}

func (m BootstrapMethod) encode(w *writer) {
	w.writeU2(m.BootstrapMethodRef)
	writeU2Seq(w, m.BootstrapArguments)
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

func (*EnclosingMethodAttribute) AttributeName() string { return "EnclosingMethod" }

func (a *EnclosingMethodAttribute) encode(w *writer) {
	w.writeU2(a.ClassIndex)
	w.writeU2(a.MethodIndex)
}

type SyntheticAttribute struct{}

func (*SyntheticAttribute) AttributeName() string { return "Synthetic" }
func (*SyntheticAttribute) encode(*writer)        {}

type DeprecatedAttribute struct{}

func (*DeprecatedAttribute) AttributeName() string { return "Deprecated" }
func (*DeprecatedAttribute) encode(*writer)        {}

// SourceDebugExtensionAttribute holds its text in modified UTF-8 without a
// length prefix; the attribute length delimits it.
type SourceDebugExtensionAttribute struct {
	DebugExtension string
}

func (*SourceDebugExtensionAttribute) AttributeName() string { return "SourceDebugExtension" }

func (a *SourceDebugExtensionAttribute) encode(w *writer) {
	w.write(EncodeModifiedUTF8(a.DebugExtension))
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

func (*MethodParametersAttribute) AttributeName() string { return "MethodParameters" }

// The parameter count is a single byte.
func (a *MethodParametersAttribute) encode(w *writer) {
	if len(a.Parameters) > math.MaxUint8 {
		w.fail(fmt.Errorf("%w: %d method parameters", ErrCountOverflow, len(a.Parameters)))
		return
	}
	w.writeU1(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.writeU2(p.NameIndex)
		w.writeU2(uint16(p.AccessFlags))
	}
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

func (*NestHostAttribute) AttributeName() string { return "NestHost" }

func (a *NestHostAttribute) encode(w *writer) {
	w.writeU2(a.HostClassIndex)
}

type NestMembersAttribute struct {
	Classes []uint16
}

func (*NestMembersAttribute) AttributeName() string { return "NestMembers" }

func (a *NestMembersAttribute) encode(w *writer) {
	writeU2Seq(w, a.Classes)
}

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

func (*PermittedSubclassesAttribute) AttributeName() string { return "PermittedSubclasses" }

func (a *PermittedSubclassesAttribute) encode(w *writer) {
	writeU2Seq(w, a.Classes)
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

func (*ModulePackagesAttribute) AttributeName() string { return "ModulePackages" }

func (a *ModulePackagesAttribute) encode(w *writer) {
	writeU2Seq(w, a.PackageIndex)
}

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (*ModuleMainClassAttribute) AttributeName() string { return "ModuleMainClass" }

func (a *ModuleMainClassAttribute) encode(w *writer) {
	w.writeU2(a.MainClassIndex)
}

// RawAttribute carries an already encoded attribute body, for attributes
// this package has no model for.
type RawAttribute struct {
	Name string
	Info []byte
}

func (a *RawAttribute) AttributeName() string { return a.Name }

func (a *RawAttribute) encode(w *writer) {
	w.write(a.Info)
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	if code, ok := a.Payload.(*CodeAttribute); ok {
		return code
	}
	return nil
}

func (a *AttributeInfo) AsStackMapTable() *StackMapTableAttribute {
	if smt, ok := a.Payload.(*StackMapTableAttribute); ok {
		return smt
	}
	return nil
}

func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	if cv, ok := a.Payload.(*ConstantValueAttribute); ok {
		return cv
	}
	return nil
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	if sf, ok := a.Payload.(*SourceFileAttribute); ok {
		return sf
	}
	return nil
}

func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	if lnt, ok := a.Payload.(*LineNumberTableAttribute); ok {
		return lnt
	}
	return nil
}
