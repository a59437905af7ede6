package classdef

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/classgen/asm"
	"github.com/dhamidi/classgen/classfile"
)

var ErrUnknownAccess = errors.New("unknown access flag")

var accessFlags = map[string]classfile.AccessFlags{
	"public":       classfile.AccPublic,
	"private":      classfile.AccPrivate,
	"protected":    classfile.AccProtected,
	"static":       classfile.AccStatic,
	"final":        classfile.AccFinal,
	"super":        classfile.AccSuper,
	"synchronized": classfile.AccSynchronized,
	"volatile":     classfile.AccVolatile,
	"bridge":       classfile.AccBridge,
	"transient":    classfile.AccTransient,
	"varargs":      classfile.AccVarargs,
	"native":       classfile.AccNative,
	"interface":    classfile.AccInterface,
	"abstract":     classfile.AccAbstract,
	"strict":       classfile.AccStrict,
	"synthetic":    classfile.AccSynthetic,
	"annotation":   classfile.AccAnnotation,
	"enum":         classfile.AccEnum,
	"module":       classfile.AccModule,
}

func parseAccess(names []string) (classfile.AccessFlags, error) {
	var flags classfile.AccessFlags
	for _, name := range names {
		flag, ok := accessFlags[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownAccess, name)
		}
		flags |= flag
	}
	return flags, nil
}

// Build turns the description into a class file with a freshly built
// constant pool. Every attribute carries its computed length.
func (c *Class) Build() (*classfile.ClassFile, error) {
	major := c.Major
	if major == 0 {
		major = DefaultMajor
	}
	cf := classfile.New(major, c.Minor)
	cp := &cf.ConstantPool

	access := c.Access
	if access == nil {
		access = []string{"public", "super"}
	}
	flags, err := parseAccess(access)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Name, err)
	}
	cf.AccessFlags = flags
	cf.ThisClass = cp.AddClass(c.Name)

	switch {
	case c.Super != "":
		cf.SuperClass = cp.AddClass(c.Super)
	case c.Name != DefaultSuper:
		cf.SuperClass = cp.AddClass(DefaultSuper)
	}
	for _, iface := range c.Interfaces {
		cf.Interfaces = append(cf.Interfaces, cp.AddClass(iface))
	}

	for i := range c.Fields {
		field, err := c.Fields[i].build(cp)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", c.Fields[i].Name, err)
		}
		cf.Fields = append(cf.Fields, field)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		method, err := m.build(cp)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", m.Name, m.Descriptor, err)
		}
		cf.Methods = append(cf.Methods, method)
	}

	var attrs []classfile.AttributePayload
	if c.SourceFile != "" {
		attrs = append(attrs, &classfile.SourceFileAttribute{SourceFileIndex: cp.AddUtf8(c.SourceFile)})
	}
	if c.Signature != "" {
		attrs = append(attrs, &classfile.SignatureAttribute{SignatureIndex: cp.AddUtf8(c.Signature)})
	}
	if c.Deprecated {
		attrs = append(attrs, &classfile.DeprecatedAttribute{})
	}
	if len(c.InnerClasses) > 0 {
		inner := &classfile.InnerClassesAttribute{}
		for _, ic := range c.InnerClasses {
			entry, err := ic.entry(cp)
			if err != nil {
				return nil, fmt.Errorf("class %s: inner class %s: %w", c.Name, ic.Inner, err)
			}
			inner.Classes = append(inner.Classes, entry)
		}
		attrs = append(attrs, inner)
	}
	if em := c.EnclosingMethod; em != nil {
		enclosing := &classfile.EnclosingMethodAttribute{ClassIndex: cp.AddClass(em.Class)}
		if em.Name != "" {
			enclosing.MethodIndex = cp.AddNameAndType(em.Name, em.Descriptor)
		}
		attrs = append(attrs, enclosing)
	}
	if cf.Attributes, err = newAttributes(cp, attrs); err != nil {
		return nil, fmt.Errorf("class %s: %w", c.Name, err)
	}

	log.Debugf("built class %s: %d constant pool slots", c.Name, len(cf.ConstantPool))
	return cf, nil
}

func (ic InnerClass) entry(cp *classfile.ConstantPool) (classfile.InnerClassEntry, error) {
	flags, err := parseAccess(ic.Access)
	if err != nil {
		return classfile.InnerClassEntry{}, err
	}
	entry := classfile.InnerClassEntry{
		InnerClassInfoIndex:   cp.AddClass(ic.Inner),
		InnerClassAccessFlags: flags,
	}
	if ic.Outer != "" {
		entry.OuterClassInfoIndex = cp.AddClass(ic.Outer)
	}
	if ic.Name != "" {
		entry.InnerNameIndex = cp.AddUtf8(ic.Name)
	}
	return entry, nil
}

func newAttributes(cp *classfile.ConstantPool, payloads []classfile.AttributePayload) ([]classfile.AttributeInfo, error) {
	var attrs []classfile.AttributeInfo
	for _, payload := range payloads {
		attr, err := classfile.NewAttribute(cp, payload)
		if err != nil {
			return nil, fmt.Errorf("%s attribute: %w", payload.AttributeName(), err)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (f *Field) build(cp *classfile.ConstantPool) (classfile.FieldInfo, error) {
	flags, err := parseAccess(f.Access)
	if err != nil {
		return classfile.FieldInfo{}, err
	}
	if classfile.ParseFieldDescriptor(f.Descriptor) == nil {
		return classfile.FieldInfo{}, fmt.Errorf("invalid descriptor %q", f.Descriptor)
	}

	var payloads []classfile.AttributePayload
	if f.Constant != "" {
		index, err := constantValue(cp, f.Descriptor, f.Constant)
		if err != nil {
			return classfile.FieldInfo{}, err
		}
		payloads = append(payloads, &classfile.ConstantValueAttribute{ConstantValueIndex: index})
	}
	if f.Signature != "" {
		payloads = append(payloads, &classfile.SignatureAttribute{SignatureIndex: cp.AddUtf8(f.Signature)})
	}
	attrs, err := newAttributes(cp, payloads)
	if err != nil {
		return classfile.FieldInfo{}, err
	}

	return classfile.FieldInfo{
		AccessFlags:     flags,
		NameIndex:       cp.AddUtf8(f.Name),
		DescriptorIndex: cp.AddUtf8(f.Descriptor),
		Attributes:      attrs,
	}, nil
}

// constantValue adds the pool entry a ConstantValue attribute of a field
// with the given descriptor refers to.
func constantValue(cp *classfile.ConstantPool, descriptor, value string) (uint16, error) {
	switch descriptor {
	case "I", "S", "B", "C", "Z":
		v, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("constant %q: %w", value, err)
		}
		return cp.AddInteger(int32(v)), nil
	case "J":
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("constant %q: %w", value, err)
		}
		return cp.AddLong(v), nil
	case "F":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return 0, fmt.Errorf("constant %q: %w", value, err)
		}
		return cp.AddFloat(float32(v)), nil
	case "D":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("constant %q: %w", value, err)
		}
		return cp.AddDouble(v), nil
	case "Ljava/lang/String;":
		return cp.AddString(value), nil
	}
	return 0, fmt.Errorf("no constant value for fields of type %s", descriptor)
}

func (m *Method) build(cp *classfile.ConstantPool) (classfile.MethodInfo, error) {
	flags, err := parseAccess(m.Access)
	if err != nil {
		return classfile.MethodInfo{}, err
	}
	md := classfile.ParseMethodDescriptor(m.Descriptor)
	if md == nil {
		return classfile.MethodInfo{}, fmt.Errorf("invalid descriptor %q", m.Descriptor)
	}

	bodyless := flags.IsAbstract() || flags.IsNative()
	switch {
	case bodyless && len(m.Code) > 0:
		return classfile.MethodInfo{}, errors.New("abstract and native methods cannot have code")
	case !bodyless && len(m.Code) == 0:
		return classfile.MethodInfo{}, errors.New("missing code")
	}

	method := classfile.MethodInfo{
		AccessFlags:     flags,
		NameIndex:       cp.AddUtf8(m.Name),
		DescriptorIndex: cp.AddUtf8(m.Descriptor),
	}

	var payloads []classfile.AttributePayload
	if !bodyless {
		code, err := m.code(cp, md, flags)
		if err != nil {
			return classfile.MethodInfo{}, err
		}
		payloads = append(payloads, code)
	}
	if len(m.Throws) > 0 {
		exceptions := &classfile.ExceptionsAttribute{}
		for _, name := range m.Throws {
			exceptions.ExceptionIndexTable = append(exceptions.ExceptionIndexTable, cp.AddClass(name))
		}
		payloads = append(payloads, exceptions)
	}
	if m.Signature != "" {
		payloads = append(payloads, &classfile.SignatureAttribute{SignatureIndex: cp.AddUtf8(m.Signature)})
	}
	if method.Attributes, err = newAttributes(cp, payloads); err != nil {
		return classfile.MethodInfo{}, err
	}
	return method, nil
}

func (m *Method) code(cp *classfile.ConstantPool, md *classfile.MethodDescriptor, flags classfile.AccessFlags) (*classfile.CodeAttribute, error) {
	a := asm.New(cp)
	p, err := a.Assemble(m.Code)
	if err != nil {
		return nil, err
	}

	locals := md.ArgSlots()
	if !flags.IsStatic() {
		locals++
	}
	if locals > math.MaxUint16 {
		return nil, fmt.Errorf("%d parameter slots", locals)
	}
	code := &classfile.CodeAttribute{
		MaxStack:  m.MaxStack,
		MaxLocals: max(m.MaxLocals, uint16(locals)),
		Code:      p.Code,
	}

	for _, h := range m.Handlers {
		entry, err := h.entry(cp, p)
		if err != nil {
			return nil, err
		}
		code.ExceptionTable = append(code.ExceptionTable, entry)
	}

	var payloads []classfile.AttributePayload
	if len(m.Lines) > 0 {
		lnt := &classfile.LineNumberTableAttribute{}
		for _, l := range m.Lines {
			pc, err := labelPC(p, l.Label)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", l.Line, err)
			}
			lnt.LineNumberTable = append(lnt.LineNumberTable, classfile.LineNumberEntry{StartPC: pc, LineNumber: l.Line})
		}
		payloads = append(payloads, lnt)
	}
	if len(m.Locals) > 0 {
		lvt, lvtt, err := localVariables(cp, p, m.Locals)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, lvt)
		if len(lvtt.LocalVariableTypeTable) > 0 {
			payloads = append(payloads, lvtt)
		}
	}
	if len(m.Frames) > 0 {
		smt, err := a.StackMap(p, m.Frames)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, smt)
	}
	if code.Attributes, err = newAttributes(cp, payloads); err != nil {
		return nil, err
	}
	return code, nil
}

func localVariables(cp *classfile.ConstantPool, p *asm.Program, locals []Local) (*classfile.LocalVariableTableAttribute, *classfile.LocalVariableTypeTableAttribute, error) {
	lvt := &classfile.LocalVariableTableAttribute{}
	lvtt := &classfile.LocalVariableTypeTableAttribute{}
	for _, l := range locals {
		if classfile.ParseFieldDescriptor(l.Descriptor) == nil {
			return nil, nil, fmt.Errorf("local %s: invalid descriptor %q", l.Name, l.Descriptor)
		}
		start, err := labelPC(p, l.Start)
		if err != nil {
			return nil, nil, fmt.Errorf("local %s: %w", l.Name, err)
		}
		end, err := labelPC(p, l.End)
		if err != nil {
			return nil, nil, fmt.Errorf("local %s: %w", l.Name, err)
		}
		if end < start {
			return nil, nil, fmt.Errorf("local %s: range ends at %d before it starts at %d", l.Name, end, start)
		}
		lvt.LocalVariableTable = append(lvt.LocalVariableTable, classfile.LocalVariableEntry{
			StartPC:         start,
			Length:          end - start,
			NameIndex:       cp.AddUtf8(l.Name),
			DescriptorIndex: cp.AddUtf8(l.Descriptor),
			Index:           l.Index,
		})
		if l.Signature != "" {
			lvtt.LocalVariableTypeTable = append(lvtt.LocalVariableTypeTable, classfile.LocalVariableTypeEntry{
				StartPC:        start,
				Length:         end - start,
				NameIndex:      cp.AddUtf8(l.Name),
				SignatureIndex: cp.AddUtf8(l.Signature),
				Index:          l.Index,
			})
		}
	}
	return lvt, lvtt, nil
}

func labelPC(p *asm.Program, label string) (uint16, error) {
	offset, ok := p.Labels[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", asm.ErrUnknownLabel, label)
	}
	return uint16(offset), nil
}

func (h Handler) entry(cp *classfile.ConstantPool, p *asm.Program) (classfile.ExceptionTableEntry, error) {
	var pcs [3]uint16
	for i, label := range []string{h.Start, h.End, h.Handler} {
		pc, err := labelPC(p, label)
		if err != nil {
			return classfile.ExceptionTableEntry{}, fmt.Errorf("handler: %w", err)
		}
		pcs[i] = pc
	}
	entry := classfile.ExceptionTableEntry{StartPC: pcs[0], EndPC: pcs[1], HandlerPC: pcs[2]}
	if h.Type != "" {
		entry.CatchType = cp.AddClass(h.Type)
	}
	return entry, nil
}
