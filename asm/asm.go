// Package asm assembles symbolic JVM instructions into the bytes of a Code
// attribute, adding the constants they reference to a constant pool.
package asm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/classgen/classfile"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classgen.asm")

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrBadOperand    = errors.New("bad operand")
	ErrUnknownLabel  = errors.New("unknown label")
)

// Instruction is one line of assembly. Label, when set, names the offset
// of this instruction for branches and stack map frames.
type Instruction struct {
	Label string `toml:"label,omitempty"`
	Op    string `toml:"op"`
	Arg   string `toml:"arg,omitempty"`
}

// Program is assembled bytecode together with the offsets of its labels.
type Program struct {
	Code   []byte
	Labels map[string]int
}

type Assembler struct {
	cp *classfile.ConstantPool
}

func New(cp *classfile.ConstantPool) *Assembler {
	return &Assembler{cp: cp}
}

type fixup struct {
	at     int // offset of the branch operand
	origin int // offset of the branch instruction
	label  string
}

// Assemble encodes instrs in order. Branch targets may refer to labels
// defined later in the sequence.
func (a *Assembler) Assemble(instrs []Instruction) (*Program, error) {
	p := &Program{Labels: map[string]int{}}
	var fixups []fixup

	for i, ins := range instrs {
		if ins.Label != "" {
			if _, dup := p.Labels[ins.Label]; dup {
				return nil, fmt.Errorf("instruction %d: duplicate label %q", i, ins.Label)
			}
			p.Labels[ins.Label] = len(p.Code)
		}
		if ins.Op == "" {
			continue
		}
		info, ok := opcodes[ins.Op]
		if !ok {
			return nil, fmt.Errorf("instruction %d: %w: %s", i, ErrUnknownOpcode, ins.Op)
		}
		origin := len(p.Code)
		code, err := a.encode(p.Code, ins, info)
		if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, ins.Op, err)
		}
		if info.Format == formatBranch {
			fixups = append(fixups, fixup{at: origin + 1, origin: origin, label: ins.Arg})
		}
		p.Code = code
	}

	for _, f := range fixups {
		target, ok := p.Labels[f.label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, f.label)
		}
		delta := target - f.origin
		if delta < math.MinInt16 || delta > math.MaxInt16 {
			return nil, fmt.Errorf("branch to %q: offset %d out of range", f.label, delta)
		}
		p.Code[f.at] = byte(uint16(delta) >> 8)
		p.Code[f.at+1] = byte(delta)
	}

	log.Debugf("assembled %d instructions into %d bytes", len(instrs), len(p.Code))
	return p, nil
}

func (a *Assembler) encode(code []byte, ins Instruction, info opInfo) ([]byte, error) {
	switch info.Format {
	case formatNone:
		if ins.Arg != "" {
			return nil, fmt.Errorf("%w: %s takes no operand", ErrBadOperand, ins.Op)
		}
		return append(code, info.Code), nil

	case formatLocal:
		n, err := parseInt(ins.Arg, 0, math.MaxUint8)
		if err != nil {
			return nil, err
		}
		return append(code, info.Code, byte(n)), nil

	case formatByte:
		n, err := parseInt(ins.Arg, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, err
		}
		return append(code, info.Code, byte(n)), nil

	case formatShort:
		n, err := parseInt(ins.Arg, math.MinInt16, math.MaxInt16)
		if err != nil {
			return nil, err
		}
		return append(code, info.Code, byte(uint16(n)>>8), byte(n)), nil

	case formatNewArray:
		t, ok := arrayTypes[ins.Arg]
		if !ok {
			return nil, fmt.Errorf("%w: array type %q", ErrBadOperand, ins.Arg)
		}
		return append(code, info.Code, t), nil

	case formatLdc:
		return a.ldc(code, ins.Arg)

	case formatField:
		owner, name, desc, err := parseMemberRef(ins.Arg)
		if err != nil {
			return nil, err
		}
		return appendU2(append(code, info.Code), a.cp.AddFieldref(owner, name, desc)), nil

	case formatMethod:
		owner, name, desc, err := parseMemberRef(ins.Arg)
		if err != nil {
			return nil, err
		}
		return appendU2(append(code, info.Code), a.cp.AddMethodref(owner, name, desc)), nil

	case formatInterfaceMethod:
		owner, name, desc, err := parseMemberRef(ins.Arg)
		if err != nil {
			return nil, err
		}
		md := classfile.ParseMethodDescriptor(desc)
		if md == nil {
			return nil, fmt.Errorf("%w: method descriptor %q", ErrBadOperand, desc)
		}
		code = appendU2(append(code, info.Code), a.cp.AddInterfaceMethodref(owner, name, desc))
		return append(code, byte(1+md.ArgSlots()), 0), nil

	case formatClass:
		if ins.Arg == "" {
			return nil, fmt.Errorf("%w: missing class name", ErrBadOperand)
		}
		return appendU2(append(code, info.Code), a.cp.AddClass(ins.Arg)), nil

	case formatIinc:
		fields := strings.Fields(ins.Arg)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: iinc wants \"index delta\", got %q", ErrBadOperand, ins.Arg)
		}
		index, err := parseInt(fields[0], 0, math.MaxUint8)
		if err != nil {
			return nil, err
		}
		delta, err := parseInt(fields[1], math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, err
		}
		return append(code, info.Code, byte(index), byte(delta)), nil

	case formatBranch:
		if ins.Arg == "" {
			return nil, fmt.Errorf("%w: missing branch label", ErrBadOperand)
		}
		return append(code, info.Code, 0, 0), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOpcode, ins.Op)
}

// ldc picks ldc, ldc_w or ldc2_w from the constant's kind and index.
// Operands are a quoted string, class:Name, methodtype:Descriptor,
// methodhandle:kind:owner.name:descriptor, or a number. Numbers are ints
// unless they carry an L (long), d (double) or f (float) suffix.
func (a *Assembler) ldc(code []byte, arg string) ([]byte, error) {
	var (
		index uint16
		wide  bool
		err   error
	)
	switch {
	case strings.HasPrefix(arg, `"`):
		s, err := strconv.Unquote(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadOperand, err)
		}
		index = a.cp.AddString(s)
	case strings.HasPrefix(arg, "class:"):
		index = a.cp.AddClass(strings.TrimPrefix(arg, "class:"))
	case strings.HasPrefix(arg, "methodtype:"):
		desc := strings.TrimPrefix(arg, "methodtype:")
		if classfile.ParseMethodDescriptor(desc) == nil {
			return nil, fmt.Errorf("%w: method descriptor %q", ErrBadOperand, desc)
		}
		index = a.cp.AddMethodType(desc)
	case strings.HasPrefix(arg, "methodhandle:"):
		if index, err = a.methodHandle(strings.TrimPrefix(arg, "methodhandle:")); err != nil {
			return nil, err
		}
	default:
		if index, wide, err = a.number(arg); err != nil {
			return nil, err
		}
	}

	switch {
	case wide:
		return appendU2(append(code, opLdc2W), index), nil
	case index > math.MaxUint8:
		return appendU2(append(code, opLdcW), index), nil
	default:
		return append(code, opcodes["ldc"].Code, byte(index)), nil
	}
}

// number adds a numeric constant. Plain integers are tried first so that
// hex digits such as the f in 0x1f are not taken for a type suffix.
func (a *Assembler) number(arg string) (index uint16, wide bool, err error) {
	if _, err := strconv.ParseInt(arg, 0, 64); err == nil {
		v, err := parseInt(arg, math.MinInt32, math.MaxInt32)
		if err != nil {
			return 0, false, err
		}
		return a.cp.AddInteger(int32(v)), false, nil
	}
	switch {
	case strings.HasSuffix(arg, "L"):
		v, err := strconv.ParseInt(strings.TrimSuffix(arg, "L"), 0, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s", ErrBadOperand, err)
		}
		return a.cp.AddLong(v), true, nil
	case strings.HasSuffix(arg, "d"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "d"), 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s", ErrBadOperand, err)
		}
		return a.cp.AddDouble(v), true, nil
	case strings.HasSuffix(arg, "f"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "f"), 32)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s", ErrBadOperand, err)
		}
		return a.cp.AddFloat(float32(v)), false, nil
	}
	return 0, false, fmt.Errorf("%w: constant %q", ErrBadOperand, arg)
}

// methodHandle adds a MethodHandle for "kind:owner.name:descriptor". The
// field and method kinds reference a Fieldref, a Methodref or, for
// invokeinterface, an InterfaceMethodref.
func (a *Assembler) methodHandle(arg string) (uint16, error) {
	name, ref, ok := strings.Cut(arg, ":")
	if !ok {
		return 0, fmt.Errorf("%w: method handle %q has no reference", ErrBadOperand, arg)
	}
	kind, ok := classfile.ParseMethodHandleKind(name)
	if !ok {
		return 0, fmt.Errorf("%w: method handle kind %q", ErrBadOperand, name)
	}
	owner, member, desc, err := parseMemberRef(ref)
	if err != nil {
		return 0, err
	}

	var refIndex uint16
	switch kind {
	case classfile.RefGetField, classfile.RefGetStatic, classfile.RefPutField, classfile.RefPutStatic:
		refIndex = a.cp.AddFieldref(owner, member, desc)
	case classfile.RefInvokeInterface:
		refIndex = a.cp.AddInterfaceMethodref(owner, member, desc)
	default:
		refIndex = a.cp.AddMethodref(owner, member, desc)
	}
	return a.cp.AddMethodHandle(kind, refIndex), nil
}

func appendU2(code []byte, v uint16) []byte {
	return append(code, byte(v>>8), byte(v))
}

func parseInt(s string, lo, hi int64) (int64, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrBadOperand, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrBadOperand, n, lo, hi)
	}
	return n, nil
}

// parseMemberRef splits "owner.name:descriptor", where owner is an internal
// class name such as java/lang/System.
func parseMemberRef(s string) (owner, name, descriptor string, err error) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return "", "", "", fmt.Errorf("%w: member reference %q has no descriptor", ErrBadOperand, s)
	}
	dot := strings.LastIndexByte(s[:colon], '.')
	if dot <= 0 || dot == colon-1 {
		return "", "", "", fmt.Errorf("%w: member reference %q has no owner", ErrBadOperand, s)
	}
	return s[:dot], s[dot+1 : colon], s[colon+1:], nil
}
