package asm

import (
	"fmt"
	"math"
	"strings"

	"github.com/dhamidi/classgen/classfile"
)

// Frame describes the verifier state at a label. Kind is one of same,
// same_locals_1_stack_item, chop, append or full. Locals and Stack hold
// field descriptors or one of top, null, uninitialized_this and
// uninitialized:<label>.
type Frame struct {
	Label  string   `toml:"label"`
	Kind   string   `toml:"kind"`
	Chop   int      `toml:"chop,omitempty"`
	Locals []string `toml:"locals,omitempty"`
	Stack  []string `toml:"stack,omitempty"`
}

// StackMap converts frames into a StackMapTable payload. Frames must be
// listed in increasing label offset order. The compact frame forms are
// chosen whenever the offset delta allows it.
func (a *Assembler) StackMap(p *Program, frames []Frame) (*classfile.StackMapTableAttribute, error) {
	smt := &classfile.StackMapTableAttribute{}
	prev := -1
	for i, f := range frames {
		offset, ok := p.Labels[f.Label]
		if !ok {
			return nil, fmt.Errorf("frame %d: %w: %q", i, ErrUnknownLabel, f.Label)
		}
		delta := offset
		if prev >= 0 {
			delta = offset - prev - 1
		}
		if delta < 0 || delta > math.MaxUint16 {
			return nil, fmt.Errorf("frame %d at %q: offset %d does not follow %d", i, f.Label, offset, prev)
		}
		prev = offset

		frame, err := a.frame(p, f, uint16(delta))
		if err != nil {
			return nil, fmt.Errorf("frame %d at %q: %w", i, f.Label, err)
		}
		smt.Entries = append(smt.Entries, frame)
	}
	return smt, nil
}

func (a *Assembler) frame(p *Program, f Frame, delta uint16) (classfile.StackMapFrame, error) {
	locals, err := a.typeInfos(p, f.Locals)
	if err != nil {
		return nil, err
	}
	stack, err := a.typeInfos(p, f.Stack)
	if err != nil {
		return nil, err
	}

	switch f.Kind {
	case "same":
		if delta <= 63 {
			return classfile.SameFrame{OffsetDelta: uint8(delta)}, nil
		}
		return classfile.SameExtendedFrame{OffsetDelta: delta}, nil
	case "same_locals_1_stack_item":
		if len(stack) != 1 {
			return nil, fmt.Errorf("%w: want exactly one stack item, got %d", ErrBadOperand, len(stack))
		}
		if delta <= 63 {
			return classfile.SameLocals1StackItemFrame{Type: 64 + uint8(delta), Stack: stack[0]}, nil
		}
		return classfile.SameLocals1StackItemExtendedFrame{OffsetDelta: delta, Stack: stack[0]}, nil
	case "chop":
		if f.Chop < 1 || f.Chop > 3 {
			return nil, fmt.Errorf("%w: chop %d not in [1, 3]", ErrBadOperand, f.Chop)
		}
		return classfile.ChopFrame{Chopped: uint8(f.Chop), OffsetDelta: delta}, nil
	case "append":
		if len(locals) < 1 || len(locals) > 3 {
			return nil, fmt.Errorf("%w: append wants 1 to 3 locals, got %d", ErrBadOperand, len(locals))
		}
		return classfile.AppendFrame{OffsetDelta: delta, Locals: locals}, nil
	case "full":
		return classfile.FullFrame{OffsetDelta: delta, Locals: locals, Stack: stack}, nil
	}
	return nil, fmt.Errorf("%w: frame kind %q", ErrBadOperand, f.Kind)
}

func (a *Assembler) typeInfos(p *Program, names []string) ([]classfile.TypeInfo, error) {
	var infos []classfile.TypeInfo
	for _, name := range names {
		info, err := a.typeInfo(p, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (a *Assembler) typeInfo(p *Program, name string) (classfile.TypeInfo, error) {
	switch name {
	case "top":
		return classfile.TopInfo, nil
	case "null":
		return classfile.NullInfo, nil
	case "uninitialized_this":
		return classfile.UninitializedThisInfo, nil
	}
	if label, ok := strings.CutPrefix(name, "uninitialized:"); ok {
		offset, ok := p.Labels[label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
		}
		return classfile.UninitializedInfo{Offset: uint16(offset)}, nil
	}
	ft := classfile.ParseFieldDescriptor(name)
	if ft == nil || ft.Descriptor() != name {
		return nil, fmt.Errorf("%w: verification type %q", ErrBadOperand, name)
	}
	return ft.TypeInfo(a.cp), nil
}
