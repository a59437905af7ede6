package classfile

import "fmt"

// TypeInfo is one verification_type_info entry describing a local variable
// or operand stack slot.
type TypeInfo interface {
	VerificationTag() VerificationTag
	encode(w *writer)
}

type simpleTypeInfo VerificationTag

func (t simpleTypeInfo) VerificationTag() VerificationTag { return VerificationTag(t) }
func (t simpleTypeInfo) encode(w *writer)                 { w.writeU1(uint8(t)) }

func (t simpleTypeInfo) String() string {
	switch VerificationTag(t) {
	case ItemTop:
		return "top"
	case ItemInteger:
		return "int"
	case ItemFloat:
		return "float"
	case ItemDouble:
		return "double"
	case ItemLong:
		return "long"
	case ItemNull:
		return "null"
	case ItemUninitializedThis:
		return "uninitializedThis"
	}
	return fmt.Sprintf("item(%d)", uint8(t))
}

// Verification types that carry no payload.
var (
	TopInfo               TypeInfo = simpleTypeInfo(ItemTop)
	IntegerInfo           TypeInfo = simpleTypeInfo(ItemInteger)
	FloatInfo             TypeInfo = simpleTypeInfo(ItemFloat)
	DoubleInfo            TypeInfo = simpleTypeInfo(ItemDouble)
	LongInfo              TypeInfo = simpleTypeInfo(ItemLong)
	NullInfo              TypeInfo = simpleTypeInfo(ItemNull)
	UninitializedThisInfo TypeInfo = simpleTypeInfo(ItemUninitializedThis)
)

// ObjectInfo is a reference to an instance of the class at ClassIndex.
type ObjectInfo struct {
	ClassIndex uint16
}

func (ObjectInfo) VerificationTag() VerificationTag { return ItemObject }

func (o ObjectInfo) encode(w *writer) {
	w.writeU1(uint8(ItemObject))
	w.writeU2(o.ClassIndex)
}

// UninitializedInfo is the result of the new instruction at Offset that has
// not had its constructor invoked yet.
type UninitializedInfo struct {
	Offset uint16
}

func (UninitializedInfo) VerificationTag() VerificationTag { return ItemUninitialized }

func (u UninitializedInfo) encode(w *writer) {
	w.writeU1(uint8(ItemUninitialized))
	w.writeU2(u.Offset)
}

func writeTypeInfo(w *writer, info TypeInfo) {
	if info == nil {
		panic("classfile: nil verification type info")
	}
	info.encode(w)
}

func writeTypeInfoSeq(w *writer, infos []TypeInfo) {
	w.writeCount(len(infos))
	for _, info := range infos {
		writeTypeInfo(w, info)
	}
}

// StackMapFrame is one entry of a StackMapTable attribute. Every frame
// carries an offset delta from the previous frame, either folded into the
// frame type or written after it.
type StackMapFrame interface {
	FrameType() uint8
	encode(w *writer)
}

// SameFrame has the same locals as the previous frame and an empty stack.
// Its frame type is the offset delta, so the zero value encodes as tag 0.
type SameFrame struct {
	OffsetDelta uint8
}

func (f SameFrame) FrameType() uint8 { return FrameSame + f.OffsetDelta }

func (f SameFrame) encode(w *writer) {
	if f.OffsetDelta > 63 {
		w.fail(fmt.Errorf("%w: same frame offset delta %d", ErrFrameOutOfRange, f.OffsetDelta))
		return
	}
	w.writeU1(f.FrameType())
}

// SameLocals1StackItemFrame has the same locals as the previous frame and
// exactly one stack item. Type is written unchanged as the frame type byte.
type SameLocals1StackItemFrame struct {
	Type  uint8
	Stack TypeInfo
}

func (f SameLocals1StackItemFrame) FrameType() uint8 { return f.Type }

func (f SameLocals1StackItemFrame) encode(w *writer) {
	w.writeU1(f.Type)
	writeTypeInfo(w, f.Stack)
}

type SameLocals1StackItemExtendedFrame struct {
	OffsetDelta uint16
	Stack       TypeInfo
}

func (SameLocals1StackItemExtendedFrame) FrameType() uint8 {
	return FrameSameLocals1StackItemExtended
}

func (f SameLocals1StackItemExtendedFrame) encode(w *writer) {
	w.writeU1(FrameSameLocals1StackItemExtended)
	w.writeU2(f.OffsetDelta)
	writeTypeInfo(w, f.Stack)
}

// ChopFrame drops the last Chopped (1 to 3) locals of the previous frame.
type ChopFrame struct {
	Chopped     uint8
	OffsetDelta uint16
}

func (f ChopFrame) FrameType() uint8 { return FrameSameExtended - f.Chopped }

func (f ChopFrame) encode(w *writer) {
	if f.Chopped < 1 || f.Chopped > 3 {
		w.fail(fmt.Errorf("%w: chop of %d locals", ErrFrameOutOfRange, f.Chopped))
		return
	}
	w.writeU1(f.FrameType())
	w.writeU2(f.OffsetDelta)
}

type SameExtendedFrame struct {
	OffsetDelta uint16
}

func (SameExtendedFrame) FrameType() uint8 { return FrameSameExtended }

func (f SameExtendedFrame) encode(w *writer) {
	w.writeU1(FrameSameExtended)
	w.writeU2(f.OffsetDelta)
}

// AppendFrame adds 1 to 3 locals to those of the previous frame. The count
// lives in the frame type only; Locals has no length prefix.
type AppendFrame struct {
	OffsetDelta uint16
	Locals      []TypeInfo
}

func (f AppendFrame) FrameType() uint8 { return FrameSameExtended + uint8(len(f.Locals)) }

func (f AppendFrame) encode(w *writer) {
	if len(f.Locals) < 1 || len(f.Locals) > 3 {
		w.fail(fmt.Errorf("%w: append of %d locals", ErrFrameOutOfRange, len(f.Locals)))
		return
	}
	w.writeU1(f.FrameType())
	w.writeU2(f.OffsetDelta)
	for _, info := range f.Locals {
		writeTypeInfo(w, info)
	}
}

type FullFrame struct {
	OffsetDelta uint16
	Locals      []TypeInfo
	Stack       []TypeInfo
}

func (FullFrame) FrameType() uint8 { return FrameFull }

func (f FullFrame) encode(w *writer) {
	w.writeU1(FrameFull)
	w.writeU2(f.OffsetDelta)
	writeTypeInfoSeq(w, f.Locals)
	writeTypeInfoSeq(w, f.Stack)
}

// StackMapTableAttribute is the payload of a StackMapTable attribute.
type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

func (*StackMapTableAttribute) AttributeName() string { return "StackMapTable" }

func (a *StackMapTableAttribute) encode(w *writer) {
	w.writeCount(len(a.Entries))
	for _, frame := range a.Entries {
		if w.err != nil {
			return
		}
		if frame == nil {
			panic("classfile: nil stack map frame")
		}
		frame.encode(w)
	}
}
