package classfile

import "errors"

var (
	// ErrCountOverflow is returned when a length or element count does not
	// fit the width of its class-file field.
	ErrCountOverflow = errors.New("classfile: count overflows its field")

	// ErrFrameOutOfRange is returned when a stack map frame would encode a
	// tag outside the band reserved for its kind.
	ErrFrameOutOfRange = errors.New("classfile: stack map frame out of range")

	ErrBadMagic        = errors.New("classfile: bad magic number")
	ErrMisplacedSlot   = errors.New("classfile: misplaced constant pool placeholder")
	ErrAttributeLength = errors.New("classfile: attribute length does not match payload")
	ErrInvalidUTF8     = errors.New("classfile: string constant is not valid utf-8")
	ErrNoPayload       = errors.New("classfile: attribute has no payload")
)
