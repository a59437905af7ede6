package classfile

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Validate checks the parts of cf that the encoder trusts: the magic
// number, the constant pool and the declared length of every attribute,
// nested ones included.
func (cf *ClassFile) Validate() error {
	var errs []error
	if cf.Magic != Magic {
		errs = append(errs, fmt.Errorf("%w: 0x%X", ErrBadMagic, cf.Magic))
	}
	for i, entry := range cf.ConstantPool {
		if c, ok := entry.(*ConstantUtf8Info); ok && !utf8.ValidString(c.Value) {
			errs = append(errs, fmt.Errorf("%w: constant #%d %q", ErrInvalidUTF8, i+1, c.Value))
		}
	}
	if _, err := safeSize(cf.ConstantPool); err != nil {
		errs = append(errs, err)
	}
	for i := range cf.Fields {
		errs = appendAttributeErrors(errs, cf.ConstantPool, "field "+cf.Fields[i].Name(cf.ConstantPool), cf.Fields[i].Attributes)
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		errs = appendAttributeErrors(errs, cf.ConstantPool, "method "+m.Name(cf.ConstantPool)+m.Descriptor(cf.ConstantPool), m.Attributes)
	}
	errs = appendAttributeErrors(errs, cf.ConstantPool, "class", cf.Attributes)
	return errors.Join(errs...)
}

func appendAttributeErrors(errs []error, cp ConstantPool, owner string, attrs []AttributeInfo) []error {
	for i := range attrs {
		a := &attrs[i]
		name := cp.GetUtf8(a.NameIndex)
		if isNilPayload(a.Payload) {
			errs = append(errs, fmt.Errorf("%s: attribute %q: %w", owner, name, ErrNoPayload))
			continue
		}
		size, err := safeSize(a.Payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: attribute %q: %w", owner, name, err))
			continue
		}
		if size != int64(a.Length) {
			errs = append(errs, fmt.Errorf("%s: attribute %q: %w: declared %d, encodes to %d",
				owner, name, ErrAttributeLength, a.Length, size))
		}
		if code := a.AsCode(); code != nil {
			errs = appendAttributeErrors(errs, cp, owner+" Code", code.Attributes)
		}
	}
	return errs
}

// safeSize reports the encoded size of e, turning the panic raised for an
// unencodable nested structure into an error.
func safeSize(e encoder) (size int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return encodedSize(e)
}
