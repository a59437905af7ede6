package classfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classgen.classfile")

// Encoder writes class files to an output stream.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the binary form of cf. An error from the underlying writer
// is returned unchanged and stops the encoding; bytes already written are
// left in place. Encode panics on a structure it cannot encode, such as an
// attribute without a payload.
func (e *Encoder) Encode(cf *ClassFile) error {
	w := newWriter(e.w)
	cf.encode(w)
	if w.err != nil {
		log.Debugf("encoding %s stopped after %d bytes: %s", cf.ClassName(), w.n, w.err)
		return w.err
	}
	log.Debugf("encoded %s: %d bytes, %d constants", cf.ClassName(), w.n, len(cf.ConstantPool))
	return nil
}

// Encode writes the binary form of cf to w.
func (cf *ClassFile) Encode(w io.Writer) error {
	return NewEncoder(w).Encode(cf)
}

func (cf *ClassFile) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := cf.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Size returns the number of bytes cf encodes to.
func (cf *ClassFile) Size() (int64, error) {
	return encodedSize(cf)
}

// WriteFile encodes cf into the file at path, replacing it.
func WriteFile(path string, cf *ClassFile) error {
	data, err := cf.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode class file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write class file: %w", err)
	}
	return nil
}
