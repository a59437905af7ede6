// Package format renders class files in human readable forms.
package format

import (
	"encoding"

	"github.com/dhamidi/classgen/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}
