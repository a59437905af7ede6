package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// writer is a big-endian byte sink. The first failed write is kept in err
// and every later write becomes a no-op, so an encode pass stops producing
// bytes as soon as the sink rejects one.
type writer struct {
	w   io.Writer
	n   int64
	err error
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	w.err = err
}

func (w *writer) writeU1(v uint8) {
	w.write([]byte{v})
}

func (w *writer) writeU2(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *writer) writeU4(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.write(buf[:])
}

// writeCount writes a u2 element count. Counts that do not fit are
// recorded as ErrCountOverflow rather than truncated.
func (w *writer) writeCount(n int) {
	if w.err != nil {
		return
	}
	if n > math.MaxUint16 {
		w.err = fmt.Errorf("%w: %d", ErrCountOverflow, n)
		return
	}
	w.writeU2(uint16(n))
}

// writeBytes writes a u2 length followed by the bytes themselves.
func (w *writer) writeBytes(p []byte) {
	w.writeCount(len(p))
	w.write(p)
}

// writeBytes4 writes a u4 length followed by the bytes, as used by the
// code array of a Code attribute.
func (w *writer) writeBytes4(p []byte) {
	if w.err != nil {
		return
	}
	if uint64(len(p)) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: %d", ErrCountOverflow, len(p))
		return
	}
	w.writeU4(uint32(len(p)))
	w.write(p)
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// encoder is implemented by every structure that has a class-file
// byte representation.
type encoder interface {
	encode(w *writer)
}

// writeSeq writes len(items) as a u2 followed by each item.
func writeSeq[T encoder](w *writer, items []T) {
	w.writeCount(len(items))
	for _, item := range items {
		if w.err != nil {
			return
		}
		item.encode(w)
	}
}

func writeU2Seq(w *writer, items []uint16) {
	w.writeCount(len(items))
	for _, v := range items {
		w.writeU2(v)
	}
}

// discard counts bytes without storing them.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// encodedSize reports how many bytes e encodes to.
func encodedSize(e encoder) (int64, error) {
	w := newWriter(discard{})
	e.encode(w)
	return w.n, w.err
}
