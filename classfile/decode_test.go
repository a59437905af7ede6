package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"testing"
)

// The helpers below read back what the encoder wrote so that tests can
// check structure rather than only raw byte strings.

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

type rawAttribute struct {
	NameIndex uint16
	Info      []byte
}

type rawMember struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []rawAttribute
}

type rawClass struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	PoolCount    uint16
	Utf8         map[uint16]string
	Tags         map[uint16]ConstantTag
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []rawMember
	Methods      []rawMember
	Attributes   []rawAttribute
}

func decodeClass(t *testing.T, data []byte) *rawClass {
	t.Helper()
	r := &reader{r: bytes.NewReader(data)}
	c := &rawClass{
		Magic:        r.readU4(),
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
		PoolCount:    r.readU2(),
		Utf8:         map[uint16]string{},
		Tags:         map[uint16]ConstantTag{},
	}
	for i := uint16(1); i < c.PoolCount && r.err == nil; i++ {
		tag := ConstantTag(r.readU1())
		c.Tags[i] = tag
		switch tag {
		case ConstantUtf8:
			c.Utf8[i] = decodeModifiedUtf8(r.readBytes(int(r.readU2())))
		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			r.readU2()
		case ConstantInteger, ConstantFloat, ConstantFieldref, ConstantMethodref,
			ConstantInterfaceMethodref, ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
			r.readU4()
		case ConstantLong, ConstantDouble:
			r.readU4()
			r.readU4()
			i++
		case ConstantMethodHandle:
			r.readU1()
			r.readU2()
		default:
			t.Fatalf("unknown constant pool tag %d at index %d", tag, i)
		}
	}
	c.AccessFlags = r.readU2()
	c.ThisClass = r.readU2()
	c.SuperClass = r.readU2()
	c.Interfaces = make([]uint16, r.readU2())
	for i := range c.Interfaces {
		c.Interfaces[i] = r.readU2()
	}
	c.Fields = readMembers(r)
	c.Methods = readMembers(r)
	c.Attributes = readAttributes(r)
	if r.err != nil {
		t.Fatalf("failed to decode class: %v", r.err)
	}
	if rest, _ := io.ReadAll(r.r); len(rest) != 0 {
		t.Fatalf("%d trailing bytes after class", len(rest))
	}
	return c
}

func readMembers(r *reader) []rawMember {
	members := make([]rawMember, r.readU2())
	for i := range members {
		members[i] = rawMember{
			AccessFlags:     r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Attributes:      readAttributes(r),
		}
	}
	return members
}

func readAttributes(r *reader) []rawAttribute {
	attrs := make([]rawAttribute, r.readU2())
	for i := range attrs {
		attrs[i].NameIndex = r.readU2()
		attrs[i].Info = r.readBytes(int(r.readU4()))
	}
	return attrs
}

func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0 && i+1 < len(bytes):
			runes = append(runes, rune(b&0x1F)<<6|rune(bytes[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0 && i+2 < len(bytes):
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			panic(fmt.Sprintf("malformed modified UTF-8 at byte %d", i))
		}
	}
	return string(runes)
}
