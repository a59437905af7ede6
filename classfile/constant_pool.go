package classfile

import (
	"fmt"
	"math"
)

// ConstantPoolEntry is one constant_pool entry. The set of kinds is closed;
// each kind writes its tag byte followed by its payload.
type ConstantPoolEntry interface {
	Tag() ConstantTag
	encode(w *writer)
	key() any
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }
func (c *ConstantUtf8Info) key() any         { return *c }

func (c *ConstantUtf8Info) encode(w *writer) {
	w.writeU1(uint8(ConstantUtf8))
	w.writeBytes(EncodeModifiedUTF8(c.Value))
}

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }
func (c *ConstantIntegerInfo) key() any         { return *c }

func (c *ConstantIntegerInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantInteger))
	w.writeU4(uint32(c.Value))
}

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (c *ConstantFloatInfo) key() any         { return math.Float32bits(c.Value) }

func (c *ConstantFloatInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantFloat))
	w.writeU4(math.Float32bits(c.Value))
}

// ConstantLongInfo occupies two pool slots.
type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }
func (c *ConstantLongInfo) key() any         { return *c }

func (c *ConstantLongInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantLong))
	w.writeU4(uint32(uint64(c.Value) >> 32))
	w.writeU4(uint32(c.Value))
}

// ConstantDoubleInfo occupies two pool slots.
type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (c *ConstantDoubleInfo) key() any         { return math.Float64bits(c.Value) }

func (c *ConstantDoubleInfo) encode(w *writer) {
	bits := math.Float64bits(c.Value)
	w.writeU1(uint8(ConstantDouble))
	w.writeU4(uint32(bits >> 32))
	w.writeU4(uint32(bits))
}

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }
func (c *ConstantClassInfo) key() any         { return *c }

func (c *ConstantClassInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantClass))
	w.writeU2(c.NameIndex)
}

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }
func (c *ConstantStringInfo) key() any         { return *c }

func (c *ConstantStringInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantString))
	w.writeU2(c.StringIndex)
}

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }
func (c *ConstantFieldrefInfo) key() any         { return *c }

func (c *ConstantFieldrefInfo) encode(w *writer) {
	writeMemberRef(w, ConstantFieldref, c.ClassIndex, c.NameAndTypeIndex)
}

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }
func (c *ConstantMethodrefInfo) key() any         { return *c }

func (c *ConstantMethodrefInfo) encode(w *writer) {
	writeMemberRef(w, ConstantMethodref, c.ClassIndex, c.NameAndTypeIndex)
}

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }
func (c *ConstantInterfaceMethodrefInfo) key() any         { return *c }

func (c *ConstantInterfaceMethodrefInfo) encode(w *writer) {
	writeMemberRef(w, ConstantInterfaceMethodref, c.ClassIndex, c.NameAndTypeIndex)
}

func writeMemberRef(w *writer, tag ConstantTag, classIndex, nameAndTypeIndex uint16) {
	w.writeU1(uint8(tag))
	w.writeU2(classIndex)
	w.writeU2(nameAndTypeIndex)
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }
func (c *ConstantNameAndTypeInfo) key() any         { return *c }

func (c *ConstantNameAndTypeInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantNameAndType))
	w.writeU2(c.NameIndex)
	w.writeU2(c.DescriptorIndex)
}

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }
func (c *ConstantMethodHandleInfo) key() any         { return *c }

func (c *ConstantMethodHandleInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantMethodHandle))
	w.writeU1(uint8(c.ReferenceKind))
	w.writeU2(c.ReferenceIndex)
}

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }
func (c *ConstantMethodTypeInfo) key() any         { return *c }

func (c *ConstantMethodTypeInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantMethodType))
	w.writeU2(c.DescriptorIndex)
}

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }
func (c *ConstantDynamicInfo) key() any         { return *c }

func (c *ConstantDynamicInfo) encode(w *writer) {
	writeMemberRef(w, ConstantDynamic, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
}

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }
func (c *ConstantInvokeDynamicInfo) key() any         { return *c }

func (c *ConstantInvokeDynamicInfo) encode(w *writer) {
	writeMemberRef(w, ConstantInvokeDynamic, c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
}

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }
func (c *ConstantModuleInfo) key() any         { return *c }

func (c *ConstantModuleInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantModule))
	w.writeU2(c.NameIndex)
}

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }
func (c *ConstantPackageInfo) key() any         { return *c }

func (c *ConstantPackageInfo) encode(w *writer) {
	w.writeU1(uint8(ConstantPackage))
	w.writeU2(c.NameIndex)
}

// ConstantPool holds one element per pool index, starting at index 1.
// The slot following a Long or Double entry is a nil placeholder, so the
// declared constant_pool_count is always len(cp)+1.
type ConstantPool []ConstantPoolEntry

// Count returns the constant_pool_count written to the class file.
func (cp ConstantPool) Count() int {
	return len(cp) + 1
}

func (cp ConstantPool) encode(w *writer) {
	w.writeCount(cp.Count())
	for i, entry := range cp {
		if w.err != nil {
			return
		}
		if entry == nil {
			if i == 0 || cp[i-1] == nil || !cp[i-1].Tag().Wide() {
				w.fail(fmt.Errorf("%w at index %d", ErrMisplacedSlot, i+1))
				return
			}
			continue
		}
		if entry.Tag().Wide() && (i+1 >= len(cp) || cp[i+1] != nil) {
			w.fail(fmt.Errorf("%w: missing after index %d", ErrMisplacedSlot, i+1))
			return
		}
		entry.encode(w)
	}
}

// Add appends entry, plus a placeholder slot for wide entries, and returns
// its index. An equal entry already in the pool is reused.
func (cp *ConstantPool) Add(entry ConstantPoolEntry) uint16 {
	k := entry.key()
	for i, existing := range *cp {
		if existing != nil && existing.Tag() == entry.Tag() && existing.key() == k {
			return uint16(i + 1)
		}
	}
	*cp = append(*cp, entry)
	index := uint16(len(*cp))
	if entry.Tag().Wide() {
		*cp = append(*cp, nil)
	}
	return index
}

func (cp *ConstantPool) AddUtf8(s string) uint16 {
	return cp.Add(&ConstantUtf8Info{Value: s})
}

func (cp *ConstantPool) AddClass(name string) uint16 {
	return cp.Add(&ConstantClassInfo{NameIndex: cp.AddUtf8(name)})
}

func (cp *ConstantPool) AddString(s string) uint16 {
	return cp.Add(&ConstantStringInfo{StringIndex: cp.AddUtf8(s)})
}

func (cp *ConstantPool) AddInteger(v int32) uint16 {
	return cp.Add(&ConstantIntegerInfo{Value: v})
}

func (cp *ConstantPool) AddFloat(v float32) uint16 {
	return cp.Add(&ConstantFloatInfo{Value: v})
}

func (cp *ConstantPool) AddLong(v int64) uint16 {
	return cp.Add(&ConstantLongInfo{Value: v})
}

func (cp *ConstantPool) AddDouble(v float64) uint16 {
	return cp.Add(&ConstantDoubleInfo{Value: v})
}

func (cp *ConstantPool) AddNameAndType(name, descriptor string) uint16 {
	return cp.Add(&ConstantNameAndTypeInfo{
		NameIndex:       cp.AddUtf8(name),
		DescriptorIndex: cp.AddUtf8(descriptor),
	})
}

func (cp *ConstantPool) AddFieldref(class, name, descriptor string) uint16 {
	return cp.Add(&ConstantFieldrefInfo{
		ClassIndex:       cp.AddClass(class),
		NameAndTypeIndex: cp.AddNameAndType(name, descriptor),
	})
}

func (cp *ConstantPool) AddMethodref(class, name, descriptor string) uint16 {
	return cp.Add(&ConstantMethodrefInfo{
		ClassIndex:       cp.AddClass(class),
		NameAndTypeIndex: cp.AddNameAndType(name, descriptor),
	})
}

func (cp *ConstantPool) AddInterfaceMethodref(class, name, descriptor string) uint16 {
	return cp.Add(&ConstantInterfaceMethodrefInfo{
		ClassIndex:       cp.AddClass(class),
		NameAndTypeIndex: cp.AddNameAndType(name, descriptor),
	})
}

func (cp *ConstantPool) AddMethodType(descriptor string) uint16 {
	return cp.Add(&ConstantMethodTypeInfo{DescriptorIndex: cp.AddUtf8(descriptor)})
}

func (cp *ConstantPool) AddMethodHandle(kind MethodHandleKind, referenceIndex uint16) uint16 {
	return cp.Add(&ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: referenceIndex})
}

// Entry returns the entry at index, or nil for index 0, placeholder slots
// and indices past the end of the pool.
func (cp ConstantPool) Entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

// lookup returns the entry at index if it has type T.
func lookup[T ConstantPoolEntry](cp ConstantPool, index uint16) (T, bool) {
	entry, ok := cp.Entry(index).(T)
	return entry, ok
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if c, ok := lookup[*ConstantUtf8Info](cp, index); ok {
		return c.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if c, ok := lookup[*ConstantClassInfo](cp, index); ok {
		return cp.GetUtf8(c.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if c, ok := lookup[*ConstantNameAndTypeInfo](cp, index); ok {
		return cp.GetUtf8(c.NameIndex), cp.GetUtf8(c.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if c, ok := lookup[*ConstantStringInfo](cp, index); ok {
		return cp.GetUtf8(c.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetModuleName(index uint16) string {
	if c, ok := lookup[*ConstantModuleInfo](cp, index); ok {
		return cp.GetUtf8(c.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	if c, ok := lookup[*ConstantPackageInfo](cp, index); ok {
		return cp.GetUtf8(c.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	c, ok := lookup[*ConstantIntegerInfo](cp, index)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	c, ok := lookup[*ConstantLongInfo](cp, index)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

func (cp ConstantPool) GetFloat(index uint16) (float32, bool) {
	c, ok := lookup[*ConstantFloatInfo](cp, index)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

func (cp ConstantPool) GetDouble(index uint16) (float64, bool) {
	c, ok := lookup[*ConstantDoubleInfo](cp, index)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

// MemberRef resolves a Fieldref, Methodref or InterfaceMethodref entry.
// ok is false for any other kind of entry.
func (cp ConstantPool) MemberRef(index uint16) (className, name, descriptor string, ok bool) {
	var classIndex, nameAndTypeIndex uint16
	switch c := cp.Entry(index).(type) {
	case *ConstantFieldrefInfo:
		classIndex, nameAndTypeIndex = c.ClassIndex, c.NameAndTypeIndex
	case *ConstantMethodrefInfo:
		classIndex, nameAndTypeIndex = c.ClassIndex, c.NameAndTypeIndex
	case *ConstantInterfaceMethodrefInfo:
		classIndex, nameAndTypeIndex = c.ClassIndex, c.NameAndTypeIndex
	default:
		return "", "", "", false
	}
	name, descriptor = cp.GetNameAndType(nameAndTypeIndex)
	return cp.GetClassName(classIndex), name, descriptor, true
}

func (cp ConstantPool) GetFieldref(index uint16) (className, name, descriptor string) {
	if _, ok := lookup[*ConstantFieldrefInfo](cp, index); ok {
		className, name, descriptor, _ = cp.MemberRef(index)
	}
	return
}

func (cp ConstantPool) GetMethodref(index uint16) (className, name, descriptor string) {
	if _, ok := lookup[*ConstantMethodrefInfo](cp, index); ok {
		className, name, descriptor, _ = cp.MemberRef(index)
	}
	return
}

func (cp ConstantPool) GetInterfaceMethodref(index uint16) (className, name, descriptor string) {
	if _, ok := lookup[*ConstantInterfaceMethodrefInfo](cp, index); ok {
		className, name, descriptor, _ = cp.MemberRef(index)
	}
	return
}

func (cp ConstantPool) GetMethodType(index uint16) string {
	if c, ok := lookup[*ConstantMethodTypeInfo](cp, index); ok {
		return cp.GetUtf8(c.DescriptorIndex)
	}
	return ""
}
