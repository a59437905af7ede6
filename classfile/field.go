package classfile

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (f FieldInfo) encode(w *writer) {
	w.writeU2(uint16(f.AccessFlags))
	w.writeU2(f.NameIndex)
	w.writeU2(f.DescriptorIndex)
	writeSeq(w, f.Attributes)
}

func (f *FieldInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(f.DescriptorIndex)
}

func (f *FieldInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	for i := range f.Attributes {
		if cp.GetUtf8(f.Attributes[i].NameIndex) == name {
			return &f.Attributes[i]
		}
	}
	return nil
}
