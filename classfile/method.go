package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m MethodInfo) encode(w *writer) {
	w.writeU2(uint16(m.AccessFlags))
	w.writeU2(m.NameIndex)
	w.writeU2(m.DescriptorIndex)
	writeSeq(w, m.Attributes)
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	for i := range m.Attributes {
		if cp.GetUtf8(m.Attributes[i].NameIndex) == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) *CodeAttribute {
	attr := m.GetAttribute(cp, "Code")
	if attr == nil {
		return nil
	}
	return attr.AsCode()
}
