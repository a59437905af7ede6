package classfile

// ClassFile is the in-memory form of one .class file. Indices into the
// constant pool are stored as-is and are not checked when encoding.
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// New returns an empty class file with the class-file magic and the given
// version, ready for its pool and members to be filled in.
func New(major, minor uint16) *ClassFile {
	return &ClassFile{
		Magic:        Magic,
		MajorVersion: major,
		MinorVersion: minor,
	}
}

func (cf *ClassFile) encode(w *writer) {
	w.writeU4(cf.Magic)
	w.writeU2(cf.MinorVersion)
	w.writeU2(cf.MajorVersion)
	cf.ConstantPool.encode(w)
	w.writeU2(uint16(cf.AccessFlags))
	w.writeU2(cf.ThisClass)
	w.writeU2(cf.SuperClass)
	writeU2Seq(w, cf.Interfaces)
	writeSeq(w, cf.Fields)
	writeSeq(w, cf.Methods)
	writeSeq(w, cf.Attributes)
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.ConstantPool.GetUtf8(cf.Attributes[i].NameIndex) == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}
