package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/classgen/classfile"
)

type JSONEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := e.buildClassData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name       string          `json:"name"`
	SuperClass string          `json:"superClass,omitempty"`
	Interfaces []string        `json:"interfaces,omitempty"`
	Kind       string          `json:"kind"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Version    jsonVersion     `json:"version"`
	PoolCount  int             `json:"constantPoolCount"`
	Size       int64           `json:"size"`
	Fields     []jsonMember    `json:"fields,omitempty"`
	Methods    []jsonMember    `json:"methods,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonMember struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonAttribute struct {
	Name   string `json:"name"`
	Length uint32 `json:"length"`
}

func (e *JSONEncoder) buildClassData() (jsonClass, error) {
	cf := e.cf
	cp := cf.ConstantPool
	size, err := cf.Size()
	if err != nil {
		return jsonClass{}, err
	}

	data := jsonClass{
		Name:       cf.ClassName(),
		SuperClass: cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Kind:       classKind(cf),
		Modifiers:  modifierList(cf.AccessFlags, classFlags),
		Version: jsonVersion{
			Major: cf.MajorVersion,
			Minor: cf.MinorVersion,
		},
		PoolCount:  cp.Count(),
		Size:       size,
		Attributes: buildAttributes(cp, cf.Attributes),
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		data.Fields = append(data.Fields, jsonMember{
			Name:       f.Name(cp),
			Descriptor: f.Descriptor(cp),
			Modifiers:  modifierList(f.AccessFlags, fieldFlags),
			Attributes: buildAttributes(cp, f.Attributes),
		})
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		data.Methods = append(data.Methods, jsonMember{
			Name:       m.Name(cp),
			Descriptor: m.Descriptor(cp),
			Modifiers:  modifierList(m.AccessFlags, methodFlags),
			Attributes: buildAttributes(cp, m.Attributes),
		})
	}
	return data, nil
}

func buildAttributes(cp classfile.ConstantPool, attrs []classfile.AttributeInfo) []jsonAttribute {
	var result []jsonAttribute
	for _, a := range attrs {
		result = append(result, jsonAttribute{Name: cp.GetUtf8(a.NameIndex), Length: a.Length})
	}
	return result
}

func modifierList(flags classfile.AccessFlags, names []namedFlag) []string {
	mods := modifiers(flags, names)
	if mods == "-" {
		return nil
	}
	return strings.Split(mods, ",")
}
