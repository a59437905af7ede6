// Package classdef reads TOML class descriptions and builds class files
// from them.
//
// A description names the class, its super class and interfaces, and lists
// fields and methods. Method bodies are written as assembly instructions;
// see package asm for the operand syntax.
//
//	name = "Hello"
//	source_file = "Hello.java"
//
//	[[methods]]
//	name = "main"
//	descriptor = "([Ljava/lang/String;)V"
//	access = ["public", "static"]
//	max_stack = 2
//	code = [
//	  { op = "getstatic", arg = "java/lang/System.out:Ljava/io/PrintStream;" },
//	  { op = "ldc", arg = '"Hello"' },
//	  { op = "invokevirtual", arg = "java/io/PrintStream.println:(Ljava/lang/String;)V" },
//	  { op = "return" },
//	]
package classdef

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dhamidi/classgen/asm"
	"github.com/pelletier/go-toml/v2"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("classgen.classdef")

const (
	DefaultMajor = 52
	DefaultSuper = "java/lang/Object"
)

type Class struct {
	Name            string           `toml:"name"`
	Super           string           `toml:"super,omitempty"`
	Major           uint16           `toml:"major,omitempty"`
	Minor           uint16           `toml:"minor,omitempty"`
	Access          []string         `toml:"access,omitempty"`
	Interfaces      []string         `toml:"interfaces,omitempty"`
	SourceFile      string           `toml:"source_file,omitempty"`
	Signature       string           `toml:"signature,omitempty"`
	Deprecated      bool             `toml:"deprecated,omitempty"`
	InnerClasses    []InnerClass     `toml:"inner_classes,omitempty"`
	EnclosingMethod *EnclosingMethod `toml:"enclosing_method,omitempty"`
	Fields          []Field          `toml:"fields,omitempty"`
	Methods         []Method         `toml:"methods,omitempty"`
}

// InnerClass is one InnerClasses entry. Outer is empty for local and
// anonymous classes, Name is empty for anonymous ones.
type InnerClass struct {
	Inner  string   `toml:"inner"`
	Outer  string   `toml:"outer,omitempty"`
	Name   string   `toml:"name,omitempty"`
	Access []string `toml:"access,omitempty"`
}

// EnclosingMethod names the method a local or anonymous class is declared
// in. Name and Descriptor are empty when it is not inside a method.
type EnclosingMethod struct {
	Class      string `toml:"class"`
	Name       string `toml:"name,omitempty"`
	Descriptor string `toml:"descriptor,omitempty"`
}

// Field describes one field. Constant, when set, becomes the field's
// ConstantValue attribute and is parsed according to Descriptor.
type Field struct {
	Name       string   `toml:"name"`
	Descriptor string   `toml:"descriptor"`
	Access     []string `toml:"access,omitempty"`
	Constant   string   `toml:"constant,omitempty"`
	Signature  string   `toml:"signature,omitempty"`
}

// Method describes one method. MaxLocals is raised to the number of slots
// the parameters and receiver need when it is lower.
type Method struct {
	Name       string            `toml:"name"`
	Descriptor string            `toml:"descriptor"`
	Access     []string          `toml:"access,omitempty"`
	MaxStack   uint16            `toml:"max_stack,omitempty"`
	MaxLocals  uint16            `toml:"max_locals,omitempty"`
	Code       []asm.Instruction `toml:"code,omitempty"`
	Frames     []asm.Frame       `toml:"frames,omitempty"`
	Handlers   []Handler         `toml:"handlers,omitempty"`
	Throws     []string          `toml:"throws,omitempty"`
	Signature  string            `toml:"signature,omitempty"`
	Lines      []Line            `toml:"lines,omitempty"`
	Locals     []Local           `toml:"locals,omitempty"`
}

// Line maps the instruction at Label to a source line.
type Line struct {
	Label string `toml:"label"`
	Line  uint16 `toml:"line"`
}

// Local names a local variable slot between the Start and End labels.
// A Signature adds a LocalVariableTypeTable entry as well.
type Local struct {
	Name       string `toml:"name"`
	Descriptor string `toml:"descriptor"`
	Signature  string `toml:"signature,omitempty"`
	Start      string `toml:"start"`
	End        string `toml:"end"`
	Index      uint16 `toml:"index"`
}

// Handler is an exception table entry given by labels. An empty Type
// catches everything.
type Handler struct {
	Start   string `toml:"start"`
	End     string `toml:"end"`
	Handler string `toml:"handler"`
	Type    string `toml:"type,omitempty"`
}

// Load reads a class description from the TOML file at path.
func Load(path string) (*Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class description: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a class description. Unknown keys are rejected.
func Parse(data []byte) (*Class, error) {
	var c Class
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse class description: %w", err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("failed to parse class description: missing class name")
	}
	log.Debugf("parsed class %s with %d fields and %d methods", c.Name, len(c.Fields), len(c.Methods))
	return &c, nil
}

// Marshal renders c back into TOML.
func (c *Class) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Hello describes a class whose main method prints message.
func Hello(name, message string) *Class {
	return &Class{
		Name:       name,
		Access:     []string{"public", "super"},
		SourceFile: name + ".java",
		Methods: []Method{
			{
				Name:       "<init>",
				Descriptor: "()V",
				Access:     []string{"public"},
				MaxStack:   1,
				Code: []asm.Instruction{
					{Op: "aload_0"},
					{Op: "invokespecial", Arg: DefaultSuper + ".<init>:()V"},
					{Op: "return"},
				},
			},
			{
				Name:       "main",
				Descriptor: "([Ljava/lang/String;)V",
				Access:     []string{"public", "static"},
				MaxStack:   2,
				Code: []asm.Instruction{
					{Op: "getstatic", Arg: "java/lang/System.out:Ljava/io/PrintStream;"},
					{Op: "ldc", Arg: fmt.Sprintf("%q", message)},
					{Op: "invokevirtual", Arg: "java/io/PrintStream.println:(Ljava/lang/String;)V"},
					{Op: "return"},
				},
			},
		},
	}
}
