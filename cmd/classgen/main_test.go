package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/classgen/classdef"
	"github.com/stretchr/testify/require"
)

func TestWriteClass(t *testing.T) {
	dir := t.TempDir()
	out, err := writeClass(classdef.Hello("demo/Hello", "hi"), dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "demo", "Hello.class"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, data[:4])
}

func TestMutf8Cmd(t *testing.T) {
	cmd := newMutf8Cmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"a\x00", "\U0001F600"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "3\t61c080\n6\teda0bdedb880\n", buf.String())

	cmd = newMutf8Cmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a\xffb"})
	require.Error(t, cmd.Execute())
}

func TestDumpCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.toml")
	data, err := classdef.Hello("Hello", "hi").Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cmd := newDumpCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(buf.String(), "class\tHello\tpublic,super\t52.0\n"))
	require.Contains(t, buf.String(), "method\tmain\t([Ljava/lang/String;)V\tpublic,static\n")
}
