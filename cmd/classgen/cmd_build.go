package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/classgen/classdef"
	"github.com/dhamidi/classgen/classfile"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build <class.toml>...",
		Short: "Build class files from TOML class descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				c, err := classdef.Load(path)
				if err != nil {
					return err
				}
				out, err := writeClass(c, outDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write class files to")

	return cmd
}

// writeClass builds c and writes it below dir following its package path.
func writeClass(c *classdef.Class, dir string) (string, error) {
	cf, err := c.Build()
	if err != nil {
		return "", fmt.Errorf("build %s: %w", c.Name, err)
	}
	if err := cf.Validate(); err != nil {
		return "", fmt.Errorf("validate %s: %w", c.Name, err)
	}

	out := filepath.Join(dir, filepath.FromSlash(c.Name)+".class")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := classfile.WriteFile(out, cf); err != nil {
		return "", err
	}
	return out, nil
}
