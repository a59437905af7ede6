package main

import (
	"fmt"

	"github.com/dhamidi/classgen/classdef"
	"github.com/dhamidi/classgen/format"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <class.toml>",
		Short: "Show the class file built from a TOML class description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := classdef.Load(args[0])
			if err != nil {
				return err
			}
			cf, err := c.Build()
			if err != nil {
				return fmt.Errorf("build %s: %w", c.Name, err)
			}

			out := cmd.OutOrStdout()
			switch dumpFormat {
			case "json":
				if err := format.NewJSONEncoder(out).Encode(cf); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Fprintln(out)
			case "line":
				if err := format.NewLineEncoder(out).Encode(cf); err != nil {
					return fmt.Errorf("encode line: %w", err)
				}
			default:
				return fmt.Errorf("unknown format: %s (expected json or line)", dumpFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (json, line)")

	return cmd
}
