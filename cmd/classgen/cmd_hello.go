package main

import (
	"fmt"

	"github.com/dhamidi/classgen/classdef"
	"github.com/spf13/cobra"
)

func newHelloCmd() *cobra.Command {
	var (
		name    string
		message string
		outDir  string
		emit    bool
	)

	cmd := &cobra.Command{
		Use:   "hello",
		Short: "Write a class whose main method prints a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := classdef.Hello(name, message)
			if emit {
				data, err := c.Marshal()
				if err != nil {
					return fmt.Errorf("encode toml: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			out, err := writeClass(c, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Hello", "internal name of the class")
	cmd.Flags().StringVarP(&message, "message", "m", "Hello, World!", "message printed by main")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the class file to")
	cmd.Flags().BoolVar(&emit, "toml", false, "print the class description instead of building it")

	return cmd
}
