package main

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/dhamidi/classgen/classfile"
	"github.com/spf13/cobra"
)

func newMutf8Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutf8 <text>...",
		Short: "Print the modified UTF-8 encoding of each argument in hex",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if !utf8.ValidString(arg) {
					return fmt.Errorf("argument %q is not valid utf-8", arg)
				}
				b := classfile.EncodeModifiedUTF8(arg)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", len(b), hex.EncodeToString(b))
			}
			return nil
		},
	}
}
