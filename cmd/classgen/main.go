package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "classgen",
		Short: "Generate JVM class files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newHelloCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newMutf8Cmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
