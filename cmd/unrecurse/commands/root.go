// Package commands provides the CLI commands for the unrecurse tool.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unrecurse [file.go]",
	Short: "Rewrite self-tail-recursive Go functions into loops",
	Long: `unrecurse rewrites functions marked with a //unrecurse:rewrite directive
so that self-recursive tail calls run as an iterative loop in constant stack.

Usage:
  unrecurse [file.go]              Rewrite a Go file to stdout (shorthand)
  unrecurse -i in.go -o out.go     Rewrite with explicit input/output
  unrecurse rewrite -w file.go     Rewrite a file in place
  unrecurse version                Print version`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	// Run rewrite by default if a .go file is provided as argument
	RunE: func(cmd *cobra.Command, args []string) error {
		if rewriteInput != "" {
			runRewrite(cmd, args)
			return nil
		}

		if len(args) > 0 && strings.HasSuffix(args[0], ".go") {
			runRewrite(cmd, args)
			return nil
		}

		if len(args) == 0 {
			return cmd.Help()
		}

		return fmt.Errorf("unknown command %q for \"unrecurse\"\nRun 'unrecurse --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(versionCmd)

	// Mirror rewrite flags on the root for the shorthand form
	addRewriteFlags(rootCmd)
}
