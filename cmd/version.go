package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/fsevents/cli"
	"github.com/grovetools/fsevents/version"
)

// NewVersionCmd creates the `version` command.
func NewVersionCmd() *cobra.Command {
	cmd := cli.NewStandardCommand("version", "Print version information")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.GetInfo().String())
		return nil
	}
	return cmd
}
