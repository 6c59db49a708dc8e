package main

import (
	"os"

	"github.com/grovetools/fsevents/cli"
	"github.com/grovetools/fsevents/cmd"
	"github.com/grovetools/fsevents/pkg/profiling"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"fswatch",
		"Filesystem event watching built on macOS FSEvents",
	)

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRun = profiler.PostRun

	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewServeCmd())
	rootCmd.AddCommand(cmd.NewFlagsCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		cli.PrintError(rootCmd, err)
		os.Exit(1)
	}
}
