package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grovetools/fsevents/cli"
	"github.com/grovetools/fsevents/config"
	"github.com/grovetools/fsevents/stream"
)

// parseFlagNames resolves creation flag names, defaulting to the config
// package's baseline when none are given.
func parseFlagNames(names []string) (stream.CreateFlags, error) {
	if len(names) == 0 {
		names = config.Default().Flags
	}
	return config.ParseCreateFlags(names)
}

// NewFlagsCmd creates the `flags` command.
func NewFlagsCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"flags [value]",
		"Decode FSEvents flag values or list known flags",
	)
	cmd.Long = `Without arguments, lists every known event flag and creation flag with
its bit value. With a numeric argument (decimal or 0x-prefixed hex),
decodes it as an event flag pattern.`
	cmd.Example = `# List all known flags
fswatch flags

# Decode a pattern seen in raw output
fswatch flags 0x40100`

	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return decodeFlagValue(args[0])
		}

		fmt.Println("Event flags:")
		for _, flag := range stream.EventFlagList() {
			fmt.Printf("  %#010x  %s\n", uint32(flag), flag.String())
		}

		fmt.Println("\nCreation flags:")
		for _, name := range config.KnownFlagNames() {
			bits, err := config.ParseCreateFlags([]string{name})
			if err != nil {
				return err
			}
			fmt.Printf("  %#010x  %s\n", uint32(bits), name)
		}
		return nil
	}

	return cmd
}

func decodeFlagValue(arg string) error {
	raw, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return fmt.Errorf("not a 32-bit flag value: %q", arg)
	}

	flags, ok := stream.ParseEventFlags(uint32(raw))
	if !ok {
		known := stream.EventFlags(0)
		for _, flag := range stream.EventFlagList() {
			if uint32(raw)&uint32(flag) != 0 {
				known |= flag
			}
		}
		fmt.Printf("%#x contains unknown bits (known part: %s)\n", raw, known.String())
		return nil
	}
	if flags == 0 {
		fmt.Printf("%#x: no flags set\n", raw)
		return nil
	}
	fmt.Printf("%#x: %s\n", raw, flags.String())
	return nil
}
