package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/grovetools/fsevents/cli"
	"github.com/grovetools/fsevents/pkg/watch"
	"github.com/grovetools/fsevents/stream"
	"github.com/grovetools/fsevents/tui/viewer"
)

// NewWatchCmd creates the `watch` command.
func NewWatchCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"watch [paths...]",
		"Watch paths for filesystem changes",
	)
	cmd.Long = `Watches the given paths recursively and prints one line per change.
Paths default to the config file's paths, then to the current directory.

On macOS events come from a native FSEvents stream; elsewhere a
recursive fsnotify watcher is used. --raw bypasses the portable layer
and prints full FSEvents records (macOS only).`
	cmd.Example = `# Watch the current directory
fswatch watch

# Watch two trees, ignoring build output
fswatch watch --ignore 'target/**' src docs

# Full-screen live viewer
fswatch watch --tui

# Raw FSEvents records with ids and flags
fswatch watch --raw --flag file-events --flag use-extended-data`

	cmd.Flags().Duration("latency", 0, "Event coalescing window")
	cmd.Flags().Duration("debounce", 0, "Suppress repeat events for the same path inside this window")
	cmd.Flags().StringSlice("ignore", nil, "Ignore patterns (gitignore syntax)")
	cmd.Flags().StringSlice("flag", nil, "FSEvents creation flags for --raw, e.g. file-events")
	cmd.Flags().Bool("raw", false, "Print raw FSEvents records instead of portable events")
	cmd.Flags().Bool("tui", false, "Show events in a full-screen viewer")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		handler := cli.NewErrorHandler(verbose)

		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return handler.Handle(err)
		}

		paths := args
		if len(paths) == 0 {
			paths = cfg.Paths
		}
		if len(paths) == 0 {
			paths = []string{"."}
		}

		latency := cfg.Latency.Std()
		if cmd.Flags().Changed("latency") {
			latency, _ = cmd.Flags().GetDuration("latency")
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			return runRawWatch(cmd, handler, paths, latency, cfg.Flags)
		}

		debounce := cfg.Debounce.Std()
		if cmd.Flags().Changed("debounce") {
			debounce, _ = cmd.Flags().GetDuration("debounce")
		}
		ignore := cfg.Ignore
		if cmd.Flags().Changed("ignore") {
			ignore, _ = cmd.Flags().GetStringSlice("ignore")
		}

		w, err := watch.New(paths, watch.Options{
			Debounce: debounce,
			Latency:  latency,
			Ignore:   ignore,
		})
		if err != nil {
			return handler.Handle(err)
		}

		if tui, _ := cmd.Flags().GetBool("tui"); tui {
			p := tea.NewProgram(viewer.New(w.Events()), tea.WithAltScreen())
			_, err := p.Run()
			w.Close()
			return err
		}

		stopOnSignal(func() { w.Close() })
		for ev := range w.Events() {
			fmt.Printf("%-20s %s\n", ev.Op, ev.Path)
		}
		return nil
	}

	return cmd
}

// runRawWatch streams native FSEvents records and prints them verbatim.
func runRawWatch(cmd *cobra.Command, handler *cli.ErrorHandler, paths []string, latency time.Duration, cfgFlags []string) error {
	logger := cli.GetLogger(cmd)

	names := cfgFlags
	if cmd.Flags().Changed("flag") {
		names, _ = cmd.Flags().GetStringSlice("flag")
	}
	flags, err := parseFlagNames(names)
	if err != nil {
		return handler.Handle(err)
	}

	s, handle, err := stream.Create(paths, stream.SinceNow, latency, flags)
	if err != nil {
		return handler.Handle(err)
	}
	stopOnSignal(func() { handle.Abort() })

	logger.WithField("paths", paths).Debug("raw stream started")
	for batch := range s.Batches() {
		for _, ev := range batch {
			fmt.Println(ev.String())
		}
	}
	return nil
}

// stopOnSignal runs stop once on the first SIGINT or SIGTERM.
func stopOnSignal(stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		signal.Stop(ch)
		stop()
	}()
}
