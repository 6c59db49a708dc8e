// Package viewer is the live event display behind `fswatch watch --tui`.
// It tails a watcher's event channel into a scrollable viewport.
package viewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/fsevents/pkg/watch"
	"github.com/grovetools/fsevents/tui/theme"
)

const maxLines = 2000

// eventMsg carries one watcher event into the update loop.
type eventMsg watch.Event

// closedMsg signals that the event channel was closed.
type closedMsg struct{}

// Model is the TUI component for viewing filesystem events.
type Model struct {
	viewport viewport.Model
	events   <-chan watch.Event
	lines    []string
	count    int
	follow   bool
	ready    bool
	done     bool
	width    int
	height   int
}

// New creates a viewer reading from the given event channel.
func New(events <-chan watch.Event) Model {
	return Model{
		events: events,
		follow: true,
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// Init starts listening for events.
func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
	case eventMsg:
		m.count++
		m.lines = append(m.lines, formatEvent(watch.Event(msg)))
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		if m.ready {
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			if m.follow {
				m.viewport.GotoBottom()
			}
		}
		cmds = append(cmds, m.waitForEvent())
	case closedMsg:
		m.done = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow && m.ready {
				m.viewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the viewer with a title and status bar.
func (m Model) View() string {
	if !m.ready {
		return "Waiting for events..."
	}

	t := theme.DefaultTheme
	title := t.Title.Render("FSWATCH")

	status := fmt.Sprintf("%d events", m.count)
	if m.done {
		status += " (stream closed)"
	} else if m.follow {
		status += " • following"
	}
	status += " • q quit, f follow"

	return title + "\n" + m.viewport.View() + "\n" + t.Muted.Render(status)
}

// formatEvent renders one event line with the op colored by kind.
func formatEvent(ev watch.Event) string {
	t := theme.DefaultTheme

	var style lipgloss.Style
	switch {
	case ev.Op&watch.OpRemove != 0:
		style = t.Error
	case ev.Op&watch.OpCreate != 0:
		style = t.Success
	case ev.Op&watch.OpRename != 0:
		style = t.Warning
	default:
		style = t.Info
	}

	ts := time.Now().Format("15:04:05")
	line := fmt.Sprintf("%s %s %s", t.Muted.Render(ts), style.Render(ev.Op.String()), ev.Path)
	if ev.Flags != 0 {
		line += " " + t.Muted.Render("["+ev.Flags.String()+"]")
	}
	return line
}
