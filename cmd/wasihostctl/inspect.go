package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	inspectTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	inspectSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4"))

	inspectPathStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#98FB98"))

	inspectRightsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#87CEEB"))

	inspectHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	rows     []descriptorRow
	selected int
}

func (m *inspectModel) Init() tea.Cmd { return nil }

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder
	b.WriteString(inspectTitleStyle.Render("wasihost descriptors"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("no descriptors bound\n")
	}
	for i, r := range m.rows {
		line := fmt.Sprintf("fd %-3d %-20s %-14s %s", r.FD, r.GuestPath, r.Filetype, inspectRightsStyle.Render(r.RightsBase))
		if i == m.selected {
			b.WriteString(inspectSelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + inspectPathStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(inspectHelpStyle.Render("up/down select • q quit"))
	return b.String()
}

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <config.json>",
		Short: "interactively browse a host's live descriptor table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := buildHost(args[0])
			if err != nil {
				return err
			}
			defer host.Close()

			rows := listDescriptors(host.FSContext())

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return printPlain(cmd, rows)
			}

			p := tea.NewProgram(&inspectModel{rows: rows})
			_, err = p.Run()
			return err
		},
	}
}

func printPlain(cmd *cobra.Command, rows []descriptorRow) error {
	for _, r := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "fd %d %s %s %s\n", r.FD, r.GuestPath, r.Filetype, r.RightsBase)
	}
	return nil
}
