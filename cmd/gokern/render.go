package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	dirStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	sizeStyle = lipgloss.NewStyle().
			Faint(true)
)

func renderTitle(s string) string {
	return titleStyle.Render(s)
}

func renderDirEntry(name string) string {
	return dirStyle.Render(name)
}

func renderFileEntry(name, size string) string {
	return fmt.Sprintf("%s  %s", name, sizeStyle.Render(size))
}
