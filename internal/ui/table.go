package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	if ColorsEnabled() {
		s.Header = s.Header.
			BorderForeground(lipgloss.Color(string(ColorMuted))).
			Foreground(lipgloss.Color(string(ColorPrimary)))
		s.Cell = s.Cell.
			Foreground(lipgloss.Color(string(ColorPrimary)))
		s.Selected = s.Selected.
			Foreground(lipgloss.Color(string(ColorPrimary))).
			Background(lipgloss.Color(string(ColorMuted))).
			Bold(false)
	} else {
		s.Selected = s.Selected.Bold(false)
	}

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// SessionTableRow represents one stored session in the detailed listing.
type SessionTableRow struct {
	Name   string
	Target string // user@host:port
	Auth   string // "key" or "password"
	Tags   []string
}

// RenderSessionTable renders the detailed session listing.
func RenderSessionTable(rows []SessionTableRow) string {
	if len(rows) == 0 {
		return "No sessions configured"
	}

	nameWidth, targetWidth := 4, 6
	for _, r := range rows {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
		if len(r.Target) > targetWidth {
			targetWidth = len(r.Target)
		}
	}

	columns := []TableColumn{
		{Title: "NAME", Width: nameWidth + 2},
		{Title: "TARGET", Width: targetWidth + 2},
		{Title: "AUTH", Width: 10},
		{Title: "TAGS", Width: 24},
	}

	tableRows := make([][]string, len(rows))
	for i, r := range rows {
		tableRows[i] = []string{r.Name, r.Target, r.Auth, strings.Join(r.Tags, ", ")}
	}

	return RenderSimpleTable(columns, tableRows)
}
