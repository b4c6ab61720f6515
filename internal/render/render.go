// Package render formats command output as plain text, terminal tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Row is one table row keyed by header; missing cells render as "".
type Row map[string]string

// Renderer writes a header row followed by data rows.
type Renderer interface {
	RenderRows(w io.Writer, headers []string, rows []Row) error
}

// PlainRenderer writes pipe-delimited lines, suitable for pipes and logs.
type PlainRenderer struct{}

// RenderRows writes "a | b | c" for the header and each row.
func (PlainRenderer) RenderRows(w io.Writer, headers []string, rows []Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(headers, " | ")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(cells(headers, row), " | ")); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	return nil
}

// RichRenderer draws a bordered table with a bold header.
type RichRenderer struct{}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// RenderRows renders the rows as a lipgloss table.
func (RichRenderer) RenderRows(w io.Writer, headers []string, rows []Row) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)

	for _, row := range rows {
		t.Row(cells(headers, row)...)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// Select returns the rich renderer when rich is true, the plain one otherwise.
func Select(rich bool) Renderer {
	if rich {
		return RichRenderer{}
	}
	return PlainRenderer{}
}

// DetectRich reports whether f is an interactive terminal and colour output
// has not been disabled through NO_COLOR.
func DetectRich(f *os.File, getenv func(string) string) bool {
	if f == nil {
		return false
	}
	if getenv != nil && getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriteJSON writes v as two-space indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

func cells(headers []string, row Row) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = row[h]
	}
	return out
}
