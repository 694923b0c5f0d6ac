package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vulnverified/bingo/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

var summaryHeaders = []string{"URL", "Status", "Title"}

// WriteHeader prints the bingo banner.
func WriteHeader(w io.Writer, noColor bool) {
	if noColor {
		fmt.Fprintf(w, "bingo %s\n\n", Version)
	} else {
		fmt.Fprintf(w, "\033[1mbingo %s\033[0m\n\n", Version)
	}
}

// WriteSummary prints post-scan counts and a table of matched URLs.
func WriteSummary(w io.Writer, result *engine.ScanResult, noColor bool) {
	s := result.Summary

	fmt.Fprintln(w)
	if noColor {
		fmt.Fprintf(w, "Entries: %d read, %d blank\n", s.Entries, s.Skipped)
		fmt.Fprintf(w, "Requests: %d sent, %d failed\n", s.Requests, s.Failures)
	} else {
		fmt.Fprintf(w, "\033[1mEntries:\033[0m %d read, %d blank\n", s.Entries, s.Skipped)
		fmt.Fprintf(w, "\033[1mRequests:\033[0m %d sent, %d failed\n", s.Requests, s.Failures)
	}
	if s.Unresolved > 0 {
		fmt.Fprintf(w, "Unresolved: %d\n", s.Unresolved)
	}
	if s.Faults > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Faults)
	}
	fmt.Fprintf(w, "Matches: %d\n", s.Matches)
	fmt.Fprintf(w, "Duration: %.1fs\n", result.DurationSecs)

	if len(result.Matches) == 0 {
		return
	}

	var rows [][]string
	for _, m := range result.Matches {
		rows = append(rows, []string{
			m.URL,
			strconv.Itoa(m.StatusCode),
			truncate(m.Title, 40),
		})
	}

	fmt.Fprintln(w)

	if noColor {
		writeSimpleTable(w, rows)
		return
	}

	t := table.New().
		Headers(summaryHeaders...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		})

	for _, row := range rows {
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
}

func writeSimpleTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(summaryHeaders))
	for i, h := range summaryHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow(w, summaryHeaders, widths)

	// Separator.
	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		writeRow(w, row, widths)
	}
}

func writeRow(w io.Writer, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[i], cell)
	}
	fmt.Fprintln(w)
}

// truncate shortens s to max runes, never splitting a multibyte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
