package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vulnverified/bingo/internal/engine"
)

var matchURLStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))

// Reporter implements engine.Reporter, writing one line per match or
// per-target fault. Lines from concurrent targets never interleave.
type Reporter struct {
	w       io.Writer
	noColor bool
	mu      sync.Mutex
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	return &Reporter{w: w, noColor: noColor}
}

// Match prints "Input matched in <url>".
func (r *Reporter) Match(m engine.Match) {
	url := m.URL
	if !r.noColor {
		url = matchURLStyle.Render(url)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Input matched in %s\n", url)
}

// Fault prints a diagnostic for an unexpected per-target error.
func (r *Reporter) Fault(url string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Error occurred while processing %s: %v\n", url, err)
}
