// Package output handles all bingo CLI output formatting.
package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress writes scan progress updates to stderr.
type Progress struct {
	w       io.Writer
	verbose bool
	silent  bool
	barOn   bool
	mu      sync.Mutex
	start   time.Time
	bar     *progressbar.ProgressBar
}

// NewProgress creates a progress reporter. With showBar set, Begin starts a
// progress bar counting finished targets.
func NewProgress(w io.Writer, verbose, silent, showBar bool) *Progress {
	return &Progress{
		w:       w,
		verbose: verbose,
		silent:  silent,
		barOn:   showBar,
		start:   time.Now(),
	}
}

// Stage prints a stage header like "[1/2] Normalizing 10 entries..."
func (p *Progress) Stage(num, total int, msg string) {
	if p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%d/%d] %s\n", num, total, msg)
}

// Detail prints verbose detail (only in verbose mode).
func (p *Progress) Detail(msg string) {
	if !p.verbose || p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "  %s\n", msg)
}

// Warn prints a warning to stderr.
func (p *Progress) Warn(msg string) {
	if p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "  ! %s\n", msg)
}

// Begin starts the progress bar for total targets.
func (p *Progress) Begin(total int) {
	if p.silent || !p.barOn || total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

// Tick advances the progress bar by one finished target.
func (p *Progress) Tick() {
	p.mu.Lock()
	bar := p.bar
	p.mu.Unlock()
	if bar != nil {
		_ = bar.Add(1)
	}
}

// Complete finishes the bar and prints the final duration.
func (p *Progress) Complete() {
	if p.silent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
	elapsed := time.Since(p.start)
	fmt.Fprintf(p.w, "\nCompleted in %.1fs\n", elapsed.Seconds())
}
