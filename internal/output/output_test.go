package output

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/vulnverified/bingo/internal/engine"
)

func TestReporter_MatchLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.Match(engine.Match{URL: "https://a.example.com", StatusCode: 200})

	want := "Input matched in https://a.example.com\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestReporter_FaultLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.Fault("https://bad host", errors.New("invalid character"))

	want := "Error occurred while processing https://bad host: invalid character\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestReporter_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Match(engine.Match{URL: fmt.Sprintf("https://h%d.example.com", i)})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "Input matched in https://h") {
			t.Errorf("malformed line %q", line)
		}
	}
}

func TestReporter_ColorKeepsURL(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.Match(engine.Match{URL: "https://a.example.com"})

	if !strings.Contains(buf.String(), "https://a.example.com") {
		t.Errorf("output %q lost the URL", buf.String())
	}
}

func TestWriteSummary_NoColor(t *testing.T) {
	result := &engine.ScanResult{
		Matches: []engine.Match{
			{URL: "https://a.example.com/admin", StatusCode: 200, Title: "Admin"},
		},
		Summary:      engine.Summary{Entries: 4, Skipped: 2, Requests: 2, Failures: 1, Matches: 1, Faults: 1},
		DurationSecs: 2.5,
	}

	var buf bytes.Buffer
	WriteSummary(&buf, result, true)
	out := buf.String()

	for _, want := range []string{
		"Entries: 4 read, 2 blank",
		"Requests: 2 sent, 1 failed",
		"Errors: 1",
		"Matches: 1",
		"Duration: 2.5s",
		"https://a.example.com/admin",
		"Admin",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unresolved") {
		t.Errorf("summary should omit zero unresolved count:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("no-color summary contains escape codes:\n%s", out)
	}
}

func TestWriteSummary_NoMatchesNoTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, &engine.ScanResult{Summary: engine.Summary{Entries: 1, Requests: 1}}, true)

	if strings.Contains(buf.String(), "URL") {
		t.Errorf("table printed without matches:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long page title", 10); got != "a very ..." {
		t.Errorf("truncate long = %q, want %q", got, "a very ...")
	}
}

func TestTruncate_Multibyte(t *testing.T) {
	title := strings.Repeat("日本語", 20)

	got := truncate(title, 40)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Errorf("truncate rune count = %d, want 40", n)
	}
	if want := string([]rune(title)[:37]) + "..."; got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
	if got := truncate("café", 4); got != "café" {
		t.Errorf("truncate fitting title = %q, want %q", got, "café")
	}
}

func TestProgress_SilentWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, true, true, true)

	p.Stage(1, 2, "Normalizing...")
	p.Detail("detail")
	p.Warn("warn")
	p.Begin(3)
	p.Tick()
	p.Complete()

	if buf.Len() != 0 {
		t.Errorf("silent progress wrote %q", buf.String())
	}
}

func TestProgress_DetailOnlyWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false, false, false)

	p.Stage(2, 2, "Fetching 3 targets...")
	p.Detail("hidden")
	p.Warn("shown")

	out := buf.String()
	if !strings.Contains(out, "[2/2] Fetching 3 targets...") {
		t.Errorf("missing stage line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("detail printed without verbose: %q", out)
	}
	if !strings.Contains(out, "! shown") {
		t.Errorf("missing warning: %q", out)
	}
}

func TestProgress_BarTicks(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, false, false, true)

	p.Begin(2)
	p.Tick()
	p.Tick()
	p.Complete()

	if !strings.Contains(buf.String(), "Completed in") {
		t.Errorf("missing completion line: %q", buf.String())
	}
}
