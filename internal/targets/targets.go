// Package targets loads subdomain lists and turns raw entries into request URLs.
package targets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineSize = 1024 * 1024 // 1MB per input line

// Target is a normalized request target derived from one input line.
type Target struct {
	Line int // 1-based line number in the input
	URL  string
}

// Load reads the file at path and returns its lines in order, blanks included.
// A trailing newline does not produce an extra empty line.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subdomains file: %w", err)
	}
	defer f.Close()

	return ReadLines(f)
}

// ReadLines splits r into lines ending in \n, \r\n or a lone \r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subdomains: %w", err)
	}
	return lines, nil
}

// scanLines is bufio.ScanLines that also treats a lone \r as a line end.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// \r: need one more byte to tell CRLF from a lone CR.
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Normalize turns a raw entry into a request URL.
// Blank entries return ok=false. Entries without an http:// or https://
// prefix get https://. The suffix is appended verbatim, so it must carry
// its own leading slash.
func Normalize(raw, suffix string) (string, bool) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return "", false
	}

	url := entry
	if !strings.HasPrefix(entry, "https://") && !strings.HasPrefix(entry, "http://") {
		url = "https://" + entry
	}
	if suffix != "" {
		url += suffix
	}
	return url, true
}

// Build normalizes every line and returns the targets in input order along
// with the number of blank lines skipped.
func Build(lines []string, suffix string) ([]Target, int) {
	var (
		out     []Target
		skipped int
	)
	for i, line := range lines {
		url, ok := Normalize(line, suffix)
		if !ok {
			skipped++
			continue
		}
		out = append(out, Target{Line: i + 1, URL: url})
	}
	return out, skipped
}
