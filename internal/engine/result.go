// Package engine orchestrates a bingo scan.
package engine

import (
	"context"
	"time"
)

// Outcome is the result of fetching one target. Either the response
// fields are set, or Err explains why there is no result.
type Outcome struct {
	URL        string
	StatusCode int
	Body       string
	Title      string
	Err        error
}

// OK reports whether the fetch produced a response.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Failed builds an Outcome for a request that produced no response.
func Failed(url string, err error) Outcome {
	return Outcome{URL: url, Err: err}
}

// Match is a target whose response body contained the match string.
type Match struct {
	URL        string
	StatusCode int
	Title      string
}

// ScanResult is the top-level output of a bingo run.
type ScanResult struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	DurationSecs float64
	Matches      []Match // completion order
	Summary      Summary
}

// Summary provides aggregate counts for the scan.
type Summary struct {
	Entries    int // lines read from the input
	Skipped    int // blank lines
	Requests   int // fetches issued
	Matches    int
	Failures   int // fetches with no result
	Unresolved int // targets dropped by DNS pre-resolution
	Faults     int // unexpected per-target errors
}

// Fetcher performs one GET for a target URL.
// Network failures are reported through Outcome.Err; a non-nil error means
// the request could not be made at all.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Outcome, error)
}

// HostResolver checks that a hostname resolves before it is fetched.
type HostResolver interface {
	Resolve(ctx context.Context, host string) error
}

// Reporter receives per-target results as they complete.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Match(m Match)
	Fault(url string, err error)
}
