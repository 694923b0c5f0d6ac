package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vulnverified/bingo/internal/targets"
)

// Config holds the runtime configuration for a bingo run.
type Config struct {
	Match      string
	PathSuffix string
	// Concurrency caps in-flight targets. Zero or less launches every
	// target at once.
	Concurrency int
}

// Stages holds the injectable stage implementations.
type Stages struct {
	Fetcher  Fetcher
	Resolver HostResolver // optional
}

// ProgressReporter is called by the engine to report scan progress.
type ProgressReporter interface {
	Stage(num, total int, msg string)
	Detail(msg string)
	Warn(msg string)
	Begin(total int)
	Tick()
}

const totalStages = 2

// Contains is the match predicate: a case-sensitive substring test.
func Contains(body, match string) bool {
	return strings.Contains(body, match)
}

// Run normalizes lines into targets, fetches them concurrently and reports
// every response whose body contains cfg.Match. Per-target failures never
// abort the run.
func Run(ctx context.Context, cfg Config, lines []string, stages Stages, report Reporter, progress ProgressReporter) (*ScanResult, error) {
	if cfg.Match == "" {
		return nil, errors.New("match string is required")
	}
	if stages.Fetcher == nil {
		return nil, errors.New("no fetcher configured")
	}

	result := &ScanResult{StartedAt: time.Now()}

	// Stage 1: Normalization.
	progress.Stage(1, totalStages, fmt.Sprintf("Normalizing %d entries...", len(lines)))
	list, skipped := targets.Build(lines, cfg.PathSuffix)
	result.Summary.Entries = len(lines)
	result.Summary.Skipped = skipped
	progress.Detail(fmt.Sprintf("%d targets, %d blank lines skipped", len(list), skipped))

	// Stage 2: Fetch and match.
	progress.Stage(2, totalStages, fmt.Sprintf("Fetching %d targets...", len(list)))
	progress.Begin(len(list))
	s := &scan{
		match:    cfg.Match,
		stages:   stages,
		report:   report,
		progress: progress,
		result:   result,
	}

	var g errgroup.Group
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for _, t := range list {
		if ctx.Err() != nil {
			progress.Warn("Interrupted, remaining targets not fetched")
			break
		}
		t := t
		g.Go(func() error {
			s.process(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	result.CompletedAt = time.Now()
	result.DurationSecs = result.CompletedAt.Sub(result.StartedAt).Seconds()
	progress.Detail(fmt.Sprintf("%d requests, %d matches, %d failed", result.Summary.Requests, result.Summary.Matches, result.Summary.Failures))

	return result, nil
}

// scan holds the state shared by all target goroutines of one run.
type scan struct {
	match    string
	stages   Stages
	report   Reporter
	progress ProgressReporter

	mu     sync.Mutex
	result *ScanResult
}

func (s *scan) process(ctx context.Context, t targets.Target) {
	defer s.progress.Tick()
	defer func() {
		if r := recover(); r != nil {
			s.fault(t.URL, fmt.Errorf("panic: %v", r))
		}
	}()

	if s.stages.Resolver != nil {
		host, err := hostOf(t.URL)
		if err != nil {
			s.fault(t.URL, err)
			return
		}
		if err := s.stages.Resolver.Resolve(ctx, host); err != nil {
			s.progress.Detail(fmt.Sprintf("line %d: %s: %s", t.Line, host, err))
			s.mu.Lock()
			s.result.Summary.Unresolved++
			s.mu.Unlock()
			return
		}
	}

	s.mu.Lock()
	s.result.Summary.Requests++
	s.mu.Unlock()

	outcome, err := s.stages.Fetcher.Fetch(ctx, t.URL)
	if err != nil {
		s.fault(t.URL, err)
		return
	}
	if !outcome.OK() {
		s.progress.Detail(fmt.Sprintf("line %d: %s: %v", t.Line, t.URL, outcome.Err))
		s.mu.Lock()
		s.result.Summary.Failures++
		s.mu.Unlock()
		return
	}
	if !Contains(outcome.Body, s.match) {
		return
	}

	m := Match{URL: t.URL, StatusCode: outcome.StatusCode, Title: outcome.Title}
	s.mu.Lock()
	s.result.Matches = append(s.result.Matches, m)
	s.result.Summary.Matches++
	s.mu.Unlock()
	s.report.Match(m)
}

func (s *scan) fault(target string, err error) {
	s.mu.Lock()
	s.result.Summary.Faults++
	s.mu.Unlock()
	s.report.Fault(target, err)
}

func hostOf(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no host in %q", target)
	}
	return host, nil
}
