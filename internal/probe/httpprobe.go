// Package probe implements the network stages of a bingo scan.
package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/vulnverified/bingo/internal/engine"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)"

const (
	DefaultTimeout = 5 * time.Minute
	maxRedirects   = 10
)

var titleRegex = regexp.MustCompile(`(?i)<title[^>]*>\s*([^<]+)\s*</title>`)

// Options configures a Fetcher.
type Options struct {
	// Timeout bounds each request including the body read. Zero disables it.
	Timeout time.Duration
	// InsecureSkipVerify disables server certificate checks so hosts with
	// self-signed or mismatched certificates can still be matched.
	InsecureSkipVerify bool
	UserAgent          string
	// MaxBody caps the bytes read per response. Zero reads everything,
	// so a match anywhere in the body is found.
	MaxBody int64
}

// DefaultOptions returns the options used by the CLI unless overridden.
func DefaultOptions() Options {
	return Options{
		Timeout:            DefaultTimeout,
		InsecureSkipVerify: true,
		UserAgent:          DefaultUserAgent,
	}
}

// Fetcher implements engine.Fetcher over one shared HTTP client.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher builds a Fetcher. The client is shared by every request of a run.
func NewFetcher(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBody,
	}
}

// Close releases idle connections held by the shared client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// Fetch performs a single GET. Connection, TLS and read failures come back
// as a failed Outcome with a nil error. Only a request that cannot be built,
// such as a malformed URL, returns an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (engine.Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return engine.Outcome{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Connection", "close")
	req.Close = true

	resp, err := f.client.Do(req)
	if err != nil {
		return engine.Failed(url, err), nil
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if f.maxBody > 0 {
		r = io.LimitReader(r, f.maxBody)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return engine.Failed(url, fmt.Errorf("read body: %w", err)), nil
	}

	body := decodeBody(raw, resp.Header.Get("Content-Type"))

	outcome := engine.Outcome{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	if matches := titleRegex.FindStringSubmatch(body); len(matches) > 1 {
		outcome.Title = strings.TrimSpace(matches[1])
	}
	return outcome, nil
}

// decodeBody converts the response to UTF-8 using the declared or sniffed
// charset. Undecodable bodies are returned as-is.
func decodeBody(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
