package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vulnverified/bingo/internal/engine"
	"github.com/vulnverified/bingo/internal/output"
	"github.com/vulnverified/bingo/internal/probe"
	"github.com/vulnverified/bingo/internal/prompt"
	"github.com/vulnverified/bingo/internal/targets"
)

// Set via ldflags at build time.
var version = "dev"

const (
	matchQuestion = "Provide your input to match from the response: "
	pathQuestion  = "Provide any path to add to subdomains (press Enter to skip): "
	dnsTimeout    = 5 * time.Second
)

// exitError ends the run with a message on stdout and a specific exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the root command and maps its outcome to an exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	output.Version = version

	rootCmd := newRootCmd(stdin, stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(stdout, ee.msg)
		}
		return ee.code
	}

	fmt.Fprintf(stderr, "Error: %s\n", err)
	fmt.Fprintln(stderr, "Run 'bingo --help' for usage.")
	return 1
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		match       string
		pathSuffix  string
		concurrency int
		timeout     time.Duration
		insecure    bool
		maxBody     int64
		resolve     bool
		resolver    string
		showBar     bool
		summary     bool
		noColor     bool
		verbose     bool
	)

	defaults := probe.DefaultOptions()

	rootCmd := &cobra.Command{
		Use:           "bingo <subdomains_file>",
		Short:         "Find subdomains whose responses contain a string",
		Long:          "Fetch every subdomain in a list concurrently and report the URLs whose response body contains the given input.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			lines, err := targets.Load(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return &exitError{code: 1, msg: fmt.Sprintf("File '%s' not found.", path)}
				}
				return err
			}
			if len(lines) == 0 {
				return &exitError{code: 1, msg: "No subdomains found in the input file."}
			}

			// Flags pre-answer the prompts.
			ask := prompt.New(stdin, stderr)
			if !cmd.Flags().Changed("match") {
				if match, err = ask.Ask(matchQuestion); err != nil {
					return err
				}
			}
			match = strings.TrimSpace(match)
			if match == "" {
				return &exitError{code: 0, msg: "Input not provided. Terminating the process."}
			}

			if !cmd.Flags().Changed("path") {
				if pathSuffix, err = ask.Ask(pathQuestion); err != nil {
					return err
				}
			}
			pathSuffix = strings.TrimSpace(pathSuffix)

			if concurrency < 0 {
				return fmt.Errorf("invalid --concurrency %d: must be 0 (unbounded) or positive", concurrency)
			}
			if maxBody < 0 {
				return fmt.Errorf("invalid --max-body %d: must be 0 (unlimited) or positive", maxBody)
			}

			// Set up context with signal handling for clean Ctrl+C.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(stderr, "\nInterrupted, cleaning up...")
					cancel()
				case <-ctx.Done():
				}
			}()

			// Wire up stages.
			opts := probe.DefaultOptions()
			opts.Timeout = timeout
			opts.InsecureSkipVerify = insecure
			opts.MaxBody = maxBody
			fetcher := probe.NewFetcher(opts)
			defer fetcher.Close()

			stages := engine.Stages{Fetcher: fetcher}
			if resolve {
				stages.Resolver = probe.NewDNSResolver(resolver, dnsTimeout)
			}

			silent := !verbose && !showBar
			progress := output.NewProgress(stderr, verbose, silent, showBar)
			if verbose {
				output.WriteHeader(stderr, noColor)
			}

			cfg := engine.Config{
				Match:       match,
				PathSuffix:  pathSuffix,
				Concurrency: concurrency,
			}

			result, err := engine.Run(ctx, cfg, lines, stages, output.NewReporter(stdout, noColor), progress)
			if err != nil {
				return err
			}
			progress.Complete()

			if summary {
				output.WriteSummary(stderr, result, noColor)
			}
			return nil
		},
	}

	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().StringVar(&match, "match", "", "String to look for in response bodies (skips the prompt)")
	rootCmd.Flags().StringVar(&pathSuffix, "path", "", "Path appended verbatim to every subdomain (skips the prompt)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Max targets in flight (0 = all at once)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", defaults.Timeout, "Per-request timeout (0 = none)")
	rootCmd.Flags().BoolVar(&insecure, "insecure", defaults.InsecureSkipVerify, "Skip TLS certificate verification")
	rootCmd.Flags().Int64Var(&maxBody, "max-body", defaults.MaxBody, "Max response bytes read per target (0 = unlimited)")
	rootCmd.Flags().BoolVar(&resolve, "resolve", false, "Skip targets whose host does not resolve in DNS")
	rootCmd.Flags().StringVar(&resolver, "resolver", "", "Nameserver for --resolve (default: system resolver)")
	rootCmd.Flags().BoolVar(&showBar, "progress", false, "Show a progress bar on stderr")
	rootCmd.Flags().BoolVar(&summary, "summary", false, "Print a summary table of matches to stderr")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose progress on stderr")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("bingo {{.Version}}\n")

	return rootCmd
}
