// Package prompt reads answers to interactive questions from a terminal or pipe.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter writes a question and reads one line back per call.
// A single Prompter must be used for all questions so buffered input
// is not lost between reads.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading from r and writing questions to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Ask prints question and returns the trimmed answer.
// End of input counts as an empty answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) {
		// Keep the prompt from sharing a line with later output.
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}
