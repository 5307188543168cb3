// Package input contains readers used to get REPL input lines from stdin
// or any other source.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DirectLineReader reads lines from any generic input stream directly. It
// can be used generically with any io.Reader but does not sanitize the
// input of control and escape sequences.
//
// DirectLineReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectLineReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveLineReader reads lines from stdin using a Go implementation
// of the GNU Readline library. This keeps input clear of all typing and
// editing escape sequences and enables the use of line history. This
// should in general probably only be used when directly connecting to a
// TTY for input.
//
// InteractiveLineReader should not be used directly; instead, create one
// with [NewInteractiveReader].
type InteractiveLineReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectLineReader and initializes a
// buffered reader on the provided reader. The returned reader must have
// Close() called on it before disposal.
func NewDirectReader(r io.Reader) *DirectLineReader {
	return &DirectLineReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveLineReader and
// initializes readline. The returned reader must have Close() called on
// it before disposal to properly teardown readline resources.
func NewInteractiveReader(prompt string) (*InteractiveLineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveLineReader{
		rl:     rl,
		prompt: prompt,
	}, nil
}

// Close cleans up resources associated with the DirectLineReader.
func (dlr *DirectLineReader) Close() error {
	return nil
}

// Close cleans up readline resources associated with the
// InteractiveLineReader.
func (ilr *InteractiveLineReader) Close() error {
	return ilr.rl.Close()
}

// ReadLine reads the next line from the underlying reader. The returned
// string will only be empty if there is an error reading input,
// otherwise this function blocks until a line containing non-space
// characters is read.
//
// If at end of input, the returned string will be empty and error will
// be io.EOF. If any other error occurs, the returned string will be
// empty and error will be that error.
func (dlr *DirectLineReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dlr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && dlr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadLine reads the next line from stdin via readline. The returned
// string will only be empty if there is an error, otherwise this
// function blocks until a line consisting of more than empty or
// whitespace-only input is read.
//
// If at end of input, the returned string will be empty and error will
// be io.EOF. If any other error occurs, the returned string will be
// empty and error will be that error.
func (ilr *InteractiveLineReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ilr.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && ilr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// AllowBlank sets whether blank input lines are returned as-is rather
// than skipped. By default they are skipped.
func (dlr *DirectLineReader) AllowBlank(allow bool) {
	dlr.blanksAllowed = allow
}

// AllowBlank sets whether blank input lines are returned as-is rather
// than skipped. By default they are skipped.
func (ilr *InteractiveLineReader) AllowBlank(allow bool) {
	ilr.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ilr *InteractiveLineReader) SetPrompt(p string) {
	ilr.rl.SetPrompt(p)
	ilr.prompt = p
}

// GetPrompt gets the current prompt.
func (ilr *InteractiveLineReader) GetPrompt() string {
	return ilr.prompt
}
