package cli

import (
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/memvfs/memvfs/ports"
)

// terminal writes results to out and problems to errOut.
type terminal struct {
	out    io.Writer
	errOut io.Writer
}

var _ ports.Interactor = (*terminal)(nil)

func newTerminal(out, errOut io.Writer) *terminal {
	return &terminal{out: out, errOut: errOut}
}

func (t *terminal) Prompt(prompt string) {
	fmt.Fprint(t.out, prompt)
}

func (t *terminal) Output(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *terminal) Warning(message string) {
	fmt.Fprintf(t.errOut, "Warning: %s\n", message)
}

func (t *terminal) Error(message string, err error) {
	switch {
	case message != "" && err != nil:
		fmt.Fprintf(t.errOut, "Error: %s: %v\n", message, err)
	case err != nil:
		fmt.Fprintf(t.errOut, "Error: %v\n", err)
	default:
		fmt.Fprintf(t.errOut, "Error: %s\n", message)
	}
}
