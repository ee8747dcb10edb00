package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks questions on a terminal. The zero value is not usable; use
// NewPrompter or the package-level helpers, which talk to stdin/stderr.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // terminal fd for hidden input, -1 if none
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

var stdPrompter = NewPrompter(os.Stdin, os.Stderr)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return isYes(p.line())
}

// ConfirmDanger is Confirm styled for destructive actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return isYes(p.line())
}

// Input asks for a line of text. An empty answer yields def.
func (p *Prompter) Input(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s %s: ", StyleInfo.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(p.out, "%s: ", StyleInfo.Render(prompt))
	}
	if s := strings.TrimSpace(p.line()); s != "" {
		return s
	}
	return def
}

// Secret asks for input without echo when attached to a terminal.
func (p *Prompter) Secret(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", StyleInfo.Render(prompt))
	if p.fd >= 0 {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	s, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

func (p *Prompter) line() string {
	s, _ := p.in.ReadString('\n')
	return s
}

func isYes(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "y" || s == "yes"
}

// Confirm asks a yes/no question on the terminal.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger asks a yes/no question styled for destructive actions.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

// PromptInput asks for a line of text on the terminal.
func PromptInput(prompt, def string) string { return stdPrompter.Input(prompt, def) }

// PromptSecret asks for hidden input on the terminal.
func PromptSecret(prompt string) (string, error) { return stdPrompter.Secret(prompt) }
