package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by a [Prompter] that has no terminal to read
// from.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Prompter reads a secret without echoing it.
type Prompter interface {
	ReadSecret(prompt string) (string, error)
}

// TerminalPrompter prompts on out and reads from in when in is a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

func NewTerminalPrompter() TerminalPrompter {
	return TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p TerminalPrompter) ReadSecret(prompt string) (string, error) {
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotTerminal
	}
	fmt.Fprint(p.Out, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
