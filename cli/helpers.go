package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fahmaliyi/otpvault/vault"
	"golang.org/x/term"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("password must not be empty")
)

// DefaultDir is ~/.otpvault, created on demand.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".otpvault")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	return dir, nil
}

// Prompter collects input from the user.
type Prompter interface {
	// Password reads a line without echo.
	Password(prompt string) ([]byte, error)
	// Line reads a line; an empty answer yields def.
	Line(prompt, def string) (string, error)
}

type termPrompter struct {
	fd  int
	in  *bufio.Reader
	out io.Writer
}

func NewTermPrompter(in *os.File, out io.Writer) Prompter {
	return &termPrompter{fd: int(in.Fd()), in: bufio.NewReader(in), out: out}
}

func (p *termPrompter) Password(prompt string) ([]byte, error) {
	fmt.Fprint(p.out, prompt+": ")
	if !term.IsTerminal(p.fd) {
		return p.readSecret()
	}
	pw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	return pw, err
}

func (p *termPrompter) Line(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *termPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a line as bytes so the caller can wipe it. bufio keeps
// its own copy in the reader buffer until it is overwritten.
func (p *termPrompter) readSecret() ([]byte, error) {
	line, err := p.in.ReadBytes('\n')
	defer vault.Zero(line)
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return append([]byte(nil), bytes.TrimSpace(line)...), nil
}

// readNewPassword asks twice and insists on a non-empty match.
func readNewPassword(p Prompter) ([]byte, error) {
	pw, err := p.Password("New database password")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(pw)) == 0 {
		return nil, errEmptyPassword
	}
	again, err := p.Password("Confirm password")
	if err != nil {
		vault.Zero(pw)
		return nil, err
	}
	defer vault.Zero(again)
	if !bytes.Equal(pw, again) {
		vault.Zero(pw)
		return nil, errPasswordMismatch
	}
	return pw, nil
}

func confirm(p Prompter, prompt string, def bool) (bool, error) {
	d := "y/N"
	if def {
		d = "Y/n"
	}
	answer, err := p.Line(prompt, d)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}
