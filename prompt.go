package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/codetester/codetester-go/internal/config"
	"github.com/codetester/codetester-go/internal/progress"
	"github.com/codetester/codetester-go/internal/tester"
)

// Prompter reads answers from the user. Every read pauses the spinner so
// the status line and the prompt never share the terminal line.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	spinner *progress.Spinner
	fg      *foreground

	// readSecret reads without echo; nil when input is not a terminal.
	readSecret func() ([]byte, error)
	// saveTerminal captures the terminal mode and returns a func that puts
	// it back; nil when input is not a terminal.
	saveTerminal func() func()
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
// Reads are registered with fg so a signal can abandon them.
func NewPrompter(in io.Reader, out io.Writer, spinner *progress.Spinner, fg *foreground) *Prompter {
	p := &Prompter{
		in:      bufio.NewReader(in),
		out:     out,
		spinner: spinner,
		fg:      fg,
	}

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
		p.saveTerminal = func() func() {
			state, err := term.GetState(fd)
			if err != nil {
				return nil
			}

			return func() { _ = term.Restore(fd, state) }
		}
	}

	return p
}

// ReadLine shows prompt and returns one line without its line ending. A
// final line without newline is returned as is; io.EOF means no input was
// left at all.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	var line string

	err := p.spinner.Paused(func() error {
		fmt.Fprint(p.out, prompt)

		p.fg.begin(nil)
		s, err := p.in.ReadString('\n')
		p.fg.end()

		if err != nil && (!errors.Is(err, io.EOF) || s == "") {
			return err
		}

		line = strings.TrimRight(s, "\r\n")

		return nil
	})

	return line, err
}

// ReadSecret is ReadLine without echo when input is a terminal.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	if p.readSecret == nil {
		return p.ReadLine(prompt)
	}

	var secret string

	err := p.spinner.Paused(func() error {
		fmt.Fprint(p.out, prompt)

		var restore func()
		if p.saveTerminal != nil {
			restore = p.saveTerminal()
		}

		p.fg.begin(restore)
		b, err := p.readSecret()
		p.fg.end()

		fmt.Fprintln(p.out)

		if err != nil {
			return err
		}

		secret = string(b)

		return nil
	})

	return secret, err
}

// required asks until the answer is non-blank.
func (p *Prompter) required(read func(string) (string, error), prompt, what string) (string, error) {
	for {
		answer, err := read(prompt)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", what, err)
		}

		if answer = strings.TrimSpace(answer); answer != "" {
			return answer, nil
		}
	}
}

// credentialPrompt is a tester.CredentialSource that asks for whatever the
// configuration left empty. Answers are kept, so the user is asked at most
// once per process.
type credentialPrompt struct {
	prompter *Prompter
	creds    tester.Credentials
}

func newCredentialPrompt(p *Prompter, account config.AccountConfig) *credentialPrompt {
	return &credentialPrompt{
		prompter: p,
		creds:    tester.Credentials{Username: account.Username, Password: account.Password},
	}
}

// Credentials implements tester.CredentialSource.
func (c *credentialPrompt) Credentials(_ context.Context) (tester.Credentials, error) {
	if c.creds.Username == "" {
		u, err := c.prompter.required(c.prompter.ReadLine, "Username: ", "username")
		if err != nil {
			return tester.Credentials{}, err
		}

		c.creds.Username = u
	}

	if c.creds.Password == "" {
		pw, err := c.prompter.required(c.prompter.ReadSecret, "Password: ", "password")
		if err != nil {
			return tester.Credentials{}, err
		}

		c.creds.Password = pw
	}

	return c.creds, nil
}

// promptSource returns source, asking for it when empty.
func promptSource(p *Prompter, source string) (string, error) {
	if source != "" {
		return source, nil
	}

	return p.required(p.ReadLine, "Source folder: ", "source folder")
}

// promptCategory lists categories and asks until one of their ids is
// entered.
func promptCategory(p *Prompter, out io.Writer, categories []tester.Category) (int, error) {
	if len(categories) == 0 {
		return 0, errors.New("the code tester has no check categories")
	}

	printCategories(out, categories)

	known := make(map[int]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	for {
		answer, err := p.required(p.ReadLine, "Category id: ", "category id")
		if err != nil {
			return 0, err
		}

		id, err := strconv.Atoi(answer)
		if err == nil && known[id] {
			return id, nil
		}

		color.New(color.FgRed).Fprintf(out, "Unknown category %q. Enter one of the ids listed above.\n", answer)
	}
}
