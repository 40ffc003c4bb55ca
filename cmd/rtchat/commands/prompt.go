package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdin is shared across prompts; a per-call reader would swallow buffered lines.
var stdin = bufio.NewReader(os.Stdin)

// readSecret prompts on the terminal without echo, or reads one line from
// stdin when it is not a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt+": ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolvePassphrase returns -p, or prompts for it on a terminal.
func resolvePassphrase() (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("passphrase required (-p)")
	}
	return readSecret("Passphrase")
}
