package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readLine prints prompt and reads one line from stdin without the newline.
func readLine(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := app.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret is readLine without echo when stdin is a terminal.
func readSecret(out io.Writer, prompt string) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return readLine(out, prompt)
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(out io.Writer, question string) (bool, error) {
	answer, err := readLine(out, question+" [y/N] ")
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
