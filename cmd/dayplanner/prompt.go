package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dayplanner/internal/auth"

	"golang.org/x/term"
)

// promptNewPassword asks for a password twice. Input from a terminal is
// not echoed; piped input is read line by line.
func promptNewPassword(in io.Reader, out io.Writer) (string, error) {
	read := lineReader(in)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		read = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}

	fmt.Fprint(out, "Password: ")
	first, err := read()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(out, "Password (again): ")
	second, err := read()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if first == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	if first != second {
		return "", auth.ErrPasswordMismatch
	}
	return first, nil
}

func lineReader(in io.Reader) func() (string, error) {
	scanner := bufio.NewScanner(in)
	return func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
}
