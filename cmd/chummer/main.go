// Package main provides the chummer CLI: settings migration, custom data
// directory management, and character document loading.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "chummer:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// cliError carries the exit code for a failed command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func (e *cliError) Unwrap() error { return e.err }

// userError reports bad input: arguments, missing files, invalid documents.
func userError(format string, args ...any) error {
	return &cliError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError reports an environment failure: unreadable or unwritable stores.
func sysError(format string, args ...any) error {
	return &cliError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps err to a process exit code. Errors raised by cobra itself
// (unknown flags, wrong argument counts) are user errors.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
