// Package remote runs commands on the NAS over SSH and parses directory
// listings out of their output.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Runner executes a shell command on the remote host and returns its raw
// standard output. Implementations block until the remote process exits.
type Runner interface {
	Execute(ctx context.Context, command string) (string, error)
}

// CommandError reports a remote command that exited nonzero, together with
// whatever the remote side wrote to stderr.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("remote command failed: %s: %s", e.Command, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs remote commands through the system ssh binary, leaving
// authentication entirely to the user's ssh configuration.
type ExecRunner struct {
	Host string
}

// NewExecRunner returns a runner for the given host (an ssh config alias
// or user@host).
func NewExecRunner(host string) *ExecRunner {
	return &ExecRunner{Host: host}
}

var runSSHFn = runSSH

// Execute runs command on the remote host. The command string is passed to
// ssh as a single argv element; no local shell is involved.
func (r *ExecRunner) Execute(ctx context.Context, command string) (string, error) {
	return runSSHFn(ctx, r.Host, command)
}

func runSSH(ctx context.Context, host, command string) (string, error) {
	log.Printf("ssh %s %s", host, command)

	cmd := exec.CommandContext(ctx, "ssh", host, command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Command: command, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// shellQuote makes s safe to interpolate into the remote shell command
// line, so entry names with spaces or metacharacters are not reinterpreted
// on the remote side. Plain names pass through unquoted.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~%!{}`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
