// Package transfer downloads a chosen remote path into the local
// destination directory through one of the configured strategies.
package transfer

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// Request is one download to perform. It is constructed once per
// completed navigation and consumed exactly once.
type Request struct {
	RemotePath string
	LocalDest  string
	Dir        bool
}

// Error reports a transfer command that exited nonzero.
type Error struct {
	Command []string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer failed: %s: %v", strings.Join(e.Command, " "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher invokes the external transfer tool chosen by configuration.
type Dispatcher struct {
	Host     string
	UseRsync bool
}

var execCommandFn = runCommand

// Download ensures the destination directory exists, then hands the
// request to rsync or scp. The external tool's progress output goes
// straight to the user's terminal; a nonzero exit is fatal and no cleanup
// of partial transfers is attempted.
func (d *Dispatcher) Download(req Request) error {
	if err := os.MkdirAll(req.LocalDest, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", req.LocalDest, err)
	}

	argv := d.command(req)
	if err := execCommandFn(argv); err != nil {
		return &Error{Command: argv, Err: err}
	}
	return nil
}

// command builds the external argv. rsync recurses natively, so its shape
// is the same for files and directories; scp needs -r for directories and
// -p to preserve modification times.
func (d *Dispatcher) command(req Request) []string {
	source := d.Host + ":" + req.RemotePath
	dest := req.LocalDest + "/"

	if d.UseRsync {
		return []string{"rsync", "-avP", "--protect-args", source, dest}
	}

	argv := []string{"scp"}
	if req.Dir {
		argv = append(argv, "-r")
	}
	return append(argv, "-p", source, dest)
}

func runCommand(argv []string) error {
	log.Printf("exec %s", strings.Join(argv, " "))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
