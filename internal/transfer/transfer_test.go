package transfer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

func captureCommands(t *testing.T, err error) *[][]string {
	t.Helper()
	var commands [][]string
	orig := execCommandFn
	execCommandFn = func(argv []string) error {
		commands = append(commands, argv)
		return err
	}
	t.Cleanup(func() { execCommandFn = orig })
	return &commands
}

func TestRsyncShapeIgnoresDirectoriness(t *testing.T) {
	commands := captureCommands(t, nil)
	d := &Dispatcher{Host: "indonas_lan", UseRsync: true}
	dest := t.TempDir()

	for _, dir := range []bool{false, true} {
		req := Request{RemotePath: "/root/games", LocalDest: dest, Dir: dir}
		if err := d.Download(req); err != nil {
			t.Fatalf("Download(dir=%v) returned error: %v", dir, err)
		}
	}

	if len(*commands) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(*commands))
	}
	if !reflect.DeepEqual((*commands)[0], (*commands)[1]) {
		t.Errorf("rsync argv differs for file vs directory:\n%v\n%v", (*commands)[0], (*commands)[1])
	}

	want := []string{"rsync", "-avP", "--protect-args", "indonas_lan:/root/games", dest + "/"}
	if !reflect.DeepEqual((*commands)[0], want) {
		t.Errorf("argv = %v, want %v", (*commands)[0], want)
	}
}

func TestScpRecursiveFlagOnlyForDirectories(t *testing.T) {
	commands := captureCommands(t, nil)
	d := &Dispatcher{Host: "indonas_lan", UseRsync: false}
	dest := t.TempDir()

	if err := d.Download(Request{RemotePath: "/root/save.bin", LocalDest: dest}); err != nil {
		t.Fatalf("file download returned error: %v", err)
	}
	if err := d.Download(Request{RemotePath: "/root/games", LocalDest: dest, Dir: true}); err != nil {
		t.Fatalf("directory download returned error: %v", err)
	}

	fileArgv, dirArgv := (*commands)[0], (*commands)[1]

	wantFile := []string{"scp", "-p", "indonas_lan:/root/save.bin", dest + "/"}
	if !reflect.DeepEqual(fileArgv, wantFile) {
		t.Errorf("file argv = %v, want %v", fileArgv, wantFile)
	}

	wantDir := []string{"scp", "-r", "-p", "indonas_lan:/root/games", dest + "/"}
	if !reflect.DeepEqual(dirArgv, wantDir) {
		t.Errorf("dir argv = %v, want %v", dirArgv, wantDir)
	}

	if slices.Contains(fileArgv, "-r") {
		t.Error("file download must not pass -r")
	}
}

func TestDownloadCreatesDestination(t *testing.T) {
	captureCommands(t, nil)
	d := &Dispatcher{Host: "nas", UseRsync: true}
	dest := filepath.Join(t.TempDir(), "incoming", "games")

	if err := d.Download(Request{RemotePath: "/root/games", LocalDest: dest, Dir: true}); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("destination was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("destination should be a directory")
	}
}

func TestDownloadWrapsCommandFailure(t *testing.T) {
	exitErr := errors.New("exit status 23")
	captureCommands(t, exitErr)
	d := &Dispatcher{Host: "nas", UseRsync: true}

	err := d.Download(Request{RemotePath: "/root/games", LocalDest: t.TempDir(), Dir: true})

	var transferErr *Error
	if !errors.As(err, &transferErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if !errors.Is(err, exitErr) {
		t.Error("Error should unwrap to the exit error")
	}
	if len(transferErr.Command) == 0 || transferErr.Command[0] != "rsync" {
		t.Errorf("Command = %v, want the rsync argv", transferErr.Command)
	}
}
