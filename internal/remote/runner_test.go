package remote

import (
	"errors"
	"strings"
	"testing"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name passes through", "Games", "Games"},
		{"path with slashes passes through", "/mnt/media1/Games", "/mnt/media1/Games"},
		{"space is quoted", "My Games", "'My Games'"},
		{"single quote is escaped", "it's here", `'it'\''s here'`},
		{"dollar is quoted", "$HOME", "'$HOME'"},
		{"semicolon is quoted", "a;rm -rf b", "'a;rm -rf b'"},
		{"glob is quoted", "save*.bin", "'save*.bin'"},
		{"backtick is quoted", "`id`", "'`id`'"},
		{"empty string stays an argument", "", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shellQuote(tt.in); got != tt.want {
				t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCommandErrorMessage(t *testing.T) {
	err := &CommandError{
		Command: "cd /nope && ls -1p",
		Stderr:  "bash: cd: /nope: No such file or directory\n",
		Err:     errors.New("exit status 1"),
	}

	msg := err.Error()
	if !strings.Contains(msg, "cd /nope && ls -1p") {
		t.Errorf("message should contain the command: %s", msg)
	}
	if !strings.Contains(msg, "No such file or directory") {
		t.Errorf("message should contain the remote stderr: %s", msg)
	}
}

func TestCommandErrorFallsBackToWrappedError(t *testing.T) {
	wrapped := errors.New("exit status 255")
	err := &CommandError{Command: "ls", Err: wrapped}

	if !strings.Contains(err.Error(), "exit status 255") {
		t.Errorf("empty stderr should fall back to the exit error: %s", err.Error())
	}
	if !errors.Is(err, wrapped) {
		t.Error("CommandError should unwrap to the exit error")
	}
}
