// Package picker adapts remote directory entries into an interactive
// fuzzy selection. The external UI sits behind the Picker interface so
// headless doubles can stand in during tests.
package picker

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"

	"github.com/taigrr/nasfetch/internal/remote"
)

// ParentMarker is the synthetic first candidate that navigates up one
// directory.
const ParentMarker = "../"

// AltConfirmKey is the key chord that requests a directory download
// instead of descending into it.
const AltConfirmKey = "ctrl-d"

// Result is the decoded outcome of one interactive pick. An empty
// Selection means the user made no choice.
type Result struct {
	// Modifier is "" for a plain confirm or AltConfirmKey for the
	// alternate confirm chord.
	Modifier  string
	Selection string
}

// Picker presents candidates and reports what the user chose.
type Picker interface {
	Pick(entries []remote.Entry) (Result, error)
}

// Fzf drives the external fzf program.
type Fzf struct{}

// NewFzf returns the fzf-backed picker.
func NewFzf() *Fzf { return &Fzf{} }

var runFzfFn = runFzf

// Pick renders the candidate list and decodes fzf's output.
func (f *Fzf) Pick(entries []remote.Entry) (Result, error) {
	out, err := runFzfFn(Candidates(entries))
	if err != nil {
		return Result{}, err
	}
	return Decode(out), nil
}

// Candidates builds the list handed to the selection UI: the synthetic
// parent entry first, then every listed entry in order, directories with
// their trailing slash.
func Candidates(entries []remote.Entry) []string {
	candidates := make([]string, 0, len(entries)+1)
	candidates = append(candidates, ParentMarker)
	for _, e := range entries {
		candidates = append(candidates, e.Display())
	}
	return candidates
}

// Decode interprets the picker's raw output. Zero lines means no
// selection. One line is a plain confirm of that line. With two or more
// lines the first carries the --expect key ("" for plain Enter) and the
// second the selection; anything after that is ignored.
func Decode(out string) Result {
	lines := splitLines(out)
	switch {
	case len(lines) == 0:
		return Result{}
	case len(lines) == 1:
		return Result{Selection: strings.TrimSpace(lines[0])}
	default:
		return Result{
			Modifier:  strings.TrimSpace(lines[0]),
			Selection: strings.TrimSpace(lines[1]),
		}
	}
}

// splitLines splits on newlines without counting the final newline as an
// extra empty line. The empty-vs-single-blank-line distinction matters:
// a lone blank first line is a plain-Enter marker, not a cancellation.
func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	out = strings.TrimSuffix(out, "\n")
	return strings.Split(out, "\n")
}

func runFzf(candidates []string) (string, error) {
	// fzf draws on the terminal; bail out with a readable error when the
	// process has none instead of letting fzf die confusingly.
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return "", fmt.Errorf("interactive browsing needs a terminal")
	}

	cmd := exec.Command("fzf",
		"--height=90%",
		"--reverse",
		"--prompt=NAS> ",
		"--header=Enter: open dir / download file | Ctrl-D: download dir | Esc: quit",
		"--expect="+AltConfirmKey,
	)
	cmd.Stdin = strings.NewReader(strings.Join(candidates, "\n") + "\n")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// fzf exits 1 on no match and 130 on Esc; only its output matters, so
	// exit status is deliberately not inspected.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("launch fzf: %w", err)
		}
	}
	return stdout.String(), nil
}
