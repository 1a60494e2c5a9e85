package remote

import (
	"context"
	"fmt"
	"strings"
)

// Entry is one item of a remote directory listing.
type Entry struct {
	Name string
	Dir  bool
}

// Display renders the entry the way the remote listing did: directories
// carry a trailing slash.
func (e Entry) Display() string {
	if e.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// Lister enumerates the immediate children of remote directories.
type Lister struct {
	runner Runner
}

// NewLister returns a lister that issues its commands through r.
func NewLister(r Runner) *Lister {
	return &Lister{runner: r}
}

// List returns the entries of dir in the order the remote ls emitted them.
// An empty directory yields an empty list, not an error.
func (l *Lister) List(ctx context.Context, dir string) ([]Entry, error) {
	command := fmt.Sprintf("cd %s && ls -1p", shellQuote(dir))
	out, err := l.runner.Execute(ctx, command)
	if err != nil {
		return nil, err
	}
	return parseListing(out), nil
}

// parseListing splits ls -1p output into entries. A trailing slash marks a
// directory and is stripped from the name; blank lines are dropped. The
// order of the raw output is preserved, never re-sorted.
func parseListing(out string) []Entry {
	var entries []Entry
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name, ok := strings.CutSuffix(line, "/"); ok {
			entries = append(entries, Entry{Name: name, Dir: true})
			continue
		}
		entries = append(entries, Entry{Name: line})
	}
	return entries
}
