// Package browse owns the navigation state machine for the interactive
// remote directory browser.
package browse

import (
	"context"
	"path"
	"strings"

	"github.com/taigrr/nasfetch/internal/picker"
	"github.com/taigrr/nasfetch/internal/remote"
)

// Action says how a browsing step ended.
type Action int

const (
	// ActionBrowse keeps the loop going in the session's current directory.
	ActionBrowse Action = iota
	// ActionCancel ends the session without a download.
	ActionCancel
	// ActionDownloadFile requests a download of the file at Decision.Path.
	ActionDownloadFile
	// ActionDownloadDir requests a recursive download of Decision.Path.
	ActionDownloadDir
)

// Decision is the interpreted outcome of one pick.
type Decision struct {
	Action Action
	Path   string
}

// Lister enumerates a remote directory. Satisfied by remote.Lister.
type Lister interface {
	List(ctx context.Context, dir string) ([]remote.Entry, error)
}

// Session tracks the directory being browsed. The current directory is
// always absolute; ascending stops at the filesystem root, not at the
// configured starting root.
type Session struct {
	root    string
	current string
}

// NewSession starts a session at root.
func NewSession(root string) *Session {
	return &Session{root: root, current: root}
}

// Current returns the directory the next listing should show.
func (s *Session) Current() string { return s.current }

// Apply folds one pick result into the session and reports what to do
// next:
//
//   - no selection cancels the session;
//   - the parent marker ascends one level (a no-op at "/");
//   - a directory descends on plain confirm, or becomes a directory
//     download on the alternate confirm chord;
//   - a file becomes a file download under any modifier.
func (s *Session) Apply(res picker.Result) Decision {
	if res.Selection == "" {
		return Decision{Action: ActionCancel}
	}

	if res.Selection == picker.ParentMarker {
		if s.current != "/" {
			s.current = path.Dir(s.current)
		}
		return Decision{Action: ActionBrowse}
	}

	if name, ok := strings.CutSuffix(res.Selection, "/"); ok {
		dirPath := path.Join(s.current, name)
		if res.Modifier == picker.AltConfirmKey {
			return Decision{Action: ActionDownloadDir, Path: dirPath}
		}
		s.current = dirPath
		return Decision{Action: ActionBrowse}
	}

	return Decision{
		Action: ActionDownloadFile,
		Path:   path.Join(s.current, res.Selection),
	}
}

// Run drives the blocking list → pick → apply loop until the user selects
// something to download or cancels. The first listing or picker error
// aborts the session.
func Run(ctx context.Context, lister Lister, p picker.Picker, session *Session) (Decision, error) {
	for {
		entries, err := lister.List(ctx, session.Current())
		if err != nil {
			return Decision{}, err
		}

		res, err := p.Pick(entries)
		if err != nil {
			return Decision{}, err
		}

		if decision := session.Apply(res); decision.Action != ActionBrowse {
			return decision, nil
		}
	}
}
