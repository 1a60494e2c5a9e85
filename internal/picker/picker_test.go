package picker

import (
	"reflect"
	"testing"

	"github.com/taigrr/nasfetch/internal/remote"
)

func TestCandidatesParentFirst(t *testing.T) {
	entries := []remote.Entry{
		{Name: "games", Dir: true},
		{Name: "save.bin"},
		{Name: "isos", Dir: true},
	}

	got := Candidates(entries)
	want := []string{"../", "games/", "save.bin", "isos/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestCandidatesCountIsAlwaysEntriesPlusOne(t *testing.T) {
	for n := 0; n < 4; n++ {
		entries := make([]remote.Entry, n)
		for i := range entries {
			entries[i] = remote.Entry{Name: "e"}
		}
		got := Candidates(entries)
		if len(got) != n+1 {
			t.Errorf("len(Candidates) with %d entries = %d, want %d", n, len(got), n+1)
		}
		if got[0] != ParentMarker {
			t.Errorf("first candidate = %q, want parent marker", got[0])
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Result
	}{
		{"no output means no selection", "", Result{}},
		{"single line is a plain confirm", "games/\n", Result{Selection: "games/"}},
		{"alternate confirm carries the key", "ctrl-d\ngames/\n", Result{Modifier: AltConfirmKey, Selection: "games/"}},
		{"plain confirm with expect enabled", "\nsave.bin\n", Result{Selection: "save.bin"}},
		{"extra lines are ignored", "ctrl-d\ngames/\nignored\n", Result{Modifier: AltConfirmKey, Selection: "games/"}},
		{"lines are trimmed", "  save.bin  \n", Result{Selection: "save.bin"}},
		{"blank single line decodes to no selection", "\n", Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.out); got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.out, got, tt.want)
			}
		})
	}
}

func TestFzfPickRoundTrip(t *testing.T) {
	var gotCandidates []string
	orig := runFzfFn
	runFzfFn = func(candidates []string) (string, error) {
		gotCandidates = candidates
		return "ctrl-d\ngames/\n", nil
	}
	defer func() { runFzfFn = orig }()

	res, err := NewFzf().Pick([]remote.Entry{{Name: "games", Dir: true}})
	if err != nil {
		t.Fatalf("Pick returned error: %v", err)
	}

	if !reflect.DeepEqual(gotCandidates, []string{"../", "games/"}) {
		t.Errorf("candidates = %v", gotCandidates)
	}
	if res.Modifier != AltConfirmKey || res.Selection != "games/" {
		t.Errorf("result = %+v", res)
	}
}
