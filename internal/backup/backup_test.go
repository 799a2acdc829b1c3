package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/halvard/quotesync/internal/testutil"
)

func TestCreate_CopiesNotes(t *testing.T) {
	root := t.TempDir()
	testutil.WriteNote(t, root, "Deep Work/Deep Work - Quote001 - Focus.md", "> Focus\n")
	testutil.WriteNote(t, root, "top.md", "top\n")
	testutil.WriteNote(t, root, "ignored.txt", "not a note\n")

	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	dest, err := Create(root, 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dest) != "v3_2026_08_25" {
		t.Errorf("snapshot dir = %s", dest)
	}
	if got := testutil.ReadNote(t, dest, "Deep Work/Deep Work - Quote001 - Focus.md"); got != "> Focus\n" {
		t.Errorf("copied note = %q", got)
	}
	if got := testutil.ReadNote(t, dest, "top.md"); got != "top\n" {
		t.Errorf("copied note = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "ignored.txt")); !os.IsNotExist(err) {
		t.Error("non-markdown file was copied")
	}
}

func TestCreate_SkipsEarlierSnapshots(t *testing.T) {
	root := t.TempDir()
	testutil.WriteNote(t, root, "note.md", "> q\n")
	now := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	if _, err := Create(root, 2, now.AddDate(0, 0, -1)); err != nil {
		t.Fatal(err)
	}
	dest, err := Create(root, 3, now)
	if err != nil {
		t.Fatal(err)
	}
	// The new snapshot must not recurse into the old one.
	if _, err := os.Stat(filepath.Join(dest, Dir)); !os.IsNotExist(err) {
		t.Error("snapshot contains nested .backup directory")
	}
}

func TestPrune(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	old := filepath.Join(root, Dir, "v2_2026_08_10")
	fresh := filepath.Join(root, Dir, "v3_2026_08_24")
	foreign := filepath.Join(root, Dir, "keepsakes")
	for _, d := range []string{old, fresh, foreign} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := Prune(root, 7*24*time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale snapshot survived")
	}
	for _, d := range []string{fresh, foreign} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("%s removed: %v", filepath.Base(d), err)
		}
	}
}

func TestPrune_NoSnapshotDir(t *testing.T) {
	removed, err := Prune(t.TempDir(), 7*24*time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Errorf("removed = %d, err = %v", removed, err)
	}
}
