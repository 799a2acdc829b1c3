package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return f, dir
}

func TestWriteReadDelete(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("Books/Deep Work.md", []byte("> hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := f.Read("Books/Deep Work.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "> hello\n" {
		t.Errorf("data = %q", data)
	}
	if err := f.Delete("Books/Deep Work.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.Read("Books/Deep Work.md"); err == nil {
		t.Error("expected read error after delete")
	}
}

func TestList_SkipsHiddenDirs(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a.md", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".backup", "v3_2026_01_01"), 0o755); err != nil {
		t.Fatal(err)
	}
	backupFile := filepath.Join(dir, ".backup", "v3_2026_01_01", "a.md")
	if err := os.WriteFile(backupFile, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := f.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Path != "a.md" {
		t.Errorf("infos = %+v, want only a.md", infos)
	}
}

func TestList_ChecksumChangesWithContent(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write("n.md", []byte("one")); err != nil {
		t.Fatal(err)
	}
	first, err := f.List("")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Write("n.md", []byte("two")); err != nil {
		t.Fatal(err)
	}
	second, err := f.List("")
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Checksum == second[0].Checksum {
		t.Error("checksum did not change with content")
	}
}

func TestSafePath_RejectsEscape(t *testing.T) {
	f, _ := newTestFS(t)
	if _, err := f.Read("../outside.md"); err == nil {
		t.Error("expected traversal rejection")
	}
	if err := f.Write("/abs.md", []byte("x")); err == nil {
		t.Error("expected absolute path rejection")
	}
}
