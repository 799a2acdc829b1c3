package gateway

import (
	"testing"

	"github.com/halvard/quotesync/internal/testutil"
)

func TestWrite_Real(t *testing.T) {
	_, store := testutil.TestVault(t)
	g := New(store, testutil.TestLogger(t), "dest", false)

	if err := g.Write("create", "a.md", []byte("> q\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := store.Read("a.md")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "> q\n" {
		t.Errorf("data = %q", data)
	}
}

func TestWrite_DryRunSuppressesIO(t *testing.T) {
	_, store := testutil.TestVault(t)
	g := New(store, testutil.TestLogger(t), "dest", true)

	if err := g.Write("create", "a.md", []byte("> q\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Read("a.md"); err == nil {
		t.Error("dry-run write touched the filesystem")
	}
}

func TestDelete_DryRunSuppressesIO(t *testing.T) {
	_, store := testutil.TestVault(t)
	if err := store.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}

	g := New(store, testutil.TestLogger(t), "dest", true)
	if err := g.Delete("orphan", "a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read("a.md"); err != nil {
		t.Error("dry-run delete removed the file")
	}

	real := New(store, testutil.TestLogger(t), "dest", false)
	if err := real.Delete("orphan", "a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read("a.md"); err == nil {
		t.Error("real delete left the file in place")
	}
}
