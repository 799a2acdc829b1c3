package transform

import (
	"strings"
	"testing"

	"github.com/halvard/quotesync/internal/note"
	"github.com/halvard/quotesync/internal/vault"
)

func TestApply_AllFromVersionZero(t *testing.T) {
	var order []string
	p, err := NewPipeline(
		Transformation{Version: 2, Name: "b", Apply: func(*note.Document) { order = append(order, "b") }},
		Transformation{Version: 1, Name: "a", Apply: func(*note.Document) { order = append(order, "a") }},
	)
	if err != nil {
		t.Fatal(err)
	}
	d := note.Parse([]byte("---\ndelete: false\n---\n> q\n"))

	applied := p.Apply(d)

	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
	if d.Version() != 2 {
		t.Errorf("version = %d, want 2", d.Version())
	}
}

func TestApply_SkipsOlderSteps(t *testing.T) {
	p, err := NewPipeline(
		Transformation{Version: 1, Name: "a", Apply: func(d *note.Document) { d.Set("a", true) }},
		Transformation{Version: 2, Name: "b", Apply: func(d *note.Document) { d.Set("b", true) }},
	)
	if err != nil {
		t.Fatal(err)
	}
	d := note.Parse([]byte("---\nversion: 1\n---\n> q\n"))

	applied := p.Apply(d)

	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if d.Bool("a") {
		t.Error("older step re-applied")
	}
	if !d.Bool("b") {
		t.Error("newer step not applied")
	}
}

func TestApply_UpToDateIsNoop(t *testing.T) {
	p, err := NewPipeline(
		Transformation{Version: 1, Name: "a", Apply: func(d *note.Document) { d.Set("a", true) }},
	)
	if err != nil {
		t.Fatal(err)
	}
	d := note.Parse([]byte("---\nversion: 1\n---\n> q\n"))
	if applied := p.Apply(d); applied != 0 {
		t.Errorf("applied = %d, want 0", applied)
	}
	if d.Bool("a") {
		t.Error("step applied to up-to-date note")
	}
}

func TestNewPipeline_RejectsDuplicates(t *testing.T) {
	_, err := NewPipeline(
		Transformation{Version: 1, Name: "a", Apply: func(*note.Document) {}},
		Transformation{Version: 1, Name: "b", Apply: func(*note.Document) {}},
	)
	if err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestDefault_MigratesLegacyNote(t *testing.T) {
	legacy := "---\ndelete: false\nsource_path: Deep Work.md\n---\n\n> the quote\n\n**Source:** [Deep Work](obsidian://open?vault=Notes&file=Deep%20Work%23%5EQuote001)\n"
	d := note.Parse([]byte(legacy))

	p := Default()
	applied := p.Apply(d)

	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if d.Version() != p.CurrentVersion() {
		t.Errorf("version = %d, want %d", d.Version(), p.CurrentVersion())
	}
	if _, ok := d.Frontmatter[vault.FieldEdited]; !ok {
		t.Error("edited flag not backfilled")
	}
	if !strings.Contains(d.Body, vault.AuxiliaryLink) {
		t.Error("auxiliary link not appended")
	}
	// Link sits after a blank line.
	if !strings.Contains(d.Body, "\n\n"+vault.AuxiliaryLink+"\n") {
		t.Errorf("auxiliary link placement wrong:\n%q", d.Body)
	}

	// Idempotent on a second pass.
	if again := p.Apply(d); again != 0 {
		t.Errorf("second pass applied = %d, want 0", again)
	}
}

func TestDefault_DoesNotOverwriteOwnerValues(t *testing.T) {
	d := note.Parse([]byte("---\ndelete: true\nfavorite: true\n---\n> q\n"))
	Default().Apply(d)
	if !d.Bool(vault.FieldDelete) || !d.Bool(vault.FieldFavorite) {
		t.Error("owner-set flags overwritten by migration")
	}
}
