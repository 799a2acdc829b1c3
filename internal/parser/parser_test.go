package parser

import (
	"errors"
	"testing"

	"github.com/halvard/quotesync/internal/models"
)

func TestExtractFragments_Grouping(t *testing.T) {
	body := "> First quote line 1\n" +
		"> First quote line 2\n" +
		"\n" +
		"> Second quote\n" +
		"\n" +
		"Not a quote\n" +
		"> Third quote\n" +
		"> Still third quote\n"

	frags, err := ExtractFragments(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"First quote line 1\nFirst quote line 2",
		"Second quote",
		"Third quote\nStill third quote",
	}
	if len(frags) != len(want) {
		t.Fatalf("len(frags) = %d, want %d", len(frags), len(want))
	}
	for i, w := range want {
		if frags[i].Text != w {
			t.Errorf("frags[%d].Text = %q, want %q", i, frags[i].Text, w)
		}
		if frags[i].BlockID != "" {
			t.Errorf("frags[%d].BlockID = %q, want empty", i, frags[i].BlockID)
		}
		if frags[i].Action != models.ActionAssignID {
			t.Errorf("frags[%d].Action = %v, want assign-id", i, frags[i].Action)
		}
	}
}

func TestExtractFragments_WithIDs(t *testing.T) {
	body := "> First quote line 1\n" +
		"> First quote line 2\n" +
		"^Quote001\n" +
		"\n" +
		"> Second quote\n" +
		"^Quote002\n" +
		"\n" +
		"> Third quote\n" +
		"> Still third quote\n" +
		"^Quote003\n"

	frags, err := ExtractFragments(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"^Quote001", "^Quote002", "^Quote003"}
	if len(frags) != 3 {
		t.Fatalf("len(frags) = %d, want 3", len(frags))
	}
	for i, id := range wantIDs {
		if frags[i].BlockID != id {
			t.Errorf("frags[%d].BlockID = %q, want %q", i, frags[i].BlockID, id)
		}
		if frags[i].Action != models.ActionNone {
			t.Errorf("frags[%d].Action = %v, want none", i, frags[i].Action)
		}
	}
}

func TestExtractFragments_LineRanges(t *testing.T) {
	body := "intro\n> quote a\n> quote b\n^Quote001\ntail\n"
	frags, err := ExtractFragments(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("len(frags) = %d, want 1", len(frags))
	}
	if frags[0].StartLine != 1 || frags[0].EndLine != 2 {
		t.Errorf("line range = [%d,%d], want [1,2]", frags[0].StartLine, frags[0].EndLine)
	}
}

func TestExtractFragments_DuplicateID(t *testing.T) {
	body := "> one\n^Quote001\n\n> two\n^Quote001\n"
	_, err := ExtractFragments(body)
	var dup *DuplicateIdentifierError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateIdentifierError", err)
	}
	if dup.BlockID != "^Quote001" {
		t.Errorf("dup.BlockID = %q, want ^Quote001", dup.BlockID)
	}
}

func TestMaxOrdinal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"no ids", "> Some quote\n> Another line\n", 0},
		{"gaps", "> a\n^Quote001\n> b\n^Quote003\n> c\n^Quote005\n", 5},
		{"four digits", "> a\n^Quote999\n> b\n^Quote1000\n", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxOrdinal(tt.body); got != tt.want {
				t.Errorf("MaxOrdinal = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatBlockID(t *testing.T) {
	if got := FormatBlockID(1); got != "^Quote001" {
		t.Errorf("FormatBlockID(1) = %q", got)
	}
	if got := FormatBlockID(1000); got != "^Quote1000" {
		t.Errorf("FormatBlockID(1000) = %q", got)
	}
}

func TestOrdinal(t *testing.T) {
	if got := Ordinal("^Quote042"); got != 42 {
		t.Errorf("Ordinal = %d, want 42", got)
	}
	if got := Ordinal("^Quote42"); got != 0 {
		t.Errorf("Ordinal on short id = %d, want 0", got)
	}
	if got := Ordinal("not an id"); got != 0 {
		t.Errorf("Ordinal on junk = %d, want 0", got)
	}
}

func TestSplitFrontmatter_Present(t *testing.T) {
	fm, body := SplitFrontmatter([]byte("---\nsync_quotes: true\n---\n> quote\n"))
	if fm == nil || fm["sync_quotes"] != true {
		t.Errorf("fm = %v, want sync_quotes true", fm)
	}
	if body != "> quote\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_Absent(t *testing.T) {
	fm, body := SplitFrontmatter([]byte("# heading\ntext\n"))
	if fm != nil {
		t.Errorf("expected nil frontmatter, got %v", fm)
	}
	if body != "# heading\ntext\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	fm, body := SplitFrontmatter([]byte(input))
	if fm != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if body != input {
		t.Errorf("body = %q, want full input", body)
	}
}
