// Package vault models the two note collections being reconciled: source
// notes that own quote text, and destination quote notes that own
// delete/favorite/edited intent.
package vault

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/halvard/quotesync/internal/models"
	"github.com/halvard/quotesync/internal/parser"
)

// SyncFlag is the frontmatter field that opts a source note into syncing.
const SyncFlag = "sync_quotes"

// SourceNote is a source vault note. The frontmatter block is kept verbatim
// so that edits to the body never reformat user-written metadata.
type SourceNote struct {
	// Path is relative to the source vault root.
	Path string

	head  string // raw frontmatter block including delimiters, "" if none
	lines []string
	fm    map[string]interface{}
	dirty bool
}

// ParseSource builds a SourceNote from raw file content.
func ParseSource(path string, data []byte) *SourceNote {
	head, body := splitRaw(string(data))
	var fm map[string]interface{}
	if head != "" {
		inner := strings.TrimPrefix(head, "---")
		inner = strings.TrimSuffix(strings.TrimRight(inner, "\r\n"), "---")
		_ = yaml.Unmarshal([]byte(inner), &fm)
	}
	return &SourceNote{
		Path:  path,
		head:  head,
		lines: strings.Split(body, "\n"),
		fm:    fm,
	}
}

// splitRaw separates a verbatim frontmatter block from the body. The closing
// delimiter line is included in head so head+body reproduces the input.
func splitRaw(s string) (head, body string) {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		return "", s
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == "---" {
			return strings.Join(lines[:i+1], ""), strings.Join(lines[i+1:], "")
		}
	}
	return "", s
}

// SyncEnabled reports whether the note opts into quote syncing.
func (s *SourceNote) SyncEnabled() bool {
	v, ok := s.fm[SyncFlag].(bool)
	return ok && v
}

// Title is the note's file name without the .md extension. It is half of the
// join key that binds fragments to destination notes.
func (s *SourceNote) Title() string {
	return strings.TrimSuffix(filepath.Base(s.Path), ".md")
}

// Fragments parses the blockquote fragments out of the note body.
func (s *SourceNote) Fragments() ([]models.Fragment, error) {
	return parser.ExtractFragments(s.body())
}

// AssignBlockIDs gives every fragment marked ActionAssignID a fresh
// identifier, inserting the identifier line directly after the group.
// Ordinals continue from the highest one present anywhere in the note and
// follow fragment order. Returns the number of identifiers assigned.
func (s *SourceNote) AssignBlockIDs(frags []models.Fragment) int {
	next := parser.MaxOrdinal(s.body()) + 1
	assigned := 0
	offset := 0
	for i := range frags {
		if frags[i].Action != models.ActionAssignID {
			continue
		}
		id := parser.FormatBlockID(next)
		next++
		at := frags[i].EndLine + 1 + offset
		s.lines = append(s.lines[:at], append([]string{id}, s.lines[at:]...)...)
		offset++

		frags[i].BlockID = id
		frags[i].Action = models.ActionNone
		assigned++
		s.dirty = true
	}
	return assigned
}

// ReplaceFragment rewrites the quote text of the fragment bound to blockID.
// Returns false when no such fragment exists.
func (s *SourceNote) ReplaceFragment(blockID, text string) bool {
	start, end, ok := s.locate(blockID)
	if !ok {
		return false
	}
	var quoted []string
	for _, line := range strings.Split(text, "\n") {
		quoted = append(quoted, "> "+line)
	}
	// The identifier line at end stays in place.
	s.lines = append(s.lines[:start], append(quoted, s.lines[end:]...)...)
	s.dirty = true
	return true
}

// Unwrap converts the fragment bound to blockID into plain quoted text:
// quote markers and the identifier line are removed, the lines are joined
// with spaces and wrapped in double quotes. The identifier binding is lost.
func (s *SourceNote) Unwrap(blockID string) bool {
	start, end, ok := s.locate(blockID)
	if !ok {
		return false
	}
	var words []string
	for _, line := range s.lines[start:end] {
		words = append(words, strings.TrimLeft(strings.TrimSpace(line), "> "))
	}
	plain := `"` + strings.TrimSpace(strings.Join(words, " ")) + `"`
	s.lines = append(s.lines[:start], append([]string{plain}, s.lines[end+1:]...)...)
	s.dirty = true
	return true
}

// locate finds the line range [start, end] of the blockquote group whose
// identifier line (at end) matches blockID.
func (s *SourceNote) locate(blockID string) (start, end int, ok bool) {
	i := 0
	for i < len(s.lines) {
		if !isQuoteLine(s.lines[i]) {
			i++
			continue
		}
		groupStart := i
		for i < len(s.lines) && isQuoteLine(s.lines[i]) {
			i++
		}
		if i < len(s.lines) && strings.TrimSpace(s.lines[i]) == blockID {
			return groupStart, i, true
		}
	}
	return 0, 0, false
}

// Dirty reports whether the note has unsaved modifications.
func (s *SourceNote) Dirty() bool {
	return s.dirty
}

// MarkClean resets the dirty flag after the note has been persisted.
func (s *SourceNote) MarkClean() {
	s.dirty = false
}

// Content renders the note back to bytes: verbatim frontmatter + body.
func (s *SourceNote) Content() []byte {
	return []byte(s.head + s.body())
}

func (s *SourceNote) body() string {
	return strings.Join(s.lines, "\n")
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ">")
}
