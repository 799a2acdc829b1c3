package vault

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/halvard/quotesync/internal/addr"
	"github.com/halvard/quotesync/internal/models"
	"github.com/halvard/quotesync/internal/note"
	"github.com/halvard/quotesync/internal/storage"
)

// Destination frontmatter fields. Delete, favorite and edited are
// owner-controlled: a human sets them, the sync engine only ever reads them
// (and clears edited after propagating an edit). Version is engine-owned.
const (
	FieldDelete     = "delete"
	FieldFavorite   = "favorite"
	FieldEdited     = "edited"
	FieldVersion    = "version"
	FieldSourcePath = "source_path"
	FieldBlockID    = "block_id"
)

// AuxiliaryLink is the fixed trailer appended below every quote.
const AuxiliaryLink = "[Random Note](obsidian://adv-uri?vault=ReferenceQuotes&commandid=random-note)"

var knownFields = map[string]struct{}{
	FieldDelete:     {},
	FieldFavorite:   {},
	FieldEdited:     {},
	FieldVersion:    {},
	FieldSourcePath: {},
	FieldBlockID:    {},
}

// QuoteNote is one destination note holding a single quote.
type QuoteNote struct {
	// Path is relative to the destination vault root. It is derived from the
	// quote text and may go stale after edits; matching never uses it.
	Path string
	Doc  *note.Document
	// Text is the normalized quote text extracted from the body.
	Text string
}

// ParseQuoteNote builds a QuoteNote from raw file content.
func ParseQuoteNote(path string, data []byte) *QuoteNote {
	doc := note.Parse(data)
	return &QuoteNote{Path: path, Doc: doc, Text: ExtractQuoteText(doc.Body)}
}

// NewQuoteNote creates a fresh destination note for a fragment.
func NewQuoteNote(vaultName, sourceRel, blockID, text string, version int) *QuoteNote {
	title := strings.TrimSuffix(filepath.Base(sourceRel), ".md")
	doc := &note.Document{
		Frontmatter: map[string]interface{}{
			FieldDelete:     false,
			FieldFavorite:   false,
			FieldEdited:     false,
			FieldVersion:    version,
			FieldSourcePath: sourceRel,
			FieldBlockID:    blockID,
		},
		Body: RenderQuoteBody(vaultName, title, blockID, text),
	}
	return &QuoteNote{
		Path: filepath.Join(title, Filename(title, blockID, text)),
		Doc:  doc,
		Text: text,
	}
}

// Key returns the (source title, block identifier) pair used for matching.
func (q *QuoteNote) Key() models.Key {
	return models.Key{
		SourceTitle: strings.TrimSuffix(filepath.Base(q.SourcePath()), ".md"),
		BlockID:     q.Doc.String(FieldBlockID),
	}
}

// SourcePath is the owning source note's path relative to the source vault.
func (q *QuoteNote) SourcePath() string {
	return q.Doc.String(FieldSourcePath)
}

// MarkedForDeletion reports the owner's delete intent.
func (q *QuoteNote) MarkedForDeletion() bool {
	return q.Doc.Bool(FieldDelete)
}

// Edited reports the owner's edited intent.
func (q *QuoteNote) Edited() bool {
	return q.Doc.Bool(FieldEdited)
}

// ClearEdited resets the edited flag after an edit has been propagated back
// to the source note.
func (q *QuoteNote) ClearEdited() {
	q.Doc.Set(FieldEdited, false)
}

// PendingAction derives the single reconciliation intent this note requests.
// Deletion always wins over an edit set at the same time.
func (q *QuoteNote) PendingAction() models.PendingAction {
	switch {
	case q.MarkedForDeletion():
		return models.ActionUnwrap
	case q.Edited():
		return models.ActionApplyEdit
	default:
		return models.ActionNone
	}
}

// SetText refreshes the body region (quote text plus back-link) from the
// source. Owner-controlled frontmatter fields are untouched.
func (q *QuoteNote) SetText(vaultName, text string) {
	title := strings.TrimSuffix(filepath.Base(q.SourcePath()), ".md")
	q.Text = text
	q.Doc.Body = RenderQuoteBody(vaultName, title, q.Doc.String(FieldBlockID), text)
}

// Render serialises the note for writing.
func (q *QuoteNote) Render() []byte {
	return q.Doc.Render()
}

// UnknownFields returns frontmatter keys outside the recognised schema,
// sorted for stable logging. The values are preserved on rewrite but carry
// no meaning for the engine.
func (q *QuoteNote) UnknownFields() []string {
	var out []string
	for k := range q.Doc.Frontmatter {
		if _, ok := knownFields[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ExtractQuoteText pulls the normalized quote text out of a rendered body:
// the leading blockquote lines up to the source back-link.
func ExtractQuoteText(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "**Source:") {
			break
		}
		if strings.HasPrefix(trimmed, ">") {
			lines = append(lines, strings.TrimRight(strings.TrimLeft(trimmed, "> "), " \t"))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// RenderQuoteBody renders the body region of a destination note: the
// blockquoted text, the source back-link, and the auxiliary link.
func RenderQuoteBody(vaultName, title, blockID, text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n**Source:** [")
	b.WriteString(title)
	b.WriteString("](")
	b.WriteString(addr.Encode(vaultName, title, blockID))
	b.WriteString(")\n\n")
	b.WriteString(AuxiliaryLink)
	b.WriteString("\n")
	return b.String()
}

// Filename derives the destination file name:
// "<title> - QuoteNNN - <first few words>.md". The word prefix keeps at most
// five words and 30 characters, cut at a word boundary.
func Filename(title, blockID, text string) string {
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	prefix := strings.Join(words, " ")
	if len(prefix) > 30 {
		cut := prefix[:30]
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		prefix = cut
	}
	return title + " - " + strings.TrimPrefix(blockID, "^") + " - " + SanitizeName(prefix) + ".md"
}

// SanitizeName replaces characters that are illegal in file names on common
// filesystems. The substitution table is: \ / : * ? " < > | and control
// characters all map to "-"; runs of "-" collapse to one; leading and
// trailing "-" and spaces are trimmed. Sanitizing an already sanitized name
// is a no-op.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '/' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r < 0x20:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "- ")
}

// LoadDestVault reads every quote note in the destination vault. Unreadable
// files are returned as errors without aborting the load.
func LoadDestVault(store storage.Provider) ([]*QuoteNote, []error) {
	infos, err := store.List("")
	if err != nil {
		return nil, []error{err}
	}
	var notes []*QuoteNote
	var errs []error
	for _, info := range infos {
		data, err := store.Read(info.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		notes = append(notes, ParseQuoteNote(info.Path, data))
	}
	return notes, errs
}
