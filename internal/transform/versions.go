package transform

import (
	"strings"

	"github.com/halvard/quotesync/internal/note"
	"github.com/halvard/quotesync/internal/vault"
)

// Default returns the pipeline of all shipped format migrations.
func Default() *Pipeline {
	p, err := NewPipeline(
		Transformation{Version: 1, Name: "add-owner-flags", Apply: addOwnerFlags},
		Transformation{Version: 2, Name: "add-random-note-link", Apply: addRandomNoteLink},
		Transformation{Version: 3, Name: "add-edited-flag", Apply: addEditedFlag},
	)
	if err != nil {
		// The shipped steps are statically valid.
		panic(err)
	}
	return p
}

// addOwnerFlags backfills the delete and favorite flags on notes written
// before version tracking existed.
func addOwnerFlags(d *note.Document) {
	if _, ok := d.Frontmatter[vault.FieldDelete]; !ok {
		d.Set(vault.FieldDelete, false)
	}
	if _, ok := d.Frontmatter[vault.FieldFavorite]; !ok {
		d.Set(vault.FieldFavorite, false)
	}
}

// addRandomNoteLink appends the auxiliary link below the quote, separated by
// a blank line, unless already present.
func addRandomNoteLink(d *note.Document) {
	if strings.Contains(d.Body, vault.AuxiliaryLink) {
		return
	}
	body := d.Body
	if !strings.HasSuffix(body, "\n\n") {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		body += "\n"
	}
	d.Body = body + vault.AuxiliaryLink + "\n"
}

// addEditedFlag backfills the edited flag introduced for reverse syncing.
func addEditedFlag(d *note.Document) {
	if _, ok := d.Frontmatter[vault.FieldEdited]; !ok {
		d.Set(vault.FieldEdited, false)
	}
}
