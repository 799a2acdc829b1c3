package engine

import (
	"fmt"
	"log/slog"
)

// Report is the outcome of one reconciliation pass. In dry-run mode the
// counts describe what would have happened.
type Report struct {
	SourceFilesProcessed int
	QuotesCreated        int
	QuotesUpdated        int
	QuotesDeleted        int
	QuotesUnwrapped      int
	EditsApplied         int
	BlockIDsAssigned     int
	NotesTransformed     int
	Errors               []string
}

// Changes is the total number of mutations the pass decided on. A second
// pass over unchanged vaults reports zero.
func (r *Report) Changes() int {
	return r.QuotesCreated + r.QuotesUpdated + r.QuotesDeleted +
		r.QuotesUnwrapped + r.EditsApplied + r.BlockIDsAssigned + r.NotesTransformed
}

// Summary renders a one-line human-readable digest.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"processed %d source notes: %d created, %d updated, %d deleted, %d unwrapped, %d edits applied, %d ids assigned, %d migrated, %d errors",
		r.SourceFilesProcessed, r.QuotesCreated, r.QuotesUpdated, r.QuotesDeleted,
		r.QuotesUnwrapped, r.EditsApplied, r.BlockIDsAssigned, r.NotesTransformed, len(r.Errors))
}

// recordError appends a document-local error and logs it. The run keeps
// going; only vault-level failures abort a pass.
func (r *Report) recordError(logger *slog.Logger, msg string) {
	r.Errors = append(r.Errors, msg)
	logger.Error("document error", slog.String("error", msg))
}
