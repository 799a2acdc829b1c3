// Package models defines the domain types for quotesync.
package models

// PendingAction is the single reconciliation intent attached to a fragment.
// A fragment carries at most one action; Unwrap always wins over ApplyEdit
// so that a delete request discards a pending edit.
type PendingAction int

const (
	ActionNone PendingAction = iota
	// ActionAssignID marks a fragment that has no block identifier yet.
	ActionAssignID
	// ActionApplyEdit marks a fragment whose destination note carries an edit.
	ActionApplyEdit
	// ActionUnwrap marks a fragment whose destination note is flagged for deletion.
	ActionUnwrap
)

// String returns a short label for logging.
func (a PendingAction) String() string {
	switch a {
	case ActionAssignID:
		return "assign-id"
	case ActionApplyEdit:
		return "apply-edit"
	case ActionUnwrap:
		return "unwrap"
	default:
		return "none"
	}
}

// Fragment is one contiguous blockquote group found in a source note.
type Fragment struct {
	// Text is the quote body with the "> " prefix stripped, line breaks preserved.
	Text string
	// BlockID is the stable identifier ("^QuoteNNN"), empty until assigned.
	BlockID string
	// StartLine and EndLine are the 0-based line indexes of the first and
	// last quote-marked lines of the group within the note body. The
	// identifier line, when present, sits at EndLine+1.
	StartLine int
	EndLine   int

	Action PendingAction
}

// Request records intent on the fragment. Unwrap takes precedence: once set
// it cannot be downgraded, and an unwrap request overrides a pending edit.
func (f *Fragment) Request(a PendingAction) {
	if f.Action == ActionUnwrap {
		return
	}
	if a == ActionUnwrap {
		f.Action = ActionUnwrap
		return
	}
	if f.Action == ActionNone {
		f.Action = a
	}
}

// Key identifies the destination note that mirrors a fragment. Matching
// always happens on this pair; destination file names are derived and may
// be regenerated at any time.
type Key struct {
	// SourceTitle is the source note's file name without the .md extension.
	SourceTitle string
	// BlockID is the fragment's stable identifier, including the leading caret.
	BlockID string
}
