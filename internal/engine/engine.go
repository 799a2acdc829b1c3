// Package engine reconciles quote fragments between a source vault and a
// destination vault. A run is a pure function of current on-disk state:
// nothing is remembered between runs, so an interrupted run self-heals on
// the next invocation and re-running an unchanged pair of vaults performs
// zero writes.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/halvard/quotesync/internal/apperr"
	"github.com/halvard/quotesync/internal/gateway"
	"github.com/halvard/quotesync/internal/models"
	"github.com/halvard/quotesync/internal/storage"
	"github.com/halvard/quotesync/internal/transform"
	"github.com/halvard/quotesync/internal/vault"
)

// Engine drives one reconciliation pass.
type Engine struct {
	src       storage.Provider
	dst       storage.Provider
	srcGW     *gateway.Gateway
	dstGW     *gateway.Gateway
	pipeline  *transform.Pipeline
	vaultName string
	logger    *slog.Logger
}

// Config collects the engine's collaborators.
type Config struct {
	Source      storage.Provider
	Destination storage.Provider
	// VaultName is the source vault name embedded in back-link addresses.
	VaultName string
	Pipeline  *transform.Pipeline
	Logger    *slog.Logger
	DryRun    bool
}

// New builds an engine. All mutations go through write gateways so a
// dry-run engine makes identical decisions without touching the filesystem.
func New(cfg Config) *Engine {
	return &Engine{
		src:       cfg.Source,
		dst:       cfg.Destination,
		srcGW:     gateway.New(cfg.Source, cfg.Logger, "source", cfg.DryRun),
		dstGW:     gateway.New(cfg.Destination, cfg.Logger, "destination", cfg.DryRun),
		pipeline:  cfg.Pipeline,
		vaultName: cfg.VaultName,
		logger:    cfg.Logger,
	}
}

// Run executes one full reconciliation pass:
//
//  1. migrate stale-format destination notes,
//  2. propagate destination intent (delete → unwrap, edit → rewrite) back
//     into source notes,
//  3. assign missing block identifiers and mirror fragments of every
//     sync-enabled source note into the destination vault,
//  4. delete orphaned destination notes.
//
// Document-local failures are recorded in the report and skipped; only a
// vault-level failure aborts the run.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}

	destNotes, loadErrs := vault.LoadDestVault(e.dst)
	for _, err := range loadErrs {
		rep.recordError(e.logger, err.Error())
	}
	e.logAdvisories(destNotes)

	if err := e.transformSweep(ctx, destNotes, rep); err != nil {
		return rep, err
	}

	sources, err := e.loadSources(rep)
	if err != nil {
		return rep, err
	}

	removed := e.reversePropagate(ctx, destNotes, sources, rep)
	live, failed := e.forwardPass(ctx, sources, destNotes, removed, rep)
	e.orphanSweep(destNotes, removed, live, failed, rep)

	return rep, ctx.Err()
}

// transformSweep migrates every destination note that is below the
// pipeline's current version, before any body comparison happens.
func (e *Engine) transformSweep(ctx context.Context, destNotes []*vault.QuoteNote, rep *Report) error {
	for _, q := range destNotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if applied := e.pipeline.Apply(q.Doc); applied == 0 {
			continue
		}
		// A migration may rewrite the body, so the cached text is refreshed.
		q.Text = vault.ExtractQuoteText(q.Doc.Body)
		if err := e.dstGW.Write("transform", q.Path, q.Render()); err != nil {
			rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
			continue
		}
		rep.NotesTransformed++
	}
	return nil
}

// loadSources reads every source note into memory. Reconciliation decisions
// are made against this in-memory state, which is what keeps dry-run and
// real runs in lockstep.
func (e *Engine) loadSources(rep *Report) (map[string]*vault.SourceNote, error) {
	infos, err := e.src.List("")
	if err != nil {
		return nil, fmt.Errorf("engine: list source vault: %w", err)
	}
	sources := make(map[string]*vault.SourceNote, len(infos))
	for _, info := range infos {
		data, err := e.src.Read(info.Path)
		if err != nil {
			rep.recordError(e.logger, fmt.Sprintf("%s: %v", info.Path, err))
			continue
		}
		sources[info.Path] = vault.ParseSource(info.Path, data)
	}
	return sources, nil
}

// reversePropagate carries destination-side intent back into source notes.
// Deletion wins over a simultaneous edit. Returns the set of destination
// notes consumed by deletion.
func (e *Engine) reversePropagate(ctx context.Context, destNotes []*vault.QuoteNote,
	sources map[string]*vault.SourceNote, rep *Report) map[*vault.QuoteNote]bool {

	removed := make(map[*vault.QuoteNote]bool)
	for _, q := range destNotes {
		if ctx.Err() != nil {
			return removed
		}
		action := q.PendingAction()
		if action == models.ActionNone {
			continue
		}
		src := resolveSource(sources, q.SourcePath())
		if src == nil {
			rep.recordError(e.logger, fmt.Sprintf("%s: %v: %q", q.Path, apperr.ErrSourceMissing, q.SourcePath()))
			continue
		}
		blockID := q.Key().BlockID

		switch action {
		case models.ActionUnwrap:
			if src.Unwrap(blockID) {
				e.writeSource(src, "unwrap", rep)
				rep.QuotesUnwrapped++
			} else {
				e.logger.Warn("unwrap: fragment not found in source",
					slog.String("path", q.Path), slog.String("block_id", blockID))
			}
			if err := e.dstGW.Delete("delete-flag", q.Path); err != nil {
				rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
				continue
			}
			removed[q] = true
			rep.QuotesDeleted++

		case models.ActionApplyEdit:
			if !src.ReplaceFragment(blockID, q.Text) {
				rep.recordError(e.logger, fmt.Sprintf("%s: fragment %s not found for edit", q.Path, blockID))
				continue
			}
			e.writeSource(src, "apply-edit", rep)
			rep.EditsApplied++
			q.ClearEdited()
			if err := e.dstGW.Write("clear-edited", q.Path, q.Render()); err != nil {
				rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
			}
		}
	}
	return removed
}

// writeSource persists a modified source note through the gateway.
func (e *Engine) writeSource(s *vault.SourceNote, action string, rep *Report) {
	if err := e.srcGW.Write(action, s.Path, s.Content()); err != nil {
		rep.recordError(e.logger, fmt.Sprintf("%s: %v", s.Path, err))
		return
	}
	s.MarkClean()
}

// forwardPass mirrors fragments of every sync-enabled source note into the
// destination vault. Returns the live join keys and the titles of source
// notes that failed to parse (their destination notes must survive the
// orphan sweep).
func (e *Engine) forwardPass(ctx context.Context, sources map[string]*vault.SourceNote,
	destNotes []*vault.QuoteNote, removed map[*vault.QuoteNote]bool,
	rep *Report) (map[models.Key]bool, map[string]bool) {

	index := make(map[models.Key]*vault.QuoteNote, len(destNotes))
	for _, q := range destNotes {
		if removed[q] {
			continue
		}
		if key := q.Key(); key.SourceTitle != "" && key.BlockID != "" {
			if kept, dup := index[key]; dup {
				// The key-to-note relationship is one-to-one; a second note
				// for the same key needs a human to pick the survivor.
				e.logger.Warn("duplicate destination note for key",
					slog.String("path", q.Path),
					slog.String("kept", kept.Path),
					slog.String("source_title", key.SourceTitle),
					slog.String("block_id", key.BlockID))
			} else {
				index[key] = q
			}
		}
	}

	live := make(map[models.Key]bool)
	failed := make(map[string]bool)

	var order []string
	for rel, s := range sources {
		if s.SyncEnabled() {
			order = append(order, rel)
		}
	}
	sort.Strings(order)

	for _, rel := range order {
		if ctx.Err() != nil {
			return live, failed
		}
		s := sources[rel]
		frags, err := s.Fragments()
		if err != nil {
			failed[s.Title()] = true
			rep.recordError(e.logger, fmt.Sprintf("%s: %v", rel, err))
			continue
		}

		if n := s.AssignBlockIDs(frags); n > 0 {
			rep.BlockIDsAssigned += n
			if err := e.srcGW.Write("assign-ids", rel, s.Content()); err != nil {
				rep.recordError(e.logger, fmt.Sprintf("%s: %v", rel, err))
			}
			s.MarkClean()
		}

		title := s.Title()
		for _, f := range frags {
			key := models.Key{SourceTitle: title, BlockID: f.BlockID}
			live[key] = true

			q, ok := index[key]
			if !ok {
				q = vault.NewQuoteNote(e.vaultName, rel, f.BlockID, f.Text, e.pipeline.CurrentVersion())
				if err := e.dstGW.Write("create", q.Path, q.Render()); err != nil {
					rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
					continue
				}
				index[key] = q
				rep.QuotesCreated++
				continue
			}
			if q.Text != f.Text {
				q.SetText(e.vaultName, f.Text)
				if err := e.dstGW.Write("update", q.Path, q.Render()); err != nil {
					rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
					continue
				}
				rep.QuotesUpdated++
			}
		}
		rep.SourceFilesProcessed++
	}
	return live, failed
}

// orphanSweep deletes destination notes whose join key no longer exists
// among current fragments. Notes whose source note failed to parse are
// spared; notes without a usable join key are reported and left alone.
func (e *Engine) orphanSweep(destNotes []*vault.QuoteNote, removed map[*vault.QuoteNote]bool,
	live map[models.Key]bool, failed map[string]bool, rep *Report) {

	for _, q := range destNotes {
		if removed[q] {
			continue
		}
		key := q.Key()
		if key.SourceTitle == "" || key.BlockID == "" {
			e.logger.Warn("skipping note without join key", slog.String("path", q.Path))
			continue
		}
		if live[key] || failed[key.SourceTitle] {
			continue
		}
		if err := e.dstGW.Delete("orphan", q.Path); err != nil {
			rep.recordError(e.logger, fmt.Sprintf("%s: %v", q.Path, err))
			continue
		}
		rep.QuotesDeleted++
	}
}

// logAdvisories reports unrecognised destination frontmatter fields. The
// values are preserved verbatim but carry no meaning for the engine.
func (e *Engine) logAdvisories(destNotes []*vault.QuoteNote) {
	for _, q := range destNotes {
		if fields := q.UnknownFields(); len(fields) > 0 {
			e.logger.Warn("unrecognised metadata fields",
				slog.String("path", q.Path),
				slog.String("fields", strings.Join(fields, ",")))
		}
	}
}

// resolveSource looks a destination note's source reference up in the
// loaded set, tolerating a missing .md extension in the recorded path.
func resolveSource(sources map[string]*vault.SourceNote, rel string) *vault.SourceNote {
	if rel == "" {
		return nil
	}
	if s, ok := sources[rel]; ok {
		return s
	}
	if !strings.HasSuffix(rel, ".md") {
		if s, ok := sources[rel+".md"]; ok {
			return s
		}
	}
	return nil
}
