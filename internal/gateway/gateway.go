// Package gateway funnels every mutating vault operation through one
// chokepoint. In dry-run mode the intended action is logged and no I/O
// happens, which guarantees a simulated run reaches the exact same
// decisions as a real one.
package gateway

import (
	"log/slog"

	"github.com/halvard/quotesync/internal/storage"
)

// Gateway wraps a storage provider for one vault.
type Gateway struct {
	store  storage.Provider
	logger *slog.Logger
	vault  string
	dryRun bool
}

// New creates a gateway for the named vault.
func New(store storage.Provider, logger *slog.Logger, vault string, dryRun bool) *Gateway {
	return &Gateway{store: store, logger: logger, vault: vault, dryRun: dryRun}
}

// DryRun reports whether the gateway suppresses I/O.
func (g *Gateway) DryRun() bool {
	return g.dryRun
}

// Write persists content at path, or only logs the intent in dry-run mode.
// action names the reconciliation decision behind the write.
func (g *Gateway) Write(action, path string, content []byte) error {
	g.logger.Info("write",
		slog.String("action", action),
		slog.String("vault", g.vault),
		slog.String("path", path),
		slog.Bool("dry_run", g.dryRun))
	if g.dryRun {
		return nil
	}
	return g.store.Write(path, content)
}

// Delete removes the file at path, or only logs the intent in dry-run mode.
func (g *Gateway) Delete(action, path string) error {
	g.logger.Info("delete",
		slog.String("action", action),
		slog.String("vault", g.vault),
		slog.String("path", path),
		slog.Bool("dry_run", g.dryRun))
	if g.dryRun {
		return nil
	}
	return g.store.Delete(path)
}
