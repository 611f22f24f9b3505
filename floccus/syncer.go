// Package floccus orchestrates one sync run: loading both trees,
// picking the first-sync or normal-sync reconciler, running the
// reorder post-processor, applying the resulting plans, and flushing
// the mapping store.
package floccus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/whjimmortal/floccus/diff"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/reconcile"
	"github.com/whjimmortal/floccus/scanner"
	"github.com/whjimmortal/floccus/tree"
)

// Syncer owns one sync run's dependencies: the two tree providers and
// the persistent mapping store between them.
type Syncer struct {
	local  tree.Provider
	server tree.Provider
	store  mapping.Store
	logger *slog.Logger
}

// NewSyncer returns a Syncer over the given providers and mapping store.
func NewSyncer(local, server tree.Provider, store mapping.Store, logger *slog.Logger) *Syncer {
	return &Syncer{local: local, server: server, store: store, logger: logger}
}

// Run performs one full sync pass: load, diff, reconcile, reorder,
// apply, flush. It returns a Report describing what was applied to
// each side.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	localTree, err := s.local.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading local tree: %w", err)
	}
	localTree, err = hydrate(ctx, s.local, localTree)
	if err != nil {
		return nil, fmt.Errorf("hydrating local tree: %w", err)
	}

	serverTree, err := s.server.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading server tree: %w", err)
	}
	serverTree, err = hydrate(ctx, s.server, serverTree)
	if err != nil {
		return nil, fmt.Errorf("hydrating server tree: %w", err)
	}

	if err := s.dropStaleMappings(localTree, serverTree); err != nil {
		return nil, fmt.Errorf("pruning stale mappings: %w", err)
	}

	snap := s.store.Snapshot()
	firstSync := snap.Empty()

	if firstSync {
		s.logger.Info("mapping table empty, running first-sync merge")
		localPlan, serverPlan, err := reconcile.ReconcileFirstSync(ctx, localTree, serverTree, s.store)
		if err != nil {
			return nil, fmt.Errorf("first-sync reconciliation: %w", err)
		}
		return s.finish(ctx, localTree, serverTree, localPlan, serverPlan, snap, true)
	}

	mappedServerAsLocal := translateTree(serverTree, snap, mapping.ServerToLocal).(*tree.Folder)
	mappedLocalAsServer := translateTree(localTree, snap, mapping.LocalToServer).(*tree.Folder)

	localDiff, err := scanner.Scan(ctx, mappedServerAsLocal, localTree, nil, scanner.Options{PreserveOrder: true, CheckHashes: true})
	if err != nil {
		return nil, fmt.Errorf("scanning local tree: %w", err)
	}
	serverDiff, err := scanner.Scan(ctx, mappedLocalAsServer, serverTree, nil, scanner.Options{PreserveOrder: true, CheckHashes: true})
	if err != nil {
		return nil, fmt.Errorf("scanning server tree: %w", err)
	}

	localPlan, serverPlan, err := reconcile.Reconcile(ctx, localTree, serverTree, localDiff, serverDiff, snap, s.store)
	if err != nil {
		return nil, fmt.Errorf("reconciling: %w", err)
	}

	return s.finish(ctx, localTree, serverTree, localPlan, serverPlan, snap, false)
}

// finish runs the reorder post-processor (local authoritative,
// forced for first sync too), applies both plans, and flushes the
// mapping store once both sides have taken their actions: mapping
// writes are only persisted after the plan they came from has been
// applied.
func (s *Syncer) finish(ctx context.Context, localTree, serverTree *tree.Folder, localPlan, serverPlan *diff.Diff, snap mapping.Snapshot, firstSync bool) (*Report, error) {
	reorderedServer := reconcile.Reorder(serverPlan, serverTree, localTree, snap, mapping.LocalToServer, nil)
	skipLocal := translateIDs(reorderedServer, snap, mapping.ServerToLocal)
	reconcile.Reorder(localPlan, localTree, serverTree, snap, mapping.ServerToLocal, skipLocal)

	if err := applyPlan(ctx, s.server, serverPlan, mapping.LocalToServer, s.store); err != nil {
		return nil, fmt.Errorf("applying server plan: %w", err)
	}
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("flushing mapping store after server plan: %w", err)
	}

	if err := applyPlan(ctx, s.local, localPlan, mapping.ServerToLocal, s.store); err != nil {
		return nil, fmt.Errorf("applying local plan: %w", err)
	}
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("flushing mapping store after local plan: %w", err)
	}

	report := &Report{
		FirstSync:           firstSync,
		LocalActions:        localPlan.Len(),
		ServerActions:       serverPlan.Len(),
		LocalActionsByType:  summarize(localPlan),
		ServerActionsByType: summarize(serverPlan),
	}
	s.logger.Info("sync run complete",
		slog.Bool("first_sync", firstSync),
		slog.Int("local_actions", report.LocalActions),
		slog.Int("server_actions", report.ServerActions),
	)
	return report, nil
}

// flusher is implemented by mapping.Store implementations that batch
// writes (BoltStore); mapping.MemStore applies writes immediately and
// does not need it, so it is asserted for rather than part of the
// mapping.Store interface itself.
type flusher interface {
	Flush() error
}

func (s *Syncer) flush() error {
	f, ok := s.store.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}
