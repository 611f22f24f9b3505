package floccus

import (
	"fmt"
	"log/slog"

	"github.com/whjimmortal/floccus/internal/errors"
	"github.com/whjimmortal/floccus/mapping"
	"github.com/whjimmortal/floccus/tree"
)

// dropStaleMappings removes every pairing whose local id is absent
// from localTree and whose server id is absent from serverTree: a
// pairing that outlived both items it once joined, typically left
// behind when the same item was deleted independently on each side
// between runs. ErrInconsistentMapping documents this as recoverable
// rather than fatal, so a hit here logs and prunes instead of aborting
// the run.
func (s *Syncer) dropStaleMappings(localTree, serverTree *tree.Folder) error {
	snap := s.store.Snapshot()
	localIDs := tree.CollectIDs(localTree)
	serverIDs := tree.CollectIDs(serverTree)

	for _, kind := range []tree.Kind{tree.KindFolder, tree.KindBookmark} {
		for localID, serverID := range snap.Pairs(kind) {
			if localIDs[kind][localID] || serverIDs[kind][serverID] {
				continue
			}
			s.logger.Warn("dropping stale mapping entry",
				slog.String("kind", kind.String()),
				slog.String("local_id", localID),
				slog.String("server_id", serverID),
			)
			if err := s.store.RemoveMapping(mapping.LocalToServer, kind, localID); err != nil {
				return fmt.Errorf("%w: removing pairing %s/%s: %v", errors.ErrInconsistentMapping, localID, serverID, err)
			}
		}
	}
	return nil
}
