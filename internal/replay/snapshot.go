// Package replay provides the replay strategies driven by the rebase
// executor: snapshot copy (no working copy, used by bulk upgrades) and
// working-copy merge (used by interactive rebase).
package replay

import (
	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/store"
)

// Snapshot returns a replay function that copies each revision's snapshot
// under its new id and parents, without touching a working copy.
//
// Per-file last-modified markers are rewritten: entries modified in the
// replayed revision itself point at the new id, entries carried from
// renamed ancestors are mapped through renames, and fixRevID (optional)
// is applied first for callers that rewrite marker ids wholesale, such as
// mapping upgrades.
func Snapshot(repo store.Repository, renames map[string]string, fixRevID func(string) string) engine.ReplayFunc {
	return func(_ engine.Repository, oldID, newID string, newParents []string) error {
		oldRev, err := repo.Get(oldID)
		if err != nil {
			return err
		}

		files := make(map[string]store.Entry, len(oldRev.Files))
		for path, e := range oldRev.Files {
			if fixRevID != nil {
				e.Revision = fixRevID(e.Revision)
			}
			if e.Revision == oldID {
				// Modified last in the revision being copied
				e.Revision = newID
			} else if renamed, ok := renames[e.Revision]; ok {
				e.Revision = renamed
			}
			files[path] = e
		}

		return repo.Commit(&store.Revision{
			ID:        newID,
			Parents:   append([]string(nil), newParents...),
			Committer: oldRev.Committer,
			Timestamp: oldRev.Timestamp,
			Timezone:  oldRev.Timezone,
			Message:   oldRev.Message,
			RebaseOf:  oldID,
			Origin:    oldRev.Origin,
			Files:     files,
		})
	}
}
