package engine

import (
	"sort"

	"regraft.dev/regraft/internal/errors"
)

// Todo returns the revisions in the replace map whose new id does not yet
// exist in the repository, sorted for deterministic processing.
func Todo(repo Repository, replaceMap ReplaceMap) []string {
	var todo []string
	for oldID, r := range replaceMap {
		if !repo.Has(r.NewID) {
			todo = append(todo, oldID)
		}
	}
	sort.Strings(todo)
	return todo
}

// Rebase replays every pending revision in the replace map through replay,
// in dependency order: a revision is replayed only once all of its new
// parents exist in the repository.
//
// The call is idempotent: entries whose new id already exists are skipped,
// so re-invoking with the same map after an interruption or conflict
// resumes exactly where it left off. A conflict from replay propagates
// immediately and leaves the repository consistent for resumption.
//
// If the worklist drains with revisions still unreplayed (a new parent
// that never appeared, e.g. a missing fetch), an UnresolvedRevisionsError
// is returned naming them.
func Rebase(repo Repository, replaceMap ReplaceMap, replay ReplayFunc) error {
	todo := Todo(repo, replaceMap)

	// Reverse index from a missing parent id to the revisions waiting on
	// it. Rebuilt from scratch on every invocation; never persisted.
	dependencies := make(map[string][]string)
	for _, oldID := range todo {
		for _, p := range replaceMap[oldID].NewParents {
			if repo.Has(p) {
				continue
			}
			dependencies[p] = append(dependencies[p], oldID)
		}
	}

	for len(todo) > 0 {
		oldID := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		r := replaceMap[oldID]
		if !allPresent(repo, r.NewParents) {
			// Still blocked; the dependency index will requeue it once
			// the missing parent is replayed.
			continue
		}
		if repo.Has(r.NewID) {
			// Already converted on a previous invocation
			continue
		}
		if err := replay(repo, oldID, r.NewID, r.NewParents); err != nil {
			return err
		}
		if err := checkReplayed(repo, r); err != nil {
			return err
		}
		if waiting, ok := dependencies[r.NewID]; ok {
			todo = append(todo, waiting...)
			delete(dependencies, r.NewID)
		}
	}

	if unresolved := Todo(repo, replaceMap); len(unresolved) > 0 {
		return errors.NewUnresolvedRevisionsError(unresolved)
	}
	return nil
}

// checkReplayed asserts the replay post-condition: the new revision exists
// and carries exactly the requested parents.
func checkReplayed(repo Repository, r Replacement) error {
	if !repo.Has(r.NewID) {
		return errors.NewInternalConsistencyError(r.NewID, "revision missing after replay")
	}
	parents, err := repo.Parents(r.NewID)
	if err != nil {
		return err
	}
	if len(parents) != len(r.NewParents) {
		return errors.NewInternalConsistencyError(r.NewID, "expected parents %v, got %v", r.NewParents, parents)
	}
	for i := range parents {
		if parents[i] != r.NewParents[i] {
			return errors.NewInternalConsistencyError(r.NewID, "expected parents %v, got %v", r.NewParents, parents)
		}
	}
	return nil
}

func allPresent(repo Repository, revids []string) bool {
	for _, id := range revids {
		if !repo.Has(id) {
			return false
		}
	}
	return true
}
