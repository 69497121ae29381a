package foreign

import (
	"sort"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/replay"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

// GenerateUpgradeMap seeds an upgrade with a rename for every revision
// that parses under a registered mapping and whose id changes under the
// new mapping.
func GenerateUpgradeMap(newMapping Mapping, registry *Registry, revids []string) map[string]string {
	renames := make(map[string]string)
	for _, revid := range revids {
		foreignID, _, ok := registry.Parse(revid)
		if !ok {
			// Not a foreign revision, nothing to do
			continue
		}
		newID := newMapping.RevisionID(foreignID)
		if newID == revid {
			continue
		}
		renames[revid] = newID
	}
	return renames
}

// CreateUpgradePlan builds the transpose plan migrating every mapped
// revision in the ancestry of revisionID (or the whole repository when
// empty) to the new mapping. Required new-mapping revisions missing from
// repo are fetched from the foreign repository first.
//
// Returns the plan and the complete rename map: the seed renames plus a
// rename for every rewritten descendant.
func CreateUpgradePlan(repo store.Repository, foreignRepo store.Repository,
	newMapping Mapping, registry *Registry, revisionID string,
	allowChanges bool) (engine.ReplaceMap, map[string]string, error) {

	var heads []string
	if revisionID == "" {
		all, err := repo.AllRevisions()
		if err != nil {
			return nil, nil, err
		}
		heads = all
	} else {
		heads = []string{revisionID}
	}
	graph, err := store.BuildGraph(repo, heads...)
	if err != nil {
		return nil, nil, err
	}

	potential := make([]string, 0)
	for id := range graph.Ancestry(heads...) {
		potential = append(potential, id)
	}
	sort.Strings(potential)
	renames := GenerateUpgradeMap(newMapping, registry, potential)

	// Make sure all the required new-mapping revisions are present
	for _, newID := range renames {
		if repo.Has(newID) {
			continue
		}
		if err := store.Fetch(repo, foreignRepo, newID); err != nil {
			return nil, nil, err
		}
	}

	if !allowChanges {
		for oldID, newID := range renames {
			oldRev, err := repo.Get(oldID)
			if err != nil {
				return nil, nil, err
			}
			newRev, err := repo.Get(newID)
			if err != nil {
				return nil, nil, err
			}
			if !oldRev.MetadataEquals(newRev) {
				return nil, nil, errors.NewChangedContentError(oldID)
			}
		}
	}

	plan, err := engine.GenerateTransposePlan(graph.ParentMap(), renames,
		repo.Parents,
		func(revid string) string {
			return UpgradedRevisionID(revid, newMapping.Suffix())
		})
	if err != nil {
		return nil, nil, err
	}

	allRenames := make(map[string]string, len(renames)+len(plan))
	for oldID, newID := range renames {
		allRenames[oldID] = newID
	}
	for oldID, r := range plan {
		allRenames[oldID] = r.NewID
	}
	return plan, allRenames, nil
}

// UpgradeRepository rewrites the mapped revisions in the ancestry of
// revisionID (or the whole repository when empty) under the new mapping,
// replaying descendants as snapshot copies. Returns the rename map.
func UpgradeRepository(repo store.Repository, foreignRepo store.Repository,
	newMapping Mapping, registry *Registry, revisionID string,
	allowChanges bool) (map[string]string, error) {

	plan, renames, err := CreateUpgradePlan(repo, foreignRepo, newMapping, registry, revisionID, allowChanges)
	if err != nil {
		return nil, err
	}

	fixRevID := func(revid string) string {
		foreignID, _, ok := registry.Parse(revid)
		if !ok {
			return revid
		}
		return newMapping.RevisionID(foreignID)
	}
	if err := engine.Rebase(repo, plan, replay.Snapshot(repo, renames, fixRevID)); err != nil {
		return nil, err
	}
	return renames, nil
}

// UpgradeWorkingTree upgrades the working copy's branch to the new
// mapping and moves the branch head to the renamed revision.
func UpgradeWorkingTree(wt *worktree.WorkTree, foreignRepo store.Repository,
	newMapping Mapping, registry *Registry, allowChanges bool) (map[string]string, error) {

	head, err := wt.LastRevision()
	if err != nil {
		return nil, err
	}
	if head == store.NullRevision {
		return nil, nil
	}
	renames, err := UpgradeRepository(wt.Repo, foreignRepo, newMapping, registry, head, allowChanges)
	if err != nil {
		return nil, err
	}
	if newHead, ok := renames[head]; ok {
		if err := wt.SetLastRevision(newHead); err != nil {
			return nil, err
		}
	}
	return renames, nil
}
