package engine

import (
	"sort"

	"regraft.dev/regraft/internal/errors"
)

// GenerateTransposePlan creates a plan that relocates an arbitrary set of
// revisions in a revision graph.
//
// graph maps revision id to parent ids and must cover at least the
// ancestry of every affected revision. renames seeds the relocation with
// old id to new id pairs. Every transitive descendant of a renamed
// revision is given a freshly generated id, even when its own content is
// untouched: its parent chain changed, and two revisions with different
// histories must never share an id.
//
// The seed entries themselves are stripped from the returned map; they are
// inputs, not derived results.
func GenerateTransposePlan(graph map[string][]string, renames map[string]string,
	getParents ParentsFunc, generateID GenerateIDFunc) (ReplaceMap, error) {

	children := make(map[string][]string, len(graph))
	for r, ps := range graph {
		if _, ok := children[r]; !ok {
			children[r] = nil
		}
		for _, p := range ps {
			children[p] = append(children[p], r)
		}
	}

	replaceMap := make(ReplaceMap)
	todo := make([]string, 0, len(renames))
	for oldID := range renames {
		todo = append(todo, oldID)
	}
	sort.Strings(todo)
	for _, oldID := range todo {
		newID := renames[oldID]
		parents, err := getParents(newID)
		if err != nil {
			return nil, err
		}
		replaceMap[oldID] = Replacement{NewID: newID, NewParents: parents}
	}

	// Walk descendants breadth-first. The processed set guarantees each
	// reachable revision is expanded once, so the walk terminates on any
	// DAG.
	processed := make(map[string]bool)
	for len(todo) > 0 {
		r := todo[0]
		todo = todo[1:]
		if processed[r] {
			continue
		}
		processed[r] = true
		for _, c := range children[r] {
			if _, isSeed := renames[c]; isSeed {
				continue
			}
			var parents []string
			if existing, ok := replaceMap[c]; ok {
				parents = existing.NewParents
			} else {
				parents = append([]string(nil), graph[c]...)
			}
			parents = substitute(parents, r, replaceMap[r].NewID)
			newID := replaceMap[c].NewID
			if newID == "" {
				newID = generateID(c)
			}
			if newID == c {
				return nil, errors.NewInternalConsistencyError(c, "generated revision id equals the original")
			}
			replaceMap[c] = Replacement{NewID: newID, NewParents: parents}
			if !processed[c] {
				todo = append(todo, c)
			}
		}
	}

	for oldID := range renames {
		delete(replaceMap, oldID)
	}
	return replaceMap, nil
}

// substitute replaces occurrences of oldID in parents with newID, unless
// newID is already present.
func substitute(parents []string, oldID, newID string) []string {
	for _, p := range parents {
		if p == newID {
			return parents
		}
	}
	for i, p := range parents {
		if p == oldID {
			parents[i] = newID
		}
	}
	return parents
}
