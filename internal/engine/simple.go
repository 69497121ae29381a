package engine

import (
	"regraft.dev/regraft/internal/errors"
)

// GenerateSimplePlan creates a plan that replays a linear slice of history
// on top of another revision.
//
// history is the mainline of the branch being rebased, oldest first.
// startID and stopID optionally bound the slice to rewrite: the slice runs
// from startID (inclusive) to stopID (exclusive); empty means unbounded on
// that side. Both must be members of history when given. ontoAncestry is
// the full ancestor set of ontoID, used to drop merge parents the target
// already has when skipAlreadyMerged is set.
func GenerateSimplePlan(history []string, startID, stopID, ontoID string,
	ontoAncestry map[string]bool, getParents ParentsFunc,
	generateID GenerateIDFunc, skipAlreadyMerged bool) (ReplaceMap, error) {

	start := 0
	stop := len(history)
	if startID != "" {
		i := index(history, startID)
		if i < 0 {
			return nil, errors.NewPreconditionError("start revision %s is not in the history being rebased", startID)
		}
		start = i
	}
	if stopID != "" {
		i := index(history, stopID)
		if i < 0 {
			return nil, errors.NewPreconditionError("stop revision %s is not in the history being rebased", stopID)
		}
		stop = i
	}

	replaceMap := make(ReplaceMap)
	newParent := ontoID
	for k := start; k < stop; k++ {
		oldID := history[k]
		parents, err := getParents(oldID)
		if err != nil {
			return nil, err
		}
		// The first parent is by construction the previous history entry;
		// rewrite it to the running cursor.
		if len(parents) == 0 {
			parents = []string{newParent}
		} else {
			parents = append([]string{newParent}, parents[1:]...)
		}
		if skipAlreadyMerged {
			parents = dropMergedParents(parents, ontoID, ontoAncestry)
		}
		newID := generateID(oldID)
		if newID == oldID {
			return nil, errors.NewInternalConsistencyError(oldID, "generated revision id equals the original")
		}
		replaceMap[oldID] = Replacement{NewID: newID, NewParents: parents}
		newParent = newID
	}
	return replaceMap, nil
}

// dropMergedParents filters non-first parents that the rebase target
// already has in its ancestry. A parent equal to the target head itself is
// kept; replaying such a merge still records the relationship.
func dropMergedParents(parents []string, ontoID string, ontoAncestry map[string]bool) []string {
	filtered := parents[:1]
	for _, p := range parents[1:] {
		if p == ontoID || !ontoAncestry[p] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func index(history []string, revid string) int {
	for i, id := range history {
		if id == revid {
			return i
		}
	}
	return -1
}
