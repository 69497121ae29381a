package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
)

// parentsOf builds a ParentsFunc over a static graph.
func parentsOf(graph map[string][]string) engine.ParentsFunc {
	return func(revid string) ([]string, error) {
		return graph[revid], nil
	}
}

func suffixID(revid string) string {
	return revid + "'"
}

func TestGenerateSimplePlan(t *testing.T) {
	graph := map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
		"D": {"C"},
	}

	t.Run("chains the rewritten slice onto the target", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"A", "B", "C", "D"}, "B", "", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.NoError(t, err)

		require.Equal(t, engine.ReplaceMap{
			"B": {NewID: "B'", NewParents: []string{"Z"}},
			"C": {NewID: "C'", NewParents: []string{"B'"}},
			"D": {NewID: "D'", NewParents: []string{"C'"}},
		}, replaceMap)
	})

	t.Run("stop bound is exclusive", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"A", "B", "C", "D"}, "B", "D", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.NoError(t, err)
		require.Len(t, replaceMap, 2)
		require.Contains(t, replaceMap, "B")
		require.Contains(t, replaceMap, "C")
	})

	t.Run("start equal to stop yields an empty plan", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"A", "B", "C"}, "B", "B", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.NoError(t, err)
		require.Empty(t, replaceMap)
	})

	t.Run("root revision gets the target as its sole parent", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"A"}, "", "", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.NoError(t, err)
		require.Equal(t, []string{"Z"}, replaceMap["A"].NewParents)
	})

	t.Run("rejects a start revision outside the history", func(t *testing.T) {
		var precondErr *errors.PreconditionError
		_, err := engine.GenerateSimplePlan(
			[]string{"A", "B"}, "X", "", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.ErrorAs(t, err, &precondErr)
	})

	t.Run("rejects a stop revision outside the history", func(t *testing.T) {
		var precondErr *errors.PreconditionError
		_, err := engine.GenerateSimplePlan(
			[]string{"A", "B"}, "", "X", "Z",
			nil, parentsOf(graph), suffixID, false)
		require.ErrorAs(t, err, &precondErr)
	})

	t.Run("rejects an id generator that returns the input", func(t *testing.T) {
		var internalErr *errors.InternalConsistencyError
		_, err := engine.GenerateSimplePlan(
			[]string{"A"}, "", "", "Z",
			nil, parentsOf(graph), func(revid string) string { return revid }, false)
		require.ErrorAs(t, err, &internalErr)
	})
}

func TestGenerateSimplePlanSkipAlreadyMerged(t *testing.T) {
	// M merges X, which the rebase target already contains.
	graph := map[string][]string{
		"M": {"A", "X", "Y"},
	}
	ontoAncestry := map[string]bool{"Z": true, "X": true}

	t.Run("drops merge parents in the target ancestry", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"M"}, "", "", "Z",
			ontoAncestry, parentsOf(graph), suffixID, true)
		require.NoError(t, err)
		require.Equal(t, []string{"Z", "Y"}, replaceMap["M"].NewParents)
	})

	t.Run("keeps a merge parent equal to the target head", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"M"}, "", "", "X",
			map[string]bool{"X": true}, parentsOf(graph), suffixID, true)
		require.NoError(t, err)
		require.Equal(t, []string{"X", "X", "Y"}, replaceMap["M"].NewParents)
	})

	t.Run("keeps every parent when disabled", func(t *testing.T) {
		replaceMap, err := engine.GenerateSimplePlan(
			[]string{"M"}, "", "", "Z",
			ontoAncestry, parentsOf(graph), suffixID, false)
		require.NoError(t, err)
		require.Equal(t, []string{"Z", "X", "Y"}, replaceMap["M"].NewParents)
	})
}
