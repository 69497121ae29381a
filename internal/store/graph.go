package store

import (
	"regraft.dev/regraft/internal/errors"
)

// Graph is an immutable snapshot of revision ancestry, built once per
// operation and discarded after. It never reflects commits made while it
// is alive.
type Graph struct {
	parents map[string][]string
}

// NewGraph creates a graph from a parent map. The map is copied.
func NewGraph(parents map[string][]string) *Graph {
	g := &Graph{parents: make(map[string][]string, len(parents))}
	for id, ps := range parents {
		g.parents[id] = append([]string(nil), ps...)
	}
	return g
}

// BuildGraph walks the ancestry of heads in repo and snapshots it.
func BuildGraph(repo Repository, heads ...string) (*Graph, error) {
	g := &Graph{parents: make(map[string][]string)}
	todo := append([]string(nil), heads...)
	for len(todo) > 0 {
		id := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if id == NullRevision {
			continue
		}
		if _, ok := g.parents[id]; ok {
			continue
		}
		parents, err := repo.Parents(id)
		if err != nil {
			return nil, err
		}
		g.parents[id] = parents
		todo = append(todo, parents...)
	}
	return g, nil
}

// Has reports whether the revision is covered by the graph.
func (g *Graph) Has(revid string) bool {
	_, ok := g.parents[revid]
	return ok
}

// Parents returns the parent ids of a revision in the graph.
func (g *Graph) Parents(revid string) []string {
	return append([]string(nil), g.parents[revid]...)
}

// ParentMap returns a copy of the full id to parents mapping.
func (g *Graph) ParentMap() map[string][]string {
	m := make(map[string][]string, len(g.parents))
	for id, ps := range g.parents {
		m[id] = append([]string(nil), ps...)
	}
	return m
}

// Ancestry returns the set of ids reachable from the given ids, including
// the ids themselves. The null revision is never part of the result.
func (g *Graph) Ancestry(ids ...string) map[string]bool {
	seen := make(map[string]bool)
	todo := append([]string(nil), ids...)
	for len(todo) > 0 {
		id := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if id == NullRevision || seen[id] {
			continue
		}
		seen[id] = true
		todo = append(todo, g.parents[id]...)
	}
	return seen
}

// Children builds the reverse index from id to direct children.
func (g *Graph) Children() map[string][]string {
	children := make(map[string][]string, len(g.parents))
	for id := range g.parents {
		if _, ok := children[id]; !ok {
			children[id] = nil
		}
	}
	for id, ps := range g.parents {
		for _, p := range ps {
			if p == NullRevision {
				continue
			}
			children[p] = append(children[p], id)
		}
	}
	return children
}

// FirstParentHistory returns the mainline of head, oldest first.
func (g *Graph) FirstParentHistory(head string) []string {
	var history []string
	for id := head; id != NullRevision; {
		ps, ok := g.parents[id]
		if !ok && id != head {
			break
		}
		history = append(history, id)
		if len(ps) == 0 {
			break
		}
		id = ps[0]
	}
	// Reverse to oldest-first order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history
}

// MergeBase returns a deepest-first common ancestor of a and b, or an
// UnrelatedHistoriesError if the two revisions share no history.
func (g *Graph) MergeBase(a, b string) (string, error) {
	ancestryA := g.Ancestry(a)
	todo := []string{b}
	seen := make(map[string]bool)
	for len(todo) > 0 {
		id := todo[0]
		todo = todo[1:]
		if id == NullRevision || seen[id] {
			continue
		}
		seen[id] = true
		if ancestryA[id] {
			return id, nil
		}
		todo = append(todo, g.parents[id]...)
	}
	return "", errors.NewUnrelatedHistoriesError(a, b)
}
