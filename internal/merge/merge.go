// Package merge provides the three-way merge collaborator used by the
// working-copy replay strategy.
//
// Resolution is per file: a file changed on only one side takes that
// side, identical changes collapse, and a file changed on both sides is a
// conflict rendered with conflict markers. There is no intra-file merging.
package merge

import (
	"fmt"
	"sort"

	"regraft.dev/regraft/internal/store"
)

// Merger merges the snapshot being replayed into the working snapshot.
type Merger interface {
	// Merge resolves ours and theirs against their common base. It
	// returns the merged snapshot and the paths left in conflict.
	Merge(base, ours, theirs map[string]store.Entry) (map[string]store.Entry, []string)
}

// FileMerger is the default Merger.
type FileMerger struct {
	// OursLabel and TheirsLabel name the two sides in conflict markers
	OursLabel   string
	TheirsLabel string
}

// NewFileMerger creates a FileMerger with the default marker labels.
func NewFileMerger() *FileMerger {
	return &FileMerger{OursLabel: "working", TheirsLabel: "replayed"}
}

// Merge resolves ours and theirs against base, file by file.
func (m *FileMerger) Merge(base, ours, theirs map[string]store.Entry) (map[string]store.Entry, []string) {
	merged := make(map[string]store.Entry)
	var conflicts []string

	paths := make(map[string]bool)
	for p := range base {
		paths[p] = true
	}
	for p := range ours {
		paths[p] = true
	}
	for p := range theirs {
		paths[p] = true
	}

	for p := range paths {
		b, inBase := base[p]
		o, inOurs := ours[p]
		t, inTheirs := theirs[p]

		oursChanged := inOurs != inBase || (inOurs && o.Content != b.Content)
		theirsChanged := inTheirs != inBase || (inTheirs && t.Content != b.Content)

		switch {
		case !theirsChanged:
			if inOurs {
				merged[p] = o
			}
		case !oursChanged:
			if inTheirs {
				merged[p] = t
			}
		case inOurs && inTheirs && o.Content == t.Content:
			// Both sides made the same change
			merged[p] = t
		default:
			merged[p] = store.Entry{
				FileID:   conflictFileID(o, t, p),
				Revision: t.Revision,
				Content:  m.renderConflict(o, t),
			}
			conflicts = append(conflicts, p)
		}
	}
	sort.Strings(conflicts)
	return merged, conflicts
}

func (m *FileMerger) renderConflict(ours, theirs store.Entry) string {
	return fmt.Sprintf("<<<<<<< %s\n%s=======\n%s>>>>>>> %s\n",
		m.OursLabel, ensureTrailingNewline(ours.Content),
		ensureTrailingNewline(theirs.Content), m.TheirsLabel)
}

func conflictFileID(ours, theirs store.Entry, path string) string {
	if ours.FileID != "" {
		return ours.FileID
	}
	if theirs.FileID != "" {
		return theirs.FileID
	}
	return path
}

func ensureTrailingNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
