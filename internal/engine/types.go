package engine

// Repository is the read-only view of a revision store the engine needs.
// This is implemented by the types in the store package.
type Repository interface {
	// Has reports whether the revision is present
	Has(revid string) bool
	// Parents returns the parent ids of a revision
	Parents(revid string) ([]string, error)
}

// ReplayFunc materializes one rewritten revision. After a nil return the
// repository must contain newID with exactly newParents as its parents;
// the executor verifies this. A conflict is reported by returning an error
// satisfying errors.Is(err, errors.ErrConflict).
type ReplayFunc func(repo Repository, oldID, newID string, newParents []string) error

// Replacement is the rewrite target for one revision.
type Replacement struct {
	// NewID is the id the rewritten revision will be stored under
	NewID string
	// NewParents are the parent ids of the rewritten revision, in order
	NewParents []string
}

// ReplaceMap maps each revision still to be rewritten to its replacement.
// A key whose NewID already exists in the repository has been replayed.
// Entries are never deleted during execution.
type ReplaceMap map[string]Replacement

// LastRevisionInfo is the branch position captured when a plan is written,
// used by abort to restore the working copy.
type LastRevisionInfo struct {
	Revno      int
	RevisionID string
}

// ParentsFunc returns the current parent ids of a revision.
type ParentsFunc func(revid string) ([]string, error)

// GenerateIDFunc derives a fresh revision id for a rewritten revision. The
// result must differ from the input.
type GenerateIDFunc func(revid string) string
