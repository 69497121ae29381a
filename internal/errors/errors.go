// Package errors provides sentinel errors and custom error types for the regraft application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNoPlan indicates that no rebase plan is stored for the working copy
	ErrNoPlan = errors.New("no rebase in progress")

	// ErrNoActiveRevision indicates that no revision is currently mid-replay
	ErrNoActiveRevision = errors.New("no active rebase revision")

	// ErrConflict indicates that replaying a revision produced unresolved conflicts
	ErrConflict = errors.New("replay conflict")

	// ErrPlanExists indicates that a rebase plan is already present
	ErrPlanExists = errors.New("rebase already in progress")

	// ErrRevisionNotFound indicates that a revision is not present in the repository
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrUncommittedChanges indicates that the working copy has uncommitted changes
	ErrUncommittedChanges = errors.New("working copy has uncommitted changes")
)

// FormatError represents a malformed persisted rebase plan.
// There is no forward or backward compatibility in the plan format; a
// header from any other version is rejected, never repaired.
type FormatError struct {
	Line string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unknown rebase plan format: %q", e.Line)
}

// NewFormatError creates a new FormatError
func NewFormatError(line string) *FormatError {
	return &FormatError{Line: line}
}

// ConflictError represents unresolved conflicts produced while replaying a
// revision. The persisted plan and active-revision marker stay in place so
// the user can resolve and continue, or abort.
type ConflictError struct {
	RevisionID string
	Paths      []string
}

func (e *ConflictError) Error() string {
	if len(e.Paths) > 0 {
		return fmt.Sprintf("conflicts replaying %s in: %s", e.RevisionID, strings.Join(e.Paths, ", "))
	}
	return fmt.Sprintf("conflicts replaying %s", e.RevisionID)
}

// Is returns true if the target error is ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(revisionID string, paths []string) *ConflictError {
	return &ConflictError{RevisionID: revisionID, Paths: paths}
}

// UnrelatedHistoriesError indicates that no common ancestor exists between
// two revisions whose merge base was required.
type UnrelatedHistoriesError struct {
	RevisionA string
	RevisionB string
}

func (e *UnrelatedHistoriesError) Error() string {
	return fmt.Sprintf("revisions %s and %s have no common ancestor", e.RevisionA, e.RevisionB)
}

// NewUnrelatedHistoriesError creates a new UnrelatedHistoriesError
func NewUnrelatedHistoriesError(a, b string) *UnrelatedHistoriesError {
	return &UnrelatedHistoriesError{RevisionA: a, RevisionB: b}
}

// InternalConsistencyError represents a violated replay post-condition: the
// replay function reported success but the repository does not contain the
// new revision with exactly the requested parents. This is a defect, not a
// recoverable condition.
type InternalConsistencyError struct {
	RevisionID string
	Message    string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency violation for %s: %s", e.RevisionID, e.Message)
}

// NewInternalConsistencyError creates a new InternalConsistencyError
func NewInternalConsistencyError(revisionID, format string, args ...interface{}) *InternalConsistencyError {
	return &InternalConsistencyError{RevisionID: revisionID, Message: fmt.Sprintf(format, args...)}
}

// PreconditionError represents malformed caller input, rejected before any
// state mutation.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// NewPreconditionError creates a new PreconditionError
func NewPreconditionError(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// UnresolvedRevisionsError indicates that the executor drained its worklist
// with revisions still unreplayed because one of their new parents never
// became available.
type UnresolvedRevisionsError struct {
	RevisionIDs []string
}

func (e *UnresolvedRevisionsError) Error() string {
	return fmt.Sprintf("%d revisions could not be replayed, blocked on missing parents: %s",
		len(e.RevisionIDs), strings.Join(e.RevisionIDs, ", "))
}

// NewUnresolvedRevisionsError creates a new UnresolvedRevisionsError
func NewUnresolvedRevisionsError(revisionIDs []string) *UnresolvedRevisionsError {
	return &UnresolvedRevisionsError{RevisionIDs: revisionIDs}
}

// RevisionNotFoundError represents a lookup of a revision id that is not
// present in the repository.
type RevisionNotFoundError struct {
	RevisionID string
}

func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("revision %s not found", e.RevisionID)
}

// Is returns true if the target error is ErrRevisionNotFound
func (e *RevisionNotFoundError) Is(target error) bool {
	return target == ErrRevisionNotFound
}

// NewRevisionNotFoundError creates a new RevisionNotFoundError
func NewRevisionNotFoundError(revisionID string) *RevisionNotFoundError {
	return &RevisionNotFoundError{RevisionID: revisionID}
}

// ChangedContentError indicates that upgrading the mapping of a revision
// would change its recorded metadata.
type ChangedContentError struct {
	RevisionID string
}

func (e *ChangedContentError) Error() string {
	return fmt.Sprintf("upgrade would change contents in revision %s; use --allow-changes to override", e.RevisionID)
}

// NewChangedContentError creates a new ChangedContentError
func NewChangedContentError(revisionID string) *ChangedContentError {
	return &ChangedContentError{RevisionID: revisionID}
}
