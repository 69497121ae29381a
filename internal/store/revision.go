package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NullRevision is the reserved revision id naming the empty left-most
// ancestor of every history. It is never stored and never replayed, and it
// doubles as the "no revision" sentinel in persisted markers.
const NullRevision = "null:"

// Entry is one file in a revision snapshot.
type Entry struct {
	// FileID identifies the file across renames
	FileID string `json:"file_id"`
	// Revision is the id of the revision that last modified this file
	Revision string `json:"revision"`
	// Content is the full file content
	Content string `json:"content"`
}

// Revision is one immutable commit in the history DAG.
type Revision struct {
	ID        string   `json:"id"`
	Parents   []string `json:"parents"`
	Committer string   `json:"committer"`
	// Timestamp is seconds since the epoch
	Timestamp int64 `json:"timestamp"`
	// Timezone is the committer's UTC offset in seconds
	Timezone int    `json:"timezone"`
	Message  string `json:"message"`

	// RebaseOf records the revision this one was replayed from, if any
	RebaseOf string `json:"rebase_of,omitempty"`
	// Origin records the foreign-system identity this revision was mapped
	// from, if any
	Origin string `json:"origin,omitempty"`

	// Files is the snapshot, keyed by path
	Files map[string]Entry `json:"files"`
}

// Clone returns a deep copy of the revision.
func (r *Revision) Clone() *Revision {
	c := *r
	c.Parents = append([]string(nil), r.Parents...)
	c.Files = make(map[string]Entry, len(r.Files))
	for path, e := range r.Files {
		c.Files[path] = e
	}
	return &c
}

// MetadataEquals reports whether two revisions are identical apart from
// their ids and parents. Used to verify that a mapping upgrade does not
// change recorded content.
func (r *Revision) MetadataEquals(other *Revision) bool {
	if r.Committer != other.Committer ||
		r.Timestamp != other.Timestamp ||
		r.Timezone != other.Timezone ||
		r.Message != other.Message {
		return false
	}
	if len(r.Files) != len(other.Files) {
		return false
	}
	for path, e := range r.Files {
		oe, ok := other.Files[path]
		if !ok || oe.Content != e.Content {
			return false
		}
	}
	return true
}

// GenerateRevisionID derives a fresh revision id for a rewritten revision.
// The shape follows <user>-<utc timestamp>-<unique suffix>; the unique
// suffix guarantees the result differs from every existing id.
func GenerateRevisionID(committer string, timestamp int64) string {
	user := committer
	if i := strings.LastIndex(committer, "<"); i >= 0 {
		user = strings.TrimRight(committer[i+1:], ">")
	}
	if i := strings.Index(user, "@"); i >= 0 {
		user = user[:i]
	}
	user = sanitizeIDToken(user)
	if user == "" {
		user = "unknown"
	}
	date := time.Unix(timestamp, 0).UTC().Format("20060102150405")
	unique := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%s-%s", user, date, unique)
}

// sanitizeIDToken strips characters that are not legal inside a revision
// id. Ids are split on spaces in the persisted plan format, so whitespace
// can never appear in one.
func sanitizeIDToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
