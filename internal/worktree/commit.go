package worktree

import (
	"time"

	"regraft.dev/regraft/internal/store"
)

// CommitOptions control how a working copy commit is recorded.
type CommitOptions struct {
	Message   string
	Committer string
	// Timestamp is seconds since the epoch; zero means now
	Timestamp int64
	// Timezone is the committer's UTC offset in seconds
	Timezone int
	// RevisionID pins the id of the new revision; empty generates one
	RevisionID string
	// RebaseOf records replay provenance
	RebaseOf string
	// Origin records foreign-system provenance
	Origin string
}

// Commit records the working files as a new revision, advances the branch
// and clears pending merges.
func (wt *WorkTree) Commit(opts CommitOptions) (*store.Revision, error) {
	if opts.Timestamp == 0 {
		opts.Timestamp = time.Now().Unix()
	}
	revid := opts.RevisionID
	if revid == "" {
		revid = store.GenerateRevisionID(opts.Committer, opts.Timestamp)
	}

	parents, err := wt.ParentIDs()
	if err != nil {
		return nil, err
	}
	basis, err := wt.BasisSnapshot()
	if err != nil {
		return nil, err
	}
	disk, err := wt.DiskSnapshot()
	if err != nil {
		return nil, err
	}

	files := make(map[string]store.Entry, len(disk))
	for path, e := range disk {
		if be, ok := basis[path]; ok {
			if be.Content == e.Content {
				// Unchanged since the basis; keep its last-modified marker
				files[path] = be
				continue
			}
			files[path] = store.Entry{FileID: be.FileID, Revision: revid, Content: e.Content}
			continue
		}
		files[path] = store.Entry{FileID: path, Revision: revid, Content: e.Content}
	}

	rev := &store.Revision{
		ID:        revid,
		Parents:   parents,
		Committer: opts.Committer,
		Timestamp: opts.Timestamp,
		Timezone:  opts.Timezone,
		Message:   opts.Message,
		RebaseOf:  opts.RebaseOf,
		Origin:    opts.Origin,
		Files:     files,
	}
	if err := wt.Repo.Commit(rev); err != nil {
		return nil, err
	}

	info, err := wt.LastRevisionInfo()
	if err != nil {
		return nil, err
	}
	content := formatBranch(info.Revno+1, revid)
	if err := wt.writeControlFile(branchFilename, content); err != nil {
		return nil, err
	}
	if err := wt.setPendingMerges(nil); err != nil {
		return nil, err
	}
	return rev, nil
}
