// Package store implements the revision storage layer for regraft.
//
// A repository is an append-only set of immutable revisions addressed by
// opaque string ids. The package provides:
//   - The Revision record and the reserved null revision id
//   - A Repository interface with in-memory and on-disk implementations
//   - A Graph snapshot for ancestry queries (ancestry sets, merge base,
//     first-parent history, children index)
//   - Revision id generation for rewritten revisions
//
// Revision content is modeled as a flat snapshot of file entries. Each
// entry carries a last-modified revision marker, which the replay
// strategies rewrite when history is rewritten.
package store
