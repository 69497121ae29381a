// Package engine implements the history-rewriting core of regraft.
//
// It is responsible for:
//   - Generating rebase plans: a simple linear plan for replaying a branch
//     slice onto a new base, and a transpose plan that relocates an
//     arbitrary rename set together with all transitive descendants
//   - Marshaling plans to and from their persisted textual form
//   - Executing a plan: dependency-ordered replay of rewritten revisions
//     with idempotent resume after interruption or conflict
//
// The engine owns only rename metadata and sequencing. Reading and writing
// commit content is delegated to a Repository and an injected ReplayFunc.
package engine
