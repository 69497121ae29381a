// Package foreign implements identifier mappings for revisions imported
// from foreign version control systems, and the bulk upgrade that migrates
// revisions from an older mapping scheme to a newer one.
package foreign

import (
	"fmt"
	"strings"
)

// upgradeSuffix marks revision ids created by a mapping upgrade.
const upgradeSuffix = "-upgrade"

// Mapping converts between foreign revision identifiers and native
// revision ids. A mapping version change changes every mapped id, which
// is what the upgrade flow migrates.
type Mapping interface {
	// Suffix identifies this mapping in ids generated for rewritten
	// descendants, e.g. "-git-v2"
	Suffix() string
	// RevisionID converts a foreign identifier to a native revision id
	RevisionID(foreign string) string
	// Parse extracts the foreign identifier from a native revision id,
	// reporting whether the id belongs to this mapping
	Parse(revid string) (string, bool)
}

// GitMapping maps git commit hashes to native revision ids as
// "git-v<N>:<hash>".
type GitMapping struct {
	version int
}

// NewGitMappingV1 returns the obsolete version 1 git mapping.
func NewGitMappingV1() *GitMapping {
	return &GitMapping{version: 1}
}

// NewGitMappingV2 returns the current git mapping.
func NewGitMappingV2() *GitMapping {
	return &GitMapping{version: 2}
}

func (m *GitMapping) prefix() string {
	return fmt.Sprintf("git-v%d:", m.version)
}

// Suffix identifies this mapping in generated ids
func (m *GitMapping) Suffix() string {
	return fmt.Sprintf("-git-v%d", m.version)
}

// RevisionID converts a git hash to a native revision id
func (m *GitMapping) RevisionID(foreign string) string {
	return m.prefix() + foreign
}

// Parse extracts the git hash from a native revision id
func (m *GitMapping) Parse(revid string) (string, bool) {
	return strings.CutPrefix(revid, m.prefix())
}

// Registry is the set of known mappings. It is an explicit injected
// value; nothing in this package keeps process-wide mapping state.
type Registry struct {
	mappings []Mapping
}

// NewRegistry creates a registry over the given mappings.
func NewRegistry(mappings ...Mapping) *Registry {
	return &Registry{mappings: mappings}
}

// Parse finds the mapping a revision id belongs to and extracts its
// foreign identifier.
func (r *Registry) Parse(revid string) (string, Mapping, bool) {
	for _, m := range r.mappings {
		if foreign, ok := m.Parse(revid); ok {
			return foreign, m, true
		}
	}
	return "", nil, false
}

// UpgradedRevisionID derives the id for the upgraded form of a revision
// whose ancestry changed but which is not itself mapped. An existing
// mapping-upgrade suffix is collapsed first so repeated upgrades do not
// stack suffixes.
func UpgradedRevisionID(revid, mappingSuffix string) string {
	if strings.HasSuffix(revid, upgradeSuffix) {
		if i := strings.LastIndex(revid, "-git"); i >= 0 {
			revid = revid[:i]
		} else {
			revid = strings.TrimSuffix(revid, upgradeSuffix)
		}
	}
	return revid + mappingSuffix + upgradeSuffix
}
