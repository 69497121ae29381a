package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"regraft.dev/regraft/internal/errors"
)

// planVersion is the persisted plan format version. There is no
// compatibility across versions; any other header is rejected.
const planVersion = 1

// planHeader is the exact first line of a persisted plan.
var planHeader = fmt.Sprintf("# regraft rebase plan %d", planVersion)

// MarshalPlan renders a rebase plan to its persisted textual form.
// Entries are emitted in sorted key order so the output is deterministic.
// Revision ids must not contain spaces or newlines; the format splits
// tokens on single spaces.
func MarshalPlan(last LastRevisionInfo, replaceMap ReplaceMap) string {
	var b strings.Builder
	b.WriteString(planHeader)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%d %s\n", last.Revno, last.RevisionID)
	oldIDs := make([]string, 0, len(replaceMap))
	for oldID := range replaceMap {
		oldIDs = append(oldIDs, oldID)
	}
	sort.Strings(oldIDs)
	for _, oldID := range oldIDs {
		r := replaceMap[oldID]
		b.WriteString(oldID)
		b.WriteByte(' ')
		b.WriteString(r.NewID)
		for _, p := range r.NewParents {
			b.WriteByte(' ')
			b.WriteString(p)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// UnmarshalPlan parses the persisted textual form of a rebase plan.
// UnmarshalPlan(MarshalPlan(x)) reproduces x exactly.
func UnmarshalPlan(text string) (LastRevisionInfo, ReplaceMap, error) {
	var last LastRevisionInfo
	lines := strings.Split(text, "\n")
	if len(lines) < 2 || lines[0] != planHeader {
		line := ""
		if len(lines) > 0 {
			line = lines[0]
		}
		return last, nil, errors.NewFormatError(line)
	}
	revno, revid, ok := strings.Cut(lines[1], " ")
	if !ok {
		return last, nil, errors.NewFormatError(lines[1])
	}
	n, err := strconv.Atoi(revno)
	if err != nil {
		return last, nil, errors.NewFormatError(lines[1])
	}
	last = LastRevisionInfo{Revno: n, RevisionID: revid}

	replaceMap := make(ReplaceMap)
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		tokens := strings.Split(line, " ")
		if len(tokens) < 2 {
			return last, nil, errors.NewFormatError(line)
		}
		var parents []string
		if len(tokens) > 2 {
			parents = tokens[2:]
		}
		replaceMap[tokens[0]] = Replacement{NewID: tokens[1], NewParents: parents}
	}
	return last, replaceMap, nil
}
