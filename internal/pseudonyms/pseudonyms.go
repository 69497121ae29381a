// Package pseudonyms discovers revisions that represent the same change
// in different identifier schemes. It is a read-only analysis; the
// resulting equivalence sets can seed transpose renames but nothing here
// schedules or executes anything.
package pseudonyms

import (
	"sort"

	"regraft.dev/regraft/internal/foreign"
	"regraft.dev/regraft/internal/store"
)

// ForeignTokens returns the normalized foreign identities of a revision:
// its recorded origin plus whatever a registered mapping can parse out of
// its id. Tokens are mapping-version independent, so a v1 and a v2 id of
// the same foreign commit share one.
func ForeignTokens(rev *store.Revision, registry *foreign.Registry) []string {
	seen := make(map[string]bool)
	if rev.Origin != "" {
		seen[rev.Origin] = true
	}
	if foreignID, _, ok := registry.Parse(rev.ID); ok {
		seen["git:"+foreignID] = true
	}
	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Find groups the given revisions into pseudonym sets: revisions linked,
// directly or transitively, through a shared foreign identity. Sets with
// a single member are not reported.
func Find(repo store.Repository, revids []string, registry *foreign.Registry) ([][]string, error) {
	// Where have foreign identities ended up, and what is each revision
	// a conversion of?
	conversions := make(map[string]map[string]bool)
	conversionOf := make(map[string][]string)
	for _, revid := range revids {
		rev, err := repo.Get(revid)
		if err != nil {
			return nil, err
		}
		for _, token := range ForeignTokens(rev, registry) {
			if conversions[token] == nil {
				conversions[token] = make(map[string]bool)
			}
			conversions[token][revid] = true
			conversionOf[revid] = append(conversionOf[revid], token)
		}
	}

	var result [][]string
	tokens := make([]string, 0, len(conversions))
	for t := range conversions {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		members, ok := conversions[token]
		if !ok {
			continue
		}
		set := make(map[string]bool)
		check := make([]string, 0, len(members))
		for id := range members {
			check = append(check, id)
		}
		for len(check) > 0 {
			id := check[len(check)-1]
			check = check[:len(check)-1]
			if set[id] {
				continue
			}
			set[id] = true
			for _, t := range conversionOf[id] {
				for other := range conversions[t] {
					if !set[other] {
						check = append(check, other)
					}
				}
				delete(conversions, t)
			}
			delete(conversionOf, id)
		}
		if len(set) > 1 {
			ids := make([]string, 0, len(set))
			for id := range set {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			result = append(result, ids)
		}
	}
	return result, nil
}

// AsDict flattens pseudonym sets into a lookup from each revision to its
// other names.
func AsDict(sets [][]string) map[string][]string {
	dict := make(map[string][]string)
	for _, set := range sets {
		for _, id := range set {
			others := make([]string, 0, len(set)-1)
			for _, other := range set {
				if other != id {
					others = append(others, other)
				}
			}
			dict[id] = others
		}
	}
	return dict
}

// RebaseMap derives transpose renames from pseudonyms: every revision in
// existing that has a pseudonym in desired is renamed to it.
func RebaseMap(dict map[string][]string, existing, desired map[string]bool) map[string]string {
	renames := make(map[string]string)
	for revid := range existing {
		for _, pn := range dict[revid] {
			if desired[pn] {
				renames[revid] = pn
			}
		}
	}
	return renames
}
