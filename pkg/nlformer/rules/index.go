package rules

import "sort"

// Index groups rules by antecedent predicate. It is built once and never
// modified, so it is safe for concurrent readers.
type Index struct {
	all         []Rule
	byPredicate map[string][]Rule // predicate → rules in load order
}

// NewIndex builds an index over a copy of set.
func NewIndex(set []Rule) *Index {
	idx := &Index{
		all:         CloneAll(set),
		byPredicate: make(map[string][]Rule),
	}
	for _, r := range idx.all {
		p := r.Antecedent.Predicate
		idx.byPredicate[p] = append(idx.byPredicate[p], r)
	}
	return idx
}

// CandidatesFor returns the rules whose antecedent uses predicate, in load
// order. Unknown predicates yield an empty slice. Callers must not modify
// the returned rules.
func (idx *Index) CandidatesFor(predicate string) []Rule {
	return idx.byPredicate[predicate]
}

// Rules returns a copy of every rule in load order.
func (idx *Index) Rules() []Rule {
	return CloneAll(idx.all)
}

// Len returns the number of indexed rules.
func (idx *Index) Len() int { return len(idx.all) }

// Predicates returns the indexed antecedent predicates, sorted.
func (idx *Index) Predicates() []string {
	out := make([]string, 0, len(idx.byPredicate))
	for p := range idx.byPredicate {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
