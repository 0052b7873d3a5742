package requirement

import (
	"sort"
	"strings"

	"rando/pkg/engine/resource"
)

// List is a conjunction of resource requirements in canonical form: sorted,
// with repeated thresholds on one resource merged.
type List struct {
	items []Resource
	key   string
}

// NewList builds a canonical list. The second result is false when the items
// contradict each other (for example Bomb ≥ 1 and Bomb < 1).
func NewList(items ...Resource) (List, bool) {
	merged := make([]Resource, 0, len(items))
	for _, it := range items {
		found := false
		for i, m := range merged {
			if m.Resource != it.Resource || m.Negate != it.Negate {
				continue
			}
			found = true
			switch {
			case it.IsDamage():
				merged[i].Amount += it.Amount
			case it.Negate:
				merged[i].Amount = min(m.Amount, it.Amount)
			default:
				merged[i].Amount = max(m.Amount, it.Amount)
			}
			break
		}
		if !found {
			merged = append(merged, it)
		}
	}
	out := merged[:0]
	for _, it := range merged {
		if !it.IsDamage() && !it.Negate && it.Amount <= 0 {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })

	for _, it := range out {
		if !it.Negate || it.IsDamage() {
			continue
		}
		if it.Amount <= 0 {
			return List{}, false
		}
		for _, other := range out {
			if other.Resource == it.Resource && !other.Negate && other.Amount >= it.Amount {
				return List{}, false
			}
		}
	}

	keys := make([]string, len(out))
	for i, it := range out {
		keys[i] = it.Key()
	}
	return List{items: out, key: strings.Join(keys, "&")}, true
}

// Items returns the requirements of the list
func (l List) Items() []Resource { return l.items }

// Len returns the number of requirements
func (l List) Len() int { return len(l.items) }

// Key returns the canonical key of the list
func (l List) Key() string { return l.key }

// Satisfied reports whether every item holds, deducting damage as it goes
func (l List) Satisfied(held resource.Collection, energy int, db *resource.Database) bool {
	for _, it := range l.items {
		if !it.Satisfied(held, energy, db) {
			return false
		}
		energy -= it.Damage(held, db)
	}
	return true
}

// Damage returns the total damage of the list
func (l List) Damage(held resource.Collection, db *resource.Database) int {
	total := 0
	for _, it := range l.items {
		total += it.Damage(held, db)
	}
	return total
}

// HasNegation returns true if any item is negated
func (l List) HasNegation() bool {
	for _, it := range l.items {
		if it.Negate {
			return true
		}
	}
	return false
}

// Dangerous returns the resources the list requires negated
func (l List) Dangerous() []*resource.Info {
	var out []*resource.Info
	for _, it := range l.items {
		if it.Negate {
			out = append(out, it.Resource)
		}
	}
	return out
}

// Union returns the conjunction of both lists
func (l List) Union(o List) (List, bool) {
	items := make([]Resource, 0, len(l.items)+len(o.items))
	items = append(items, l.items...)
	items = append(items, o.items...)
	return NewList(items...)
}

// Subsumes reports whether l is implied by o: whenever o holds, l holds too.
func (l List) Subsumes(o List) bool {
	for _, it := range l.items {
		implied := false
		for _, other := range o.items {
			if other.Resource != it.Resource || other.Negate != it.Negate {
				continue
			}
			if it.Negate {
				implied = other.Amount <= it.Amount
			} else {
				implied = other.Amount >= it.Amount
			}
			break
		}
		if !implied {
			return false
		}
	}
	return true
}

func (l List) String() string {
	if len(l.items) == 0 {
		return "Trivial"
	}
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

// Set is a disjunction of Lists. Lists implied by a simpler list in the same
// set are pruned, so the representation stays small without changing which
// resources satisfy the set.
type Set struct {
	lists []List
}

// NewSet builds a pruned set from lists
func NewSet(lists ...List) Set {
	return Set{lists: prune(lists)}
}

// TrivialSet is satisfied by anything
func TrivialSet() Set { return Set{lists: []List{{}}} }

// ImpossibleSet is never satisfied
func ImpossibleSet() Set { return Set{} }

func prune(lists []List) []List {
	sorted := make([]List, len(lists))
	copy(sorted, lists)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].items) != len(sorted[j].items) {
			return len(sorted[i].items) < len(sorted[j].items)
		}
		return sorted[i].key < sorted[j].key
	})
	out := make([]List, 0, len(sorted))
	for _, candidate := range sorted {
		redundant := false
		for _, kept := range out {
			if kept.Subsumes(candidate) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, candidate)
		}
	}
	return out
}

// Alternatives returns the lists of the set
func (s Set) Alternatives() []List { return s.lists }

// IsTrivial reports whether the set always holds
func (s Set) IsTrivial() bool {
	for _, l := range s.lists {
		if len(l.items) == 0 {
			return true
		}
	}
	return false
}

// IsImpossible reports whether the set never holds
func (s Set) IsImpossible() bool { return len(s.lists) == 0 }

// Union is the disjunction of two sets
func (s Set) Union(o Set) Set {
	lists := make([]List, 0, len(s.lists)+len(o.lists))
	lists = append(lists, s.lists...)
	lists = append(lists, o.lists...)
	return NewSet(lists...)
}

// Product is the conjunction of two sets
func (s Set) Product(o Set) Set {
	lists := make([]List, 0, len(s.lists)*len(o.lists))
	for _, a := range s.lists {
		for _, b := range o.lists {
			if l, ok := a.Union(b); ok {
				lists = append(lists, l)
			}
		}
	}
	return NewSet(lists...)
}

// Satisfied reports whether any alternative holds
func (s Set) Satisfied(held resource.Collection, energy int, db *resource.Database) bool {
	for _, l := range s.lists {
		if l.Satisfied(held, energy, db) {
			return true
		}
	}
	return false
}

// MinimumDamage returns the smallest damage among satisfied alternatives.
func (s Set) MinimumDamage(held resource.Collection, energy int, db *resource.Database) (int, bool) {
	return s.minimumDamage(held, energy, db, false)
}

// SafeMinimumDamage is MinimumDamage restricted to alternatives without negation
func (s Set) SafeMinimumDamage(held resource.Collection, energy int, db *resource.Database) (int, bool) {
	return s.minimumDamage(held, energy, db, true)
}

func (s Set) minimumDamage(held resource.Collection, energy int, db *resource.Database, safeOnly bool) (int, bool) {
	best, found := 0, false
	for _, l := range s.lists {
		if safeOnly && l.HasNegation() {
			continue
		}
		if !l.Satisfied(held, energy, db) {
			continue
		}
		d := l.Damage(held, db)
		if !found || d < best {
			best, found = d, true
		}
		if best == 0 {
			break
		}
	}
	return best, found
}

// Simplify removes requirements on static resources: resources whose amount
// is fixed for the whole search. Alternatives that a static resource fails
// are dropped; the second result is false when nothing remains.
func (s Set) Simplify(static map[*resource.Info]int) (Set, bool) {
	lists := make([]List, 0, len(s.lists))
	for _, l := range s.lists {
		kept := make([]Resource, 0, len(l.items))
		ok := true
		for _, it := range l.items {
			amount, isStatic := static[it.Resource]
			if !isStatic || it.IsDamage() {
				kept = append(kept, it)
				continue
			}
			if it.Negate && amount >= it.Amount || !it.Negate && amount < it.Amount {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if nl, valid := NewList(kept...); valid {
			lists = append(lists, nl)
		}
	}
	out := NewSet(lists...)
	return out, !out.IsImpossible()
}

// Dangerous returns the resources required negated by some alternative
func (s Set) Dangerous() []*resource.Info {
	var out []*resource.Info
	seen := make(map[*resource.Info]bool)
	for _, l := range s.lists {
		for _, it := range l.items {
			if it.Negate && !seen[it.Resource] {
				seen[it.Resource] = true
				out = append(out, it.Resource)
			}
		}
	}
	return out
}

// Key returns a canonical key of the set
func (s Set) Key() string {
	keys := make([]string, len(s.lists))
	for i, l := range s.lists {
		keys[i] = "[" + l.key + "]"
	}
	return strings.Join(keys, "|")
}

func (s Set) String() string {
	if s.IsImpossible() {
		return "Impossible"
	}
	parts := make([]string, len(s.lists))
	for i, l := range s.lists {
		parts[i] = l.String()
	}
	return strings.Join(parts, " or ")
}

// SatisfiedSafely reports whether some alternative without negation holds
func (s Set) SatisfiedSafely(held resource.Collection, energy int, db *resource.Database) bool {
	for _, l := range s.lists {
		if !l.HasNegation() && l.Satisfied(held, energy, db) {
			return true
		}
	}
	return false
}
