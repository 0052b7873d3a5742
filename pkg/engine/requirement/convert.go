package requirement

import (
	"fmt"

	"github.com/zyedidia/generic/cache"
)

// AsSet expands templates and flattens the formula into a Set.
func AsSet(req Requirement, templates Templates) Set {
	return asSet(req, templates, nil, nil)
}

func asSet(req Requirement, templates Templates, memo *Memo, visiting []string) Set {
	if memo != nil {
		if s, ok := memo.lookup(req); ok {
			return s
		}
	}
	var out Set
	switch r := req.(type) {
	case Resource:
		if l, ok := NewList(r); ok {
			out = NewSet(l)
		} else {
			out = ImpossibleSet()
		}
	case And:
		out = TrivialSet()
		for _, it := range r.Items {
			out = out.Product(asSet(it, templates, memo, visiting))
			if out.IsImpossible() {
				break
			}
		}
	case Or:
		out = ImpossibleSet()
		for _, it := range r.Items {
			out = out.Union(asSet(it, templates, memo, visiting))
			if out.IsTrivial() {
				break
			}
		}
	case Template:
		target, ok := templates[r.Name]
		cyclic := false
		for _, v := range visiting {
			cyclic = cyclic || v == r.Name
		}
		if !ok || cyclic {
			out = ImpossibleSet()
		} else {
			out = asSet(target, templates, memo, append(visiting, r.Name))
		}
	default:
		panic(fmt.Sprintf("requirement: unknown variant %T", req))
	}
	if memo != nil {
		memo.cache.Put(req.Key(), out)
	}
	return out
}

// Memo caches AsSet results by requirement key. A Memo belongs to a single
// search and must not be shared between goroutines.
type Memo struct {
	templates Templates
	cache     *cache.Cache[string, Set]
	hits      int
	misses    int
}

// DefaultMemoCapacity bounds the number of cached sets per search.
const DefaultMemoCapacity = 4096

// NewMemo creates a memo for the given templates
func NewMemo(templates Templates, capacity int) *Memo {
	if capacity <= 0 {
		capacity = DefaultMemoCapacity
	}
	return &Memo{
		templates: templates,
		cache:     cache.New[string, Set](capacity),
	}
}

func (m *Memo) lookup(req Requirement) (Set, bool) {
	s, ok := m.cache.Get(req.Key())
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return s, ok
}

// AsSet is the memoized AsSet
func (m *Memo) AsSet(req Requirement) Set {
	return asSet(req, m.templates, m, nil)
}

// Stats returns cache hits and misses
func (m *Memo) Stats() (hits, misses int) {
	return m.hits, m.misses
}
