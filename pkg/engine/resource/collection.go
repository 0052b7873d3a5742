package resource

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Collection maps resources to non-negative counts. A Collection is treated as
// a value: mutating methods are only called on fresh clones, so one lineage of
// states never observes a decrement.
type Collection struct {
	amounts map[*Info]int
}

// NewCollection creates an empty collection
func NewCollection() Collection {
	return Collection{amounts: make(map[*Info]int)}
}

// CollectionOf creates a collection from resource gains
func CollectionOf(gains ...Amount) Collection {
	c := NewCollection()
	c.AddAll(gains)
	return c
}

// Get returns the amount held of r
func (c Collection) Get(r *Info) int {
	if c.amounts == nil {
		return 0
	}
	return c.amounts[r]
}

// Has returns true if at least one of r is held
func (c Collection) Has(r *Info) bool {
	return c.Get(r) > 0
}

// Add increases the amount of r, clamping at the resource capacity. Negative
// deltas are ignored: losing items is modelled as a separate resource.
func (c *Collection) Add(r *Info, delta int) {
	if r == nil || delta <= 0 {
		return
	}
	if c.amounts == nil {
		c.amounts = make(map[*Info]int)
	}
	v := c.amounts[r] + delta
	if r.MaxCapacity > 0 && v > r.MaxCapacity {
		v = r.MaxCapacity
	}
	c.amounts[r] = v
}

// AddAll adds every gain
func (c *Collection) AddAll(gains []Amount) {
	for _, g := range gains {
		c.Add(g.Resource, g.Amount)
	}
}

// Merge adds every resource held by other
func (c *Collection) Merge(other Collection) {
	for r, v := range other.amounts {
		c.Add(r, v)
	}
}

// Clone returns an independent copy
func (c Collection) Clone() Collection {
	out := Collection{amounts: make(map[*Info]int, len(c.amounts))}
	for r, v := range c.amounts {
		out.amounts[r] = v
	}
	return out
}

// Len returns the number of distinct resources held
func (c Collection) Len() int {
	n := 0
	for _, v := range c.amounts {
		if v > 0 {
			n++
		}
	}
	return n
}

// IsSuperset returns true if c holds at least as much of every resource as other
func (c Collection) IsSuperset(other Collection) bool {
	for r, v := range other.amounts {
		if c.Get(r) < v {
			return false
		}
	}
	return true
}

// Resources returns the held resources ordered by key
func (c Collection) Resources() []*Info {
	out := make([]*Info, 0, len(c.amounts))
	for r, v := range c.amounts {
		if v > 0 {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b *Info) int {
		switch {
		case a.Key().Less(b.Key()):
			return -1
		case b.Key().Less(a.Key()):
			return 1
		}
		return 0
	})
	return out
}

// Each calls fn for every held resource in key order
func (c Collection) Each(fn func(r *Info, amount int)) {
	for _, r := range c.Resources() {
		fn(r, c.amounts[r])
	}
}

// Fingerprint returns a stable hash of the contents, used to deduplicate
// equivalent search positions.
func (c Collection) Fingerprint() uint64 {
	var b strings.Builder
	c.Each(func(r *Info, amount int) {
		b.WriteString(strconv.Itoa(int(r.Kind)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.Index))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(amount))
		b.WriteByte(';')
	})
	return xxhash.Sum64String(b.String())
}

// String lists the held resources
func (c Collection) String() string {
	parts := make([]string, 0, len(c.amounts))
	c.Each(func(r *Info, amount int) {
		if amount == 1 {
			parts = append(parts, r.String())
			return
		}
		parts = append(parts, r.String()+" x"+strconv.Itoa(amount))
	})
	return strings.Join(parts, ", ")
}
