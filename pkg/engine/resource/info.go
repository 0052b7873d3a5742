// Package resource provides the countable quantities a game tracks: items,
// events, tricks, damage types and the markers the logic engine creates for
// pickup locations and hint assets.
package resource

import "fmt"

// Kind is the category a resource belongs to.
type Kind uint8

// Resource kinds
const (
	KindItem Kind = iota
	KindEvent
	KindTrick
	KindDamage
	KindVersion
	KindMisc
	KindPickupIndex
	KindHintMarker
)

// kindCount is the number of resource kinds (for per-kind tables).
const kindCount = 8

var kindNames = [kindCount]string{
	"item", "event", "trick", "damage", "version", "misc", "pickup-index", "hint-marker",
}

// String returns the lower-case name of the kind
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind returns the kind for a name produced by Kind.String
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", name)
}

// Key is the stable identity of a resource within one database.
type Key struct {
	Kind  Kind
	Index int
}

// Less orders keys by kind, then index
func (k Key) Less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.Index < o.Index
}

// Info describes a single resource. Infos are created by a Database and are
// immutable afterwards; pointer identity is stable for the database lifetime.
type Info struct {
	Kind        Kind
	Index       int
	ShortName   string
	LongName    string
	MaxCapacity int
}

// Key returns the identity of the resource
func (r *Info) Key() Key {
	return Key{Kind: r.Kind, Index: r.Index}
}

// String returns the long name, falling back to the short name
func (r *Info) String() string {
	if r == nil {
		return "<nil>"
	}
	if r.LongName != "" {
		return r.LongName
	}
	return r.ShortName
}

// Amount pairs a resource with a quantity (a resource gain).
type Amount struct {
	Resource *Info
	Amount   int
}
