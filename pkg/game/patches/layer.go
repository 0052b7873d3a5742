package patches

// maxLayerDepth bounds lookup cost; deeper chains are flattened on write.
const maxLayerDepth = 16

// layer is a persistent map: writes return a new layer on top of the old
// one, which stays valid and unchanged.
type layer[K comparable, V any] struct {
	parent *layer[K, V]
	own    map[K]V
	depth  int
	size   int
}

func (l *layer[K, V]) get(k K) (V, bool) {
	for cur := l; cur != nil; cur = cur.parent {
		if v, ok := cur.own[k]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func (l *layer[K, V]) len() int {
	if l == nil {
		return 0
	}
	return l.size
}

// with returns a layer holding every entry of l plus entries
func (l *layer[K, V]) with(entries map[K]V) *layer[K, V] {
	if len(entries) == 0 {
		return l
	}
	added := 0
	for k := range entries {
		if _, ok := l.get(k); !ok {
			added++
		}
	}
	next := &layer[K, V]{
		parent: l,
		own:    entries,
		depth:  l.depthOf() + 1,
		size:   l.len() + added,
	}
	if next.depth > maxLayerDepth {
		return next.flatten()
	}
	return next
}

func (l *layer[K, V]) set(k K, v V) *layer[K, V] {
	return l.with(map[K]V{k: v})
}

func (l *layer[K, V]) depthOf() int {
	if l == nil {
		return 0
	}
	return l.depth
}

func (l *layer[K, V]) flatten() *layer[K, V] {
	all := make(map[K]V, l.len())
	l.each(func(k K, v V) { all[k] = v })
	return &layer[K, V]{own: all, depth: 1, size: len(all)}
}

// each visits every live entry once, in no particular order
func (l *layer[K, V]) each(fn func(K, V)) {
	if l == nil {
		return
	}
	seen := make(map[K]bool, l.size)
	for cur := l; cur != nil; cur = cur.parent {
		for k, v := range cur.own {
			if seen[k] {
				continue
			}
			seen[k] = true
			fn(k, v)
		}
	}
}
