package reach

import (
	"maps"
	"slices"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/state"
)

type edgeKey struct {
	from, to int
}

type pendingEdge struct {
	from, to *world.Node
	set      requirement.Set
}

type visit struct {
	node   *world.Node
	energy int
}

// Reach is the set of nodes reachable from a state, with the best energy each
// node can be reached with.
type Reach struct {
	ctx   *Context
	state *state.State

	energy    map[*world.Node]int
	order     []*world.Node
	satisfied map[edgeKey]bool
	edges     map[*world.Node][]*world.Node
	safeKeys  map[edgeKey]bool
	safeEdges map[*world.Node][]*world.Node
	pending   map[edgeKey]pendingEdge

	safe    []*world.Node
	safeSet map[*world.Node]bool
}

// Calculate explores everything reachable from the state
func Calculate(ctx *Context, s *state.State) *Reach {
	r := &Reach{
		ctx:       ctx,
		state:     s,
		energy:    make(map[*world.Node]int),
		satisfied: make(map[edgeKey]bool),
		edges:     make(map[*world.Node][]*world.Node),
		safeKeys:  make(map[edgeKey]bool),
		safeEdges: make(map[*world.Node][]*world.Node),
		pending:   make(map[edgeKey]pendingEdge),
	}
	r.energy[s.Node] = s.Energy
	r.order = append(r.order, s.Node)
	r.traverse([]visit{{s.Node, s.Energy}})
	ctx.Logger.Debug("reach calculated",
		"node", s.Node.String(), "reachable", len(r.order), "pending", len(r.pending))
	return r
}

func byEnergy(a, b visit) bool {
	if a.energy != b.energy {
		return a.energy > b.energy
	}
	return a.node.Index < b.node.Index
}

// traverse expands from the seeds until no node can be reached with more energy
func (r *Reach) traverse(seeds []visit) {
	db := r.ctx.Game.Resources
	res := r.state.Resources
	maxEnergy := r.state.MaximumEnergy()

	h := heap.New(byEnergy)
	for _, v := range seeds {
		h.Push(v)
	}
	for h.Size() > 0 {
		cur, _ := h.Pop()
		if cur.energy < r.energy[cur.node] {
			continue
		}
		for _, e := range r.ctx.Game.Edges(cur.node, r.state.Patches, r.ctx.Memo) {
			key := edgeKey{cur.node.Index, e.Target.Index}
			set, ok := r.ctx.simplify(e.Set)
			if !ok {
				continue
			}
			damage, satisfied := set.MinimumDamage(res, cur.energy, db)
			if !satisfied {
				if !r.satisfied[key] {
					r.pending[key] = pendingEdge{from: cur.node, to: e.Target, set: set}
				}
				continue
			}
			if !r.satisfied[key] {
				r.satisfied[key] = true
				r.edges[cur.node] = append(r.edges[cur.node], e.Target)
				delete(r.pending, key)
			}
			if !r.safeKeys[key] && set.SatisfiedSafely(res, cur.energy, db) {
				r.safeKeys[key] = true
				r.safeEdges[cur.node] = append(r.safeEdges[cur.node], e.Target)
			}

			next := cur.energy - damage
			if e.Target.Heal {
				next = maxEnergy
			}
			best, seen := r.energy[e.Target]
			if seen && next <= best {
				continue
			}
			if !seen {
				r.order = append(r.order, e.Target)
			}
			r.energy[e.Target] = next
			h.Push(visit{e.Target, next})
		}
	}
	r.safe, r.safeSet = nil, nil
}

// State returns the state the reach was computed from
func (r *Reach) State() *state.State {
	return r.state
}

// Context returns the search context
func (r *Reach) Context() *Context {
	return r.ctx
}

// Nodes returns the reachable nodes in discovery order
func (r *Reach) Nodes() []*world.Node {
	return r.order
}

// IsReachable returns true if the node can be reached
func (r *Reach) IsReachable(n *world.Node) bool {
	_, ok := r.energy[n]
	return ok
}

// EnergyAt returns the best energy the node can be reached with
func (r *Reach) EnergyAt(n *world.Node) int {
	return r.energy[n]
}

// PathTo returns the shortest walk over satisfied edges from the state's node
// to n, both included. The walk is not necessarily the one n's best energy
// was found on.
func (r *Reach) PathTo(n *world.Node) []*world.Node {
	if !r.IsReachable(n) {
		return nil
	}
	start := r.state.Node
	prev := map[*world.Node]*world.Node{start: nil}
	q := queue.New[*world.Node]()
	q.Enqueue(start)
	for !q.Empty() && !hasKey(prev, n) {
		cur := q.Dequeue()
		for _, next := range r.edges[cur] {
			if !hasKey(prev, next) {
				prev[next] = cur
				q.Enqueue(next)
			}
		}
	}
	if !hasKey(prev, n) {
		return nil
	}
	var path []*world.Node
	for cur := n; cur != nil; cur = prev[cur] {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

func hasKey(m map[*world.Node]*world.Node, n *world.Node) bool {
	_, ok := m[n]
	return ok
}

// SafeNodes returns the nodes that can be reached from the state's node and
// returned from using only edges whose satisfied alternative has no negated
// requirement, in discovery order.
func (r *Reach) SafeNodes() []*world.Node {
	if r.safe != nil {
		return r.safe
	}
	start := r.state.Node
	forward := r.walk(start, r.safeEdges)

	reverse := make(map[*world.Node][]*world.Node)
	for from, tos := range r.safeEdges {
		for _, to := range tos {
			reverse[to] = append(reverse[to], from)
		}
	}
	backward := r.walk(start, reverse)

	r.safe = make([]*world.Node, 0, forward.Size())
	r.safeSet = make(map[*world.Node]bool, forward.Size())
	for _, n := range r.order {
		if forward.Has(n) && backward.Has(n) {
			r.safe = append(r.safe, n)
			r.safeSet[n] = true
		}
	}
	return r.safe
}

func (r *Reach) walk(start *world.Node, adjacency map[*world.Node][]*world.Node) mapset.Set[*world.Node] {
	seen := mapset.New[*world.Node]()
	seen.Put(start)
	q := queue.New[*world.Node]()
	q.Enqueue(start)
	for !q.Empty() {
		cur := q.Dequeue()
		for _, next := range adjacency[cur] {
			if !seen.Has(next) {
				seen.Put(next)
				q.Enqueue(next)
			}
		}
	}
	return seen
}

// IsSafe returns true if n is in SafeNodes
func (r *Reach) IsSafe(n *world.Node) bool {
	r.SafeNodes()
	return r.safeSet[n]
}

// canCollect checks the node's own collection requirement at its best energy
func (r *Reach) canCollect(n *world.Node) (damage int, safe bool, ok bool) {
	if !r.state.CanCollect(n) {
		return 0, false, false
	}
	set, valid := r.ctx.simplify(n.CollectSet())
	if !valid {
		return 0, false, false
	}
	db := r.ctx.Game.Resources
	energy := r.energy[n]
	damage, ok = set.MinimumDamage(r.state.Resources, energy, db)
	return damage, ok && set.SatisfiedSafely(r.state.Resources, energy, db), ok
}

// CollectableResourceNodes returns the reachable resource nodes that can be
// collected now, in discovery order
func (r *Reach) CollectableResourceNodes() []*world.Node {
	var out []*world.Node
	for _, n := range r.order {
		if _, _, ok := r.canCollect(n); ok {
			out = append(out, n)
		}
	}
	return out
}

// IsSafeToCollect returns true if n is a safe node, its collection
// requirement holds safely and it grants no dangerous resource
func (r *Reach) IsSafeToCollect(n *world.Node) bool {
	if _, safe, ok := r.canCollect(n); !ok || !safe || !r.IsSafe(n) {
		return false
	}
	return !r.GainsDangerous(n)
}

// GainsDangerous returns true if collecting n grants a dangerous resource
func (r *Reach) GainsDangerous(n *world.Node) bool {
	for _, g := range r.state.ResourceGain(n) {
		if r.ctx.IsDangerous(g.Resource) {
			return true
		}
	}
	return false
}

// SafeResourceNodes returns the collectable nodes that are safe to collect
func (r *Reach) SafeResourceNodes() []*world.Node {
	var out []*world.Node
	for _, n := range r.SafeNodes() {
		if r.IsSafeToCollect(n) {
			out = append(out, n)
		}
	}
	return out
}

// Collect returns the state after walking to n and collecting it
func (r *Reach) Collect(n *world.Node) *state.State {
	damage, _, _ := r.canCollect(n)
	next := r.state.ActOnNode(n, r.PathTo(n), r.energy[n]-damage)
	return next.WithSafe(r.IsSafeToCollect(n))
}

// AdvanceTo returns the reach for a new state. When the new state only adds
// harmless resources at the same position the existing reach is extended;
// otherwise it is recalculated.
func (r *Reach) AdvanceTo(s *state.State) *Reach {
	if !r.canExtend(s) {
		return Calculate(r.ctx, s)
	}
	next := r.Clone()
	next.state = s
	// re-expand sources of edges that are closed or only open unsafely
	sources := make(map[*world.Node]bool)
	for _, p := range next.pending {
		sources[p.from] = true
	}
	nodes := r.ctx.Game.Nodes()
	for key := range next.satisfied {
		if !next.safeKeys[key] {
			sources[nodes[key.from]] = true
		}
	}
	seeds := make([]visit, 0, len(sources))
	for n := range sources {
		seeds = append(seeds, visit{n, next.energy[n]})
	}
	slices.SortFunc(seeds, func(a, b visit) int { return a.node.Index - b.node.Index })
	next.traverse(seeds)
	return next
}

// canExtend reports whether s differs from the reach's state only by
// resources that cannot close a path or change any energy
func (r *Reach) canExtend(s *state.State) bool {
	old := r.state
	if s.Node != old.Node || s.Energy != old.Energy || !s.Resources.IsSuperset(old.Resources) {
		return false
	}
	db := r.ctx.Game.Resources
	if db.MaximumEnergy(s.Resources) != db.MaximumEnergy(old.Resources) {
		return false
	}
	extendable := true
	s.Resources.Each(func(res *resource.Info, amount int) {
		if amount == old.Resources.Get(res) {
			return
		}
		if r.ctx.IsDangerous(res) || reducesDamage(db, res) {
			extendable = false
		}
	})
	return extendable
}

func reducesDamage(db *resource.Database, r *resource.Info) bool {
	for _, reductions := range db.Reductions {
		for _, red := range reductions {
			if red.Inventory == r {
				return true
			}
		}
	}
	return false
}

// Clone returns an independent copy; the game and state are shared
func (r *Reach) Clone() *Reach {
	c := &Reach{
		ctx:       r.ctx,
		state:     r.state,
		energy:    maps.Clone(r.energy),
		order:     slices.Clone(r.order),
		satisfied: maps.Clone(r.satisfied),
		edges:     make(map[*world.Node][]*world.Node, len(r.edges)),
		safeKeys:  maps.Clone(r.safeKeys),
		safeEdges: make(map[*world.Node][]*world.Node, len(r.safeEdges)),
		pending:   maps.Clone(r.pending),
	}
	for k, v := range r.edges {
		c.edges[k] = slices.Clone(v)
	}
	for k, v := range r.safeEdges {
		c.safeEdges[k] = slices.Clone(v)
	}
	return c
}

// NodeRequirement pairs a node with what is missing to get to it
type NodeRequirement struct {
	Node *world.Node
	Set  requirement.Set
}

// UnreachableNodesWithRequirements returns, for every node behind an
// unsatisfied edge or collection requirement, the union of what would open
// it. Ordered by node index.
func (r *Reach) UnreachableNodesWithRequirements() []NodeRequirement {
	sets := make(map[*world.Node]requirement.Set)
	for _, p := range r.pending {
		if r.IsReachable(p.to) {
			continue
		}
		if s, ok := sets[p.to]; ok {
			sets[p.to] = s.Union(p.set)
		} else {
			sets[p.to] = p.set
		}
	}
	for _, n := range r.order {
		if !r.state.CanCollect(n) {
			continue
		}
		if _, _, ok := r.canCollect(n); ok {
			continue
		}
		if set, valid := r.ctx.simplify(n.CollectSet()); valid {
			sets[n] = set
		}
	}

	out := make([]NodeRequirement, 0, len(sets))
	for n, s := range sets {
		out = append(out, NodeRequirement{Node: n, Set: s})
	}
	slices.SortFunc(out, func(a, b NodeRequirement) int { return a.Node.Index - b.Node.Index })
	return out
}

// VictorySatisfied reports whether the victory condition holds
func (r *Reach) VictorySatisfied() bool {
	return r.ctx.VictorySatisfied(r.state)
}
