package reach

import "rando/pkg/engine/world"

// CollectAllSafeResources collects safe resource nodes until none is left.
// Collecting them can never make the game less completable.
func CollectAllSafeResources(r *Reach) *Reach {
	for {
		nodes := r.SafeResourceNodes()
		if len(nodes) == 0 {
			return r
		}
		r = r.AdvanceTo(r.Collect(nodes[0]))
	}
}

// AdvanceWithPossibleUnsafeResources collects safe resources, then tries
// each unsafe collectable node on a copy. A copy is kept only when every
// node reachable before is still reachable and the safe set grew; otherwise
// it is discarded and the next candidate is tried.
func AdvanceWithPossibleUnsafeResources(r *Reach) *Reach {
	r = CollectAllSafeResources(r)
	for {
		next, ok := tryUnsafe(r)
		if !ok {
			return r
		}
		r = next
	}
}

func tryUnsafe(r *Reach) (*Reach, bool) {
	safeBefore := r.SafeNodes()
	for _, n := range r.CollectableResourceNodes() {
		if r.IsSafeToCollect(n) {
			continue
		}
		candidate := CollectAllSafeResources(r.Clone().AdvanceTo(r.Collect(n)))
		if !preserves(r.Nodes(), candidate.IsReachable) ||
			!preserves(safeBefore, candidate.IsSafe) ||
			len(candidate.SafeNodes()) <= len(safeBefore) {
			r.ctx.Logger.Debug("rejected unsafe collection", "node", n.String())
			continue
		}
		r.ctx.Logger.Debug("accepted unsafe collection", "node", n.String(),
			"safe", len(candidate.SafeNodes()))
		return candidate, true
	}
	return nil, false
}

func preserves(nodes []*world.Node, has func(*world.Node) bool) bool {
	for _, n := range nodes {
		if !has(n) {
			return false
		}
	}
	return true
}
