package generator

import (
	"fmt"
	"strings"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/layout"
	"rando/pkg/game/reach"
	"rando/pkg/game/state"
)

// Weights of what an action opens up
const (
	victoryWeight     = 1000.0
	pickupIndexWeight = 1.0
	eventWeight       = 0.5
	hintWeight        = 0.1
	unsafeMultiplier  = 0.5
)

// action is either placing pickups or collecting a node.
type action struct {
	pickups []*world.PickupEntry
	node    *world.Node
	weight  float64
}

func (a action) String() string {
	if a.node != nil {
		return "collect " + a.node.String()
	}
	names := make([]string, len(a.pickups))
	for i, p := range a.pickups {
		names[i] = p.Name
	}
	return "place " + strings.Join(names, ", ")
}

func weightsOf(actions []action) []float64 {
	out := make([]float64, len(actions))
	for i, a := range actions {
		out[i] = a.weight
	}
	return out
}

// actionsFor lists and weighs what p can do next
func (f *filler) actionsFor(p *player) []action {
	r := p.reach
	base := make(map[*world.Node]bool)
	for _, n := range r.CollectableResourceNodes() {
		base[n] = true
	}

	pickupActions := f.pickupActions(p, base)
	anyWeighted := false
	for _, a := range pickupActions {
		if a.weight > 0 {
			anyWeighted = true
			break
		}
	}

	var nodeActions []action
	switch f.cfg.LogicalResourceAction {
	case layout.ResourceActionRandomly:
		nodeActions = f.nodeActions(p, base)
	case layout.ResourceActionLastResort:
		if !anyWeighted {
			nodeActions = f.nodeActions(p, base)
		}
	default:
		if len(pickupActions) == 0 {
			nodeActions = f.nodeActions(p, base)
		}
	}

	actions := append(pickupActions, nodeActions...)
	if len(actions) == 0 && len(p.pool) > 0 {
		actions = append(actions, action{pickups: []*world.PickupEntry{p.pool[f.rng.Intn(len(p.pool))]}})
	}
	for _, a := range actions {
		f.logger.Debug("action", "player", p.index, "action", a.String(), "weight", a.weight)
	}
	return actions
}

// pickupActions returns one action per distinct combination of pool pickups
// that satisfies some alternative of an unreachable requirement
func (f *filler) pickupActions(p *player, base map[*world.Node]bool) []action {
	r := p.reach
	db := p.game.Resources
	seen := make(map[string]bool)
	var out []action
	for _, nr := range r.UnreachableNodesWithRequirements() {
		for _, list := range nr.Set.Alternatives() {
			combo, ok := pickupsToSolveList(p.pool, list, r.State(), db)
			if !ok {
				continue
			}
			key := comboKey(combo)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, action{pickups: combo, weight: f.pickupWeight(r, combo, base)})
		}
	}
	return out
}

func comboKey(combo []*world.PickupEntry) string {
	var b strings.Builder
	for _, pk := range combo {
		fmt.Fprintf(&b, "%p,", pk)
	}
	return b.String()
}

// pickupWeight simulates receiving the pickups and scores what opens up
func (f *filler) pickupWeight(r *reach.Reach, combo []*world.PickupEntry, base map[*world.Node]bool) float64 {
	st := r.State()
	for _, pk := range combo {
		st = st.ReceivePickup(pk)
	}
	w := openedWeight(r.AdvanceTo(st), base)

	multiplier, offset := 1.0, 0.0
	dangerous := false
	for _, pk := range combo {
		multiplier *= pk.Probability.Multiplier
		offset += pk.Probability.Offset
		for _, a := range pk.Resources {
			if r.Context().IsDangerous(a.Resource) {
				dangerous = true
			}
		}
	}
	w = w*multiplier + offset
	if dangerous {
		w *= unsafeMultiplier
	}
	return max(w, 0)
}

// nodeActions returns the collectable nodes the safe closure left behind
func (f *filler) nodeActions(p *player, base map[*world.Node]bool) []action {
	r := p.reach
	var out []action
	for _, n := range r.CollectableResourceNodes() {
		w := kindWeight(n) + openedWeight(r.AdvanceTo(r.Collect(n)), base)
		if !r.IsSafeToCollect(n) {
			w *= unsafeMultiplier
		}
		out = append(out, action{node: n, weight: w})
	}
	return out
}

// openedWeight scores the nodes a candidate reach can collect that the base
// could not, plus the victory bonus
func openedWeight(candidate *reach.Reach, base map[*world.Node]bool) float64 {
	w := 0.0
	for _, n := range candidate.CollectableResourceNodes() {
		if !base[n] {
			w += kindWeight(n)
		}
	}
	if candidate.VictorySatisfied() || reach.CollectAllSafeResources(candidate).VictorySatisfied() {
		w += victoryWeight
	}
	return w
}

func kindWeight(n *world.Node) float64 {
	switch n.Kind {
	case world.NodePickup:
		return pickupIndexWeight
	case world.NodeEvent:
		return eventWeight
	case world.NodeHint:
		return hintWeight
	}
	return 0
}

// pickupsToSolveList picks pickups from the pool, first match first, until
// the list's missing resources are covered. Damage is answered with one
// pickup that reduces it or adds energy. Negated items cannot be solved by
// adding pickups and are ignored. The second result is false when the pool
// cannot cover the list or nothing needs adding.
func pickupsToSolveList(pool []*world.PickupEntry, list requirement.List, st *state.State, db *resource.Database) ([]*world.PickupEntry, bool) {
	used := make([]bool, len(pool))
	held := st.Resources.Clone()
	var out []*world.PickupEntry

	take := func(match func(*world.PickupEntry) bool) bool {
		for i, pk := range pool {
			if !used[i] && match(pk) {
				used[i] = true
				out = append(out, pk)
				held.AddAll(pk.Resources)
				return true
			}
		}
		return false
	}

	for _, it := range list.Items() {
		if it.Negate {
			continue
		}
		if it.IsDamage() {
			if it.Satisfied(held, st.Energy, db) {
				continue
			}
			helps := func(pk *world.PickupEntry) bool {
				if db.Energy.EnergyTank != nil && pk.Grants(db.Energy.EnergyTank) {
					return true
				}
				for _, red := range db.Reductions[it.Resource] {
					if red.Inventory != nil && pk.Grants(red.Inventory) {
						return true
					}
				}
				return false
			}
			if !take(helps) {
				return nil, false
			}
			continue
		}
		for held.Get(it.Resource) < it.Amount {
			res := it.Resource
			if !take(func(pk *world.PickupEntry) bool { return pk.Grants(res) }) {
				return nil, false
			}
		}
	}
	return out, len(out) > 0
}
