package state

import (
	"fmt"
	"strings"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/patches"
)

// State is a point in a playthrough: where the player stands, what they hold
// and the patches in effect. States are never modified after creation; each
// action produces a child that points back to its parent.
type State struct {
	Node      *world.Node
	Resources resource.Collection
	Energy    int
	Patches   *patches.Patches
	Previous  *State
	Path      []*world.Node // walked from Previous.Node to Node
	Safe      bool          // the action that produced this state was safe
}

// Initial creates the starting state of a playthrough. Extra resources, such
// as enabled tricks, are added to the patches' starting resources.
func Initial(p *patches.Patches, extra ...resource.Amount) *State {
	res := resource.NewCollection()
	res.AddAll(p.StartingResources())
	res.AddAll(extra)
	return &State{
		Node:      p.StartingLocation(),
		Resources: res,
		Energy:    p.Game().Resources.MaximumEnergy(res),
		Patches:   p,
		Safe:      true,
	}
}

// Game returns the game of the state's patches
func (s *State) Game() *world.Game {
	return s.Patches.Game()
}

// MaximumEnergy returns the energy of a full heal
func (s *State) MaximumEnergy() int {
	return s.Game().Resources.MaximumEnergy(s.Resources)
}

// IsCollected returns true if the node's resource is already held
func (s *State) IsCollected(n *world.Node) bool {
	r := n.Resource()
	return r != nil && s.Resources.Has(r)
}

// CanCollect returns true for resource nodes that have not been collected.
// The node's collection requirement is checked by the caller.
func (s *State) CanCollect(n *world.Node) bool {
	return n.IsResourceNode() && !s.IsCollected(n)
}

// ResourceGain returns what collecting the node grants: its marker, plus the
// assigned pickup's resources when the pickup belongs to this player.
func (s *State) ResourceGain(n *world.Node) []resource.Amount {
	r := n.Resource()
	if r == nil {
		return nil
	}
	gain := []resource.Amount{{Resource: r, Amount: 1}}
	if n.Kind == world.NodePickup {
		if target, ok := s.Patches.PickupAt(n.PickupIndex); ok && target.Player == s.Patches.Player {
			gain = append(gain, target.Pickup.Resources...)
		}
	}
	return gain
}

// ActOnNode collects the node, arriving with the given energy after walking path
func (s *State) ActOnNode(n *world.Node, path []*world.Node, energy int) *State {
	res := s.Resources.Clone()
	res.AddAll(s.ResourceGain(n))
	return &State{
		Node:      n,
		Resources: res,
		Energy:    s.adjustEnergy(n.Heal, energy, res),
		Patches:   s.Patches,
		Previous:  s,
		Path:      path,
		Safe:      true,
	}
}

// adjustEnergy heals fully on heal nodes and otherwise adds the energy of
// any tanks gained, capped at the new maximum
func (s *State) adjustEnergy(heal bool, energy int, res resource.Collection) int {
	db := s.Game().Resources
	newMax := db.MaximumEnergy(res)
	if heal {
		return newMax
	}
	energy += newMax - db.MaximumEnergy(s.Resources)
	return min(energy, newMax)
}

// WithSafe returns a copy of the state with the Safe flag set
func (s *State) WithSafe(safe bool) *State {
	c := *s
	c.Safe = safe
	return &c
}

// replace returns a sibling of s: same parent and position, new contents
func (s *State) replace(p *patches.Patches, gain []resource.Amount) *State {
	res := s.Resources.Clone()
	res.AddAll(gain)
	c := *s
	c.Patches = p
	c.Resources = res
	c.Energy = s.adjustEnergy(false, s.Energy, res)
	return &c
}

// AssignPickups places pickups in the state's patches. Pickups placed at an
// index that was already collected are granted immediately, as if they had
// always been there.
func (s *State) AssignPickups(assignments ...patches.Assignment) (*State, error) {
	p, err := s.Patches.AssignPickups(assignments...)
	if err != nil {
		return nil, err
	}
	var gain []resource.Amount
	for _, a := range assignments {
		if a.Target.Player != p.Player {
			continue
		}
		if s.IsCollected(s.Game().PickupNode(a.Index)) {
			gain = append(gain, a.Target.Pickup.Resources...)
		}
	}
	return s.replace(p, gain), nil
}

// AssignPickupToStarting adds a pickup to the starting items
func (s *State) AssignPickupToStarting(pickup *world.PickupEntry) *State {
	return s.replace(s.Patches.WithStartingPickup(pickup), pickup.Resources)
}

// WithPatches swaps the patches without granting anything. Used for
// changes that do not affect logic, such as placed hints.
func (s *State) WithPatches(p *patches.Patches) *State {
	return s.replace(p, nil)
}

// ReceivePickup grants a pickup collected by another player
func (s *State) ReceivePickup(pickup *world.PickupEntry) *State {
	return s.replace(s.Patches, pickup.Resources)
}

// CollectedPickupIndices returns the collected pickup indices in order
func (s *State) CollectedPickupIndices() []int {
	g := s.Game()
	var out []int
	for i := 0; i < g.PickupCount(); i++ {
		if s.IsCollected(g.PickupNode(i)) {
			out = append(out, i)
		}
	}
	return out
}

// CollectedHints returns the collected hint nodes in index order
func (s *State) CollectedHints() []*world.Node {
	var out []*world.Node
	s.Game().ForEachNode(func(n *world.Node) {
		if n.Kind == world.NodeHint && s.IsCollected(n) {
			out = append(out, n)
		}
	})
	return out
}

// CollectedEvents returns the held event resources
func (s *State) CollectedEvents() []*resource.Info {
	var out []*resource.Info
	s.Resources.Each(func(r *resource.Info, amount int) {
		if r.Kind == resource.KindEvent && amount > 0 {
			out = append(out, r)
		}
	})
	return out
}

func (s *State) String() string {
	return fmt.Sprintf("%s [%d energy] %s", s.Node, s.Energy, s.Resources)
}

// Step is one collection of a playthrough.
type Step struct {
	Node   *world.Node
	Path   []*world.Node
	Gained []resource.Amount
}

func (st Step) String() string {
	names := make([]string, len(st.Gained))
	for i, g := range st.Gained {
		names[i] = g.Resource.String()
	}
	return fmt.Sprintf("%s: %s", st.Node, strings.Join(names, ", "))
}

// History returns the collections that led to this state, oldest first
func (s *State) History() []Step {
	var steps []Step
	for cur := s; cur.Previous != nil; cur = cur.Previous {
		var gained []resource.Amount
		prev := cur.Previous.Resources
		cur.Resources.Each(func(r *resource.Info, amount int) {
			if d := amount - prev.Get(r); d > 0 {
				gained = append(gained, resource.Amount{Resource: r, Amount: d})
			}
		})
		steps = append(steps, Step{Node: cur.Node, Path: cur.Path, Gained: gained})
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}
