// Package patches holds the per-seed overlay on top of a game: where every
// pickup goes, dock and teleporter changes, starting state and hints.
//
// Patches are persistent. Every With/Assign/Add method returns a new value
// and leaves the receiver untouched, so branches of a search can share the
// unchanged parts.
package patches

import (
	"fmt"
	"slices"
	"sort"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
)

// HintKind is the kind of a placed hint.
type HintKind uint8

// Hint kinds
const (
	HintLocation HintKind = iota
	HintJoke
)

func (k HintKind) String() string {
	if k == HintJoke {
		return "joke"
	}
	return "location"
}

// Hint points from a hint asset to a pickup location.
type Hint struct {
	Kind   HintKind
	Target int // pickup index
	Player int // owner of the target location
}

// Assignment places a pickup at a pickup index.
type Assignment struct {
	Index  int
	Target world.PickupTarget
}

// NodeHint pairs a hint asset with its hint
type NodeHint struct {
	Node *world.Node
	Hint Hint
}

// Patches is the overlay of one player's game.
type Patches struct {
	Player int

	game         *world.Game
	pickups      *layer[int, world.PickupTarget]
	docks        *layer[int, *world.Node]
	weaknesses   *layer[int, *world.DockWeakness]
	configurable *layer[int, requirement.Requirement]
	hints        *layer[int, Hint]

	start             *world.Node
	startingResources []resource.Amount
	startingPickups   []*world.PickupEntry
}

// New creates empty patches for a player of the game
func New(game *world.Game, player int) *Patches {
	return &Patches{Player: player, game: game}
}

func (p *Patches) clone() *Patches {
	c := *p
	return &c
}

// Game returns the game the patches apply to
func (p *Patches) Game() *world.Game {
	return p.game
}

// AssignPickups places pickups. Assigning an index twice is an error.
func (p *Patches) AssignPickups(assignments ...Assignment) (*Patches, error) {
	entries := make(map[int]world.PickupTarget, len(assignments))
	for _, a := range assignments {
		if p.game.PickupNode(a.Index) == nil {
			return nil, fmt.Errorf("pickup index %d out of range", a.Index)
		}
		if a.Target.Pickup == nil {
			return nil, fmt.Errorf("pickup index %d: no pickup", a.Index)
		}
		_, assigned := p.pickups.get(a.Index)
		if _, batched := entries[a.Index]; assigned || batched {
			return nil, fmt.Errorf("pickup index %d assigned twice", a.Index)
		}
		entries[a.Index] = a.Target
	}
	c := p.clone()
	c.pickups = p.pickups.with(entries)
	return c, nil
}

// PickupAt returns the pickup assigned to an index
func (p *Patches) PickupAt(index int) (world.PickupTarget, bool) {
	return p.pickups.get(index)
}

// AssignedCount returns the number of assigned pickup indices
func (p *Patches) AssignedCount() int {
	return p.pickups.len()
}

// AssignedIndices returns every assigned pickup index, sorted
func (p *Patches) AssignedIndices() []int {
	out := make([]int, 0, p.pickups.len())
	p.pickups.each(func(k int, _ world.PickupTarget) { out = append(out, k) })
	sort.Ints(out)
	return out
}

// IsAssigned returns true if the index holds a pickup
func (p *Patches) IsAssigned(index int) bool {
	_, ok := p.pickups.get(index)
	return ok
}

// WithDockConnection makes the dock or teleporter from lead to to
func (p *Patches) WithDockConnection(from, to *world.Node) *Patches {
	c := p.clone()
	c.docks = p.docks.set(from.Index, to)
	return c
}

// DockConnectionFor implements world.Overlay
func (p *Patches) DockConnectionFor(n *world.Node) (*world.Node, bool) {
	return p.docks.get(n.Index)
}

// WithDockWeakness replaces the weakness of a dock
func (p *Patches) WithDockWeakness(n *world.Node, w *world.DockWeakness) *Patches {
	c := p.clone()
	c.weaknesses = p.weaknesses.set(n.Index, w)
	return c
}

// DockWeaknessFor implements world.Overlay
func (p *Patches) DockWeaknessFor(n *world.Node) (*world.DockWeakness, bool) {
	return p.weaknesses.get(n.Index)
}

// WithConfigurable sets the requirement to leave a configurable node
func (p *Patches) WithConfigurable(n *world.Node, req requirement.Requirement) *Patches {
	c := p.clone()
	c.configurable = p.configurable.set(n.Index, req)
	return c
}

// ConfigurableFor implements world.Overlay
func (p *Patches) ConfigurableFor(n *world.Node) (requirement.Requirement, bool) {
	return p.configurable.get(n.Index)
}

// ConfiguredNodes returns the configurable overrides, ordered by node index
func (p *Patches) ConfiguredNodes() []*world.Node {
	var out []*world.Node
	p.configurable.each(func(k int, _ requirement.Requirement) {
		out = append(out, p.game.Nodes()[k])
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// WithStartingLocation moves the start
func (p *Patches) WithStartingLocation(n *world.Node) *Patches {
	c := p.clone()
	c.start = n
	return c
}

// StartingLocation returns the start, defaulting to the game's
func (p *Patches) StartingLocation() *world.Node {
	if p.start != nil {
		return p.start
	}
	return p.game.StartNode()
}

// WithStartingResources adds resources granted at the start
func (p *Patches) WithStartingResources(amounts ...resource.Amount) *Patches {
	c := p.clone()
	c.startingResources = append(slices.Clip(p.startingResources), amounts...)
	return c
}

// WithStartingPickup adds a pickup to the starting inventory
func (p *Patches) WithStartingPickup(pickup *world.PickupEntry) *Patches {
	c := p.WithStartingResources(pickup.Resources...)
	c.startingPickups = append(slices.Clip(p.startingPickups), pickup)
	return c
}

// StartingResources returns the game's starting resources plus the patched ones
func (p *Patches) StartingResources() []resource.Amount {
	out := make([]resource.Amount, 0, len(p.game.StartingResources)+len(p.startingResources))
	out = append(out, p.game.StartingResources...)
	return append(out, p.startingResources...)
}

// StartingPickups returns the pickups given at the start
func (p *Patches) StartingPickups() []*world.PickupEntry {
	return p.startingPickups
}

// AddHint places a hint at a hint asset
func (p *Patches) AddHint(n *world.Node, h Hint) (*Patches, error) {
	if n.Kind != world.NodeHint {
		return nil, fmt.Errorf("node %s is not a hint asset", n)
	}
	if _, ok := p.hints.get(n.Index); ok {
		return nil, fmt.Errorf("node %s already has a hint", n)
	}
	c := p.clone()
	c.hints = p.hints.set(n.Index, h)
	return c, nil
}

// HintAt returns the hint placed at a node
func (p *Patches) HintAt(n *world.Node) (Hint, bool) {
	return p.hints.get(n.Index)
}

// Hints returns every placed hint, ordered by node index
func (p *Patches) Hints() []NodeHint {
	var out []NodeHint
	p.hints.each(func(k int, h Hint) {
		out = append(out, NodeHint{Node: p.game.Nodes()[k], Hint: h})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Node.Index < out[j].Node.Index })
	return out
}
