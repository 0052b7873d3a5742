package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
)

// Game is the static description of one game: its resources, graph, docks,
// pickups and victory condition.
type Game struct {
	Name       string
	Resources  *resource.Database
	Regions    []*Region
	Weaknesses map[string]*DockWeakness
	Templates  requirement.Templates
	Victory    requirement.Requirement
	Start      Identifier

	StartingResources []resource.Amount
	Pool              []*PickupEntry
	Junk              *PickupEntry
	// Fixed assignments that are never shuffled, by pickup index
	Fixed map[int]*PickupEntry

	nodes       []*Node
	byID        map[Identifier]*Node
	pickupNodes []*Node
	victorySet  requirement.Set
	finalized   bool

	dangerOnce sync.Once
	dangerous  []*resource.Info
	dangerSet  map[*resource.Info]bool
}

// NewGame creates an empty game using the resource database
func NewGame(name string, db *resource.Database) *Game {
	return &Game{
		Name:       name,
		Resources:  db,
		Weaknesses: make(map[string]*DockWeakness),
		Templates:  make(requirement.Templates),
		Fixed:      make(map[int]*PickupEntry),
	}
}

// AddRegion creates a new region
func (g *Game) AddRegion(name string) *Region {
	r := &Region{Name: name}
	g.Regions = append(g.Regions, r)
	return r
}

// Region returns the region with the given name
func (g *Game) Region(name string) *Region {
	for _, r := range g.Regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// AddWeakness registers a dock weakness
func (g *Game) AddWeakness(w *DockWeakness) *DockWeakness {
	g.Weaknesses[w.Name] = w
	return w
}

// WeaknessNames returns the names of every dock weakness, sorted
func (g *Game) WeaknessNames() []string {
	names := make([]string, 0, len(g.Weaknesses))
	for name := range g.Weaknesses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Finalize assigns node indices, resolves docks, normalizes every
// requirement and validates the graph. The game must not be modified
// afterwards.
func (g *Game) Finalize() error {
	if g.finalized {
		return nil
	}
	if err := requirement.ValidateTemplates(g.Templates); err != nil {
		return err
	}

	g.nodes = g.nodes[:0]
	g.byID = make(map[Identifier]*Node)
	maxPickup := -1
	for _, r := range g.Regions {
		for _, a := range r.Areas {
			for _, n := range a.Nodes {
				if _, dup := g.byID[n.Identifier]; dup {
					return fmt.Errorf("duplicate node %s", n.Identifier)
				}
				n.Index = len(g.nodes)
				g.nodes = append(g.nodes, n)
				g.byID[n.Identifier] = n
				if n.Kind == NodePickup {
					maxPickup = max(maxPickup, n.PickupIndex)
				}
			}
		}
	}

	g.pickupNodes = make([]*Node, maxPickup+1)
	for _, n := range g.nodes {
		if n.Kind != NodePickup {
			continue
		}
		if n.PickupIndex < 0 || g.pickupNodes[n.PickupIndex] != nil {
			return fmt.Errorf("node %s: invalid or duplicate pickup index %d", n, n.PickupIndex)
		}
		g.pickupNodes[n.PickupIndex] = n
		n.pickupMarker = g.Resources.PickupIndex(n.PickupIndex)
	}
	for i, n := range g.pickupNodes {
		if n == nil {
			return fmt.Errorf("pickup index %d has no node", i)
		}
	}

	for _, n := range g.nodes {
		if n.IsDock() {
			target, ok := g.byID[n.DockTarget]
			if !ok {
				return fmt.Errorf("dock %s: unknown target %s", n, n.DockTarget)
			}
			n.dockTarget = target
			if n.DockWeakness != nil {
				if _, known := g.Weaknesses[n.DockWeakness.Name]; !known {
					g.Weaknesses[n.DockWeakness.Name] = n.DockWeakness
				}
			}
		}
		n.collectSet = g.normalize(n.RequirementToCollect)
		n.leaveSet = g.normalize(n.RequirementToLeave)
	}
	for _, r := range g.Regions {
		for _, a := range r.Areas {
			for from, conns := range a.connections {
				for i := range conns {
					conns[i].set = g.normalize(conns[i].Requirement)
				}
				a.connections[from] = conns
			}
		}
	}
	for _, w := range g.Weaknesses {
		w.set = g.normalize(w.Requirement)
	}
	if g.Victory == nil {
		return errors.New("game has no victory condition")
	}
	g.victorySet = g.normalize(g.Victory)

	if err := g.Validate(); err != nil {
		return err
	}
	g.finalized = true
	return nil
}

func (g *Game) normalize(req requirement.Requirement) requirement.Set {
	if req == nil {
		return requirement.TrivialSet()
	}
	return requirement.AsSet(req, g.Templates)
}

// Validate checks the graph invariants: every area has its default node,
// every dock has a counterpart, the start exists and resource nodes carry
// their resource.
func (g *Game) Validate() error {
	if len(g.nodes) == 0 {
		return errors.New("game has no nodes")
	}
	if _, ok := g.byID[g.Start]; !ok {
		return fmt.Errorf("unknown starting node %s", g.Start)
	}
	for _, r := range g.Regions {
		for _, a := range r.Areas {
			if a.Node(a.DefaultNode) == nil {
				return fmt.Errorf("area %s/%s: default node %q not found", r.Name, a.Name, a.DefaultNode)
			}
		}
	}
	for _, n := range g.nodes {
		switch n.Kind {
		case NodeDock:
			target := n.dockTarget
			if !target.IsDock() {
				return fmt.Errorf("dock %s: target %s is not a dock", n, target)
			}
			if target.DockTarget != n.Identifier {
				return fmt.Errorf("dock %s: target %s leads to %s", n, target, target.DockTarget)
			}
		case NodeTeleporter:
			if !n.dockTarget.IsDock() && n.dockTarget.Kind != NodeGeneric {
				return fmt.Errorf("teleporter %s: invalid target %s", n, n.dockTarget)
			}
		case NodeEvent:
			if n.Event == nil {
				return fmt.Errorf("event node %s has no event", n)
			}
		case NodeHint:
			if n.HintMarker == nil {
				return fmt.Errorf("hint node %s has no marker", n)
			}
		}
	}
	if g.Junk == nil {
		return errors.New("game has no junk pickup")
	}
	return nil
}

// Nodes returns every node, ordered by index
func (g *Game) Nodes() []*Node {
	return g.nodes
}

// NodeCount returns the number of nodes
func (g *Game) NodeCount() int {
	return len(g.nodes)
}

// ForEachNode calls fn for every node in index order
func (g *Game) ForEachNode(fn func(n *Node)) {
	for _, n := range g.nodes {
		fn(n)
	}
}

// Node returns the node with the identifier
func (g *Game) Node(id Identifier) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// StartNode returns the default starting node
func (g *Game) StartNode() *Node {
	return g.byID[g.Start]
}

// DefaultNode returns the default node of the area containing id
func (g *Game) DefaultNode(id Identifier) (*Node, bool) {
	r := g.Region(id.Region)
	if r == nil {
		return nil, false
	}
	a := r.Area(id.Area)
	if a == nil {
		return nil, false
	}
	n := a.Node(a.DefaultNode)
	return n, n != nil
}

// PickupCount returns the number of pickup locations
func (g *Game) PickupCount() int {
	return len(g.pickupNodes)
}

// PickupNode returns the node of a pickup index
func (g *Game) PickupNode(index int) *Node {
	if index < 0 || index >= len(g.pickupNodes) {
		return nil
	}
	return g.pickupNodes[index]
}

// Teleporters returns every teleporter node in index order
func (g *Game) Teleporters() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Kind == NodeTeleporter {
			out = append(out, n)
		}
	}
	return out
}

// VictorySet returns the normalized victory requirement
func (g *Game) VictorySet() requirement.Set {
	return g.victorySet
}

// Overlay provides the per-seed changes to the graph.
type Overlay interface {
	DockConnectionFor(n *Node) (*Node, bool)
	DockWeaknessFor(n *Node) (*DockWeakness, bool)
	ConfigurableFor(n *Node) (requirement.Requirement, bool)
}

// Edge is a traversable step from a node.
type Edge struct {
	Target *Node
	Set    requirement.Set
}

// Edges returns the edges leaving n once the overlay is applied. The memo
// normalizes overridden configurable requirements; it may be nil.
func (g *Game) Edges(n *Node, o Overlay, memo *requirement.Memo) []Edge {
	conns := n.Area.ConnectionsFrom(n)
	edges := make([]Edge, 0, len(conns)+1)

	leave := requirement.TrivialSet()
	if n.Kind == NodeConfigurable {
		leave = n.leaveSet
		if o != nil {
			if req, ok := o.ConfigurableFor(n); ok {
				if memo != nil {
					leave = memo.AsSet(req)
				} else {
					leave = requirement.AsSet(req, g.Templates)
				}
			}
		}
	}
	for _, c := range conns {
		set := c.set
		if n.Kind == NodeConfigurable {
			set = set.Product(leave)
		}
		edges = append(edges, Edge{Target: c.To, Set: set})
	}

	if n.IsDock() {
		target := n.dockTarget
		weakness := n.DockWeakness
		if o != nil {
			if t, ok := o.DockConnectionFor(n); ok {
				target = t
			}
			if w, ok := o.DockWeaknessFor(n); ok {
				weakness = w
			}
		}
		set := requirement.TrivialSet()
		if weakness != nil {
			set = weakness.set
		}
		edges = append(edges, Edge{Target: target, Set: set})
	}
	return edges
}
