// Package world provides the static game graph: regions, areas, nodes and
// the requirement-gated connections between them. A Game is built once,
// finalized, and then shared read-only by every search.
package world

import (
	"fmt"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
)

// NodeKind is the closed set of node types.
type NodeKind uint8

// Node kinds
const (
	NodeGeneric NodeKind = iota
	NodePickup
	NodeEvent
	NodeDock
	NodeTeleporter
	NodeConfigurable
	NodeHint
)

var nodeKindNames = []string{"generic", "pickup", "event", "dock", "teleporter", "configurable", "hint"}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("node-kind(%d)", k)
}

// ParseNodeKind returns the kind for a name produced by NodeKind.String
func ParseNodeKind(name string) (NodeKind, error) {
	for i, n := range nodeKindNames {
		if n == name {
			return NodeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", name)
}

// Identifier names a node uniquely within a game.
type Identifier struct {
	Region string
	Area   string
	Node   string
}

func (id Identifier) String() string {
	return id.Region + "/" + id.Area + "/" + id.Node
}

// AreaIdentifier returns the identifier with the node name dropped
func (id Identifier) AreaIdentifier() Identifier {
	return Identifier{Region: id.Region, Area: id.Area}
}

// Node is a single location of the graph.
type Node struct {
	Index      int
	Identifier Identifier
	Kind       NodeKind
	Heal       bool
	Major      bool // major location in major/minor mode

	// Pickup nodes
	PickupIndex int

	// Event nodes
	Event *resource.Info

	// Hint nodes
	HintMarker *resource.Info

	// Dock and teleporter nodes
	DockTarget   Identifier
	DockWeakness *DockWeakness

	// Configurable nodes; patches may override it
	RequirementToLeave requirement.Requirement

	// Requirement to collect the node's resource, nil when free
	RequirementToCollect requirement.Requirement

	Area *Area

	pickupMarker *resource.Info
	dockTarget   *Node
	collectSet   requirement.Set
	leaveSet     requirement.Set
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Identifier.String()
}

// IsResourceNode returns true for nodes that grant a resource when collected
func (n *Node) IsResourceNode() bool {
	switch n.Kind {
	case NodePickup, NodeEvent, NodeHint:
		return true
	}
	return false
}

// IsDock returns true for docks and teleporters
func (n *Node) IsDock() bool {
	return n.Kind == NodeDock || n.Kind == NodeTeleporter
}

// Resource returns the resource marking this node as collected: the pickup
// index, the event or the hint marker. Nil for other nodes.
func (n *Node) Resource() *resource.Info {
	switch n.Kind {
	case NodePickup:
		return n.pickupMarker
	case NodeEvent:
		return n.Event
	case NodeHint:
		return n.HintMarker
	}
	return nil
}

// DefaultDockTarget returns the node this dock leads to without patches
func (n *Node) DefaultDockTarget() *Node {
	return n.dockTarget
}

// CollectSet returns the normalized requirement to collect the node
func (n *Node) CollectSet() requirement.Set {
	return n.collectSet
}

// Connection is a one-way edge inside an area.
type Connection struct {
	From        *Node
	To          *Node
	Requirement requirement.Requirement
	set         requirement.Set
}

// Set returns the normalized requirement of the connection
func (c Connection) Set() requirement.Set {
	return c.set
}

// Area groups nodes that are connected by plain connections.
type Area struct {
	Name        string
	Region      *Region
	DefaultNode string
	Nodes       []*Node

	connections map[*Node][]Connection
}

// AddNode adds a node to the area. The node's identifier is filled in.
func (a *Area) AddNode(n *Node) *Node {
	n.Identifier = Identifier{Region: a.Region.Name, Area: a.Name, Node: n.Identifier.Node}
	n.Area = a
	a.Nodes = append(a.Nodes, n)
	return n
}

// Node returns the node with the given name
func (a *Area) Node(name string) *Node {
	for _, n := range a.Nodes {
		if n.Identifier.Node == name {
			return n
		}
	}
	return nil
}

// Connect adds a connection between two nodes of this area
func (a *Area) Connect(from, to *Node, req requirement.Requirement) {
	if a.connections == nil {
		a.connections = make(map[*Node][]Connection)
	}
	a.connections[from] = append(a.connections[from], Connection{From: from, To: to, Requirement: req})
}

// ConnectionsFrom returns the connections leaving a node, in insertion order
func (a *Area) ConnectionsFrom(n *Node) []Connection {
	return a.connections[n]
}

// Region groups areas.
type Region struct {
	Name  string
	Areas []*Area
}

// AddArea creates a new area in the region
func (r *Region) AddArea(name, defaultNode string) *Area {
	a := &Area{Name: name, Region: r, DefaultNode: defaultNode}
	r.Areas = append(r.Areas, a)
	return a
}

// Area returns the area with the given name
func (r *Region) Area(name string) *Area {
	for _, a := range r.Areas {
		if a.Name == name {
			return a
		}
	}
	return nil
}
