package world

import (
	"strings"
	"testing"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
)

type testOverlay struct {
	docks        map[*Node]*Node
	weaknesses   map[*Node]*DockWeakness
	configurable map[*Node]requirement.Requirement
}

func (o testOverlay) DockConnectionFor(n *Node) (*Node, bool) {
	t, ok := o.docks[n]
	return t, ok
}

func (o testOverlay) DockWeaknessFor(n *Node) (*DockWeakness, bool) {
	w, ok := o.weaknesses[n]
	return w, ok
}

func (o testOverlay) ConfigurableFor(n *Node) (requirement.Requirement, bool) {
	r, ok := o.configurable[n]
	return r, ok
}

type testGame struct {
	game    *Game
	bomb    *resource.Info
	pb      *resource.Info
	start   *Node
	pickup  *Node
	dockA   *Node
	dockB   *Node
	gate    *Node
	locked  *DockWeakness
	blasted *DockWeakness
}

func newTestGame(t *testing.T) *testGame {
	t.Helper()
	db := resource.NewDatabase()
	tg := &testGame{
		bomb: db.MustAdd(resource.KindItem, "Bomb", "Bomb", 1),
		pb:   db.MustAdd(resource.KindItem, "PB", "Power Bomb", 5),
	}
	g := NewGame("test", db)
	g.Junk = NewPickup("Nothing", "junk", false)
	tg.locked = g.AddWeakness(&DockWeakness{Name: "Bomb Door", DockType: "door",
		Requirement: requirement.Resource{Resource: tg.bomb, Amount: 1}})
	tg.blasted = g.AddWeakness(&DockWeakness{Name: "PB Door", DockType: "door",
		Requirement: requirement.Resource{Resource: tg.pb, Amount: 1}})

	r := g.AddRegion("Surface")
	a := r.AddArea("Landing", "Ship")
	tg.start = a.AddNode(&Node{Identifier: Identifier{Node: "Ship"}})
	tg.pickup = a.AddNode(&Node{Identifier: Identifier{Node: "Ledge"}, Kind: NodePickup})
	tg.dockA = a.AddNode(&Node{Identifier: Identifier{Node: "Door East"}, Kind: NodeDock,
		DockTarget: Identifier{"Surface", "Cave", "Door West"}, DockWeakness: tg.locked})
	a.Connect(tg.start, tg.pickup, requirement.Resource{Resource: tg.pb, Amount: 1, Negate: true})
	a.Connect(tg.start, tg.dockA, requirement.Trivial())

	c := r.AddArea("Cave", "Door West")
	tg.dockB = c.AddNode(&Node{Identifier: Identifier{Node: "Door West"}, Kind: NodeDock,
		DockTarget: Identifier{"Surface", "Landing", "Door East"}, DockWeakness: tg.locked})
	tg.gate = c.AddNode(&Node{Identifier: Identifier{Node: "Gate"}, Kind: NodeConfigurable,
		RequirementToLeave: requirement.Impossible()})
	c.Connect(tg.dockB, tg.gate, requirement.Trivial())
	c.Connect(tg.gate, tg.dockB, requirement.Trivial())

	g.Start = tg.start.Identifier
	g.Victory = requirement.Resource{Resource: db.PickupIndex(0), Amount: 1}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	tg.game = g
	return tg
}

func TestFinalize_AssignsIndices(t *testing.T) {
	tg := newTestGame(t)
	for i, n := range tg.game.Nodes() {
		if n.Index != i {
			t.Errorf("node %s index = %d, want %d", n, n.Index, i)
		}
	}
	if tg.game.PickupCount() != 1 {
		t.Errorf("PickupCount = %d, want 1", tg.game.PickupCount())
	}
	if got := tg.game.PickupNode(0); got != tg.pickup {
		t.Errorf("PickupNode(0) = %s, want %s", got, tg.pickup)
	}
	if got := tg.pickup.Resource(); got != tg.game.Resources.PickupIndex(0) {
		t.Errorf("pickup marker = %v", got)
	}
	if tg.dockA.DefaultDockTarget() != tg.dockB {
		t.Errorf("dock target = %s, want %s", tg.dockA.DefaultDockTarget(), tg.dockB)
	}
	if n, ok := tg.game.DefaultNode(tg.gate.Identifier); !ok || n != tg.dockB {
		t.Errorf("DefaultNode = %v, %v", n, ok)
	}
}

func TestFinalize_RejectsBrokenGraphs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Game)
		want   string
	}{
		{"unknown start", func(g *Game) { g.Start = Identifier{"Nowhere", "At", "All"} }, "unknown starting node"},
		{"missing default node", func(g *Game) { g.Regions[0].Areas[0].DefaultNode = "Missing" }, "default node"},
		{"unpaired dock", func(g *Game) {
			a := g.Regions[0].Areas[1]
			a.AddNode(&Node{Identifier: Identifier{Node: "Door North"}, Kind: NodeDock,
				DockTarget: Identifier{"Surface", "Landing", "Door East"}})
		}, "leads to"},
		{"no victory", func(g *Game) { g.Victory = nil }, "victory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := resource.NewDatabase()
			g := NewGame("broken", db)
			g.Junk = NewPickup("Nothing", "junk", false)
			r := g.AddRegion("Surface")
			a := r.AddArea("Landing", "Ship")
			a.AddNode(&Node{Identifier: Identifier{Node: "Ship"}})
			a.AddNode(&Node{Identifier: Identifier{Node: "Door East"}, Kind: NodeDock,
				DockTarget: Identifier{"Surface", "Cave", "Door West"}})
			c := r.AddArea("Cave", "Door West")
			c.AddNode(&Node{Identifier: Identifier{Node: "Door West"}, Kind: NodeDock,
				DockTarget: Identifier{"Surface", "Landing", "Door East"}})
			g.Start = Identifier{"Surface", "Landing", "Ship"}
			g.Victory = requirement.Trivial()
			tt.mutate(g)

			err := g.Finalize()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Finalize() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestEdges_AppliesOverlay(t *testing.T) {
	tg := newTestGame(t)
	g := tg.game

	edges := g.Edges(tg.dockA, nil, nil)
	if len(edges) != 1 || edges[0].Target != tg.dockB {
		t.Fatalf("Edges(dock) = %v", edges)
	}
	if got := edges[0].Set.String(); got != "Bomb" {
		t.Errorf("dock set = %q, want Bomb", got)
	}

	o := testOverlay{
		docks:        map[*Node]*Node{tg.dockA: tg.gate},
		weaknesses:   map[*Node]*DockWeakness{tg.dockA: tg.blasted},
		configurable: map[*Node]requirement.Requirement{tg.gate: requirement.Trivial()},
	}
	edges = g.Edges(tg.dockA, o, nil)
	if edges[0].Target != tg.gate || edges[0].Set.String() != "Power Bomb" {
		t.Errorf("overridden dock edge = %s via %s", edges[0].Target, edges[0].Set)
	}

	if got := g.Edges(tg.gate, nil, nil); !got[0].Set.IsImpossible() {
		t.Errorf("configurable default = %s, want impossible", got[0].Set)
	}
	memo := requirement.NewMemo(g.Templates, 0)
	if got := g.Edges(tg.gate, o, memo); !got[0].Set.IsTrivial() {
		t.Errorf("configurable override = %s, want trivial", got[0].Set)
	}
}

func TestDangerousResources(t *testing.T) {
	tg := newTestGame(t)
	got := tg.game.DangerousResources()
	if len(got) != 1 || got[0] != tg.pb {
		t.Errorf("DangerousResources = %v, want [Power Bomb]", got)
	}
	if tg.game.IsDangerous(tg.bomb) {
		t.Error("bomb should not be dangerous")
	}
}
