package patches

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/world"
	"rando/pkg/game/fixtures"
)

func stationGame(t *testing.T) *world.Game {
	t.Helper()
	g, err := fixtures.StationGame()
	if err != nil {
		t.Fatalf("StationGame: %v", err)
	}
	return g
}

func node(t *testing.T, g *world.Game, region, area, name string) *world.Node {
	t.Helper()
	n, ok := g.Node(world.Identifier{Region: region, Area: area, Node: name})
	if !ok {
		t.Fatalf("node %s/%s/%s not found", region, area, name)
	}
	return n
}

func TestAssignPickups_Persistent(t *testing.T) {
	g := stationGame(t)
	base := New(g, 0)
	red := g.Pool[0]

	next, err := base.AssignPickups(Assignment{Index: 3, Target: world.PickupTarget{Pickup: red}})
	if err != nil {
		t.Fatalf("AssignPickups: %v", err)
	}
	if base.IsAssigned(3) {
		t.Error("assignment leaked into the original patches")
	}
	if got, ok := next.PickupAt(3); !ok || got.Pickup != red {
		t.Errorf("PickupAt(3) = %v, %v", got, ok)
	}
	if _, err := next.AssignPickups(Assignment{Index: 3, Target: world.PickupTarget{Pickup: red}}); err == nil {
		t.Error("assigning index 3 twice should fail")
	}
	if _, err := base.AssignPickups(
		Assignment{Index: 1, Target: world.PickupTarget{Pickup: red}},
		Assignment{Index: 1, Target: world.PickupTarget{Pickup: red}},
	); err == nil {
		t.Error("duplicate index in one batch should fail")
	}
	if _, err := base.AssignPickups(Assignment{Index: 99, Target: world.PickupTarget{Pickup: red}}); err == nil {
		t.Error("out of range index should fail")
	}
}

func TestLayers_FlattenKeepsEntries(t *testing.T) {
	g := stationGame(t)
	p := New(g, 0)
	branches := make([]*Patches, 0, g.PickupCount())
	for i := 0; i < g.PickupCount(); i++ {
		var err error
		p, err = p.AssignPickups(Assignment{Index: i, Target: world.PickupTarget{Pickup: g.Junk}})
		if err != nil {
			t.Fatalf("AssignPickups(%d): %v", i, err)
		}
		branches = append(branches, p)
	}
	for i, b := range branches {
		if b.AssignedCount() != i+1 {
			t.Errorf("branch %d AssignedCount = %d, want %d", i, b.AssignedCount(), i+1)
		}
	}
	want := make([]int, g.PickupCount())
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, p.AssignedIndices()); diff != "" {
		t.Errorf("AssignedIndices mismatch (-want +got):\n%s", diff)
	}

	var l *layer[int, int]
	for i := 0; i < 3*maxLayerDepth; i++ {
		l = l.set(i%5, i)
	}
	if l.len() != 5 || l.depthOf() > maxLayerDepth {
		t.Errorf("layer len = %d depth = %d", l.len(), l.depthOf())
	}
	latest := -1
	for i := 0; i < 3*maxLayerDepth; i++ {
		if i%5 == 4 {
			latest = i
		}
	}
	if v, _ := l.get(4); v != latest {
		t.Errorf("get(4) = %d, want %d", v, latest)
	}
}

func TestOverlay(t *testing.T) {
	g := stationGame(t)
	liftUp := node(t, g, "Deck 1", "Corridor", "Lift Up")
	cargo := node(t, g, "Deck 2", "Reactor", "Cargo Lift")
	labDoor := node(t, g, "Deck 1", "Corridor", "Door to Lab")

	p := New(g, 0).
		WithDockConnection(liftUp, cargo).
		WithDockWeakness(labDoor, g.Weaknesses["Open"]).
		WithConfigurable(liftUp, requirement.Impossible())

	if to, ok := p.DockConnectionFor(liftUp); !ok || to != cargo {
		t.Errorf("DockConnectionFor = %v, %v", to, ok)
	}
	if w, ok := p.DockWeaknessFor(labDoor); !ok || w.Name != "Open" {
		t.Errorf("DockWeaknessFor = %v, %v", w, ok)
	}
	edges := g.Edges(liftUp, p, nil)
	if last := edges[len(edges)-1]; last.Target != cargo {
		t.Errorf("lift edge target = %s, want %s", last.Target, cargo)
	}
	if got := len(p.ConfiguredNodes()); got != 1 {
		t.Errorf("ConfiguredNodes = %d, want 1", got)
	}
}

func TestStartingAndHints(t *testing.T) {
	g := stationGame(t)
	termA := node(t, g, "Deck 1", "Crew Quarters", "Terminal A")
	bunk := node(t, g, "Deck 1", "Crew Quarters", "Bunk")
	if got := New(g, 0).StartingLocation(); got != bunk {
		t.Errorf("StartingLocation = %s, want %s", got, bunk)
	}

	p := New(g, 0).WithStartingPickup(g.Pool[2])
	if got := p.StartingResources(); len(got) != 1 || got[0].Resource.ShortName != fixtures.HazardSuit {
		t.Errorf("StartingResources = %v", got)
	}

	p, err := p.AddHint(termA, Hint{Kind: HintLocation, Target: 6})
	if err != nil {
		t.Fatalf("AddHint: %v", err)
	}
	if _, err := p.AddHint(termA, Hint{Target: 2}); err == nil {
		t.Error("second hint on the same asset should fail")
	}
	if _, err := p.AddHint(bunk, Hint{Target: 2}); err == nil {
		t.Error("hint on a non-hint node should fail")
	}

	got := p.Export()
	want := Export{
		Game:             "station",
		Player:           0,
		StartingLocation: "Deck 1/Crew Quarters/Bunk",
		StartingItems:    []string{"Hazard Suit"},
		Hints: []ExportedHint{{
			Asset:    "Deck 1/Crew Quarters/Terminal A",
			Kind:     "location",
			Location: "Deck 2/Generator Room/Toolbox",
			Index:    6,
		}},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Export{}, "Pickups")); diff != "" {
		t.Errorf("Export mismatch (-want +got):\n%s", diff)
	}
	if len(got.Pickups) != g.PickupCount() || got.Pickups[0].Pickup != "Nothing" {
		t.Errorf("Export pickups = %v", got.Pickups)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	g := stationGame(t)
	termB := node(t, g, "Deck 2", "Reactor", "Terminal B")
	liftUp := node(t, g, "Deck 1", "Corridor", "Lift Up")
	cargo := node(t, g, "Deck 1", "Lab", "Cargo Lift")
	labDoor := node(t, g, "Deck 1", "Corridor", "Door to Lab")

	var assignments []Assignment
	for i := 0; i < g.PickupCount(); i++ {
		pickup := g.Junk
		if i < len(g.Pool) {
			pickup = g.Pool[i]
		}
		assignments = append(assignments, Assignment{Index: i, Target: world.PickupTarget{Pickup: pickup}})
	}
	p, err := New(g, 0).WithStartingPickup(g.Pool[3]).AssignPickups(assignments...)
	if err != nil {
		t.Fatal(err)
	}
	p = p.WithDockConnection(liftUp, cargo).
		WithDockConnection(cargo, liftUp).
		WithDockWeakness(labDoor, g.Weaknesses["Open"])
	if p, err = p.AddHint(termB, Hint{Kind: HintLocation, Target: 3}); err != nil {
		t.Fatal(err)
	}

	exported := p.Export()
	imported, err := Import([]*world.Game{g}, exported)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if diff := cmp.Diff(exported, imported.Export()); diff != "" {
		t.Errorf("round trip (-exported +imported):\n%s", diff)
	}

	exported.Game = "other"
	if _, err := Import([]*world.Game{g}, exported); err == nil {
		t.Error("importing another game's export should fail")
	}
}
