package dataloader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/fixtures"
	"rando/pkg/game/generator"
	"rando/pkg/game/layout"
)

const tiny = `
name: tiny
resources:
  items:
    - {short: Key, long: Key, max: 1}
regions:
  - name: R
    areas:
      - name: A
        default_node: Start
        nodes:
          - {name: Start}
          - {name: Chest, kind: pickup}
        connections:
          - {from: Start, to: Chest, requirement: %s}
          - {from: Chest, to: Start}
pickups:
  - {name: Key, progression: true, resources: [{resource: Key}]}
start: %s
victory: {resource: "0", kind: pickup-index}
`

func tinyGame(req, start string) string {
	return fmt.Sprintf(tiny, req, start)
}

func TestLoad_Tiny(t *testing.T) {
	g, err := Load(strings.NewReader(tinyGame("{trivial: true}", "R/A/Start")))
	if err != nil {
		t.Fatal(err)
	}
	if g.PickupCount() != 1 {
		t.Errorf("PickupCount() = %d, want 1", g.PickupCount())
	}
	if g.Junk == nil || g.Junk.Name != "Nothing" {
		t.Errorf("Junk = %v, want the default Nothing", g.Junk)
	}
	if got := g.Pool[0].Probability; got != world.DefaultProbability {
		t.Errorf("Probability = %+v, want %+v", got, world.DefaultProbability)
	}
	marker := g.Resources.PickupIndex(0)
	if got := g.VictorySet().String(); !strings.Contains(got, marker.String()) {
		t.Errorf("victory %s does not mention %s", got, marker)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
		is    error
	}{
		{
			name:  "unknown resource",
			input: tinyGame("{resource: Bomb}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement",
		},
		{
			name:  "unsatisfiable",
			input: tinyGame("{and: [{resource: Key}, {not: {resource: Key}}]}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement",
			is:    ErrUnsatisfiable,
		},
		{
			name:  "over capacity",
			input: tinyGame("{resource: Key, amount: 2}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement",
			is:    ErrUnsatisfiable,
		},
		{
			name:  "two forms",
			input: tinyGame("{resource: Key, trivial: true}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement",
		},
		{
			name:  "unknown template",
			input: tinyGame("{template: Missing}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement",
		},
		{
			name:  "negated non-resource",
			input: tinyGame("{not: {trivial: true}}", "R/A/Start"),
			path:  "regions[0].areas[0].connections[0].requirement.not",
		},
		{
			name:  "bad start",
			input: tinyGame("{trivial: true}", "R/A"),
			path:  "start",
		},
		{
			name:  "unknown start",
			input: tinyGame("{trivial: true}", "R/A/Nowhere"),
			path:  "start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if le.Path != tt.path {
				t.Errorf("Path = %q, want %q", le.Path, tt.path)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("name: x\ncolour: red\n"))
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("err = %v, want an unknown field error", err)
	}
}

func TestLoad_ImpossibleAllowed(t *testing.T) {
	if _, err := Load(strings.NewReader(tinyGame("{impossible: true}", "R/A/Start"))); err != nil {
		t.Errorf("explicit impossible requirement rejected: %v", err)
	}
}

func TestLoadFile_MatchesBuiltInStation(t *testing.T) {
	loaded, err := LoadFile("testdata/station.yaml")
	if err != nil {
		t.Fatal(err)
	}
	builtin, err := fixtures.StationGame()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.NodeCount() != builtin.NodeCount() {
		t.Errorf("NodeCount() = %d, want %d", loaded.NodeCount(), builtin.NodeCount())
	}
	locations := func(g *world.Game) []string {
		var out []string
		for i := 0; i < g.PickupCount(); i++ {
			n := g.PickupNode(i)
			out = append(out, fmt.Sprintf("%s major=%v", n, n.Major))
		}
		return out
	}
	if diff := cmp.Diff(locations(builtin), locations(loaded)); diff != "" {
		t.Errorf("pickup locations (-builtin +loaded):\n%s", diff)
	}
	pool := func(g *world.Game) []string {
		var out []string
		for _, p := range g.Pool {
			out = append(out, fmt.Sprintf("%s/%s/%v/%v", p.Name, p.Category, p.Progression, p.Probability))
		}
		return out
	}
	if diff := cmp.Diff(pool(builtin), pool(loaded)); diff != "" {
		t.Errorf("pool (-builtin +loaded):\n%s", diff)
	}

	suit, err := loaded.Resources.Get(resource.KindItem, fixtures.HazardSuit)
	if err != nil {
		t.Fatal(err)
	}
	rad, err := loaded.Resources.Get(resource.KindDamage, fixtures.Radiation)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Resources.ScaledDamage(rad, 100, resource.CollectionOf(resource.Amount{Resource: suit, Amount: 1})); got != 25 {
		t.Errorf("ScaledDamage with suit = %d, want 25", got)
	}

	cfg := layout.DefaultConfiguration()
	if _, err := generator.Generate(context.Background(), []*world.Game{loaded}, layout.NewPermalink(7, cfg), generator.Options{}); err != nil {
		t.Errorf("Generate on loaded station: %v", err)
	}
}
