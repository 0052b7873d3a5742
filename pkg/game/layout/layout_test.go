package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rando/pkg/engine/resource"
	"rando/pkg/game/fixtures"
)

func TestValidate(t *testing.T) {
	g, err := fixtures.StationGame()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(c *Configuration)
		field  string
	}{
		{name: "default", mutate: func(c *Configuration) {}},
		{name: "trick enabled", mutate: func(c *Configuration) { c.Tricks = map[string]int{fixtures.VentCrawl: 1} }},
		{name: "shuffle teleporters", mutate: func(c *Configuration) { c.ShuffleTeleporters = true }},
		{name: "major-minor", mutate: func(c *Configuration) { c.Mode = ModeMajorMinor; c.MaximumRandomStartingPickups = 1 }},
		{name: "unknown mode", mutate: func(c *Configuration) { c.Mode = "chaos" }, field: "mode"},
		{name: "min over max", mutate: func(c *Configuration) { c.MinimumRandomStartingPickups = 2 }, field: "minimum_random_starting_pickups"},
		{name: "unknown trick", mutate: func(c *Configuration) { c.Tricks = map[string]int{"Walljump": 1} }, field: "tricks"},
		{name: "negative trick", mutate: func(c *Configuration) { c.Tricks = map[string]int{fixtures.VentCrawl: -1} }, field: "tricks"},
		{name: "excluded out of range", mutate: func(c *Configuration) { c.ExcludedLocations = []int{8} }, field: "excluded_locations"},
		{name: "too many excluded", mutate: func(c *Configuration) { c.ExcludedLocations = []int{0, 1} }, field: "excluded_locations"},
		{name: "too few majors", mutate: func(c *Configuration) { c.Mode = ModeMajorMinor; c.ExcludedLocations = []int{0} }, field: "mode"},
		{name: "bad start", mutate: func(c *Configuration) { c.StartingLocation = "Deck 9/Nowhere/Bunk" }, field: "starting_location"},
		{name: "malformed start", mutate: func(c *Configuration) { c.StartingLocation = "Bunk" }, field: "starting_location"},
		{name: "no players", mutate: func(c *Configuration) { c.Players = 0 }, field: "players"},
		{name: "unknown policy", mutate: func(c *Configuration) { c.LogicalResourceAction = "always" }, field: "logical_resource_action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)
			err := cfg.Validate(g)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ice *InvalidConfigurationError
			if !errors.As(err, &ice) {
				t.Fatalf("Validate() = %v, want *InvalidConfigurationError", err)
			}
			if ice.Field != tt.field {
				t.Errorf("Field = %q, want %q", ice.Field, tt.field)
			}
		})
	}
}

func TestStaticResources(t *testing.T) {
	g, err := fixtures.StationGame()
	if err != nil {
		t.Fatal(err)
	}
	vent, err := g.Resources.Get(resource.KindTrick, fixtures.VentCrawl)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfiguration()
	if got := cfg.StaticResources(g.Resources)[vent]; got != 0 {
		t.Errorf("default vent level = %d, want 0", got)
	}
	cfg.Tricks = map[string]int{fixtures.VentCrawl: 5}
	if got := cfg.StaticResources(g.Resources)[vent]; got != 2 {
		t.Errorf("vent level = %d, want capped at 2", got)
	}
}

func TestLowered(t *testing.T) {
	cfg := DefaultConfiguration()
	if _, ok := cfg.Lowered(); ok {
		t.Error("nothing to lower, want ok = false")
	}

	cfg.Tricks = map[string]int{"A": 2, "B": 0}
	cfg.Difficulty = 1
	lowered, ok := cfg.Lowered()
	if !ok {
		t.Fatal("Lowered() ok = false")
	}
	if diff := cmp.Diff(map[string]int{"A": 1, "B": 0}, lowered.Tricks); diff != "" {
		t.Errorf("Tricks (-want +got):\n%s", diff)
	}
	if lowered.Difficulty != 0 {
		t.Errorf("Difficulty = %d, want 0", lowered.Difficulty)
	}
	if cfg.Tricks["A"] != 2 {
		t.Error("Lowered modified the original configuration")
	}
}

func TestPermalinkRoundTrip(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Tricks = map[string]int{fixtures.VentCrawl: 1}
	cfg.ExcludedLocations = []int{3}
	cfg.Timeout = 30 * time.Second
	p := NewPermalink(1234, cfg)

	s, err := p.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePermalink(s)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("DecodePermalink (-want +got):\n%s", diff)
	}

	if _, err := DecodePermalink("not a permalink!"); err == nil {
		t.Error("DecodePermalink accepted garbage")
	}
}

func TestAttemptSeed(t *testing.T) {
	p := NewPermalink(42, DefaultConfiguration())
	if p.AttemptSeed(0) != p.AttemptSeed(0) {
		t.Error("AttemptSeed is not deterministic")
	}
	if p.AttemptSeed(0) == p.AttemptSeed(1) {
		t.Error("attempts share a seed")
	}
	if p.AttemptSeed(0) == NewPermalink(43, DefaultConfiguration()).AttemptSeed(0) {
		t.Error("seeds share an attempt seed")
	}
}

func TestLoadConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	preset := "mode: major-minor\ntricks:\n  VentCrawl: 1\ntimeout: 10s\n"
	if err := os.WriteFile(path, []byte(preset), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfiguration()
	want.Mode = ModeMajorMinor
	want.Tricks = map[string]int{"VentCrawl": 1}
	want.Timeout = 10 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfiguration (-want +got):\n%s", diff)
	}
}

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("Deck 1/Crew Quarters/Bunk")
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "Deck 1/Crew Quarters/Bunk" {
		t.Errorf("String() = %q", id.String())
	}
	for _, bad := range []string{"", "a/b", "a//c", "a/b/c/d"} {
		if _, err := ParseIdentifier(bad); err == nil {
			t.Errorf("ParseIdentifier(%q) succeeded", bad)
		}
	}
}
