// Package layout holds the settings a seed is generated with and the
// permalink that carries them.
package layout

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
)

// Mode selects where progression pickups may go.
type Mode string

// Placement modes
const (
	ModeFull       Mode = "full"
	ModeMajorMinor Mode = "major-minor"
)

// ResourceActionPolicy controls whether the generator may collect events and
// hints as actions of their own.
type ResourceActionPolicy string

// Resource action policies
const (
	ResourceActionNever      ResourceActionPolicy = "never"
	ResourceActionRandomly   ResourceActionPolicy = "randomly"
	ResourceActionLastResort ResourceActionPolicy = "last-resort"
)

// DifficultyResource is the misc resource that carries the difficulty level,
// when a game defines one
const DifficultyResource = "Difficulty"

// DefaultMaxAttempts is the number of generation attempts before giving up
const DefaultMaxAttempts = 15

// Configuration is everything besides the seed that decides a generation.
type Configuration struct {
	Tricks     map[string]int `yaml:"tricks,omitempty"`
	Difficulty int            `yaml:"difficulty,omitempty"`
	Mode       Mode           `yaml:"mode"`

	MinimumRandomStartingPickups int `yaml:"minimum_random_starting_pickups,omitempty"`
	MaximumRandomStartingPickups int `yaml:"maximum_random_starting_pickups,omitempty"`

	MultiPickupPlacement  bool                 `yaml:"multi_pickup_placement,omitempty"`
	ExcludedLocations     []int                `yaml:"excluded_locations,omitempty"`
	LogicalResourceAction ResourceActionPolicy `yaml:"logical_resource_action"`
	PlaceHints            bool                 `yaml:"place_hints,omitempty"`
	ShuffleTeleporters    bool                 `yaml:"shuffle_teleporters,omitempty"`
	StartingLocation      string               `yaml:"starting_location,omitempty"`

	// RequireMinimumDifficulty rejects seeds that can be beaten one tier lower
	RequireMinimumDifficulty bool `yaml:"require_minimum_difficulty,omitempty"`

	Players     int           `yaml:"players,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// DefaultConfiguration returns a configuration for a single player with no
// tricks enabled
func DefaultConfiguration() Configuration {
	return Configuration{
		Mode:                  ModeFull,
		LogicalResourceAction: ResourceActionRandomly,
		PlaceHints:            true,
		Players:               1,
		MaxAttempts:           DefaultMaxAttempts,
		Timeout:               time.Minute,
	}
}

// LoadConfiguration reads a YAML preset. Fields the preset leaves out keep
// their defaults.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// InvalidConfigurationError reports settings that contradict each other or
// the game. Generation is never attempted with such a configuration.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration against the game.
func (c Configuration) Validate(g *world.Game) error {
	switch c.Mode {
	case ModeFull, ModeMajorMinor:
	default:
		return invalid("mode", "unknown mode %q", c.Mode)
	}
	switch c.LogicalResourceAction {
	case ResourceActionNever, ResourceActionRandomly, ResourceActionLastResort:
	default:
		return invalid("logical_resource_action", "unknown policy %q", c.LogicalResourceAction)
	}
	if c.MinimumRandomStartingPickups < 0 {
		return invalid("minimum_random_starting_pickups", "must not be negative")
	}
	if c.MinimumRandomStartingPickups > c.MaximumRandomStartingPickups {
		return invalid("minimum_random_starting_pickups", "%d is more than the maximum of %d",
			c.MinimumRandomStartingPickups, c.MaximumRandomStartingPickups)
	}
	if c.Players < 1 {
		return invalid("players", "need at least one player")
	}
	if c.MaxAttempts < 0 {
		return invalid("max_attempts", "must not be negative")
	}
	if c.Difficulty < 0 {
		return invalid("difficulty", "must not be negative")
	}

	for _, name := range c.trickNames() {
		level := c.Tricks[name]
		if _, err := g.Resources.Get(resource.KindTrick, name); err != nil {
			return invalid("tricks", "unknown trick %q", name)
		}
		if level < 0 {
			return invalid("tricks", "trick %q has negative level %d", name, level)
		}
	}

	if c.StartingLocation != "" {
		id, err := ParseIdentifier(c.StartingLocation)
		if err != nil {
			return invalid("starting_location", "%v", err)
		}
		if _, ok := g.Node(id); !ok {
			return invalid("starting_location", "no node %s", id)
		}
	}

	if c.ShuffleTeleporters && len(g.Teleporters())%2 != 0 {
		return invalid("shuffle_teleporters", "%d teleporters cannot be paired", len(g.Teleporters()))
	}

	excluded := c.Excluded()
	for index := range excluded {
		if index < 0 || index >= g.PickupCount() {
			return invalid("excluded_locations", "pickup index %d out of range [0, %d)", index, g.PickupCount())
		}
	}

	open, major := 0, 0
	for i := 0; i < g.PickupCount(); i++ {
		if excluded[i] || g.Fixed[i] != nil {
			continue
		}
		open++
		if g.PickupNode(i).Major {
			major++
		}
	}
	progression := 0
	for _, p := range g.Pool {
		if p.Progression {
			progression++
		}
	}
	if c.Mode == ModeMajorMinor && progression > major+c.MaximumRandomStartingPickups {
		return invalid("mode", "%d progression pickups but only %d open major locations", progression, major)
	}
	if len(g.Pool) > open+c.MaximumRandomStartingPickups {
		return invalid("excluded_locations", "%d pickups do not fit in %d open locations", len(g.Pool), open)
	}
	if progression > open+c.MaximumRandomStartingPickups {
		return invalid("excluded_locations", "%d progression pickups but only %d open locations", progression, open)
	}
	return nil
}

func (c Configuration) trickNames() []string {
	names := make([]string, 0, len(c.Tricks))
	for name := range c.Tricks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Excluded returns the excluded pickup indices as a set
func (c Configuration) Excluded() map[int]bool {
	out := make(map[int]bool, len(c.ExcludedLocations))
	for _, i := range c.ExcludedLocations {
		out[i] = true
	}
	return out
}

// StaticResources returns the level of every trick in the game, zero for
// tricks the configuration does not name, plus the difficulty level.
func (c Configuration) StaticResources(db *resource.Database) map[*resource.Info]int {
	out := make(map[*resource.Info]int)
	for _, trick := range db.All(resource.KindTrick) {
		out[trick] = min(c.Tricks[trick.ShortName], trick.MaxCapacity)
	}
	if d, err := db.Get(resource.KindMisc, DifficultyResource); err == nil {
		out[d] = c.Difficulty
	}
	return out
}

// Lowered returns the configuration one tier easier: every enabled trick and
// the difficulty drop one level. The second result is false when nothing
// can be lowered.
func (c Configuration) Lowered() (Configuration, bool) {
	lowered := c
	lowered.Tricks = make(map[string]int, len(c.Tricks))
	changed := false
	for name, level := range c.Tricks {
		if level > 0 {
			level--
			changed = true
		}
		lowered.Tricks[name] = level
	}
	if c.Difficulty > 0 {
		lowered.Difficulty--
		changed = true
	}
	return lowered, changed
}

// AttemptsOrDefault returns MaxAttempts, or the default when unset
func (c Configuration) AttemptsOrDefault() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

// ParseIdentifier parses a "Region/Area/Node" node identifier
func ParseIdentifier(s string) (world.Identifier, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return world.Identifier{}, fmt.Errorf("node identifier %q is not Region/Area/Node", s)
	}
	return world.Identifier{Region: parts[0], Area: parts[1], Node: parts[2]}, nil
}
