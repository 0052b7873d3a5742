// Package reach computes which nodes and resources a playthrough can get to
// from a given state, and which of them can be collected without risk.
package reach

import (
	"io"
	"log/slog"
	"sort"

	"rando/pkg/engine/requirement"
	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/patches"
	"rando/pkg/game/state"
)

// Context holds what stays fixed during one search: the game, the static
// resources of the chosen difficulty and the caches built on them. A
// Context belongs to one goroutine.
type Context struct {
	Game   *world.Game
	Static map[*resource.Info]int
	Memo   *requirement.Memo
	Logger *slog.Logger

	simplified map[string]simplified
	dangerous  map[*resource.Info]bool
	victory    simplified
}

type simplified struct {
	set requirement.Set
	ok  bool
}

// NewContext creates a context. Static resources are tricks and difficulty
// levels; requirements on them are decided once up front.
func NewContext(game *world.Game, static map[*resource.Info]int, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if static == nil {
		static = make(map[*resource.Info]int)
	}
	ctx := &Context{
		Game:       game,
		Static:     static,
		Memo:       requirement.NewMemo(game.Templates, requirement.DefaultMemoCapacity),
		Logger:     logger,
		simplified: make(map[string]simplified),
		dangerous:  make(map[*resource.Info]bool),
	}
	for _, r := range game.DangerousResources() {
		ctx.dangerous[r] = true
	}
	set, ok := game.VictorySet().Simplify(static)
	ctx.victory = simplified{set, ok}
	return ctx
}

// StaticAmounts returns the static resources as amounts, sorted
func (ctx *Context) StaticAmounts() []resource.Amount {
	out := make([]resource.Amount, 0, len(ctx.Static))
	for r, n := range ctx.Static {
		out = append(out, resource.Amount{Resource: r, Amount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource.Key().Less(out[j].Resource.Key()) })
	return out
}

// InitialState creates the starting state for the patches, holding the
// static resources as well
func (ctx *Context) InitialState(p *patches.Patches) *state.State {
	ctx.registerPatches(p)
	return state.Initial(p, ctx.StaticAmounts()...)
}

// registerPatches marks resources negated by patched configurable nodes as dangerous
func (ctx *Context) registerPatches(p *patches.Patches) {
	for _, n := range p.ConfiguredNodes() {
		req, _ := p.ConfigurableFor(n)
		for _, r := range ctx.Memo.AsSet(req).Dangerous() {
			ctx.dangerous[r] = true
		}
	}
}

// IsDangerous returns true if collecting r may close a path
func (ctx *Context) IsDangerous(r *resource.Info) bool {
	return ctx.dangerous[r]
}

// simplify drops static requirements from a set, caching by set key
func (ctx *Context) simplify(s requirement.Set) (requirement.Set, bool) {
	key := s.Key()
	if c, ok := ctx.simplified[key]; ok {
		return c.set, c.ok
	}
	set, ok := s.Simplify(ctx.Static)
	ctx.simplified[key] = simplified{set, ok}
	return set, ok
}

// VictorySatisfied reports whether the state meets the victory condition
func (ctx *Context) VictorySatisfied(s *state.State) bool {
	return ctx.victory.ok && ctx.victory.set.Satisfied(s.Resources, s.Energy, ctx.Game.Resources)
}

// VictorySet returns the simplified victory requirement
func (ctx *Context) VictorySet() requirement.Set {
	if !ctx.victory.ok {
		return requirement.ImpossibleSet()
	}
	return ctx.victory.set
}
