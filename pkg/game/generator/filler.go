package generator

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/leonelquinteros/gotext"

	"rando/pkg/engine/world"
	"rando/pkg/game/layout"
	"rando/pkg/game/patches"
	"rando/pkg/game/reach"
	"rando/pkg/game/setup"
)

// maxIterations bounds one attempt; every iteration places a pickup or
// collects a node, so a healthy fill ends long before this
const maxIterations = 5000

// fillOutcome is the result of one attempt. Failures are values so the
// driver decides whether to retry.
type fillOutcome struct {
	patches []*patches.Patches
	actions int
	err     error
}

// player is the filler's view of one world.
type player struct {
	index    int
	game     *world.Game
	reach    *reach.Reach
	pool     []*world.PickupEntry
	actions  int
	starting int
	hintSeen map[int]int // hint node index to pickups placed while it was reached
}

func (p *player) patches() *patches.Patches {
	return p.reach.State().Patches
}

func (p *player) uncollected() int {
	return p.game.PickupCount() - len(p.reach.State().CollectedPickupIndices())
}

func (p *player) finished() bool {
	return len(p.pool) == 0 && p.reach.VictorySatisfied()
}

type locationKey struct {
	player, index int
}

type filler struct {
	ctx     context.Context
	rng     *rand.Rand
	cfg     layout.Configuration
	opts    Options
	logger  *slog.Logger
	players []*player
	seen    map[locationKey]int // shared by all attempts of one generation
	total   int
	placed  int
}

// runFiller runs one attempt. seen counts how often each location was offered
// and carries over from earlier attempts, so spots offered many times before
// weigh less.
func runFiller(ctx context.Context, rng *rand.Rand, games []*world.Game, cfg layout.Configuration, seen map[locationKey]int, opts Options) fillOutcome {
	f := &filler{
		ctx:    ctx,
		rng:    rng,
		cfg:    cfg,
		opts:   opts,
		logger: opts.logger(),
		seen:   seen,
	}
	for i, g := range games {
		base, err := setup.BasePatches(rng, g, cfg, i)
		if err != nil {
			return fillOutcome{err: unable("base patches for player %d: %v", i+1, err)}
		}
		rctx := reach.NewContext(g, cfg.StaticResources(g.Resources), f.logger)
		pool := setup.ItemPool(g).All()
		f.players = append(f.players, &player{
			index:    i,
			game:     g,
			reach:    reach.Calculate(rctx, rctx.InitialState(base)),
			pool:     pool,
			hintSeen: make(map[int]int),
		})
		f.total += len(pool)
	}

	err := f.run()
	out := fillOutcome{err: err}
	for _, p := range f.players {
		out.patches = append(out.patches, p.patches())
		out.actions += p.actions
	}
	return out
}

func (f *filler) run() error {
	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := f.ctx.Err(); err != nil {
			return err
		}
		for _, p := range f.players {
			p.reach = reach.AdvanceWithPossibleUnsafeResources(p.reach)
		}
		if f.allVictorious() {
			return f.finish()
		}

		p := f.choosePlayer()
		if p == nil {
			return unable("no player can make progress")
		}
		actions := f.actionsFor(p)
		if len(actions) == 0 {
			return unable("player %d has nothing left to do", p.index+1)
		}
		act := actions[f.draw(weightsOf(actions))]
		if err := f.apply(p, act); err != nil {
			return err
		}
		p.actions++
	}
	return unable("filler did not finish in %d iterations", maxIterations)
}

func (f *filler) allVictorious() bool {
	for _, p := range f.players {
		if !p.reach.VictorySatisfied() {
			return false
		}
	}
	return true
}

// choosePlayer draws the next player to act, favoring players with many
// uncollected locations and few actions so far
func (f *filler) choosePlayer() *player {
	var candidates []*player
	var weights []float64
	for _, p := range f.players {
		if p.finished() {
			continue
		}
		if len(p.pool) == 0 && len(p.reach.CollectableResourceNodes()) == 0 {
			continue
		}
		candidates = append(candidates, p)
		weights = append(weights, float64(p.uncollected()+1)/float64(1+p.actions))
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[f.draw(weights)]
}

// draw picks an index by cumulative weight, uniformly when every weight is zero
func (f *filler) draw(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return f.rng.Intn(len(weights))
	}
	x := f.rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func (f *filler) apply(p *player, act action) error {
	if act.node != nil {
		f.logger.Debug("collecting", "player", p.index, "node", act.node.String())
		p.reach = p.reach.AdvanceTo(p.reach.Collect(act.node))
		return nil
	}
	pickups := act.pickups
	if !f.cfg.MultiPickupPlacement {
		pickups = pickups[:1]
	}
	for _, pk := range pickups {
		if err := f.place(p, pk); err != nil {
			return err
		}
	}
	return nil
}

// place puts one of p's pickups at a location some player has reached,
// or into p's starting items
func (f *filler) place(p *player, pk *world.PickupEntry) error {
	i := slices.Index(p.pool, pk)
	if i < 0 {
		return unable("%s is not in the pool of player %d", pk, p.index+1)
	}
	p.pool = slices.Delete(p.pool, i, i+1)

	if p.starting < f.cfg.MinimumRandomStartingPickups {
		f.addStarting(p, pk)
		return nil
	}
	loc, ok := f.chooseLocation(pk)
	if !ok {
		if p.starting < f.cfg.MaximumRandomStartingPickups {
			f.addStarting(p, pk)
			return nil
		}
		return unable("no location left for %s", pk)
	}

	owner := f.players[loc.player]
	target := world.PickupTarget{Pickup: pk, Player: p.index}
	st, err := owner.reach.State().AssignPickups(patches.Assignment{Index: loc.index, Target: target})
	if err != nil {
		return unable("%v", err)
	}
	owner.reach = owner.reach.AdvanceTo(st)
	if owner != p {
		// the owner already collected the location, so the pickup is on its way
		p.reach = p.reach.AdvanceTo(p.reach.State().ReceivePickup(pk))
	}
	f.placed++
	f.logger.Debug("placed", "pickup", pk.Name, "player", p.index, "location", owner.game.PickupNode(loc.index).String(), "world", loc.player)
	f.opts.status(gotext.Get("Placed %d of %d pickups", f.placed, f.total))

	if f.cfg.PlaceHints && pk.Progression {
		f.placeHint(owner, loc)
	}
	return nil
}

func (f *filler) addStarting(p *player, pk *world.PickupEntry) {
	p.reach = p.reach.AdvanceTo(p.reach.State().AssignPickupToStarting(pk))
	p.starting++
	f.placed++
	f.logger.Debug("starting pickup", "pickup", pk.Name, "player", p.index)
}

// fits reports whether the placement mode allows pk at n
func (f *filler) fits(pk *world.PickupEntry, n *world.Node) bool {
	return f.cfg.Mode != layout.ModeMajorMinor || pk.Progression == n.Major
}

// chooseLocation draws an empty location that its world has already
// collected. Newer locations weigh more, and each world's weights sum to
// one so that worlds stay balanced.
func (f *filler) chooseLocation(pk *world.PickupEntry) (locationKey, bool) {
	var candidates []locationKey
	var weights []float64
	for _, q := range f.players {
		start := len(candidates)
		sum := 0.0
		for _, index := range q.reach.State().CollectedPickupIndices() {
			if q.patches().IsAssigned(index) || !f.fits(pk, q.game.PickupNode(index)) {
				continue
			}
			key := locationKey{q.index, index}
			f.seen[key]++
			w := 1 / float64(f.seen[key])
			candidates = append(candidates, key)
			weights = append(weights, w)
			sum += w
		}
		for i := start; i < len(weights); i++ {
			weights[i] /= sum
		}
	}
	if len(candidates) == 0 {
		return locationKey{}, false
	}
	return candidates[f.draw(weights)], true
}

// placeHint points a reached, unhinted hint asset of the location's world
// at the location. Assets that have already seen many pickups placed are
// less likely to be chosen.
func (f *filler) placeHint(owner *player, loc locationKey) {
	var candidates []*world.Node
	var weights []float64
	hinted := owner.patches()
	for _, n := range owner.reach.State().CollectedHints() {
		if _, ok := hinted.HintAt(n); ok {
			continue
		}
		candidates = append(candidates, n)
		weights = append(weights, 1/float64(1+owner.hintSeen[n.Index]))
	}
	for _, n := range owner.reach.State().CollectedHints() {
		owner.hintSeen[n.Index]++
	}
	if len(candidates) == 0 {
		return
	}
	n := candidates[f.draw(weights)]
	p, err := hinted.AddHint(n, patches.Hint{Kind: patches.HintLocation, Target: loc.index, Player: loc.player})
	if err != nil {
		f.logger.Warn("hint not placed", "node", n.String(), "err", err)
		return
	}
	owner.reach = owner.reach.AdvanceTo(owner.reach.State().WithPatches(p))
}

// finish places the remaining pickups uniformly at random at empty
// locations and fills what is left with junk
func (f *filler) finish() error {
	for _, p := range f.players {
		for len(p.pool) > 0 {
			pk := p.pool[0]
			p.pool = p.pool[1:]
			var open []locationKey
			for _, q := range f.players {
				for index := 0; index < q.game.PickupCount(); index++ {
					if !q.patches().IsAssigned(index) && f.fits(pk, q.game.PickupNode(index)) {
						open = append(open, locationKey{q.index, index})
					}
				}
			}
			if len(open) == 0 {
				if p.starting < f.cfg.MaximumRandomStartingPickups {
					f.addStarting(p, pk)
					continue
				}
				return unable("no location left for %s", pk)
			}
			loc := open[f.rng.Intn(len(open))]
			if err := f.assignAt(loc, world.PickupTarget{Pickup: pk, Player: p.index}); err != nil {
				return err
			}
			f.placed++
		}
	}

	for _, q := range f.players {
		for index := 0; index < q.game.PickupCount(); index++ {
			if q.patches().IsAssigned(index) {
				continue
			}
			if err := f.assignAt(locationKey{q.index, index}, world.PickupTarget{Pickup: q.game.Junk, Player: q.index}); err != nil {
				return err
			}
		}
	}
	f.opts.status(gotext.Get("Placed %d of %d pickups", f.placed, f.total))
	return nil
}

// assignAt assigns a pickup and refreshes the owner's reach
func (f *filler) assignAt(loc locationKey, target world.PickupTarget) error {
	q := f.players[loc.player]
	st, err := q.reach.State().AssignPickups(patches.Assignment{Index: loc.index, Target: target})
	if err != nil {
		return unable("%v", err)
	}
	q.reach = q.reach.AdvanceTo(st)
	return nil
}
