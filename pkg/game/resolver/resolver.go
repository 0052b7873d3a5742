// Package resolver verifies that a set of patches can be completed: that
// some sequence of collections from the start reaches the victory condition.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leonelquinteros/gotext"
	"github.com/zyedidia/generic/stack"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/patches"
	"rando/pkg/game/reach"
	"rando/pkg/game/state"
)

var (
	// ErrTimeout is returned when the search ran out of time. It says
	// nothing about whether the patches are completable.
	ErrTimeout = errors.New("resolver timed out")

	// ErrTooEasy is returned by ResolveWithMinimumDifficulty when the patches
	// can also be completed one difficulty tier lower.
	ErrTooEasy = errors.New("completable below the minimum difficulty")
)

// statusEvery is how many explored states pass between status updates
const statusEvery = 500

// Options tune a resolver run.
type Options struct {
	Logger *slog.Logger
	Status func(string)
}

func (o Options) status(msg string) {
	if o.Status != nil {
		o.Status(msg)
	}
}

// Result is the outcome of a completed search. An impossible game is a
// result with Completable false, not an error.
type Result struct {
	Completable bool
	Final       *state.State
	Path        []state.Step
	Explored    int
}

type visitKey struct {
	node        int
	fingerprint uint64
}

type frame struct {
	parent *reach.Reach
	action *world.Node
}

// Resolve searches depth first for a playthrough of the patches. Safe
// collections are committed without branching; unsafe ones are tried in
// order, those that grant nothing dangerous first. Positions already seen
// with the same resources are skipped.
func Resolve(ctx context.Context, p *patches.Patches, static map[*resource.Info]int, opts Options) (*Result, error) {
	rctx := reach.NewContext(p.Game(), static, opts.Logger)
	logger := rctx.Logger
	root := reach.Calculate(rctx, rctx.InitialState(p))

	visited := make(map[visitKey]bool)
	frames := stack.New[frame]()
	frames.Push(frame{parent: root})
	explored := 0

	for frames.Size() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}
		f := frames.Pop()
		r := f.parent
		if f.action != nil {
			r = r.AdvanceTo(r.Collect(f.action))
		}
		r = reach.CollectAllSafeResources(r)
		explored++
		if explored%statusEvery == 0 {
			opts.status(gotext.Get("Resolver explored %d states", explored))
		}

		if r.VictorySatisfied() {
			final := r.State()
			logger.Debug("resolver found victory", "explored", explored, "steps", len(final.History()))
			return &Result{Completable: true, Final: final, Path: final.History(), Explored: explored}, nil
		}

		key := visitKey{r.State().Node.Index, r.State().Resources.Fingerprint()}
		if visited[key] {
			continue
		}
		visited[key] = true

		actions := orderActions(r)
		// pushed in reverse so the first action is explored first
		for i := len(actions) - 1; i >= 0; i-- {
			frames.Push(frame{parent: r, action: actions[i]})
		}
	}
	logger.Debug("resolver exhausted the search", "explored", explored)
	return &Result{Completable: false, Explored: explored}, nil
}

// orderActions puts collections that grant nothing dangerous first
func orderActions(r *reach.Reach) []*world.Node {
	var harmless, dangerous []*world.Node
	for _, n := range r.CollectableResourceNodes() {
		if r.GainsDangerous(n) {
			dangerous = append(dangerous, n)
		} else {
			harmless = append(harmless, n)
		}
	}
	return append(harmless, dangerous...)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// ResolveWithMinimumDifficulty resolves at the configured tier and, when
// lowered is not nil, again one tier lower. ErrTooEasy is returned when
// both succeed.
func ResolveWithMinimumDifficulty(ctx context.Context, p *patches.Patches, static, lowered map[*resource.Info]int, opts Options) (*Result, error) {
	result, err := Resolve(ctx, p, static, opts)
	if err != nil || !result.Completable || lowered == nil {
		return result, err
	}
	easier, err := Resolve(ctx, p, lowered, opts)
	if err != nil {
		return nil, err
	}
	if easier.Completable {
		return result, ErrTooEasy
	}
	return result, nil
}
