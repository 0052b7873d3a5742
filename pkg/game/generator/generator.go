// Package generator places a game's pickups so that the result is always
// completable. Each attempt fills the locations with the retcon filler and
// is then checked by the resolver; failed attempts are retried with a new
// seed derived from the permalink.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/leonelquinteros/gotext"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/world"
	"rando/pkg/game/layout"
	"rando/pkg/game/patches"
	"rando/pkg/game/resolver"
	"rando/pkg/game/state"
)

// ErrTimeout is returned when generation ran out of time
var ErrTimeout = errors.New("generation timed out")

// UnableToGenerateError ends one attempt; the driver retries with another seed.
type UnableToGenerateError struct {
	Reason string
}

func (e *UnableToGenerateError) Error() string {
	return "unable to generate: " + e.Reason
}

func unable(format string, args ...any) error {
	return &UnableToGenerateError{Reason: fmt.Sprintf(format, args...)}
}

// GenerationFailure is returned once every attempt has failed.
type GenerationFailure struct {
	Reason    error
	Permalink string
	Attempts  int
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed after %d attempts (permalink %s): %v", e.Attempts, e.Permalink, e.Reason)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Reason
}

// Options tune a generation.
type Options struct {
	Logger *slog.Logger
	Status func(string)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o Options) status(msg string) {
	if o.Status != nil {
		o.Status(msg)
	}
}

// Result is a successful generation.
type Result struct {
	Permalink   layout.Permalink
	Patches     []*patches.Patches // one per player
	Attempts    int
	Playthrough []state.Step // single player only
}

// Generate runs attempts until one produces completable patches, at most the
// configured number of times. There is one game per player; a game may be
// repeated to let several players play the same game.
func Generate(ctx context.Context, games []*world.Game, permalink layout.Permalink, opts Options) (*Result, error) {
	cfg := permalink.Configuration
	if len(games) != cfg.Players {
		return nil, &layout.InvalidConfigurationError{
			Field:  "players",
			Reason: fmt.Sprintf("%d players configured but %d games given", cfg.Players, len(games)),
		}
	}
	for _, g := range games {
		if err := cfg.Validate(g); err != nil {
			return nil, err
		}
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger := opts.logger()
	maxAttempts := cfg.AttemptsOrDefault()
	var reason error
	seen := make(map[locationKey]int)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		opts.status(gotext.Get("Attempt %d of %d", attempt+1, maxAttempts))
		rng := rand.New(rand.NewSource(permalink.AttemptSeed(attempt)))

		outcome := runFiller(ctx, rng, games, cfg, seen, opts)
		if outcome.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
			}
			var utg *UnableToGenerateError
			if !errors.As(outcome.err, &utg) {
				return nil, outcome.err
			}
			logger.Info("attempt failed", "attempt", attempt, "reason", utg.Reason)
			reason = outcome.err
			continue
		}

		playthrough, err := verify(ctx, games, cfg, outcome.patches, opts)
		switch {
		case errors.Is(err, resolver.ErrTimeout) || ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		case err != nil:
			logger.Info("attempt rejected", "attempt", attempt, "reason", err)
			reason = err
			continue
		}
		logger.Info("generated", "attempt", attempt, "actions", outcome.actions)
		return &Result{
			Permalink:   permalink,
			Patches:     outcome.patches,
			Attempts:    attempt + 1,
			Playthrough: playthrough,
		}, nil
	}
	return nil, &GenerationFailure{Reason: reason, Permalink: permalink.String(), Attempts: maxAttempts}
}

// errNotCompletable rejects an attempt the resolver could not finish
var errNotCompletable = errors.New("resolver could not complete the generated patches")

// verify resolves the filled patches independently of the filler
func verify(ctx context.Context, games []*world.Game, cfg layout.Configuration, all []*patches.Patches, opts Options) ([]state.Step, error) {
	ropts := resolver.Options{Logger: opts.Logger, Status: opts.Status}
	if len(all) > 1 {
		static := make([]map[*resource.Info]int, len(games))
		for i, g := range games {
			static[i] = cfg.StaticResources(g.Resources)
		}
		result, err := resolver.ResolveMultiworld(ctx, all, static, ropts)
		if err != nil {
			return nil, err
		}
		if !result.Completable {
			return nil, fmt.Errorf("%w: players %v stuck", errNotCompletable, result.Stuck)
		}
		return nil, nil
	}

	db := games[0].Resources
	var lowered map[*resource.Info]int
	if cfg.RequireMinimumDifficulty {
		if easier, ok := cfg.Lowered(); ok {
			lowered = easier.StaticResources(db)
		}
	}
	result, err := resolver.ResolveWithMinimumDifficulty(ctx, all[0], cfg.StaticResources(db), lowered, ropts)
	if err != nil {
		return nil, err
	}
	if !result.Completable {
		return nil, errNotCompletable
	}
	return result.Path, nil
}
