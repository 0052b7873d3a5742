// Package bench runs many independent generations in parallel and reports
// how each went. Only the finalized game is shared between workers.
package bench

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"rando/pkg/engine/world"
	"rando/pkg/game/generator"
	"rando/pkg/game/layout"
)

// Result is the outcome of one permalink.
type Result struct {
	Permalink layout.Permalink
	Attempts  int
	Duration  time.Duration
	Err       error // generation failure or timeout, nil on success
}

// Summary aggregates the results of a run, in permalink order.
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
	TimedOut  int
	Total     time.Duration // wall clock
	Mean      time.Duration
	Median    time.Duration
	Slowest   time.Duration
}

// Options tune a run.
type Options struct {
	Logger *slog.Logger
	// Progress is called after every finished permalink; calls are serialized
	Progress func(done, total int)
}

// Permalinks returns count permalinks with consecutive seeds
func Permalinks(cfg layout.Configuration, firstSeed uint64, count int) []layout.Permalink {
	out := make([]layout.Permalink, count)
	for i := range out {
		out[i] = layout.NewPermalink(firstSeed+uint64(i), cfg)
	}
	return out
}

// Run generates every permalink with at most workers generations in flight.
// Generation failures and timeouts are recorded per permalink; any other
// error, such as an invalid configuration, stops the run.
func Run(ctx context.Context, game *world.Game, permalinks []layout.Permalink, workers int, opts Options) (*Summary, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(permalinks))
	var mu sync.Mutex
	done := 0

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range permalinks {
		i, p := i, p
		eg.Go(func() error {
			res, err := runOne(ctx, game, p, opts.Logger)
			if err != nil {
				return err
			}
			results[i] = res
			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(permalinks))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summarize(results, time.Since(start)), nil
}

func runOne(ctx context.Context, game *world.Game, p layout.Permalink, logger *slog.Logger) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	games := make([]*world.Game, p.Configuration.Players)
	for i := range games {
		games[i] = game
	}

	began := time.Now()
	out, err := generator.Generate(ctx, games, p, generator.Options{Logger: logger})
	res := Result{Permalink: p, Duration: time.Since(began), Err: err}

	var failure *generator.GenerationFailure
	switch {
	case err == nil:
		res.Attempts = out.Attempts
	case errors.As(err, &failure):
		res.Attempts = failure.Attempts
	case errors.Is(err, generator.ErrTimeout) && ctx.Err() == nil:
		// the permalink's own timeout, not the run's
	default:
		return Result{}, err
	}
	if logger != nil {
		logger.Info("bench seed", "seed", p.Seed, "attempts", res.Attempts, "duration", res.Duration, "err", err)
	}
	return res, nil
}

func summarize(results []Result, wall time.Duration) *Summary {
	s := &Summary{Results: results, Total: wall}
	if len(results) == 0 {
		return s
	}
	durations := make([]time.Duration, len(results))
	var sum time.Duration
	for i, r := range results {
		switch {
		case r.Err == nil:
			s.Succeeded++
		case errors.Is(r.Err, generator.ErrTimeout):
			s.TimedOut++
		default:
			s.Failed++
		}
		durations[i] = r.Duration
		sum += r.Duration
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	s.Mean = sum / time.Duration(len(results))
	s.Median = durations[len(durations)/2]
	s.Slowest = durations[len(durations)-1]
	return s
}
