package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rando/pkg/engine/resource"
	"rando/pkg/engine/terminal"
	"rando/pkg/engine/world"
	"rando/pkg/game/bench"
	"rando/pkg/game/dataloader"
	"rando/pkg/game/devtools"
	"rando/pkg/game/fixtures"
	"rando/pkg/game/generator"
	"rando/pkg/game/layout"
	"rando/pkg/game/renderer"
	"rando/pkg/game/renderer/tui"
	"rando/pkg/game/resolver"
)

const usage = `usage: rando <command> [flags]

commands:
  generate   place pickups for a seed and verify the result
  resolve    check that an exported layout can be completed
  bench      generate many seeds in parallel and report timings
  permalink  encode or decode a permalink

Run "rando <command> -h" for the flags of a command.
`

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// loadGame returns a built-in game or loads a YAML description
func loadGame(name string) (*world.Game, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return dataloader.LoadFile(name)
	}
	if !slices.Contains(fixtures.Names(), name) {
		return nil, fmt.Errorf("unknown game %q: use one of %s or a .yaml file", name, strings.Join(fixtures.Names(), ", "))
	}
	return fixtures.ByName(name)
}

func loadConfiguration(path string) (layout.Configuration, error) {
	if path == "" {
		return layout.DefaultConfiguration(), nil
	}
	return layout.LoadConfiguration(path)
}

// commonFlags are shared by every command that runs a search
type commonFlags struct {
	game    string
	config  string
	timeout time.Duration
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.game, "game", "station", "built-in game name or path to a game YAML file")
	fs.StringVar(&c.config, "config", "", "path to a configuration YAML file")
	fs.DurationVar(&c.timeout, "timeout", 0, "overrides the configured timeout")
	fs.BoolVar(&c.verbose, "verbose", false, "log every search step")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	r := tui.New(os.Stdout, terminal.Interactive(os.Stdout))
	renderer.SetRenderer(r)
	renderer.Init()

	ctx := context.Background()
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "generate":
		err = runGenerate(ctx, args)
	case "resolve":
		err = runResolve(ctx, args)
	case "bench":
		err = runBench(ctx, args)
	case "permalink":
		err = runPermalink(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	renderer.EndStatus()
	if err != nil {
		renderer.ShowMessage("DENIED{%s}", err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	seed := fs.Uint64("seed", 0, "seed; a random one is used when zero")
	link := fs.String("permalink", "", "permalink to regenerate; overrides -config and -seed")
	spoiler := fs.String("spoiler", "", "directory to write spoiler.txt to")
	export := fs.String("export", "", "file to write the YAML export to")
	fs.Parse(args)

	var permalink layout.Permalink
	if *link != "" {
		p, err := layout.DecodePermalink(*link)
		if err != nil {
			return err
		}
		permalink = p
	} else {
		cfg, err := loadConfiguration(common.config)
		if err != nil {
			return err
		}
		if *seed == 0 {
			*seed = uint64(time.Now().UnixNano())
		}
		permalink = layout.NewPermalink(*seed, cfg)
	}
	if common.timeout > 0 {
		permalink.Configuration.Timeout = common.timeout
	}

	g, err := loadGame(common.game)
	if err != nil {
		return err
	}
	games := make([]*world.Game, permalink.Configuration.Players)
	for i := range games {
		games[i] = g
	}

	renderer.ShowMessage("GT{Generating} LOC{%s} GT{seed} %d", g.Name, permalink.Seed)
	began := time.Now()
	result, err := generator.Generate(ctx, games, permalink, generator.Options{
		Logger: newLogger(common.verbose),
		Status: renderer.ShowStatus,
	})
	if err != nil {
		return err
	}
	renderer.ShowMessage("OK{%s}", fmt.Sprintf("Generated in %d attempt(s), %s", result.Attempts, time.Since(began).Round(time.Millisecond)))
	renderer.ShowMessage("GT{Permalink}: PROG{%s}", result.Permalink)

	if *spoiler != "" {
		path, err := devtools.DumpSpoilerToFile(result, *spoiler)
		if err != nil {
			return err
		}
		renderer.ShowMessage("GT{Spoiler written to} LOC{%s}", path)
	}
	if *export != "" {
		if err := devtools.WriteExportFile(*export, result); err != nil {
			return err
		}
		renderer.ShowMessage("GT{Export written to} LOC{%s}", *export)
	}
	return nil
}

func runResolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	input := fs.String("export", "", "YAML export to check (required)")
	fs.Parse(args)
	if *input == "" {
		return errors.New("resolve needs -export")
	}

	cfg, err := loadConfiguration(common.config)
	if err != nil {
		return err
	}
	if common.timeout > 0 {
		cfg.Timeout = common.timeout
	}
	g, err := loadGame(common.game)
	if err != nil {
		return err
	}
	f, err := os.Open(*input)
	if err != nil {
		return err
	}
	doc, err := devtools.ReadExport(f)
	f.Close()
	if err != nil {
		return err
	}
	games := make([]*world.Game, len(doc.Players))
	static := make([]map[*resource.Info]int, len(doc.Players))
	for i := range games {
		games[i] = g
		static[i] = cfg.StaticResources(g.Resources)
	}
	all, err := devtools.ImportPatches(games, doc)
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	opts := resolver.Options{Logger: newLogger(common.verbose), Status: renderer.ShowStatus}

	if len(all) > 1 {
		result, err := resolver.ResolveMultiworld(ctx, all, static, opts)
		if err != nil {
			return err
		}
		if !result.Completable {
			return fmt.Errorf("not completable: players %v are stuck after %d rounds", result.Stuck, result.Rounds)
		}
		renderer.ShowMessage("OK{%s}", fmt.Sprintf("Completable in %d rounds", result.Rounds))
		return nil
	}

	result, err := resolver.Resolve(ctx, all[0], static[0], opts)
	if err != nil {
		return err
	}
	if !result.Completable {
		return fmt.Errorf("not completable after exploring %d states", result.Explored)
	}
	renderer.ShowMessage("OK{%s}", fmt.Sprintf("Completable, %d states explored", result.Explored))
	for i, step := range result.Path {
		renderer.ShowMessage("%3d. LOC{%s}", i+1, step)
	}
	return nil
}

func runBench(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	seed := fs.Uint64("seed", 1, "first seed")
	count := fs.Int("count", 20, "number of seeds")
	workers := fs.Int("workers", 0, "parallel generations; defaults to GOMAXPROCS")
	fs.Parse(args)

	cfg, err := loadConfiguration(common.config)
	if err != nil {
		return err
	}
	if common.timeout > 0 {
		cfg.Timeout = common.timeout
	}
	g, err := loadGame(common.game)
	if err != nil {
		return err
	}

	logger := newLogger(common.verbose)
	summary, err := bench.Run(ctx, g, bench.Permalinks(cfg, *seed, *count), *workers, bench.Options{
		Logger: logger,
		Progress: func(done, total int) {
			renderer.ShowStatus(fmt.Sprintf("%d/%d", done, total))
		},
	})
	if err != nil {
		return err
	}
	renderer.EndStatus()
	for _, r := range summary.Results {
		if r.Err != nil {
			renderer.ShowMessage("DENIED{seed %d}: %s", r.Permalink.Seed, r.Err)
		}
	}
	renderer.ShowMessage("OK{%d succeeded}, DENIED{%d failed}, %d timed out", summary.Succeeded, summary.Failed, summary.TimedOut)
	renderer.ShowMessage("SUBTLE{mean %s, median %s, slowest %s, wall %s}",
		summary.Mean.Round(time.Millisecond), summary.Median.Round(time.Millisecond),
		summary.Slowest.Round(time.Millisecond), summary.Total.Round(time.Millisecond))
	return nil
}

func runPermalink(args []string) error {
	fs := flag.NewFlagSet("permalink", flag.ExitOnError)
	config := fs.String("config", "", "path to a configuration YAML file")
	seed := fs.Uint64("seed", 1, "seed")
	decode := fs.String("permalink", "", "permalink to decode")
	fs.Parse(args)

	if *decode != "" {
		p, err := layout.DecodePermalink(*decode)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}
	cfg, err := loadConfiguration(*config)
	if err != nil {
		return err
	}
	fmt.Println(layout.NewPermalink(*seed, cfg))
	return nil
}
