// Package devtools writes the developer-facing artifacts of a generation:
// the spoiler log and the YAML patch export.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rando/pkg/game/generator"
	"rando/pkg/game/patches"
)

const spoilerFilename = "spoiler.txt"

// WriteSpoiler writes a human-readable spoiler log: metadata, then for each
// player the starting items, every location, the dock changes and the
// hints, and finally the playthrough when one was recorded.
// Format is sections with key: value lines.
func WriteSpoiler(w io.Writer, result *generator.Result) error {
	ew := &errWriter{w: w}
	cfg := result.Permalink.Configuration

	ew.println("=== SPOILER LOG ===")
	ew.println("")
	ew.println("--- Metadata ---")
	ew.printf("permalink: %s\n", result.Permalink)
	ew.printf("seed: %d\n", result.Permalink.Seed)
	ew.printf("attempts: %d\n", result.Attempts)
	ew.printf("players: %d\n", cfg.Players)
	ew.printf("mode: %s\n", cfg.Mode)
	if len(cfg.Tricks) > 0 {
		ew.printf("tricks: %s\n", formatTricks(cfg.Tricks))
	}
	ew.println("")

	for _, p := range result.Patches {
		writePlayer(ew, p.Export(), len(result.Patches) > 1)
	}

	if len(result.Playthrough) > 0 {
		ew.println("--- Playthrough ---")
		for i, step := range result.Playthrough {
			ew.printf("%3d. %s\n", i+1, step)
		}
		ew.println("")
	}
	return ew.err
}

func writePlayer(ew *errWriter, e patches.Export, multiworld bool) {
	ew.printf("--- Player %d (%s) ---\n", e.Player+1, e.Game)
	ew.printf("starting_location: %s\n", e.StartingLocation)
	if len(e.StartingItems) > 0 {
		ew.printf("starting_items: %s\n", strings.Join(e.StartingItems, ", "))
	}
	ew.println("")

	ew.println("locations:")
	for _, p := range e.Pickups {
		owner := ""
		if multiworld {
			owner = fmt.Sprintf(" (player %d)", p.Player+1)
		}
		ew.printf("  %s: %s%s\n", p.Location, p.Pickup, owner)
	}
	if len(e.Docks) > 0 {
		ew.println("docks:")
		for _, from := range sortedKeys(e.Docks) {
			ew.printf("  %s -> %s\n", from, e.Docks[from])
		}
	}
	if len(e.Weaknesses) > 0 {
		ew.println("weaknesses:")
		for _, node := range sortedKeys(e.Weaknesses) {
			ew.printf("  %s: %s\n", node, e.Weaknesses[node])
		}
	}
	if len(e.Hints) > 0 {
		ew.println("hints:")
		for _, h := range e.Hints {
			ew.printf("  %s: %s %s (player %d)\n", h.Asset, h.Kind, h.Location, h.Player+1)
		}
	}
	ew.println("")
}

// DumpSpoilerToFile writes the spoiler log to spoiler.txt in dir and returns
// the absolute path
func DumpSpoilerToFile(result *generator.Result, dir string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(dir, spoilerFilename))
	if err != nil {
		return "", err
	}
	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteSpoiler(f, result); err != nil {
		return "", err
	}
	return absPath, f.Close()
}

// errWriter remembers the first write error so callers check once
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintf(ew.w, format, args...)
	}
}

func (ew *errWriter) println(s string) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintln(ew.w, s)
	}
}
