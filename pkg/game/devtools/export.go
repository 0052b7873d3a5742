package devtools

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"rando/pkg/engine/world"
	"rando/pkg/game/generator"
	"rando/pkg/game/patches"
)

// ExportDocument is the YAML export of a generation, read by patchers.
type ExportDocument struct {
	Permalink string           `yaml:"permalink"`
	Seed      uint64           `yaml:"seed"`
	Attempts  int              `yaml:"attempts"`
	Players   []patches.Export `yaml:"players"`
}

// NewExportDocument flattens a generation result
func NewExportDocument(result *generator.Result) ExportDocument {
	doc := ExportDocument{
		Permalink: result.Permalink.String(),
		Seed:      result.Permalink.Seed,
		Attempts:  result.Attempts,
	}
	for _, p := range result.Patches {
		doc.Players = append(doc.Players, p.Export())
	}
	return doc
}

// WriteExport writes the YAML export of a generation
func WriteExport(w io.Writer, result *generator.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewExportDocument(result)); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return enc.Close()
}

// WriteExportFile writes the YAML export to path
func WriteExportFile(path string, result *generator.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteExport(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadExport reads an export written by WriteExport
func ReadExport(r io.Reader) (ExportDocument, error) {
	var doc ExportDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return ExportDocument{}, fmt.Errorf("decoding export: %w", err)
	}
	return doc, nil
}

// ImportPatches rebuilds every player's patches from an export document
func ImportPatches(games []*world.Game, doc ExportDocument) ([]*patches.Patches, error) {
	if len(doc.Players) == 0 {
		return nil, fmt.Errorf("export has no players")
	}
	if len(doc.Players) != len(games) {
		return nil, fmt.Errorf("export has %d players but %d games given", len(doc.Players), len(games))
	}
	out := make([]*patches.Patches, len(doc.Players))
	for i, e := range doc.Players {
		if e.Player != i {
			return nil, fmt.Errorf("export entry %d is for player %d", i, e.Player)
		}
		p, err := patches.Import(games, e)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		out[i] = p
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTricks(tricks map[string]int) string {
	names := make([]string, 0, len(tricks))
	for name := range tricks {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, tricks[name])
	}
	return strings.Join(parts, ", ")
}
