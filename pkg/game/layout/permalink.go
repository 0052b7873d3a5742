package layout

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Permalink identifies a generation: the same permalink on the same game
// always produces the same patches.
type Permalink struct {
	Seed          uint64        `yaml:"seed"`
	Configuration Configuration `yaml:"configuration"`
}

// NewPermalink pairs a seed with a configuration
func NewPermalink(seed uint64, cfg Configuration) Permalink {
	return Permalink{Seed: seed, Configuration: cfg}
}

// Encode returns the permalink as URL-safe text
func (p Permalink) Encode() (string, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode permalink: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// String returns the encoded permalink, or a placeholder if it cannot be encoded
func (p Permalink) String() string {
	s, err := p.Encode()
	if err != nil {
		return fmt.Sprintf("<seed %d>", p.Seed)
	}
	return s
}

// DecodePermalink parses text produced by Encode
func DecodePermalink(s string) (Permalink, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Permalink{}, fmt.Errorf("decode permalink: %w", err)
	}
	var p Permalink
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Permalink{}, fmt.Errorf("decode permalink: %w", err)
	}
	return p, nil
}

// AttemptSeed derives the random seed of one generation attempt
func (p Permalink) AttemptSeed(attempt int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], p.Seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(attempt))
	return int64(xxhash.Sum64(buf[:]))
}
