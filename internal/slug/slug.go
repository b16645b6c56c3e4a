// Package slug generates candidate short codes. It does not check candidates
// against existing links; uniqueness is left to the caller and the store.
package slug

import (
	"fmt"
	"math/rand/v2"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Style selects how candidate codes are built.
type Style string

const (
	// StylePair joins a random adjective and a random name with a hyphen.
	StylePair Style = "Pair"
	// StyleRandom draws characters uniformly from Alphabet.
	StyleRandom Style = "Random"
	// StyleUID builds a nanoid over Alphabet.
	StyleUID Style = "UID"
)

// Alphabet is the character set of Random and UID codes.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// MinLength is the shortest code Random and UID styles produce.
const MinLength = 4

// ParseStyle maps a configuration value to a Style. The empty string selects StylePair.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StylePair:
		return StylePair, nil
	case StyleRandom:
		return StyleRandom, nil
	case StyleUID:
		return StyleUID, nil
	default:
		return "", fmt.Errorf("slug.ParseStyle: unknown style %q", s)
	}
}

// Generator produces candidate codes for one style and length.
type Generator struct {
	style  Style
	length int
}

// NewGenerator returns a Generator. Lengths below MinLength are raised to MinLength.
func NewGenerator(style Style, length int) *Generator {
	return &Generator{
		style:  style,
		length: max(length, MinLength),
	}
}

// Length returns the effective length of Random and UID codes.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new candidate code.
func (g *Generator) Generate() (string, error) {
	const op = "slug.Generator.Generate"

	switch g.style {
	case StyleRandom:
		return random(g.length), nil
	case StyleUID:
		code, err := gonanoid.Generate(Alphabet, g.length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate nanoid: %w", op, err)
		}
		return code, nil
	default:
		return pair(), nil
	}
}

func random(n int) string {
	var sb strings.Builder
	sb.Grow(n)

	for range n {
		sb.WriteByte(Alphabet[rand.IntN(len(Alphabet))])
	}

	return sb.String()
}

func pair() string {
	return adjectives[rand.IntN(len(adjectives))] + "-" + names[rand.IntN(len(names))]
}
