package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// PrefixedGenerator prepends an entity tag so IDs stay recognizable in logs
// (e.g. match_3f2a..., job_91bc...).
type PrefixedGenerator struct {
	prefix string
	inner  Generator
}

func NewPrefixedGenerator(prefix string, inner Generator) *PrefixedGenerator {
	if inner == nil {
		inner = NewRandomGenerator()
	}
	return &PrefixedGenerator{prefix: prefix, inner: inner}
}

func (g *PrefixedGenerator) NewID() (string, error) {
	raw, err := g.inner.NewID()
	if err != nil {
		return "", err
	}
	if g.prefix == "" {
		return raw, nil
	}
	return g.prefix + "_" + raw, nil
}
