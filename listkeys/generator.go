package listkeys

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces opaque identity tokens for list items and reset keys.
// Tokens must never repeat for the lifetime of a form.
type Generator interface {
	NewKey() string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() string

// NewKey implements Generator.
func (f GeneratorFunc) NewKey() string {
	return f()
}

// UUIDGenerator issues random UUIDv4 tokens. It is the default generator.
type UUIDGenerator struct{}

// NewKey implements Generator.
func (UUIDGenerator) NewKey() string {
	return uuid.NewString()
}

// SequenceGenerator issues increasing decimal tokens ("0", "1", ...). It is
// safe for concurrent use and useful wherever keys must be reproducible, such
// as tests and replay tooling.
type SequenceGenerator struct {
	mu   sync.Mutex
	next int
}

// NewSequence returns a SequenceGenerator whose first token is start.
func NewSequence(start int) *SequenceGenerator {
	return &SequenceGenerator{next: start}
}

// NewKey implements Generator.
func (g *SequenceGenerator) NewKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := strconv.Itoa(g.next)
	g.next++
	return key
}
