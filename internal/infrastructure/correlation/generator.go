// Package correlation issues the 16-character references that tie a request to its
// gateway-side transaction record.
package correlation

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// Length of every reference.
	Length = 16

	prefixLayout = "0601021504"
	suffixWidth  = Length - len(prefixLayout)
)

// suffixSpace is 36^6, the number of distinct 6-char base36 suffixes.
const suffixSpace uint64 = 36 * 36 * 36 * 36 * 36 * 36

// Generator builds references from a minute-resolution timestamp in the business timezone
// followed by a base36 counter. The counter starts at a random point so separate processes
// are unlikely to overlap.
type Generator struct {
	loc     *time.Location
	now     func() time.Time
	counter atomic.Uint64
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithSeed fixes the starting counter value.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.counter.Store(seed % suffixSpace)
	}
}

// NewGenerator creates a Generator for the given business timezone. A nil location means UTC.
func NewGenerator(loc *time.Location, opts ...Option) *Generator {
	if loc == nil {
		loc = time.UTC
	}

	g := &Generator{loc: loc, now: time.Now}
	g.counter.Store(randomSeed())

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// New returns a fresh reference.
func (g *Generator) New() string {
	n := g.counter.Add(1) - 1
	return g.prefix() + encodeSuffix(n)
}

// NewBatch returns a batch id and n line ids. All n+1 values are reserved in one step,
// so lines share the batch prefix and carry consecutive suffixes.
func (g *Generator) NewBatch(n int) (string, []string) {
	if n < 0 {
		n = 0
	}

	end := g.counter.Add(uint64(n) + 1)
	start := end - uint64(n) - 1
	prefix := g.prefix()

	lines := make([]string, n)
	for i := range lines {
		lines[i] = prefix + encodeSuffix(start+uint64(i)+1)
	}

	return prefix + encodeSuffix(start), lines
}

func (g *Generator) prefix() string {
	return g.now().In(g.loc).Format(prefixLayout)
}

func encodeSuffix(n uint64) string {
	s := strings.ToUpper(strconv.FormatUint(n%suffixSpace, 36))
	if len(s) < suffixWidth {
		s = strings.Repeat("0", suffixWidth-len(s)) + s
	}
	return s
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano()) % suffixSpace
	}
	return binary.BigEndian.Uint64(b[:]) % suffixSpace
}
