// Package resolve maps names written by the narrator onto existing world
// entities.
package resolve

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/jwebster45206/saga-engine/pkg/textfilter"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

// DefaultThreshold is the lowest similarity accepted as the same entity.
const DefaultThreshold = 0.85

// Similarity scores two already-normalized strings in [0,1].
type Similarity interface {
	Compare(a, b string) float64
}

// Dice is the Sorensen-Dice coefficient over character bigrams.
type Dice struct {
	metric *metrics.SorensenDice
}

func NewDice() Dice {
	m := metrics.NewSorensenDice()
	m.CaseSensitive = true // inputs are folded first
	m.NgramSize = 2
	return Dice{metric: m}
}

func (d Dice) Compare(a, b string) float64 {
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, d.metric)
}

// Resolver performs exact-then-fuzzy name lookup.
type Resolver struct {
	sim       Similarity
	threshold float64
}

type Option func(*Resolver)

func WithSimilarity(s Similarity) Option {
	return func(r *Resolver) { r.sim = s }
}

func WithThreshold(t float64) Option {
	return func(r *Resolver) { r.threshold = t }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{sim: NewDice(), threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Match describes a successful lookup.
type Match struct {
	Index int
	Score float64
	Exact bool
}

// Score returns the similarity of two raw names after folding.
func (r *Resolver) Score(a, b string) float64 {
	return r.sim.Compare(textfilter.Fold(a), textfilter.Fold(b))
}

// Find looks name up among items. Candidates rejected by open are never
// considered; pass nil to consider all of them. An exact, case-sensitive
// match on name or id wins outright. Otherwise the best fuzzy score is
// accepted only when it reaches the threshold.
func Find[T world.Entity](r *Resolver, name string, items []T, open func(T) bool) (Match, bool) {
	if name == "" {
		return Match{Index: -1}, false
	}
	for i, it := range items {
		if open != nil && !open(it) {
			continue
		}
		if it.EntityName() == name || it.EntityID() == name {
			return Match{Index: i, Score: 1, Exact: true}, true
		}
	}

	folded := textfilter.Fold(name)
	if folded == "" {
		return Match{Index: -1}, false
	}
	best := Match{Index: -1}
	for i, it := range items {
		if open != nil && !open(it) {
			continue
		}
		score := r.sim.Compare(folded, textfilter.Fold(it.EntityName()))
		if score > best.Score {
			best = Match{Index: i, Score: score}
		}
	}
	if best.Index < 0 || best.Score < r.threshold {
		return Match{Index: -1, Score: best.Score}, false
	}
	return best, true
}

// FindString is Find for bare strings, such as quest objective text.
func (r *Resolver) FindString(name string, candidates []string) (Match, bool) {
	items := make([]named, len(candidates))
	for i, c := range candidates {
		items[i] = named(c)
	}
	return Find(r, name, items, nil)
}

type named string

func (n named) EntityID() string   { return string(n) }
func (n named) EntityName() string { return string(n) }
