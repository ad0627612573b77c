package recommendation

import (
	"errors"
	"math/rand"
)

const (
	// HighScoreThreshold splits entries into the high tier (score above it)
	// and the low tier (everything else).
	HighScoreThreshold = 10
	// TierSplit is the draw above which the high tier is chosen.
	TierSplit = 0.7
)

// ErrEmptyPool is returned by Pick when there is nothing to choose from.
var ErrEmptyPool = errors.New("no recommendations to pick from")

// RandomSource is the randomness Pick consumes. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// globalRand uses the package level math/rand functions, which are safe for
// concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// DefaultRandom is the source used when none is injected.
var DefaultRandom RandomSource = globalRand{}

// Pick chooses one entry. One draw selects a tier (high when above TierSplit),
// an empty tier falls back to every entry, and a second draw picks uniformly
// inside the tier. No randomness is consumed for an empty input.
func Pick(entries []Recommendation, rnd RandomSource) (Recommendation, error) {
	if len(entries) == 0 {
		return Recommendation{}, ErrEmptyPool
	}

	high := rnd.Float64() > TierSplit
	pool := make([]Recommendation, 0, len(entries))
	for _, e := range entries {
		if (e.Score > HighScoreThreshold) == high {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		pool = entries
	}

	return pool[rnd.Intn(len(pool))], nil
}
