package game

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// Random is the single source of randomness for one period of one game.
// Two generators built from the same (gameID, period, seed) yield the same
// sequence, so an advance can be replayed exactly.
type Random struct {
	rng *rand.Rand
}

func NewRandom(gameID string, period int, seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(periodSeed(gameID, period, seed)))}
}

func periodSeed(gameID string, period int, seed int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(gameID))
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(period))
	binary.LittleEndian.PutUint64(buf[8:], uint64(seed))
	_, _ = h.Write(buf[:])
	return int64(h.Sum64())
}

func (r *Random) Float64() float64 {
	return r.rng.Float64()
}

// Uniform returns a float in [lo, hi).
func (r *Random) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.rng.Float64()
}

// Int64Range returns an integer in [lo, hi].
func (r *Random) Int64Range(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Int63n(hi-lo+1)
}

func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

func (r *Random) Chance(p float64) bool {
	return r.rng.Float64() < p
}
