// Package seed produces the seed sequences that drive batch runs and the
// daily maze.
package seed

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

// Policy yields the seed for every iteration of a batch run, in order.
type Policy interface {
	// Name is the report title for runs driven by this policy.
	Name() string
	// Seeds returns n seeds; index 0 belongs to iteration 1.
	Seeds(n int) []int64
}

const (
	dateMixA int32 = 73856093
	dateMixB int32 = 19349663

	randomStream = 0x6a09e667f3bcc908
)

// Random draws seeds uniformly from [math.MinInt32, math.MaxInt32) using a
// PCG stream seeded by Source. The same Source always yields the same seeds.
type Random struct {
	Source int64
}

// NewRandom returns a Random policy whose source comes from crypto/rand.
func NewRandom() (Random, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return Random{}, fmt.Errorf("read random seed: %w", err)
	}
	return Random{Source: int64(binary.LittleEndian.Uint64(b[:]))}, nil
}

func (Random) Name() string { return "RandomSeeds" }

func (r Random) Seeds(n int) []int64 {
	rng := rand.New(rand.NewPCG(uint64(r.Source), randomStream))
	out := make([]int64, max(n, 0))
	const span = int64(math.MaxInt32) - int64(math.MinInt32)
	for i := range out {
		out[i] = math.MinInt32 + rng.Int64N(span)
	}
	return out
}

// DateVariant derives iteration seeds from a base day seed by mixing it with
// the 1-based iteration number in 32-bit wrap-around arithmetic.
type DateVariant struct {
	Base int32
}

func (DateVariant) Name() string { return "TodayVariantSeeds" }

func (d DateVariant) Seeds(n int) []int64 {
	out := make([]int64, max(n, 0))
	for i := range out {
		out[i] = int64(d.At(i + 1))
	}
	return out
}

// At returns the seed for 1-based iteration i.
func (d DateVariant) At(i int) int32 {
	return (d.Base * dateMixA) ^ (int32(i) * dateMixB)
}

// Fixed replays an explicit seed list, typically the failing seeds of an
// earlier run. Iterations past the end of the list wrap around.
type Fixed struct {
	Title string
	List  []int64
}

func (f Fixed) Name() string {
	if f.Title == "" {
		return "FixedSeeds"
	}
	return f.Title
}

func (f Fixed) Seeds(n int) []int64 {
	if len(f.List) == 0 {
		return nil
	}
	out := make([]int64, max(n, 0))
	for i := range out {
		out[i] = f.List[i%len(f.List)]
	}
	return out
}
