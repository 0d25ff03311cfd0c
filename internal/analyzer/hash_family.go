package analyzer

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/ludo-technologies/setsim/domain"
)

// HashFamily is a keyed hash capability. Hash must be a pure function of
// (value, seed) and defined for every seed in [0, totalHashes).
type HashFamily interface {
	Hash(value int64, seed int) uint64
}

// HashFamilyFunc adapts an ordinary function to the HashFamily interface
type HashFamilyFunc func(value int64, seed int) uint64

// Hash calls f(value, seed)
func (f HashFamilyFunc) Hash(value int64, seed int) uint64 {
	return f(value, seed)
}

// NewHashFamily returns the built-in family registered under name.
func NewHashFamily(name string, totalHashes int) (HashFamily, error) {
	switch name {
	case "", domain.HashFamilyXXHash:
		return XXHashFamily{}, nil
	case domain.HashFamilySplitMix:
		return SplitMixFamily{}, nil
	case domain.HashFamilyUniversal:
		if totalHashes <= 0 {
			return nil, domain.NewInvalidTotalHashesError(totalHashes)
		}
		return NewUniversalFamily(totalHashes), nil
	default:
		return nil, domain.NewConfigError(fmt.Sprintf("hash family %q", name), domain.ErrUnknownHashFamily)
	}
}

// XXHashFamily hashes the little-endian (value, seed) pair with xxHash64.
type XXHashFamily struct{}

// Hash implements HashFamily
func (XXHashFamily) Hash(value int64, seed int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(value))
	binary.LittleEndian.PutUint64(buf[8:], uint64(seed))
	return xxhash.Sum64(buf[:])
}

// splitmix64 constants (Vigna, 2014)
const (
	splitMixBase      = 0x517cc1b727220a95
	splitMixIncrement = 0x9e3779b97f4a7c15
	splitMixMul1      = 0xbf58476d1ce4e5b9
	splitMixMul2      = 0x94d049bb133111eb
)

func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= splitMixMul1
	x ^= x >> 27
	x *= splitMixMul2
	x ^= x >> 31
	return x
}

// SplitMixFamily XORs the value with a per-seed key and applies the splitmix64 finalizer.
// The finalizer is a bijection, so distinct values never collide under one seed.
type SplitMixFamily struct{}

// Hash implements HashFamily
func (SplitMixFamily) Hash(value int64, seed int) uint64 {
	key := mix64(splitMixBase + uint64(seed+1)*splitMixIncrement)
	return mix64(uint64(value) ^ key)
}

// UniversalFamily is the odd-multiplier scheme h_i(x) = (a_i*x)^b_i + a_i + b_i
// over a mixed base value, with coefficients drawn from a fixed PRNG seed.
type UniversalFamily struct {
	a []uint64
	b []uint64
}

// NewUniversalFamily draws coefficients for numHashes seeds.
func NewUniversalFamily(numHashes int) *UniversalFamily {
	rng := rand.New(rand.NewSource(0x5eed_1234_cafe_babe))
	f := &UniversalFamily{
		a: make([]uint64, numHashes),
		b: make([]uint64, numHashes),
	}
	for i := 0; i < numHashes; i++ {
		// odd a avoids trivial cycles
		f.a[i] = rng.Uint64() | 1
		f.b[i] = rng.Uint64()
	}
	return f
}

// Hash implements HashFamily. It panics for a seed outside the drawn range.
func (f *UniversalFamily) Hash(value int64, seed int) uint64 {
	x := mix64(uint64(value))
	ai, bi := f.a[seed], f.b[seed]
	return (ai*x)^bi + ai + bi
}

// Size returns the number of seeds the family was drawn for
func (f *UniversalFamily) Size() int { return len(f.a) }
