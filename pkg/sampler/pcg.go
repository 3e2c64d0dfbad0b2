package sampler

import "math"

const (
	pcgDefaultState = 0x853c49e6748fea9b
	pcgDefaultInc   = 0xda3e39cb94b95bdb
	pcgMult         = 0x5851f42d4c957f2d
)

// OneMinusEpsilon is the largest float64 below 1
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// PCG32 is a small permuted congruential generator. The zero value is not
// usable; construct it with NewPCG32.
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 returns a generator whose stream depends only on seed
func NewPCG32(seed uint64) *PCG32 {
	r := &PCG32{}
	r.Seed(seed)
	return r
}

// Seed restarts the generator
func (r *PCG32) Seed(seed uint64) {
	r.inc = pcgDefaultInc
	r.state = seed + r.inc
	r.Uint32()
}

// SetSequence restarts the generator on one of 2^63 streams. Different
// streams never overlap, whatever their seeds.
func (r *PCG32) SetSequence(stream, seed uint64) {
	r.state = 0
	r.inc = stream<<1 | 1
	r.Uint32()
	r.state += seed
	r.Uint32()
}

// Uint32 returns the next 32 random bits
func (r *PCG32) Uint32() uint32 {
	old := r.state
	r.state = old*pcgMult + r.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Uint32n returns a uniform value in [0, b) without modulo bias
func (r *PCG32) Uint32n(b uint32) uint32 {
	threshold := -b % b
	for {
		if v := r.Uint32(); v >= threshold {
			return v % b
		}
	}
}

// Float64 returns a uniform value in [0, 1)
func (r *PCG32) Float64() float64 {
	return math.Min(OneMinusEpsilon, float64(r.Uint32())*0x1p-32)
}
