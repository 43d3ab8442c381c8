// Package rng provides the deterministic uniform-[0,1) generator used by the
// stochastic graph encoder and the variation generator.
//
// The generator is a Marsaglia KISS mix seeded by two 32-bit words, so a
// (seed1, seed2) pair fully determines the sample stream on every platform.
// This matters for encoder resampling: the same object and seed pair must
// produce the same structural string everywhere.
package rng

// Uniform is a KISS pseudorandom generator producing float32 values in [0,1).
// It is not safe for concurrent use; give each goroutine its own instance.
type Uniform struct {
	z, w, jsr, jcong uint32
}

// New creates a generator seeded by two 32-bit words.
// Zero seeds are remapped to fixed nonzero constants so the shift
// register never locks up.
func New(seed1, seed2 uint32) *Uniform {
	if seed1 == 0 {
		seed1 = 362436069
	}
	if seed2 == 0 {
		seed2 = 521288629
	}
	return &Uniform{
		z:     seed1,
		w:     seed2,
		jsr:   seed1 ^ 0x5f356495,
		jcong: seed2 ^ 0x2c7f90ab,
	}
}

// next advances the generator and returns 32 random bits.
func (u *Uniform) next() uint32 {
	u.z = 36969*(u.z&0xffff) + (u.z >> 16)
	u.w = 18000*(u.w&0xffff) + (u.w >> 16)
	mwc := (u.z << 16) + u.w

	u.jsr ^= u.jsr << 17
	u.jsr ^= u.jsr >> 13
	u.jsr ^= u.jsr << 5

	u.jcong = 69069*u.jcong + 1234567

	return (mwc ^ u.jcong) + u.jsr
}

// Float32 returns the next sample in [0,1).
func (u *Uniform) Float32() float32 {
	// 24 bits of mantissa keep the result strictly below 1.
	return float32(u.next()>>8) * (1.0 / 16777216.0)
}

// Intn returns a uniform integer in [0,n). It panics if n <= 0.
func (u *Uniform) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn with non-positive n")
	}
	return int(u.Float32() * float32(n))
}

// Perm returns a random permutation of [0,n).
func (u *Uniform) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := u.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
