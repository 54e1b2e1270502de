package gf2

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// SimdSize is the number of GF2 lanes in one Simd value: 128 bits in a
// single 128-bit register image.
const SimdSize = 128

// Simd packs 128 GF2 lanes: bit k of v[j] is lane 64j+k.
type Simd struct {
	v [2]uint64
}

func (Simd) Zero() Simd { return Simd{} }

func (Simd) One() Simd { return Simd{v: [2]uint64{^uint64(0), ^uint64(0)}} }

func (Simd) InvTwo() Simd {
	panic("gf2: two has no inverse in characteristic 2")
}

func (x Simd) Add(y Simd) Simd {
	return Simd{v: [2]uint64{x.v[0] ^ y.v[0], x.v[1] ^ y.v[1]}}
}

func (x Simd) Sub(y Simd) Simd { return x.Add(y) }
func (x Simd) Neg() Simd       { return x }

func (x Simd) Mul(y Simd) Simd {
	return Simd{v: [2]uint64{x.v[0] & y.v[0], x.v[1] & y.v[1]}}
}

func (x Simd) Square() Simd { return x }
func (Simd) Double() Simd   { return Simd{} }

// Inv is lane-wise: defined only when every lane is non-zero, in which case
// each lane is its own inverse.
func (x Simd) Inv() (Simd, bool) {
	if x.v[0]&x.v[1] != ^uint64(0) {
		return Simd{}, false
	}
	return x, true
}

func (Simd) Exp(Simd) Simd {
	panic("gf2: Exp not implemented for Simd")
}

func (x Simd) IsZero() bool      { return x.v[0]|x.v[1] == 0 }
func (x Simd) Equal(y Simd) bool { return x.v == y.v }

func (Simd) FromUint32(v uint32) Simd {
	if v&1 == 1 {
		var s Simd
		return s.One()
	}
	return Simd{}
}

func (Simd) FromUniformBytes(buf [32]byte) Simd {
	return Simd{v: [2]uint64{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	}}
}

func (Simd) FromECCBytes(buf [32]byte) (Simd, error) {
	var g GF2
	bit, err := g.FromECCBytes(buf)
	if err != nil {
		return Simd{}, err
	}
	var s Simd
	return s.FromUint32(uint32(bit.v)), nil
}

func (Simd) RandomUnsafe(rng *rand.Rand) Simd {
	return Simd{v: [2]uint64{rng.Uint64(), rng.Uint64()}}
}

func (Simd) Name() string { return "Packed GF2" }
func (Simd) Size() int    { return 16 }

func (x Simd) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], x.v[0])
	binary.LittleEndian.PutUint64(b[8:16], x.v[1])
	return b
}

func (Simd) SetBytes(b []byte) (Simd, error) {
	if len(b) != 16 {
		return Simd{}, fmt.Errorf("gf2 simd: want 16 bytes, got %d", len(b))
	}
	return Simd{v: [2]uint64{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
	}}, nil
}

func (Simd) SimdSize() int { return SimdSize }

func (Simd) FromScalars(scalars []GF2) Simd {
	if len(scalars) != SimdSize {
		panic(fmt.Sprintf("gf2 simd: want %d scalars, got %d", SimdSize, len(scalars)))
	}
	var s Simd
	for i, sc := range scalars {
		s.v[i/64] |= uint64(sc.v&1) << (i % 64)
	}
	return s
}

func (x Simd) Scalars() []GF2 {
	out := make([]GF2, SimdSize)
	for i := range out {
		out[i] = GF2{v: uint8(x.v[i/64] >> (i % 64) & 1)}
	}
	return out
}

func (x Simd) Scale(s GF2) Simd {
	if s.v == 0 {
		return Simd{}
	}
	return x
}

// Lane returns lane i as a bit.
func (x Simd) Lane(i int) GF2 {
	return GF2{v: uint8(x.v[i/64] >> (i % 64) & 1)}
}
