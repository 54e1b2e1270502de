package m31

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// SimdSize is the number of M31 lanes packed into one Simd value: eight
// 31-bit lanes in 256 bits, mirroring the AVX2 layout.
const SimdSize = 8

// Simd packs eight M31 lanes. Go has no vector intrinsics, so the lanes are
// a fixed array the compiler can unroll; the per-lane algorithms match the
// AVX code lane for lane (fold reduction after shifts, unsigned-min after
// adds). Lanes are kept canonical in [0, p).
type Simd struct {
	v [8]uint32
}

// Broadcast packs the same scalar into every lane.
func Broadcast(x M31) Simd {
	var s Simd
	c := x.Uint32()
	for i := range s.v {
		s.v[i] = c
	}
	return s
}

func (Simd) Zero() Simd { return Simd{} }

func (Simd) One() Simd { return Broadcast(M31{v: 1}) }

func (Simd) InvTwo() Simd { return Broadcast(M31{v: invTwo}) }

func (x Simd) Add(y Simd) Simd {
	var r Simd
	for i := range r.v {
		t := x.v[i] + y.v[i]
		// Unsigned min picks the reduced lane whether or not t wrapped past p.
		if u := t - Mod; u < t {
			t = u
		}
		r.v[i] = t
	}
	return r
}

func (x Simd) Sub(y Simd) Simd {
	return x.Add(y.Neg())
}

func (x Simd) Neg() Simd {
	var r Simd
	for i := range r.v {
		if x.v[i] != 0 {
			r.v[i] = Mod - x.v[i]
		}
	}
	return r
}

func (x Simd) Mul(y Simd) Simd {
	var r Simd
	for i := range r.v {
		t := uint64(x.v[i]) * uint64(y.v[i])
		t = reduce64(reduce64(t))
		u := uint32(t)
		if u >= Mod {
			u -= Mod
		}
		r.v[i] = u
	}
	return r
}

func (x Simd) Square() Simd { return x.Mul(x) }

func (x Simd) Double() Simd { return x.MulBy2() }

// MulBy2 doubles each lane by shift-and-reduce. Cheap scalings by 2, 5 and
// 10 recur in the extension-field reduction X^3 -> 5, hence the dedicated
// helpers.
func (x Simd) MulBy2() Simd {
	var r Simd
	for i := range r.v {
		r.v[i] = norm(reduce32(x.v[i] << 1))
	}
	return r
}

// MulBy5 computes 5x = 4x + x with two shift-reduce steps.
func (x Simd) MulBy5() Simd {
	var r Simd
	for i := range r.v {
		double := reduce32(x.v[i] << 1)
		quad := reduce32(double << 1)
		r.v[i] = norm(reduce32(quad + x.v[i]))
	}
	return r
}

// MulBy10 chains MulBy5 and MulBy2.
func (x Simd) MulBy10() Simd { return x.MulBy5().MulBy2() }

// Inv falls back to scalar inversion per lane: unpack, invert, repack.
// Returns false if any lane is zero.
func (x Simd) Inv() (Simd, bool) {
	var r Simd
	for i := range x.v {
		inv, ok := (M31{v: x.v[i]}).Inv()
		if !ok {
			return Simd{}, false
		}
		r.v[i] = inv.Uint32()
	}
	return r, true
}

func (Simd) Exp(Simd) Simd {
	panic("m31: Exp not implemented for Simd")
}

func (x Simd) IsZero() bool {
	for i := range x.v {
		if x.v[i] != 0 {
			return false
		}
	}
	return true
}

func (x Simd) Equal(y Simd) bool { return x.v == y.v }

func (Simd) FromUint32(v uint32) Simd { return Broadcast(New(v)) }

func (Simd) FromUniformBytes(buf [32]byte) Simd {
	var m M31
	return Broadcast(m.FromUniformBytes(buf))
}

func (Simd) FromECCBytes(buf [32]byte) (Simd, error) {
	var m M31
	s, err := m.FromECCBytes(buf)
	if err != nil {
		return Simd{}, err
	}
	return Broadcast(s), nil
}

func (Simd) RandomUnsafe(rng *rand.Rand) Simd {
	var r Simd
	for i := range r.v {
		r.v[i] = New(rng.Uint32()).Uint32()
	}
	return r
}

func (Simd) Name() string { return "Packed Mersenne 31" }
func (Simd) Size() int    { return 32 }

func (x Simd) Bytes() []byte {
	b := make([]byte, 32)
	for i := range x.v {
		binary.LittleEndian.PutUint32(b[4*i:], norm(x.v[i]))
	}
	return b
}

func (Simd) SetBytes(b []byte) (Simd, error) {
	if len(b) != 32 {
		return Simd{}, fmt.Errorf("m31 simd: want 32 bytes, got %d", len(b))
	}
	var r Simd
	for i := range r.v {
		v := binary.LittleEndian.Uint32(b[4*i:])
		if v >= Mod {
			return Simd{}, fmt.Errorf("m31 simd: non-canonical lane %d", i)
		}
		r.v[i] = v
	}
	return r, nil
}

func (Simd) SimdSize() int { return SimdSize }

func (Simd) FromScalars(scalars []M31) Simd {
	if len(scalars) != SimdSize {
		panic(fmt.Sprintf("m31 simd: want %d scalars, got %d", SimdSize, len(scalars)))
	}
	var r Simd
	for i := range r.v {
		r.v[i] = scalars[i].Uint32()
	}
	return r
}

func (x Simd) Scalars() []M31 {
	out := make([]M31, SimdSize)
	for i := range x.v {
		out[i] = M31{v: x.v[i]}
	}
	return out
}

func (x Simd) Scale(s M31) Simd {
	return x.Mul(Broadcast(s))
}
