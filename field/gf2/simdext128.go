package gf2

import (
	"fmt"
	"math/rand/v2"
)

// SimdExt128 carries one GF(2^128) extension value per packed GF2 lane. It
// is the combined sumcheck field of the binary configuration; its scalar is
// the Ext128 challenge field.
type SimdExt128 struct {
	v [SimdSize]Ext128
}

// PromoteSimd embeds a packed bit vector into the extension lanes: lane i
// becomes the constant 0 or 1.
func PromoteSimd(x Simd) SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = Ext128{v: [2]uint64{uint64(x.v[i/64] >> (i % 64) & 1), 0}}
	}
	return r
}

// BroadcastExt128 packs the same extension scalar into every lane.
func BroadcastExt128(s Ext128) SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = s
	}
	return r
}

func (SimdExt128) Zero() SimdExt128 { return SimdExt128{} }

func (SimdExt128) One() SimdExt128 {
	var e Ext128
	return BroadcastExt128(e.One())
}

func (SimdExt128) InvTwo() SimdExt128 {
	panic("gf2: two has no inverse in characteristic 2")
}

func (x SimdExt128) Add(y SimdExt128) SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = x.v[i].Add(y.v[i])
	}
	return r
}

func (x SimdExt128) Sub(y SimdExt128) SimdExt128 { return x.Add(y) }
func (x SimdExt128) Neg() SimdExt128             { return x }

func (x SimdExt128) Mul(y SimdExt128) SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = x.v[i].Mul(y.v[i])
	}
	return r
}

func (x SimdExt128) Square() SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = x.v[i].Square()
	}
	return r
}

func (SimdExt128) Double() SimdExt128 { return SimdExt128{} }

func (x SimdExt128) Inv() (SimdExt128, bool) {
	var r SimdExt128
	for i := range x.v {
		inv, ok := x.v[i].Inv()
		if !ok {
			return SimdExt128{}, false
		}
		r.v[i] = inv
	}
	return r, true
}

func (SimdExt128) Exp(SimdExt128) SimdExt128 {
	panic("gf2: Exp not implemented for SimdExt128")
}

func (x SimdExt128) IsZero() bool {
	for i := range x.v {
		if !x.v[i].IsZero() {
			return false
		}
	}
	return true
}

func (x SimdExt128) Equal(y SimdExt128) bool {
	for i := range x.v {
		if !x.v[i].Equal(y.v[i]) {
			return false
		}
	}
	return true
}

func (SimdExt128) FromUint32(v uint32) SimdExt128 {
	var e Ext128
	return BroadcastExt128(e.FromUint32(v))
}

func (SimdExt128) FromUniformBytes(buf [32]byte) SimdExt128 {
	var e Ext128
	return BroadcastExt128(e.FromUniformBytes(buf))
}

func (SimdExt128) FromECCBytes(buf [32]byte) (SimdExt128, error) {
	var e Ext128
	s, err := e.FromECCBytes(buf)
	if err != nil {
		return SimdExt128{}, err
	}
	return BroadcastExt128(s), nil
}

func (SimdExt128) RandomUnsafe(rng *rand.Rand) SimdExt128 {
	var e Ext128
	var r SimdExt128
	for i := range r.v {
		r.v[i] = e.RandomUnsafe(rng)
	}
	return r
}

func (SimdExt128) Name() string { return "Packed GF2 Extension 128" }
func (SimdExt128) Size() int    { return SimdSize * 16 }

func (x SimdExt128) Bytes() []byte {
	b := make([]byte, 0, SimdSize*16)
	for i := range x.v {
		b = append(b, x.v[i].Bytes()...)
	}
	return b
}

func (SimdExt128) SetBytes(b []byte) (SimdExt128, error) {
	if len(b) != SimdSize*16 {
		return SimdExt128{}, fmt.Errorf("gf2 simdext128: want %d bytes, got %d", SimdSize*16, len(b))
	}
	var r SimdExt128
	var e Ext128
	for i := range r.v {
		lane, err := e.SetBytes(b[16*i : 16*(i+1)])
		if err != nil {
			return SimdExt128{}, err
		}
		r.v[i] = lane
	}
	return r, nil
}

func (SimdExt128) SimdSize() int { return SimdSize }

func (SimdExt128) FromScalars(scalars []Ext128) SimdExt128 {
	if len(scalars) != SimdSize {
		panic(fmt.Sprintf("gf2 simdext128: want %d scalars, got %d", SimdSize, len(scalars)))
	}
	var r SimdExt128
	copy(r.v[:], scalars)
	return r
}

func (x SimdExt128) Scalars() []Ext128 {
	out := make([]Ext128, SimdSize)
	copy(out, x.v[:])
	return out
}

func (x SimdExt128) Scale(s Ext128) SimdExt128 {
	var r SimdExt128
	for i := range r.v {
		r.v[i] = x.v[i].Mul(s)
	}
	return r
}
