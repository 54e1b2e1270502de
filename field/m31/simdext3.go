package m31

import (
	"fmt"
	"math/rand/v2"
)

// SimdExt3 packs eight M31Ext3 lanes as three packed-base coordinates: lane
// i of the extension element is (v[0].lane(i), v[1].lane(i), v[2].lane(i)).
// It is the combined sumcheck field of the M31 configuration; its scalar is
// the Ext3 challenge field.
type SimdExt3 struct {
	v [3]Simd
}

// PromoteSimd embeds a packed base-field value into the extension as the
// constant coordinate.
func PromoteSimd(x Simd) SimdExt3 {
	return SimdExt3{v: [3]Simd{x, {}, {}}}
}

// BroadcastExt3 packs the same extension scalar into every lane.
func BroadcastExt3(x Ext3) SimdExt3 {
	return SimdExt3{v: [3]Simd{Broadcast(x.v[0]), Broadcast(x.v[1]), Broadcast(x.v[2])}}
}

func (SimdExt3) Zero() SimdExt3 { return SimdExt3{} }

func (SimdExt3) One() SimdExt3 {
	var s Simd
	return SimdExt3{v: [3]Simd{s.One(), {}, {}}}
}

func (SimdExt3) InvTwo() SimdExt3 {
	var s Simd
	return SimdExt3{v: [3]Simd{s.InvTwo(), {}, {}}}
}

func (x SimdExt3) Add(y SimdExt3) SimdExt3 {
	return SimdExt3{v: [3]Simd{x.v[0].Add(y.v[0]), x.v[1].Add(y.v[1]), x.v[2].Add(y.v[2])}}
}

func (x SimdExt3) Sub(y SimdExt3) SimdExt3 {
	return SimdExt3{v: [3]Simd{x.v[0].Sub(y.v[0]), x.v[1].Sub(y.v[1]), x.v[2].Sub(y.v[2])}}
}

func (x SimdExt3) Neg() SimdExt3 {
	return SimdExt3{v: [3]Simd{x.v[0].Neg(), x.v[1].Neg(), x.v[2].Neg()}}
}

// Mul reduces by X^3 -> 5 using the packed MulBy5 helper, lane-parallel
// across all eight extension lanes.
func (x SimdExt3) Mul(y SimdExt3) SimdExt3 {
	a0, a1, a2 := x.v[0], x.v[1], x.v[2]
	b0, b1, b2 := y.v[0], y.v[1], y.v[2]
	c0 := a0.Mul(b0).Add(a1.Mul(b2).Add(a2.Mul(b1)).MulBy5())
	c1 := a0.Mul(b1).Add(a1.Mul(b0)).Add(a2.Mul(b2).MulBy5())
	c2 := a0.Mul(b2).Add(a1.Mul(b1)).Add(a2.Mul(b0))
	return SimdExt3{v: [3]Simd{c0, c1, c2}}
}

func (x SimdExt3) Square() SimdExt3 {
	a0, a1, a2 := x.v[0], x.v[1], x.v[2]
	c0 := a0.Square().Add(a1.Mul(a2).MulBy10())
	c1 := a0.Mul(a1).MulBy2().Add(a2.Square().MulBy5())
	c2 := a1.Square().Add(a0.Mul(a2).MulBy2())
	return SimdExt3{v: [3]Simd{c0, c1, c2}}
}

func (x SimdExt3) Double() SimdExt3 {
	return SimdExt3{v: [3]Simd{x.v[0].MulBy2(), x.v[1].MulBy2(), x.v[2].MulBy2()}}
}

// Inv unpacks to scalar extension lanes, inverts each, and repacks.
func (x SimdExt3) Inv() (SimdExt3, bool) {
	lanes := x.Scalars()
	for i, lane := range lanes {
		inv, ok := lane.Inv()
		if !ok {
			return SimdExt3{}, false
		}
		lanes[i] = inv
	}
	var z SimdExt3
	return z.FromScalars(lanes), true
}

func (SimdExt3) Exp(SimdExt3) SimdExt3 {
	panic("m31: Exp not implemented for SimdExt3")
}

func (x SimdExt3) IsZero() bool {
	return x.v[0].IsZero() && x.v[1].IsZero() && x.v[2].IsZero()
}

func (x SimdExt3) Equal(y SimdExt3) bool {
	return x.v[0].Equal(y.v[0]) && x.v[1].Equal(y.v[1]) && x.v[2].Equal(y.v[2])
}

func (SimdExt3) FromUint32(v uint32) SimdExt3 {
	return SimdExt3{v: [3]Simd{Broadcast(New(v)), {}, {}}}
}

func (SimdExt3) FromUniformBytes(buf [32]byte) SimdExt3 {
	var e Ext3
	return BroadcastExt3(e.FromUniformBytes(buf))
}

func (SimdExt3) FromECCBytes(buf [32]byte) (SimdExt3, error) {
	var e Ext3
	s, err := e.FromECCBytes(buf)
	if err != nil {
		return SimdExt3{}, err
	}
	return BroadcastExt3(s), nil
}

func (SimdExt3) RandomUnsafe(rng *rand.Rand) SimdExt3 {
	var s Simd
	return SimdExt3{v: [3]Simd{s.RandomUnsafe(rng), s.RandomUnsafe(rng), s.RandomUnsafe(rng)}}
}

func (SimdExt3) Name() string { return "Packed Mersenne 31 Extension 3" }
func (SimdExt3) Size() int    { return 96 }

func (x SimdExt3) Bytes() []byte {
	b := make([]byte, 0, 96)
	for i := range x.v {
		b = append(b, x.v[i].Bytes()...)
	}
	return b
}

func (SimdExt3) SetBytes(b []byte) (SimdExt3, error) {
	if len(b) != 96 {
		return SimdExt3{}, fmt.Errorf("m31 simdext3: want 96 bytes, got %d", len(b))
	}
	var r SimdExt3
	var s Simd
	for i := range r.v {
		coord, err := s.SetBytes(b[32*i : 32*(i+1)])
		if err != nil {
			return SimdExt3{}, err
		}
		r.v[i] = coord
	}
	return r, nil
}

func (SimdExt3) SimdSize() int { return SimdSize }

func (SimdExt3) FromScalars(scalars []Ext3) SimdExt3 {
	if len(scalars) != SimdSize {
		panic(fmt.Sprintf("m31 simdext3: want %d scalars, got %d", SimdSize, len(scalars)))
	}
	var r SimdExt3
	for c := range r.v {
		var coords [SimdSize]M31
		for i, s := range scalars {
			coords[i] = s.v[c]
		}
		var packed Simd
		r.v[c] = packed.FromScalars(coords[:])
	}
	return r
}

func (x SimdExt3) Scalars() []Ext3 {
	c0 := x.v[0].Scalars()
	c1 := x.v[1].Scalars()
	c2 := x.v[2].Scalars()
	out := make([]Ext3, SimdSize)
	for i := range out {
		out[i] = NewExt3(c0[i], c1[i], c2[i])
	}
	return out
}

// Scale broadcast-multiplies every lane by an extension-field challenge.
func (x SimdExt3) Scale(s Ext3) SimdExt3 {
	return x.Mul(BroadcastExt3(s))
}
