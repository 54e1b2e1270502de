package m31

import (
	"fmt"
	"math/rand/v2"
)

// Ext3 is the cubic extension of M31 with modulus X^3 - 5, stored as
// a + b*X + c*X^2 in v[0..3]. Products reduce by X^3 -> 5: a full product
// costs nine base multiplications plus two by the constant 5, a squaring six
// plus one each by 5 and 10.
type Ext3 struct {
	v [3]M31
}

// NewExt3 builds an extension element from its three coordinates.
func NewExt3(a, b, c M31) Ext3 {
	return Ext3{v: [3]M31{a, b, c}}
}

// Coords returns the coordinates (a, b, c) of a + b*X + c*X^2.
func (x Ext3) Coords() (M31, M31, M31) { return x.v[0], x.v[1], x.v[2] }

func (Ext3) Zero() Ext3 { return Ext3{} }
func (Ext3) One() Ext3  { return Ext3{v: [3]M31{{v: 1}, {}, {}}} }
func (Ext3) InvTwo() Ext3 {
	return Ext3{v: [3]M31{{v: invTwo}, {}, {}}}
}

func (x Ext3) Add(y Ext3) Ext3 {
	return Ext3{v: [3]M31{x.v[0].Add(y.v[0]), x.v[1].Add(y.v[1]), x.v[2].Add(y.v[2])}}
}

func (x Ext3) Sub(y Ext3) Ext3 {
	return Ext3{v: [3]M31{x.v[0].Sub(y.v[0]), x.v[1].Sub(y.v[1]), x.v[2].Sub(y.v[2])}}
}

func (x Ext3) Neg() Ext3 {
	return Ext3{v: [3]M31{x.v[0].Neg(), x.v[1].Neg(), x.v[2].Neg()}}
}

func (x Ext3) Mul(y Ext3) Ext3 {
	a0, a1, a2 := x.v[0], x.v[1], x.v[2]
	b0, b1, b2 := y.v[0], y.v[1], y.v[2]
	five := M31{v: 5}
	c0 := a0.Mul(b0).Add(five.Mul(a1.Mul(b2).Add(a2.Mul(b1))))
	c1 := a0.Mul(b1).Add(a1.Mul(b0)).Add(five.Mul(a2.Mul(b2)))
	c2 := a0.Mul(b2).Add(a1.Mul(b1)).Add(a2.Mul(b0))
	return Ext3{v: [3]M31{c0, c1, c2}}
}

func (x Ext3) Square() Ext3 {
	a0, a1, a2 := x.v[0], x.v[1], x.v[2]
	five := M31{v: 5}
	ten := M31{v: 10}
	c0 := a0.Square().Add(ten.Mul(a1.Mul(a2)))
	c1 := a0.Mul(a1).Double().Add(five.Mul(a2.Square()))
	c2 := a1.Square().Add(a0.Mul(a2).Double())
	return Ext3{v: [3]M31{c0, c1, c2}}
}

func (x Ext3) Double() Ext3 {
	return Ext3{v: [3]M31{x.v[0].Double(), x.v[1].Double(), x.v[2].Double()}}
}

// MulByBase multiplies by a base-field scalar, coordinate-wise.
func (x Ext3) MulByBase(s M31) Ext3 {
	return Ext3{v: [3]M31{x.v[0].Mul(s), x.v[1].Mul(s), x.v[2].Mul(s)}}
}

// Inv uses the closed form for cubic extensions X^3 - w: with
// t0 = a0^2 - w*a1*a2, t1 = w*a2^2 - a0*a1, t2 = a1^2 - a0*a2 and norm
// d = a0*t0 + w*a1*t2 + w*a2*t1, the inverse is (t0 + t1*X + t2*X^2)/d.
func (x Ext3) Inv() (Ext3, bool) {
	a0, a1, a2 := x.v[0], x.v[1], x.v[2]
	five := M31{v: 5}
	t0 := a0.Square().Sub(five.Mul(a1.Mul(a2)))
	t1 := five.Mul(a2.Square()).Sub(a0.Mul(a1))
	t2 := a1.Square().Sub(a0.Mul(a2))
	d := a0.Mul(t0).Add(five.Mul(a1.Mul(t2))).Add(five.Mul(a2.Mul(t1)))
	dInv, ok := d.Inv()
	if !ok {
		return Ext3{}, false
	}
	return Ext3{v: [3]M31{t0.Mul(dInv), t1.Mul(dInv), t2.Mul(dInv)}}, true
}

func (Ext3) Exp(Ext3) Ext3 {
	panic("m31: Exp not implemented for Ext3")
}

func (x Ext3) IsZero() bool {
	return x.v[0].IsZero() && x.v[1].IsZero() && x.v[2].IsZero()
}

func (x Ext3) Equal(y Ext3) bool {
	return x.v[0].Equal(y.v[0]) && x.v[1].Equal(y.v[1]) && x.v[2].Equal(y.v[2])
}

func (Ext3) FromUint32(v uint32) Ext3 {
	return Ext3{v: [3]M31{New(v), {}, {}}}
}

func (Ext3) FromUniformBytes(buf [32]byte) Ext3 {
	var e Ext3
	var m M31
	for i := range e.v {
		var limb [32]byte
		copy(limb[:4], buf[4*i:4*i+4])
		e.v[i] = m.FromUniformBytes(limb)
	}
	return e
}

func (Ext3) FromECCBytes(buf [32]byte) (Ext3, error) {
	for _, b := range buf[12:] {
		if b != 0 {
			return Ext3{}, fmt.Errorf("m31ext3: non-zero padding byte in wire element")
		}
	}
	var e Ext3
	var m M31
	for i := range e.v {
		var limb [32]byte
		copy(limb[:4], buf[4*i:4*i+4])
		coord, err := m.FromECCBytes(limb)
		if err != nil {
			return Ext3{}, err
		}
		e.v[i] = coord
	}
	return e, nil
}

func (Ext3) RandomUnsafe(rng *rand.Rand) Ext3 {
	var m M31
	return Ext3{v: [3]M31{m.RandomUnsafe(rng), m.RandomUnsafe(rng), m.RandomUnsafe(rng)}}
}

func (Ext3) Name() string { return "Mersenne 31 Extension 3" }
func (Ext3) Size() int    { return 12 }

func (x Ext3) Bytes() []byte {
	b := make([]byte, 0, 12)
	for i := range x.v {
		b = append(b, x.v[i].Bytes()...)
	}
	return b
}

func (Ext3) SetBytes(b []byte) (Ext3, error) {
	if len(b) != 12 {
		return Ext3{}, fmt.Errorf("m31ext3: want 12 bytes, got %d", len(b))
	}
	var e Ext3
	var m M31
	for i := range e.v {
		coord, err := m.SetBytes(b[4*i : 4*i+4])
		if err != nil {
			return Ext3{}, err
		}
		e.v[i] = coord
	}
	return e, nil
}
