// Package fieldtest runs the shared field-law suite against any field
// implementation.
package fieldtest

import (
	"math/rand/v2"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/field"
)

// Run checks the algebraic laws every field must satisfy on a handful of
// pseudo-random elements.
func Run[E field.Element[E]](t *testing.T, rng *rand.Rand) {
	t.Helper()
	c := qt.New(t)
	var z E
	zero := z.Zero()
	one := z.One()

	c.Assert(zero.IsZero(), qt.IsTrue)
	c.Assert(one.IsZero(), qt.IsFalse)

	for i := 0; i < 16; i++ {
		x := z.RandomUnsafe(rng)
		y := z.RandomUnsafe(rng)
		w := z.RandomUnsafe(rng)

		// commutativity and associativity
		c.Assert(x.Add(y).Equal(y.Add(x)), qt.IsTrue)
		c.Assert(x.Mul(y).Equal(y.Mul(x)), qt.IsTrue)
		c.Assert(x.Add(y).Add(w).Equal(x.Add(y.Add(w))), qt.IsTrue)
		c.Assert(x.Mul(y).Mul(w).Equal(x.Mul(y.Mul(w))), qt.IsTrue)

		// distributivity
		c.Assert(x.Mul(y.Add(w)).Equal(x.Mul(y).Add(x.Mul(w))), qt.IsTrue)

		// identities and inverses
		c.Assert(x.Add(zero).Equal(x), qt.IsTrue)
		c.Assert(x.Mul(one).Equal(x), qt.IsTrue)
		c.Assert(x.Add(x.Neg()).IsZero(), qt.IsTrue)
		c.Assert(x.Sub(x).IsZero(), qt.IsTrue)

		// squaring and doubling
		c.Assert(x.Square().Equal(x.Mul(x)), qt.IsTrue)
		c.Assert(x.Double().Equal(x.Add(x)), qt.IsTrue)

		// Packed fields invert lane-wise, so inversion may legitimately fail
		// on a non-zero vector with a zero lane; when it succeeds the
		// product must be one.
		if inv, ok := x.Inv(); ok {
			c.Assert(x.Mul(inv).Equal(one), qt.IsTrue)
		}

		// serialization round-trip
		b := x.Bytes()
		c.Assert(b, qt.HasLen, x.Size())
		back, err := z.SetBytes(b)
		c.Assert(err, qt.IsNil)
		c.Assert(back.Equal(x), qt.IsTrue)
	}

	_, ok := zero.Inv()
	c.Assert(ok, qt.IsFalse)

	oneInv, ok := one.Inv()
	c.Assert(ok, qt.IsTrue)
	c.Assert(oneInv.Equal(one), qt.IsTrue)
}

// RunSimd checks the lane semantics of a packed field: lane independence of
// the ring operations and scalar broadcast scaling.
func RunSimd[E field.Simd[E, S], S field.Element[S]](t *testing.T, rng *rand.Rand) {
	t.Helper()
	c := qt.New(t)
	var z E
	var zs S
	size := z.SimdSize()

	broadcast := func(s S) E {
		scalars := make([]S, size)
		for i := range scalars {
			scalars[i] = s
		}
		return z.FromScalars(scalars)
	}

	for i := 0; i < 8; i++ {
		x := z.RandomUnsafe(rng)
		y := z.RandomUnsafe(rng)

		// lane independence: vector op == per-lane scalar op
		xs, ys := x.Scalars(), y.Scalars()
		for _, op := range []struct {
			vec  func(E, E) E
			lane func(S, S) S
		}{
			{func(a, b E) E { return a.Add(b) }, func(a, b S) S { return a.Add(b) }},
			{func(a, b E) E { return a.Sub(b) }, func(a, b S) S { return a.Sub(b) }},
			{func(a, b E) E { return a.Mul(b) }, func(a, b S) S { return a.Mul(b) }},
		} {
			got := op.vec(x, y).Scalars()
			for lane := 0; lane < size; lane++ {
				c.Assert(got[lane].Equal(op.lane(xs[lane], ys[lane])), qt.IsTrue)
			}
		}

		// pack/unpack round-trip
		c.Assert(z.FromScalars(xs).Equal(x), qt.IsTrue)

		// scale(broadcast(s), t) == broadcast(s * t)
		s := zs.RandomUnsafe(rng)
		u := zs.RandomUnsafe(rng)
		c.Assert(broadcast(s).Scale(u).Equal(broadcast(s.Mul(u))), qt.IsTrue)
	}

	c.Assert(func() { z.FromScalars(make([]S, size+1)) }, qt.PanicMatches, ".*scalar.*")
}
