package gf2_test

import (
	"math/rand/v2"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/field/gf2"
	"github.com/PolyhedraZK/expander-go/internal/fieldtest"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewPCG(3, 5))
}

func TestGF2Laws(t *testing.T) {
	fieldtest.Run[gf2.GF2](t, testRng())
}

func TestExt128Laws(t *testing.T) {
	fieldtest.Run[gf2.Ext128](t, testRng())
}

func TestSimdLaws(t *testing.T) {
	fieldtest.Run[gf2.Simd](t, testRng())
	fieldtest.RunSimd[gf2.Simd, gf2.GF2](t, testRng())
}

func TestSimdExt128Laws(t *testing.T) {
	fieldtest.Run[gf2.SimdExt128](t, testRng())
	fieldtest.RunSimd[gf2.SimdExt128, gf2.Ext128](t, testRng())
}

func TestCharacteristicTwo(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	var z gf2.Ext128
	x := z.RandomUnsafe(rng)
	c.Assert(x.Add(x).IsZero(), qt.IsTrue)
	c.Assert(x.Double().IsZero(), qt.IsTrue)
	c.Assert(func() { z.InvTwo() }, qt.PanicMatches, ".*characteristic 2.*")
}

// x * x^127 wraps around the modulus: x^128 = x^7 + x^2 + x + 1.
func TestExt128Reduction(t *testing.T) {
	c := qt.New(t)
	x := gf2.NewExt128(2, 0)
	x127 := gf2.NewExt128(0, 1<<63)
	c.Assert(x.Mul(x127).Equal(gf2.NewExt128(0x87, 0)), qt.IsTrue)
}

func TestExt128Inverse(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	var z gf2.Ext128
	one := z.One()
	for i := 0; i < 8; i++ {
		x := z.RandomUnsafe(rng)
		if x.IsZero() {
			continue
		}
		inv, ok := x.Inv()
		c.Assert(ok, qt.IsTrue)
		c.Assert(x.Mul(inv).Equal(one), qt.IsTrue)
	}
}

func TestSimdLaneBits(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	var z gf2.Simd
	x := z.RandomUnsafe(rng)
	for i, s := range x.Scalars() {
		c.Assert(x.Lane(i).Equal(s), qt.IsTrue)
	}
}
