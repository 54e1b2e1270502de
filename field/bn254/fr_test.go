package bn254_test

import (
	"math/rand/v2"
	"testing"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/field/bn254"
	"github.com/PolyhedraZK/expander-go/internal/fieldtest"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewPCG(13, 17))
}

func TestFrLaws(t *testing.T) {
	fieldtest.Run[bn254.Fr](t, testRng())
	fieldtest.RunSimd[bn254.Fr, bn254.Fr](t, testRng())
}

// The canonical encoding must match gnark-crypto's byte representation.
func TestFrEncodingInterop(t *testing.T) {
	c := qt.New(t)
	var z bn254.Fr
	x := z.FromUint32(123456789)

	var e fr.Element
	e.SetUint64(123456789)
	want := e.Bytes()
	c.Assert(x.Bytes(), qt.DeepEquals, want[:])
}

func TestFrECCBytes(t *testing.T) {
	c := qt.New(t)
	var z bn254.Fr

	var wire [field.WireElemSize]byte
	wire[0] = 7 // little-endian 7
	x, err := z.FromECCBytes(wire)
	c.Assert(err, qt.IsNil)
	c.Assert(x.Equal(z.FromUint32(7)), qt.IsTrue)

	// The modulus itself is not a canonical representative.
	modBytes := bn254.Modulus().Bytes()
	for i, b := range modBytes {
		wire[len(modBytes)-1-i] = b
	}
	_, err = z.FromECCBytes(wire)
	c.Assert(err, qt.IsNotNil)
}

func TestFrExp(t *testing.T) {
	c := qt.New(t)
	var z bn254.Fr
	x := z.FromUint32(3)
	c.Assert(x.Exp(z.FromUint32(4)).Equal(z.FromUint32(81)), qt.IsTrue)
}
