// Package bn254 adapts the gnark-crypto BN254 scalar field to the field
// interfaces. A single Fr value is also its own one-lane SIMD packing, so
// the BN254 configuration uses the same type for circuit, challenge and
// combined fields.
package bn254

import (
	"fmt"
	"math/big"
	"math/rand/v2"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Fr wraps fr.Element with value semantics. The canonical byte encoding is
// gnark-crypto's big-endian regular form, so serialized elements interoperate
// with that library directly.
type Fr struct {
	v fr.Element
}

// FromElement wraps a gnark-crypto element.
func FromElement(e fr.Element) Fr { return Fr{v: e} }

// Element returns the underlying gnark-crypto element.
func (x Fr) Element() fr.Element { return x.v }

// Modulus returns the field modulus.
func Modulus() *big.Int { return fr.Modulus() }

func (Fr) Zero() Fr { return Fr{} }

func (Fr) One() Fr {
	var v fr.Element
	v.SetOne()
	return Fr{v: v}
}

func (Fr) InvTwo() Fr {
	var two, v fr.Element
	two.SetUint64(2)
	v.Inverse(&two)
	return Fr{v: v}
}

func (x Fr) Add(y Fr) Fr {
	var v fr.Element
	v.Add(&x.v, &y.v)
	return Fr{v: v}
}

func (x Fr) Sub(y Fr) Fr {
	var v fr.Element
	v.Sub(&x.v, &y.v)
	return Fr{v: v}
}

func (x Fr) Neg() Fr {
	var v fr.Element
	v.Neg(&x.v)
	return Fr{v: v}
}

func (x Fr) Mul(y Fr) Fr {
	var v fr.Element
	v.Mul(&x.v, &y.v)
	return Fr{v: v}
}

func (x Fr) Square() Fr {
	var v fr.Element
	v.Square(&x.v)
	return Fr{v: v}
}

func (x Fr) Double() Fr {
	var v fr.Element
	v.Double(&x.v)
	return Fr{v: v}
}

func (x Fr) Inv() (Fr, bool) {
	if x.v.IsZero() {
		return Fr{}, false
	}
	var v fr.Element
	v.Inverse(&x.v)
	return Fr{v: v}, true
}

// Exp raises x to a field-element exponent, interpreting the exponent as an
// integer. Test-only.
func (x Fr) Exp(e Fr) Fr {
	var k big.Int
	e.v.BigInt(&k)
	var v fr.Element
	v.Exp(x.v, &k)
	return Fr{v: v}
}

func (x Fr) IsZero() bool    { return x.v.IsZero() }
func (x Fr) Equal(y Fr) bool { return x.v.Equal(&y.v) }

func (Fr) FromUint32(v uint32) Fr {
	var e fr.Element
	e.SetUint64(uint64(v))
	return Fr{v: e}
}

func (Fr) FromUniformBytes(buf [32]byte) Fr {
	var e fr.Element
	e.SetBytes(buf[:])
	return Fr{v: e}
}

// FromECCBytes decodes the wire format: the 256-bit little-endian canonical
// representative.
func (Fr) FromECCBytes(buf [32]byte) (Fr, error) {
	var be [32]byte
	for i := range be {
		be[i] = buf[31-i]
	}
	var e fr.Element
	if err := e.SetBytesCanonical(be[:]); err != nil {
		return Fr{}, fmt.Errorf("bn254: non-canonical wire element: %w", err)
	}
	return Fr{v: e}, nil
}

func (Fr) RandomUnsafe(rng *rand.Rand) Fr {
	var buf [32]byte
	for i := 0; i < 32; i += 8 {
		v := rng.Uint64()
		for j := 0; j < 8; j++ {
			buf[i+j] = byte(v >> (8 * j))
		}
	}
	var e fr.Element
	e.SetBytes(buf[:])
	return Fr{v: e}
}

func (Fr) Name() string { return "bn254 scalar field" }
func (Fr) Size() int    { return fr.Bytes }

func (x Fr) Bytes() []byte {
	b := x.v.Bytes()
	return b[:]
}

func (Fr) SetBytes(b []byte) (Fr, error) {
	if len(b) != fr.Bytes {
		return Fr{}, fmt.Errorf("bn254: want %d bytes, got %d", fr.Bytes, len(b))
	}
	var e fr.Element
	if err := e.SetBytesCanonical(b); err != nil {
		return Fr{}, fmt.Errorf("bn254: non-canonical element: %w", err)
	}
	return Fr{v: e}, nil
}

// The one-lane SIMD view.

func (Fr) SimdSize() int { return 1 }

func (Fr) FromScalars(scalars []Fr) Fr {
	if len(scalars) != 1 {
		panic(fmt.Sprintf("bn254: want 1 scalar, got %d", len(scalars)))
	}
	return scalars[0]
}

func (x Fr) Scalars() []Fr { return []Fr{x} }

func (x Fr) Scale(s Fr) Fr { return x.Mul(s) }
