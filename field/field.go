// Package field defines the scalar and packed (SIMD) finite-field interfaces
// shared by the circuit, transcript and sumcheck layers, together with the
// concrete backends under field/m31, field/gf2 and field/bn254.
//
// All element types use value semantics: methods never mutate the receiver
// and constructors are methods on the zero value, so generic code can write
// `var z E; z.One()` without reflection.
package field

import "math/rand/v2"

// WireElemSize is the storage footprint of one field element in the circuit
// and witness wire formats: every element occupies 256 bits regardless of the
// field's actual size, zero-padded.
const WireElemSize = 32

// Element is the minimal field API. The type parameter E is the implementing
// type itself (the self-referential constraint pattern).
type Element[E any] interface {
	// Constants. Methods on the zero value.
	Zero() E
	One() E
	// InvTwo returns 2^-1. Panics for characteristic-2 fields, where two has
	// no inverse.
	InvTwo() E

	Add(E) E
	Sub(E) E
	Mul(E) E
	Neg() E
	Square() E
	Double() E
	// Inv returns the multiplicative inverse, or ok=false for zero and
	// non-units.
	Inv() (E, bool)
	// Exp raises the element to a field-element exponent. Test-only; not
	// every backend supports it and unsupported ones panic.
	Exp(E) E

	IsZero() bool
	Equal(E) bool

	// FromUint32 builds the element (or the broadcast packed element) from a
	// small unsigned integer.
	FromUint32(uint32) E
	// FromUniformBytes maps a 32-byte buffer to an element. The output need
	// not be uniform; it is the hash-to-field primitive of the transcript.
	FromUniformBytes([32]byte) E
	// FromECCBytes decodes the 256-bit wire-format representation used by the
	// circuit and witness files. Fails on non-canonical padding.
	FromECCBytes([WireElemSize]byte) (E, error)
	// RandomUnsafe draws a pseudo-random element. Test-only: neither uniform
	// nor cryptographically secure.
	RandomUnsafe(*rand.Rand) E

	Name() string
	// Size is the canonical serialization length in bytes.
	Size() int
	// Bytes is the canonical serialization; round-trips exactly through
	// SetBytes for canonical-form elements.
	Bytes() []byte
	SetBytes([]byte) (E, error)
}

// Simd is a field whose single value packs SimdSize lanes of a scalar field
// S. All Element operations act lane-wise.
type Simd[E any, S any] interface {
	Element[E]

	SimdSize() int
	// FromScalars packs one value per lane. Panics if len(scalars) is not
	// SimdSize.
	FromScalars(scalars []S) E
	// Scalars unpacks the lanes.
	Scalars() []S
	// Scale broadcast-multiplies every lane by the scalar.
	Scale(S) E
}
