// Package gkr implements the layered GKR proving pipeline: per-layer
// bilinear sumcheck with split-halves equality expansion, the driving
// reduction from the output claim to the input claim, and the matching
// transcript-replay verifier.
package gkr

import (
	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/field/bn254"
	"github.com/PolyhedraZK/expander-go/field/gf2"
	"github.com/PolyhedraZK/expander-go/field/m31"
)

// Scheme names the gate profile of a proving instance: Vanilla for bilinear
// (mul/add/const) and linear uni gates, GkrSquare for circuits that also
// carry x^5 uni gates. The prover only records and logs the scheme; Prove
// rejects circuits with x^5 gates under either scheme.
type Scheme uint8

const (
	Vanilla Scheme = iota
	GkrSquare
)

func (s Scheme) String() string {
	if s == GkrSquare {
		return "gkr^2"
	}
	return "vanilla"
}

// Config bundles the four field types of a proving instance: the circuit
// scalar field, its SIMD packing, the challenge field, and the combined
// field sumcheck claims live in. The three methods are the minimal coupling
// operations between them; everything else goes through the field
// interfaces. (Multiplying a combined value by a challenge is F.Scale.)
type Config[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF]] interface {
	Name() string
	// Broadcast lifts a circuit scalar into every SIMD lane.
	Broadcast(CF) SF
	// Promote embeds a SIMD value into the combined field, lane for lane.
	Promote(SF) F
	// SimdScale multiplies a SIMD value by a challenge scalar, producing a
	// combined-field value.
	SimdScale(SF, ChF) F
}

// M31ExtConfig proves circuits over M31 packed eight lanes wide, with
// challenges in the cubic extension.
type M31ExtConfig struct{}

func (M31ExtConfig) Name() string { return "m31ext3" }

func (M31ExtConfig) Broadcast(x m31.M31) m31.Simd { return m31.Broadcast(x) }

func (M31ExtConfig) Promote(x m31.Simd) m31.SimdExt3 { return m31.PromoteSimd(x) }

func (M31ExtConfig) SimdScale(x m31.Simd, c m31.Ext3) m31.SimdExt3 {
	return m31.PromoteSimd(x).Scale(c)
}

// BN254Config proves circuits over the BN254 scalar field; all four field
// types coincide and the pack width is one.
type BN254Config struct{}

func (BN254Config) Name() string { return "fr" }

func (BN254Config) Broadcast(x bn254.Fr) bn254.Fr { return x }

func (BN254Config) Promote(x bn254.Fr) bn254.Fr { return x }

func (BN254Config) SimdScale(x bn254.Fr, c bn254.Fr) bn254.Fr { return x.Mul(c) }

// GF2ExtConfig proves binary circuits packed 128 lanes wide, with challenges
// in GF(2^128).
type GF2ExtConfig struct{}

func (GF2ExtConfig) Name() string { return "gf2ext128" }

func (GF2ExtConfig) Broadcast(x gf2.GF2) gf2.Simd {
	var s gf2.Simd
	if x.IsZero() {
		return s
	}
	return s.One()
}

func (GF2ExtConfig) Promote(x gf2.Simd) gf2.SimdExt128 { return gf2.PromoteSimd(x) }

func (GF2ExtConfig) SimdScale(x gf2.Simd, c gf2.Ext128) gf2.SimdExt128 {
	return gf2.PromoteSimd(x).Scale(c)
}

var (
	_ Config[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3]     = M31ExtConfig{}
	_ Config[bn254.Fr, bn254.Fr, bn254.Fr, bn254.Fr]        = BN254Config{}
	_ Config[gf2.GF2, gf2.Simd, gf2.Ext128, gf2.SimdExt128] = GF2ExtConfig{}
)
