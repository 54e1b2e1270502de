package gkr_test

import (
	"math/rand/v2"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field/bn254"
	"github.com/PolyhedraZK/expander-go/field/gf2"
	"github.com/PolyhedraZK/expander-go/field/m31"
	"github.com/PolyhedraZK/expander-go/gkr"
	"github.com/PolyhedraZK/expander-go/internal/testutil"
)

func verifyM31(cfg gkr.M31ExtConfig, c *circuit.Circuit[m31.M31, m31.Simd], v m31.SimdExt3, p *gkr.Proof) bool {
	return gkr.Verify[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3](cfg, c, v, p)
}

func verifyFr(cfg gkr.BN254Config, c *circuit.Circuit[bn254.Fr, bn254.Fr], v bn254.Fr, p *gkr.Proof) bool {
	return gkr.Verify[bn254.Fr, bn254.Fr, bn254.Fr, bn254.Fr](cfg, c, v, p)
}

// Scenario: one layer, one add gate o_0 += 1 * i_0, lane 0 carrying 7.
func TestIdentityCircuitM31(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	crc := testutil.SingleAddCircuit[m31.M31, m31.Simd](cfg)
	crc.Layers[0].InputVals = testutil.LaneInputs[m31.M31, m31.Simd]([]m31.M31{m31.New(7)})

	p := gkr.NewProver[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	proof, claimedV, rz0, rz1, err := p.Prove(crc)
	c.Assert(err, qt.IsNil)
	c.Assert(rz0, qt.HasLen, 0)
	c.Assert(rz1, qt.HasLen, 0)

	lanes := claimedV.Scalars()
	c.Assert(lanes[0].Equal(m31.NewExt3(m31.New(7), m31.New(0), m31.New(0))), qt.IsTrue)
	for _, lane := range lanes[1:] {
		c.Assert(lane.IsZero(), qt.IsTrue)
	}

	c.Assert(verifyM31(cfg, crc, claimedV, proof), qt.IsTrue)

	// A single flipped bit anywhere in the stream must reject.
	for _, pos := range []int{0, len(proof.Bytes) / 2, len(proof.Bytes) - 1} {
		bad := &gkr.Proof{Bytes: append([]byte(nil), proof.Bytes...)}
		bad.Bytes[pos] ^= 1
		c.Assert(verifyM31(cfg, crc, claimedV, bad), qt.IsFalse)
	}
}

// The binary-field configuration proves the same identity circuit; only
// verification (which needs odd characteristic) is out of reach.
func TestIdentityCircuitGF2(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.GF2ExtConfig{}

	crc := testutil.SingleAddCircuit[gf2.GF2, gf2.Simd](cfg)
	var zg gf2.GF2
	crc.Layers[0].InputVals = testutil.LaneInputs[gf2.GF2, gf2.Simd]([]gf2.GF2{zg.One()})

	p := gkr.NewProver[gf2.GF2, gf2.Simd, gf2.Ext128, gf2.SimdExt128](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	proof, claimedV, _, _, err := p.Prove(crc)
	c.Assert(err, qt.IsNil)
	c.Assert(len(proof.Bytes) > 0, qt.IsTrue)

	var ze gf2.Ext128
	lanes := claimedV.Scalars()
	c.Assert(lanes[0].Equal(ze.One()), qt.IsTrue)
	for _, lane := range lanes[1:] {
		c.Assert(lane.IsZero(), qt.IsTrue)
	}
}

// Scenario: layer 0 computes i_0 * i_1, layer 1 squares it; inputs (3, 5)
// must yield the claimed value (3*5)^2 = 225.
func TestTwoLayerMulBN254(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.BN254Config{}

	crc := testutil.TwoLayerMulCircuit[bn254.Fr, bn254.Fr](cfg)
	var z bn254.Fr
	crc.Layers[0].InputVals = []bn254.Fr{z.FromUint32(3), z.FromUint32(5)}

	p := gkr.NewProver[bn254.Fr, bn254.Fr, bn254.Fr, bn254.Fr](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	proof, claimedV, _, _, err := p.Prove(crc)
	c.Assert(err, qt.IsNil)
	c.Assert(claimedV.Equal(z.FromUint32(225)), qt.IsTrue)

	c.Assert(verifyFr(cfg, crc, claimedV, proof), qt.IsTrue)

	// A wrong claim rejects even with an untouched stream.
	c.Assert(verifyFr(cfg, crc, claimedV.Add(z.One()), proof), qt.IsFalse)

	// Replacing any single byte rejects.
	for _, pos := range []int{0, 1, len(proof.Bytes) / 3, len(proof.Bytes) - 1} {
		bad := &gkr.Proof{Bytes: append([]byte(nil), proof.Bytes...)}
		bad.Bytes[pos] ^= 0x40
		c.Assert(verifyFr(cfg, crc, claimedV, bad), qt.IsFalse)
	}

	// Trailing garbage rejects.
	long := &gkr.Proof{Bytes: append(append([]byte(nil), proof.Bytes...), 0)}
	c.Assert(verifyFr(cfg, crc, claimedV, long), qt.IsFalse)
}

func TestTwoLayerMulM31AllLanes(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	crc := testutil.TwoLayerMulCircuit[m31.M31, m31.Simd](cfg)
	crc.Layers[0].InputVals = testutil.BroadcastInputs[m31.M31, m31.Simd]([]m31.M31{m31.New(3), m31.New(5)})

	p := gkr.NewProver[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	proof, claimedV, _, _, err := p.Prove(crc)
	c.Assert(err, qt.IsNil)

	for _, lane := range claimedV.Scalars() {
		c.Assert(lane.Equal(m31.NewExt3(m31.New(225), m31.New(0), m31.New(0))), qt.IsTrue)
	}
	c.Assert(verifyM31(cfg, crc, claimedV, proof), qt.IsTrue)
}

// Scenario: x^5 uni gates evaluate, and the output opening claim matches the
// direct multilinear evaluation of the output table. The bilinear prover
// refuses the power gate itself.
func TestPow5Layer(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}
	rng := rand.New(rand.NewPCG(2, 4))

	coef := func(v uint32) m31.Simd { return cfg.Broadcast(m31.New(v)) }
	l := &circuit.Layer[m31.M31, m31.Simd]{
		InputVarNum:  1,
		OutputVarNum: 1,
		Uni: []circuit.Gate[m31.Simd]{
			{IIds: [2]int{0, 0}, OId: 0, Coef: coef(1), CoefKind: circuit.CoefConstant, GateType: circuit.GateTypePow5},
			{IIds: [2]int{1, 0}, OId: 1, Coef: coef(1), CoefKind: circuit.CoefConstant, GateType: circuit.GateTypePow5},
		},
	}
	crc := &circuit.Circuit[m31.M31, m31.Simd]{Layers: []*circuit.Layer[m31.M31, m31.Simd]{l}}
	crc.IdentifySpecialCoefs()
	crc.Layers[0].InputVals = testutil.BroadcastInputs[m31.M31, m31.Simd]([]m31.M31{m31.New(2), m31.New(3)})

	c.Assert(crc.Evaluate(), qt.IsNil)
	out := crc.Layers[0].OutputVals
	c.Assert(out[0].Scalars()[0].Uint32(), qt.Equals, uint32(32))
	c.Assert(out[1].Scalars()[0].Uint32(), qt.Equals, uint32(243))

	// Opening claim at a sampled point == direct multilinear evaluation.
	outF := []m31.SimdExt3{cfg.Promote(out[0]), cfg.Promote(out[1])}
	var zch m31.Ext3
	r := zch.RandomUnsafe(rng)
	want := outF[0].Add(outF[1].Sub(outF[0]).Scale(r))
	c.Assert(gkr.EvalMultilinear(outF, []m31.Ext3{r}).Equal(want), qt.IsTrue)

	p := gkr.NewProver[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	_, _, _, _, err := p.Prove(crc)
	c.Assert(err, qt.ErrorMatches, ".*uni gate type.*")
}

func TestProofEnvelopeRoundTrip(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.BN254Config{}

	crc := testutil.TwoLayerMulCircuit[bn254.Fr, bn254.Fr](cfg)
	var z bn254.Fr
	crc.Layers[0].InputVals = []bn254.Fr{z.FromUint32(3), z.FromUint32(5)}

	p := gkr.NewProver[bn254.Fr, bn254.Fr, bn254.Fr, bn254.Fr](cfg, gkr.Vanilla)
	p.PrepareMem(crc)
	proof, claimedV, _, _, err := p.Prove(crc)
	c.Assert(err, qt.IsNil)

	data, err := gkr.Seal[bn254.Fr, bn254.Fr](claimedV, proof).Marshal()
	c.Assert(err, qt.IsNil)

	env, err := gkr.UnmarshalEnvelope(data)
	c.Assert(err, qt.IsNil)
	gotClaim, gotProof, err := gkr.Open[bn254.Fr, bn254.Fr](env)
	c.Assert(err, qt.IsNil)
	c.Assert(gotClaim.Equal(claimedV), qt.IsTrue)
	c.Assert(verifyFr(cfg, crc, gotClaim, gotProof), qt.IsTrue)

	env.Field = "some other field"
	_, _, err = gkr.Open[bn254.Fr, bn254.Fr](env)
	c.Assert(err, qt.ErrorMatches, ".*envelope field.*")
}

func TestProveMany(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.BN254Config{}
	var z bn254.Fr

	c1 := testutil.TwoLayerMulCircuit[bn254.Fr, bn254.Fr](cfg)
	c1.Layers[0].InputVals = []bn254.Fr{z.FromUint32(3), z.FromUint32(5)}
	c2 := testutil.TwoLayerMulCircuit[bn254.Fr, bn254.Fr](cfg)
	c2.Layers[0].InputVals = []bn254.Fr{z.FromUint32(2), z.FromUint32(2)}

	results, err := gkr.ProveMany[bn254.Fr, bn254.Fr, bn254.Fr, bn254.Fr](
		cfg, gkr.Vanilla, []*circuit.Circuit[bn254.Fr, bn254.Fr]{c1, c2}, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 2)

	c.Assert(results[0].ClaimedV.Equal(z.FromUint32(225)), qt.IsTrue)
	c.Assert(results[1].ClaimedV.Equal(z.FromUint32(16)), qt.IsTrue)
	c.Assert(verifyFr(cfg, c1, results[0].ClaimedV, results[0].Proof), qt.IsTrue)
	c.Assert(verifyFr(cfg, c2, results[1].ClaimedV, results[1].Proof), qt.IsTrue)
}

// Proofs over the same circuit and witness are byte-for-byte reproducible.
func TestProofDeterminism(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	build := func() *circuit.Circuit[m31.M31, m31.Simd] {
		crc := testutil.TwoLayerMulCircuit[m31.M31, m31.Simd](cfg)
		crc.Layers[0].InputVals = testutil.BroadcastInputs[m31.M31, m31.Simd]([]m31.M31{m31.New(3), m31.New(5)})
		return crc
	}

	p := gkr.NewProver[m31.M31, m31.Simd, m31.Ext3, m31.SimdExt3](cfg, gkr.Vanilla)
	a := build()
	p.PrepareMem(a)
	proofA, _, _, _, err := p.Prove(a)
	c.Assert(err, qt.IsNil)

	b := build()
	p.PrepareMem(b)
	proofB, _, _, _, err := p.Prove(b)
	c.Assert(err, qt.IsNil)

	c.Assert(proofA.Bytes, qt.DeepEquals, proofB.Bytes)
}
