package gkr

import (
	"math/rand/v2"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field/m31"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewPCG(5, 23))
}

// The split-halves expansion must agree with the direct one-variable-at-a-
// time expansion.
func TestEqEvalAtMatchesPrimitive(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	var z m31.Ext3
	for _, n := range []int{0, 1, 2, 3, 5} {
		r := make([]m31.Ext3, n)
		for i := range r {
			r[i] = z.RandomUnsafe(rng)
		}
		factor := z.RandomUnsafe(rng)

		want := make([]m31.Ext3, 1<<n)
		eqEvalsAtPrimitive(r, factor, want)

		got := make([]m31.Ext3, 1<<n)
		first := make([]m31.Ext3, 1<<n)
		second := make([]m31.Ext3, 1<<n)
		eqEvalAt(r, factor, got, first, second)

		for i := range want {
			c.Assert(got[i].Equal(want[i]), qt.IsTrue)
		}
	}
}

func TestEvalMultilinearAgainstEqTable(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	var zf m31.SimdExt3
	var zch m31.Ext3

	const n = 3
	evals := make([]m31.SimdExt3, 1<<n)
	for i := range evals {
		evals[i] = zf.RandomUnsafe(rng)
	}
	r := make([]m31.Ext3, n)
	for i := range r {
		r[i] = zch.RandomUnsafe(rng)
	}

	eq := make([]m31.Ext3, 1<<n)
	eqEvalsAtPrimitive(r, zch.One(), eq)
	var want m31.SimdExt3
	for i := range evals {
		want = want.Add(evals[i].Scale(eq[i]))
	}

	c.Assert(EvalMultilinear(evals, r).Equal(want), qt.IsTrue)
}

// For every round, p(0) + p(1) must equal the running claim, the claim must
// fold through the degree-2 evaluation, and the terminal claims must open
// the input polynomial at rx and ry.
func TestSumcheckRoundInvariants(t *testing.T) {
	c := qt.New(t)
	rng := testRng()
	cfg := M31ExtConfig{}
	coef := func(v uint32) m31.Simd { return cfg.Broadcast(m31.New(v)) }

	layer := &circuit.Layer[m31.M31, m31.Simd]{
		InputVarNum:  2,
		OutputVarNum: 1,
		Mul: []circuit.Gate[m31.Simd]{
			{IIds: [2]int{0, 1}, OId: 0, Coef: coef(3), CoefKind: circuit.CoefConstant},
		},
		Add: []circuit.Gate[m31.Simd]{
			{IIds: [2]int{2, 0}, OId: 1, Coef: coef(2), CoefKind: circuit.CoefConstant},
			{IIds: [2]int{3, 0}, OId: 0, Coef: coef(1), CoefKind: circuit.CoefConstant},
		},
	}
	var zs m31.Simd
	layer.InputVals = make([]m31.Simd, 4)
	for i := range layer.InputVals {
		layer.InputVals[i] = zs.RandomUnsafe(rng)
	}

	var zch m31.Ext3
	rz0 := []m31.Ext3{zch.RandomUnsafe(rng)}
	rz1 := []m31.Ext3{zch.RandomUnsafe(rng)}
	alpha := zch.RandomUnsafe(rng)
	beta := zch.RandomUnsafe(rng)

	sp := NewScratchpad[m31.Ext3, m31.SimdExt3](2, 1)
	h := newSumcheckGkrHelper(cfg, layer, rz0, rz1, alpha, beta, sp)
	h.prepareGXVals()

	// The initial claim is the alpha/beta combination of the output
	// polynomial at rz0 and rz1.
	out, err := layer.Evaluate()
	c.Assert(err, qt.IsNil)
	outF := make([]m31.SimdExt3, len(out))
	for i, v := range out {
		outF[i] = cfg.Promote(v)
	}
	claim := EvalMultilinear(outF, rz0).Scale(alpha).Add(EvalMultilinear(outF, rz1).Scale(beta))

	dot := func(size int) m31.SimdExt3 {
		var acc m31.SimdExt3
		for i := 0; i < size; i++ {
			acc = acc.Add(sp.vEvals[i].Mul(sp.hgEvals[i]))
		}
		return acc
	}

	n := layer.InputVarNum
	size := 1 << n
	var rx, ry []m31.Ext3
	var vx m31.SimdExt3
	for i := 0; i < 2*n; i++ {
		if i == n {
			vx = h.vxClaim()
			h.prepareHYVals(vx)
			size = 1 << n
			// Phase Y proves a fresh sum; re-anchor the claim to the tables.
			claim = dot(size)
		}
		expected := dot(size)
		evals := h.polyEvalsAt(i)
		c.Assert(evals[0].Add(evals[1]).Equal(expected), qt.IsTrue)
		if i == 0 {
			c.Assert(expected.Equal(claim), qt.IsTrue)
		}

		r := zch.RandomUnsafe(rng)
		claim = degree2Eval(evals, r)
		h.receiveChallenge(i, r)
		size >>= 1
		c.Assert(dot(size).Equal(claim), qt.IsTrue)

		if i < n {
			rx = append(rx, r)
		} else {
			ry = append(ry, r)
		}
	}

	// Terminal claims open the input polynomial directly.
	inputsF := make([]m31.SimdExt3, len(layer.InputVals))
	for i, v := range layer.InputVals {
		inputsF[i] = cfg.Promote(v)
	}
	c.Assert(h.vyClaim().Equal(EvalMultilinear(inputsF, ry)), qt.IsTrue)
	c.Assert(EvalMultilinear(inputsF, rx).Equal(vx), qt.IsTrue)
}
