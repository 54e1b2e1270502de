package gkr

import (
	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/transcript"
)

// prodHelper runs the per-round state machine of one sumcheck over the
// product of two bookkeeping tables.
type prodHelper[ChF field.Element[ChF], F field.Simd[F, ChF]] struct {
	varNum      int
	varIdx      int
	curEvalSize int
}

func newProdHelper[ChF field.Element[ChF], F field.Simd[F, ChF]](varNum int) prodHelper[ChF, F] {
	return prodHelper[ChF, F]{varNum: varNum, curEvalSize: 1 << varNum}
}

// polyEvalAt returns the round polynomial's evaluations at {0, 1, 2}. The
// accumulator pass sums (f0*h0, f1*h1, (f0+f1)*(h0+h1)); the third sum is
// then rewritten into the true evaluation at 2 via
// P(2) = 3*p0 + 6*p1 - 2*s2. Pairs where no gate exists on either side are
// skipped.
func (h *prodHelper[ChF, F]) polyEvalAt(bkF, bkHG []F, gateExists []bool) [3]F {
	var p0, p1, p2 F
	evalSize := 1 << (h.varNum - h.varIdx - 1)
	for i := 0; i < evalSize; i++ {
		if !gateExists[2*i] && !gateExists[2*i+1] {
			continue
		}
		fv0 := bkF[2*i]
		fv1 := bkF[2*i+1]
		hg0 := bkHG[2*i]
		hg1 := bkHG[2*i+1]
		p0 = p0.Add(fv0.Mul(hg0))
		p1 = p1.Add(fv1.Mul(hg1))
		p2 = p2.Add(fv0.Add(fv1).Mul(hg0.Add(hg1)))
	}
	var z F
	p2 = p1.Mul(z.FromUint32(6)).Add(p0.Mul(z.FromUint32(3))).Sub(p2.Mul(z.FromUint32(2)))
	return [3]F{p0, p1, p2}
}

// receiveChallenge folds both bookkeeping tables from length 2m to m at the
// round challenge and merges the gate-existence mask.
func (h *prodHelper[ChF, F]) receiveChallenge(r ChF, bkF, bkHG []F, gateExists []bool) {
	var zero F
	for i := 0; i < h.curEvalSize>>1; i++ {
		bkF[i] = bkF[2*i].Add(bkF[2*i+1].Sub(bkF[2*i]).Scale(r))
		if !gateExists[2*i] && !gateExists[2*i+1] {
			gateExists[i] = false
			bkHG[i] = zero
		} else {
			gateExists[i] = true
			bkHG[i] = bkHG[2*i].Add(bkHG[2*i+1].Sub(bkHG[2*i]).Scale(r))
		}
	}
	h.curEvalSize >>= 1
	h.varIdx++
}

// sumcheckGkrHelper is the two-phase per-layer sumcheck: phase X binds the
// first input operand, phase Y the second.
type sumcheckGkrHelper[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]] struct {
	cfg   C
	layer *circuit.Layer[CF, SF]
	sp    *Scratchpad[ChF, F]

	rz0, rz1 []ChF
	alpha    ChF
	beta     ChF

	rx []ChF
	ry []ChF

	inputVarNum  int
	outputVarNum int

	x prodHelper[ChF, F]
	y prodHelper[ChF, F]
}

func newSumcheckGkrHelper[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](
	cfg C,
	layer *circuit.Layer[CF, SF],
	rz0, rz1 []ChF,
	alpha, beta ChF,
	sp *Scratchpad[ChF, F],
) *sumcheckGkrHelper[CF, SF, ChF, F, C] {
	return &sumcheckGkrHelper[CF, SF, ChF, F, C]{
		cfg:          cfg,
		layer:        layer,
		sp:           sp,
		rz0:          rz0,
		rz1:          rz1,
		alpha:        alpha,
		beta:         beta,
		inputVarNum:  layer.InputVarNum,
		outputVarNum: layer.OutputVarNum,
		x:            newProdHelper[ChF, F](layer.InputVarNum),
		y:            newProdHelper[ChF, F](layer.InputVarNum),
	}
}

func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) polyEvalsAt(varIdx int) [3]F {
	if varIdx < h.inputVarNum {
		return h.x.polyEvalAt(h.sp.vEvals, h.sp.hgEvals, h.sp.gateExists)
	}
	return h.y.polyEvalAt(h.sp.vEvals, h.sp.hgEvals, h.sp.gateExists)
}

func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) receiveChallenge(varIdx int, r ChF) {
	if varIdx < h.inputVarNum {
		h.x.receiveChallenge(r, h.sp.vEvals, h.sp.hgEvals, h.sp.gateExists)
		h.rx = append(h.rx, r)
	} else {
		h.y.receiveChallenge(r, h.sp.vEvals, h.sp.hgEvals, h.sp.gateExists)
		h.ry = append(h.ry, r)
	}
}

// vxClaim is the input polynomial evaluated at rx once phase X is done; the
// same slot holds the ry evaluation after phase Y.
func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) vxClaim() F { return h.sp.vEvals[0] }

func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) vyClaim() F { return h.sp.vEvals[0] }

// loadInputEvals materializes the promoted input values into the v
// bookkeeping table. Both phases fold from these.
func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) loadInputEvals() {
	for i, v := range h.layer.InputVals {
		h.sp.vEvals[i] = h.cfg.Promote(v)
	}
}

// prepareGXVals sets up phase X: the alpha/beta-combined equality table at
// the output point, and the hg table accumulating every mul and add gate at
// its first input wire.
func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) prepareGXVals() {
	inSize := 1 << h.inputVarNum
	var zero F
	for i := 0; i < inSize; i++ {
		h.sp.hgEvals[i] = zero
		h.sp.gateExists[i] = false
	}
	h.loadInputEvals()

	eqEvalAt(h.rz0, h.alpha, h.sp.eqEvalsAtRz0, h.sp.eqEvalsFirstHalf, h.sp.eqEvalsSecondHalf)
	eqEvalAt(h.rz1, h.beta, h.sp.eqEvalsAtRz1, h.sp.eqEvalsFirstHalf, h.sp.eqEvalsSecondHalf)
	for i := 0; i < 1<<h.outputVarNum; i++ {
		h.sp.eqEvalsAtRz0[i] = h.sp.eqEvalsAtRz0[i].Add(h.sp.eqEvalsAtRz1[i])
	}

	vals := h.layer.InputVals
	for i := range h.layer.Mul {
		g := &h.layer.Mul[i]
		h.sp.hgEvals[g.IIds[0]] = h.sp.hgEvals[g.IIds[0]].Add(
			h.cfg.SimdScale(vals[g.IIds[1]].Mul(g.Coef), h.sp.eqEvalsAtRz0[g.OId]))
		h.sp.gateExists[g.IIds[0]] = true
	}
	for i := range h.layer.Add {
		g := &h.layer.Add[i]
		h.sp.hgEvals[g.IIds[0]] = h.sp.hgEvals[g.IIds[0]].Add(
			h.cfg.SimdScale(g.Coef, h.sp.eqEvalsAtRz0[g.OId]))
		h.sp.gateExists[g.IIds[0]] = true
	}
	// Linear uni gates reduce like add gates. Power gates never reach the
	// bilinear pipeline; the prover rejects them up front.
	for i := range h.layer.Uni {
		g := &h.layer.Uni[i]
		h.sp.hgEvals[g.IIds[0]] = h.sp.hgEvals[g.IIds[0]].Add(
			h.cfg.SimdScale(g.Coef, h.sp.eqEvalsAtRz0[g.OId]))
		h.sp.gateExists[g.IIds[0]] = true
	}
}

// prepareHYVals sets up phase Y: only mul gates contribute, weighted by the
// input-side equality table at rx and the carried vx claim.
func (h *sumcheckGkrHelper[CF, SF, ChF, F, C]) prepareHYVals(vRx F) {
	fillLen := 1 << len(h.rx)
	var zero F
	for i := 0; i < fillLen; i++ {
		h.sp.hgEvals[i] = zero
		h.sp.gateExists[i] = false
	}
	h.loadInputEvals()

	var one ChF
	eqEvalAt(h.rx, one.One(), h.sp.eqEvalsAtRx, h.sp.eqEvalsFirstHalf, h.sp.eqEvalsSecondHalf)

	for i := range h.layer.Mul {
		g := &h.layer.Mul[i]
		w := h.sp.eqEvalsAtRz0[g.OId].Mul(h.sp.eqEvalsAtRx[g.IIds[0]])
		h.sp.hgEvals[g.IIds[1]] = h.sp.hgEvals[g.IIds[1]].Add(
			vRx.Mul(h.cfg.SimdScale(g.Coef, w)))
		h.sp.gateExists[g.IIds[1]] = true
	}
}

// sumcheckProveGkrLayer reduces the combined output claim of one layer to
// claims on its inputs at fresh points rx and ry, emitting the round
// polynomials and the two v-claims into the transcript.
func sumcheckProveGkrLayer[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](
	cfg C,
	layer *circuit.Layer[CF, SF],
	rz0, rz1 []ChF,
	alpha, beta ChF,
	t *transcript.Transcript,
	sp *Scratchpad[ChF, F],
) ([]ChF, []ChF) {
	helper := newSumcheckGkrHelper(cfg, layer, rz0, rz1, alpha, beta, sp)
	helper.prepareGXVals()

	n := layer.InputVarNum
	for i := 0; i < 2*n; i++ {
		if i == n {
			helper.prepareHYVals(helper.vxClaim())
		}
		evals := helper.polyEvalsAt(i)
		for _, e := range evals {
			transcript.AppendField(t, e)
		}
		r := transcript.Challenge[ChF](t)
		helper.receiveChallenge(i, r)
		if i == n-1 {
			transcript.AppendField(t, helper.vxClaim())
		}
	}
	if n == 0 {
		// A single-wire layer has no rounds; only the trivial claims are
		// emitted.
		transcript.AppendField(t, helper.vxClaim())
	}
	transcript.AppendField(t, helper.vyClaim())

	return helper.rx, helper.ry
}
