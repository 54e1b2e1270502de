package gkr

import (
	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/log"
	"github.com/PolyhedraZK/expander-go/transcript"
)

// proofReader is a cursor over the proof byte stream.
type proofReader struct {
	buf []byte
	off int
}

func (r *proofReader) next(n int) ([]byte, bool) {
	if r.off+n > len(r.buf) {
		return nil, false
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, true
}

// degree2Eval evaluates the degree-2 polynomial with evaluations p at
// {0, 1, 2} at the point x, via the Lagrange coefficients
// c2 = (p2 - 2*p1 + p0)/2, c1 = p1 - p0 - c2.
func degree2Eval[ChF field.Element[ChF], F field.Simd[F, ChF]](p [3]F, x ChF) F {
	var z F
	c0 := p[0]
	c2 := p[2].Sub(p[1]).Sub(p[1]).Add(p[0]).Mul(z.InvTwo())
	c1 := p[1].Sub(p[0]).Sub(c2)
	return c0.Add(c1.Scale(x)).Add(c2.Scale(x).Scale(x))
}

// Verify replays a proof stream against the circuit. The transcript is
// rebuilt byte for byte, so challenges match the prover's; each sumcheck
// round is checked for p(0) + p(1) == claim, every layer's terminal claim is
// checked against its gate relation, and the final input claims are checked
// against the witness polynomial. Tampered streams reject deterministically.
//
// Verification interpolates round polynomials from evaluations at {0, 1, 2}
// and therefore requires odd characteristic; the binary-field configuration
// needs a different evaluation set and is not supported here.
func Verify[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](
	cfg C,
	c *circuit.Circuit[CF, SF],
	claimedV F,
	proof *Proof,
) bool {
	t := transcript.New()
	if err := c.FillRndCoefs(t, cfg); err != nil {
		log.Debugw("verify: fill random coefs failed", "err", err)
		return false
	}
	if err := c.Evaluate(); err != nil {
		log.Debugw("verify: evaluation failed", "err", err)
		return false
	}

	pr := &proofReader{buf: proof.Bytes}
	var zeroF F
	fSize := zeroF.Size()
	readF := func() (F, bool) {
		raw, ok := pr.next(fSize)
		if !ok {
			return zeroF, false
		}
		t.AppendBytes(raw)
		e, err := zeroF.SetBytes(raw)
		if err != nil {
			return zeroF, false
		}
		return e, true
	}

	last := c.Layers[len(c.Layers)-1]
	var zeroCh ChF
	rz0 := make([]ChF, 0, last.OutputVarNum)
	rz1 := make([]ChF, 0, last.OutputVarNum)
	for i := 0; i < last.OutputVarNum; i++ {
		rz0 = append(rz0, transcript.Challenge[ChF](t))
		rz1 = append(rz1, zeroCh.Zero())
	}
	alpha := zeroCh.One()
	beta := zeroCh.Zero()

	outputs := make([]F, len(last.OutputVals))
	for i, v := range last.OutputVals {
		outputs[i] = cfg.Promote(v)
	}
	if !claimedV.Equal(EvalMultilinear(outputs, rz0)) {
		log.Debug("verify: claimed output evaluation mismatch")
		return false
	}

	claim := claimedV
	for li := len(c.Layers) - 1; li >= 0; li-- {
		layer := c.Layers[li]
		n := layer.InputVarNum
		inSize := 1 << n
		outSize := 1 << layer.OutputVarNum

		halfSize := inSize
		if outSize > halfSize {
			halfSize = outSize
		}
		firstHalf := make([]ChF, halfSize)
		secondHalf := make([]ChF, halfSize)

		// alpha*eq(rz0,.) + beta*eq(rz1,.) over the output wires.
		combinedEq := make([]ChF, outSize)
		tmpEq := make([]ChF, outSize)
		eqEvalAt(rz0, alpha, combinedEq, firstHalf, secondHalf)
		eqEvalAt(rz1, beta, tmpEq, firstHalf, secondHalf)
		for i := range combinedEq {
			combinedEq[i] = combinedEq[i].Add(tmpEq[i])
		}

		// Const gates never enter the sumcheck tables; their contribution
		// comes off the claim first.
		for i := range layer.Cst {
			g := &layer.Cst[i]
			claim = claim.Sub(cfg.SimdScale(g.Coef, combinedEq[g.OId]))
		}

		rx := make([]ChF, 0, n)
		ry := make([]ChF, 0, n)
		var vx, vy F
		var eqRx []ChF

		bindX := func() bool {
			var ok bool
			if vx, ok = readF(); !ok {
				return false
			}
			eqRx = make([]ChF, inSize)
			var one ChF
			eqEvalAt(rx, one.One(), eqRx, firstHalf, secondHalf)
			addContrib := zeroF
			for i := range layer.Add {
				g := &layer.Add[i]
				addContrib = addContrib.Add(cfg.SimdScale(g.Coef, combinedEq[g.OId].Mul(eqRx[g.IIds[0]])))
			}
			for i := range layer.Uni {
				g := &layer.Uni[i]
				if g.GateType != circuit.GateTypeLinear {
					return false
				}
				addContrib = addContrib.Add(cfg.SimdScale(g.Coef, combinedEq[g.OId].Mul(eqRx[g.IIds[0]])))
			}
			claim = claim.Sub(vx.Mul(addContrib))
			return true
		}

		for k := 0; k < 2*n; k++ {
			var p [3]F
			var ok bool
			for d := range p {
				if p[d], ok = readF(); !ok {
					log.Debugw("verify: truncated proof", "layer", li, "round", k)
					return false
				}
			}
			if !p[0].Add(p[1]).Equal(claim) {
				log.Debugw("verify: round sum mismatch", "layer", li, "round", k)
				return false
			}
			r := transcript.Challenge[ChF](t)
			claim = degree2Eval(p, r)
			if k < n {
				rx = append(rx, r)
			} else {
				ry = append(ry, r)
			}
			if k == n-1 && !bindX() {
				log.Debugw("verify: phase transition failed", "layer", li)
				return false
			}
		}
		if n == 0 && !bindX() {
			log.Debugw("verify: phase transition failed", "layer", li)
			return false
		}

		var ok bool
		if vy, ok = readF(); !ok {
			log.Debugw("verify: truncated proof", "layer", li)
			return false
		}

		eqRy := make([]ChF, inSize)
		var one ChF
		eqEvalAt(ry, one.One(), eqRy, firstHalf, secondHalf)
		mulContrib := zeroF
		for i := range layer.Mul {
			g := &layer.Mul[i]
			w := combinedEq[g.OId].Mul(eqRx[g.IIds[0]]).Mul(eqRy[g.IIds[1]])
			mulContrib = mulContrib.Add(cfg.SimdScale(g.Coef, w))
		}
		if !claim.Equal(vy.Mul(vx.Mul(mulContrib))) {
			log.Debugw("verify: layer relation mismatch", "layer", li)
			return false
		}

		rz0, rz1 = rx, ry
		alpha = transcript.Challenge[ChF](t)
		beta = transcript.Challenge[ChF](t)
		claim = vx.Scale(alpha).Add(vy.Scale(beta))

		if li == 0 {
			// The terminal claims must open the witness polynomial itself.
			inputs := make([]F, len(c.Layers[0].InputVals))
			for i, v := range c.Layers[0].InputVals {
				inputs[i] = cfg.Promote(v)
			}
			if !vx.Equal(EvalMultilinear(inputs, rz0)) || !vy.Equal(EvalMultilinear(inputs, rz1)) {
				log.Debug("verify: input claim mismatch")
				return false
			}
		}
	}

	if pr.off != len(pr.buf) {
		log.Debugw("verify: trailing proof bytes", "extra", len(pr.buf)-pr.off)
		return false
	}
	return true
}
