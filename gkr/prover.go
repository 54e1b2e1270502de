package gkr

import (
	"fmt"

	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/log"
	"github.com/PolyhedraZK/expander-go/transcript"
)

// gkrProve runs the layer-by-layer reduction over an evaluated circuit. It
// draws the output point rz0, computes the opening claim as the multilinear
// evaluation of the output vector there, then reduces layer by layer down to
// the input, returning the final points the caller's commitment layer must
// open against the witness.
func gkrProve[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](
	cfg C,
	c *circuit.Circuit[CF, SF],
	sp *Scratchpad[ChF, F],
	t *transcript.Transcript,
) (F, []ChF, []ChF) {
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
	claimedV := EvalMultilinear(outputs, rz0)

	for i := len(c.Layers) - 1; i >= 0; i-- {
		rz0, rz1 = sumcheckProveGkrLayer(cfg, c.Layers[i], rz0, rz1, alpha, beta, t, sp)
		alpha = transcript.Challenge[ChF](t)
		beta = transcript.Challenge[ChF](t)
		log.Debugw("layer proved", "layer", i)
	}

	return claimedV, rz0, rz1
}

// Prover owns the scratchpad and configuration for one proof at a time.
// Provers are not safe for concurrent use; run one per goroutine.
type Prover[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]] struct {
	cfg    C
	scheme Scheme
	sp     *Scratchpad[ChF, F]
}

// NewProver builds a prover for the given configuration and scheme.
func NewProver[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](cfg C, scheme Scheme) *Prover[CF, SF, ChF, F, C] {
	return &Prover[CF, SF, ChF, F, C]{cfg: cfg, scheme: scheme}
}

// PrepareMem sizes the scratchpad to the circuit's largest layer. Call once
// per circuit shape; proofs reuse the buffers.
func (p *Prover[CF, SF, ChF, F, C]) PrepareMem(c *circuit.Circuit[CF, SF]) {
	maxIn, maxOut := 0, 0
	for _, l := range c.Layers {
		if l.InputVarNum > maxIn {
			maxIn = l.InputVarNum
		}
		if l.OutputVarNum > maxOut {
			maxOut = l.OutputVarNum
		}
	}
	p.sp = NewScratchpad[ChF, F](maxIn, maxOut)
}

// checkGateProfile rejects circuits whose uni gates fall outside the
// bilinear sumcheck: only the linear kind reduces here, power gates belong
// to the GKR^2 power sumcheck.
func checkGateProfile[CF field.Element[CF], SF field.Simd[SF, CF]](c *circuit.Circuit[CF, SF]) error {
	for li, l := range c.Layers {
		for i := range l.Uni {
			if l.Uni[i].GateType != circuit.GateTypeLinear {
				return fmt.Errorf("gkr: layer %d carries uni gate type %d, only %d reduces in the bilinear sumcheck",
					li, l.Uni[i].GateType, circuit.GateTypeLinear)
			}
		}
	}
	return nil
}

// Prove produces a proof for the circuit's current witness: random
// coefficients are drawn from a fresh transcript, the circuit is evaluated,
// and the GKR reduction runs output to input. Returns the proof, the opening
// claim, and the final input points.
func (p *Prover[CF, SF, ChF, F, C]) Prove(c *circuit.Circuit[CF, SF]) (*Proof, F, []ChF, []ChF, error) {
	var zero F
	if p.sp == nil {
		return nil, zero, nil, nil, fmt.Errorf("gkr: PrepareMem not called")
	}
	if err := checkGateProfile(c); err != nil {
		return nil, zero, nil, nil, err
	}

	t := transcript.New()
	if err := c.FillRndCoefs(t, p.cfg); err != nil {
		return nil, zero, nil, nil, err
	}
	if err := c.Evaluate(); err != nil {
		return nil, zero, nil, nil, err
	}

	claimedV, rz0, rz1 := gkrProve(p.cfg, c, p.sp, t)
	log.Debugw("proof generated",
		"field", p.cfg.Name(), "scheme", p.scheme.String(), "bytes", len(t.ProofBytes()))
	return &Proof{Bytes: t.ProofBytes()}, claimedV, rz0, rz1, nil
}
