package gkr

import "github.com/PolyhedraZK/expander-go/field"

// Scratchpad holds the preallocated sumcheck work buffers, sized once to the
// largest layer and reused across layers. Contents are overwritten per
// layer; buffers are never aliased.
type Scratchpad[ChF field.Element[ChF], F field.Simd[F, ChF]] struct {
	vEvals  []F
	hgEvals []F

	eqEvalsAtRx  []ChF
	eqEvalsAtRz0 []ChF
	eqEvalsAtRz1 []ChF
	// Halves for the split-halves equality expansion: the full table is the
	// outer product of the two.
	eqEvalsFirstHalf  []ChF
	eqEvalsSecondHalf []ChF

	gateExists []bool
}

// NewScratchpad allocates buffers for layers up to the given input/output
// variable counts.
func NewScratchpad[ChF field.Element[ChF], F field.Simd[F, ChF]](maxInputVarNum, maxOutputVarNum int) *Scratchpad[ChF, F] {
	maxInput := 1 << maxInputVarNum
	maxOutput := 1 << maxOutputVarNum
	maxHalf := maxInput
	if maxOutput > maxHalf {
		maxHalf = maxOutput
	}
	return &Scratchpad[ChF, F]{
		vEvals:  make([]F, maxInput),
		hgEvals: make([]F, maxInput),

		eqEvalsAtRx:       make([]ChF, maxInput),
		eqEvalsAtRz0:      make([]ChF, maxOutput),
		eqEvalsAtRz1:      make([]ChF, maxOutput),
		eqEvalsFirstHalf:  make([]ChF, maxHalf),
		eqEvalsSecondHalf: make([]ChF, maxHalf),

		gateExists: make([]bool, maxInput),
	}
}
