package gkr

import "github.com/PolyhedraZK/expander-go/field"

// EvalMultilinear evaluates the multilinear extension of evals at point r,
// folding out one variable per step starting from the lowest-order bit.
// Panics if len(evals) != 2^len(r).
func EvalMultilinear[ChF field.Element[ChF], F field.Simd[F, ChF]](evals []F, r []ChF) F {
	if len(evals) != 1<<len(r) {
		panic("gkr: multilinear evaluation size mismatch")
	}
	buf := append([]F(nil), evals...)
	for _, ri := range r {
		half := len(buf) / 2
		for i := 0; i < half; i++ {
			buf[i] = buf[2*i].Add(buf[2*i+1].Sub(buf[2*i]).Scale(ri))
		}
		buf = buf[:half]
	}
	return buf[0]
}

// eqEvalsAtPrimitive expands eq(r, .) into a table of length 2^len(r),
// scaled by mulFactor, one variable at a time.
func eqEvalsAtPrimitive[ChF field.Element[ChF]](r []ChF, mulFactor ChF, eqEvals []ChF) {
	eqEvals[0] = mulFactor
	var one ChF
	one = one.One()
	curEvalNum := 1
	for _, ri := range r {
		eqZero := one.Sub(ri)
		for j := 0; j < curEvalNum; j++ {
			eqEvals[j+curEvalNum] = eqEvals[j].Mul(ri)
			eqEvals[j] = eqEvals[j].Mul(eqZero)
		}
		curEvalNum <<= 1
	}
}

// eqEvalAt materializes mulFactor * eq(r, .) via the split-halves trick: the
// first floor(n/2) bits expand into firstHalf, the rest into secondHalf, and
// the full table is their outer product. Cache-friendly for large n.
func eqEvalAt[ChF field.Element[ChF]](r []ChF, mulFactor ChF, eqEvals, firstHalf, secondHalf []ChF) {
	firstHalfBits := len(r) / 2
	firstHalfMask := 1<<firstHalfBits - 1
	var one ChF
	eqEvalsAtPrimitive(r[:firstHalfBits], mulFactor, firstHalf)
	eqEvalsAtPrimitive(r[firstHalfBits:], one.One(), secondHalf)

	for i := 0; i < 1<<len(r); i++ {
		eqEvals[i] = firstHalf[i&firstHalfMask].Mul(secondHalf[i>>firstHalfBits])
	}
}
