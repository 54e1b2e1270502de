package gkr

import (
	"golang.org/x/sync/errgroup"

	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field"
)

// Result is one proof from a parallel run.
type Result[ChF field.Element[ChF], F field.Simd[F, ChF]] struct {
	Proof    *Proof
	ClaimedV F
	Rz0      []ChF
	Rz1      []ChF
}

// ProveMany proves independent circuits concurrently, one prover and
// scratchpad per goroutine. Circuits must not be shared between entries:
// each proof mutates its circuit (random coefficients, evaluation).
// maxParallel <= 0 means no limit.
func ProveMany[CF field.Element[CF], SF field.Simd[SF, CF], ChF field.Element[ChF], F field.Simd[F, ChF], C Config[CF, SF, ChF, F]](
	cfg C,
	scheme Scheme,
	circuits []*circuit.Circuit[CF, SF],
	maxParallel int,
) ([]*Result[ChF, F], error) {
	results := make([]*Result[ChF, F], len(circuits))
	g := new(errgroup.Group)
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}
	for i, c := range circuits {
		i, c := i, c
		g.Go(func() error {
			p := NewProver[CF, SF, ChF, F, C](cfg, scheme)
			p.PrepareMem(c)
			proof, claimedV, rz0, rz1, err := p.Prove(c)
			if err != nil {
				return err
			}
			results[i] = &Result[ChF, F]{Proof: proof, ClaimedV: claimedV, Rz0: rz0, Rz1: rz1}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
