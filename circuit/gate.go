// Package circuit holds the layered arithmetic circuit representation: the
// recursive segment form decoded from the wire format, the flattened
// per-layer form the prover consumes, witness binding and evaluation.
package circuit

import (
	"fmt"

	"github.com/PolyhedraZK/expander-go/field"
)

// Uni gate semantic tags. The mul/add/const kinds are distinguished by which
// list a gate lives in, not by tag.
const (
	GateTypePow5   uint64 = 12345 // o += in^5 * coef
	GateTypeLinear uint64 = 12346 // o += in * coef
)

// CoefKind tags how a gate coefficient is produced.
type CoefKind uint8

const (
	// CoefConstant coefficients are literals decoded from the circuit file.
	CoefConstant CoefKind = iota + 1
	// CoefRandom coefficients are drawn from the transcript once the witness
	// is bound.
	CoefRandom
	// CoefPublicInput coefficients copy a public-input scalar, broadcast
	// into the SIMD lanes.
	CoefPublicInput
)

// Gate is a single gate with up to two inputs. Which inputs are meaningful
// is determined by the list the gate belongs to: mul gates use both, add and
// uni gates the first, const gates none.
type Gate[SF any] struct {
	IIds     [2]int
	OId      int
	Coef     SF
	CoefKind CoefKind
	// PubIdx is the public-input index for CoefPublicInput coefficients.
	PubIdx   int
	GateType uint64
}

func readCoefKind(r *reader) (CoefKind, int, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	switch CoefKind(b) {
	case CoefConstant:
		return CoefConstant, 0, nil
	case CoefRandom:
		return CoefRandom, 0, nil
	case CoefPublicInput:
		idx, err := r.readUint64()
		if err != nil {
			return 0, 0, err
		}
		return CoefPublicInput, int(idx), nil
	default:
		return 0, 0, fmt.Errorf("circuit: unknown coef type %d at offset %d", b, r.off-1)
	}
}

// readGate decodes a gate with numInputs input wires. Constant coefficients
// are decoded as a base-field element and broadcast into the SIMD lanes.
func readGate[CF field.Element[CF], SF field.Simd[SF, CF]](r *reader, numInputs int, bc Broadcaster[CF, SF]) (Gate[SF], error) {
	var g Gate[SF]
	for i := 0; i < numInputs; i++ {
		id, err := r.readUint64()
		if err != nil {
			return g, err
		}
		g.IIds[i] = int(id)
	}
	oid, err := r.readUint64()
	if err != nil {
		return g, err
	}
	g.OId = int(oid)
	kind, pubIdx, err := readCoefKind(r)
	if err != nil {
		return g, err
	}
	g.CoefKind = kind
	g.PubIdx = pubIdx
	if kind == CoefConstant {
		coef, err := readWireElem[CF](r)
		if err != nil {
			return g, err
		}
		g.Coef = bc.Broadcast(coef)
	}
	return g, nil
}
