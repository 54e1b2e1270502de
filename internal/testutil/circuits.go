// Package testutil builds the small hand-written circuits the end-to-end
// tests prove and verify.
package testutil

import (
	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field"
)

func one[CF field.Element[CF], SF field.Simd[SF, CF]](bc circuit.Broadcaster[CF, SF]) SF {
	var z CF
	return bc.Broadcast(z.One())
}

// SingleAddCircuit is one layer with a single wire and one add gate
// o_0 += 1 * i_0.
func SingleAddCircuit[CF field.Element[CF], SF field.Simd[SF, CF]](bc circuit.Broadcaster[CF, SF]) *circuit.Circuit[CF, SF] {
	l := &circuit.Layer[CF, SF]{
		InputVarNum:  0,
		OutputVarNum: 0,
		Add: []circuit.Gate[SF]{
			{IIds: [2]int{0, 0}, OId: 0, Coef: one(bc), CoefKind: circuit.CoefConstant},
		},
	}
	c := &circuit.Circuit[CF, SF]{Layers: []*circuit.Layer[CF, SF]{l}}
	c.IdentifySpecialCoefs()
	return c
}

// TwoLayerMulCircuit computes (i_0 * i_1)^2: layer 0 multiplies the two
// inputs into a single wire, layer 1 squares it.
func TwoLayerMulCircuit[CF field.Element[CF], SF field.Simd[SF, CF]](bc circuit.Broadcaster[CF, SF]) *circuit.Circuit[CF, SF] {
	l0 := &circuit.Layer[CF, SF]{
		InputVarNum:  1,
		OutputVarNum: 0,
		Mul: []circuit.Gate[SF]{
			{IIds: [2]int{0, 1}, OId: 0, Coef: one(bc), CoefKind: circuit.CoefConstant},
		},
	}
	l1 := &circuit.Layer[CF, SF]{
		InputVarNum:  0,
		OutputVarNum: 0,
		Mul: []circuit.Gate[SF]{
			{IIds: [2]int{0, 0}, OId: 0, Coef: one(bc), CoefKind: circuit.CoefConstant},
		},
	}
	c := &circuit.Circuit[CF, SF]{Layers: []*circuit.Layer[CF, SF]{l0, l1}}
	c.IdentifySpecialCoefs()
	return c
}

// Pow5Circuit is one layer with a single x^5 uni gate.
func Pow5Circuit[CF field.Element[CF], SF field.Simd[SF, CF]](bc circuit.Broadcaster[CF, SF]) *circuit.Circuit[CF, SF] {
	l := &circuit.Layer[CF, SF]{
		InputVarNum:  0,
		OutputVarNum: 0,
		Uni: []circuit.Gate[SF]{
			{IIds: [2]int{0, 0}, OId: 0, Coef: one(bc), CoefKind: circuit.CoefConstant, GateType: circuit.GateTypePow5},
		},
	}
	c := &circuit.Circuit[CF, SF]{Layers: []*circuit.Layer[CF, SF]{l}}
	c.IdentifySpecialCoefs()
	return c
}

// LaneInputs packs per-wire scalar values into SIMD inputs, placing vals in
// lane 0 of each wire and zero in the remaining lanes.
func LaneInputs[CF field.Element[CF], SF field.Simd[SF, CF]](vals []CF) []SF {
	var zs SF
	var zc CF
	out := make([]SF, len(vals))
	for i, v := range vals {
		scalars := make([]CF, zs.SimdSize())
		for j := range scalars {
			scalars[j] = zc.Zero()
		}
		scalars[0] = v
		out[i] = zs.FromScalars(scalars)
	}
	return out
}

// BroadcastInputs packs per-wire scalar values into SIMD inputs with every
// lane holding the same value.
func BroadcastInputs[CF field.Element[CF], SF field.Simd[SF, CF]](vals []CF) []SF {
	var zs SF
	out := make([]SF, len(vals))
	for i, v := range vals {
		scalars := make([]CF, zs.SimdSize())
		for j := range scalars {
			scalars[j] = v
		}
		out[i] = zs.FromScalars(scalars)
	}
	return out
}
