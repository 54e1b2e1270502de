package circuit_test

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/PolyhedraZK/expander-go/circuit"
	"github.com/PolyhedraZK/expander-go/field/m31"
	"github.com/PolyhedraZK/expander-go/gkr"
)

// wire builds circuit/witness byte streams for the tests.
type wire struct {
	b []byte
}

func (w *wire) u64(v uint64) *wire {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.b = append(w.b, buf[:]...)
	return w
}

func (w *wire) u8(v byte) *wire {
	w.b = append(w.b, v)
	return w
}

// elem writes one 256-bit wire element holding a small value little-endian.
func (w *wire) elem(v uint64) *wire {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	w.b = append(w.b, buf[:]...)
	return w
}

func (w *wire) header() *wire {
	w.u64(circuit.MagicNum)
	w.u64(uint64(m31.Mod)).u64(0).u64(0).u64(0) // field modulus limbs
	w.u64(1)                                    // num public inputs
	w.u64(1)                                    // num actual outputs
	w.u64(0)                                    // expected zero outputs
	return w
}

// testCircuitBytes encodes a two-segment DAG: a leaf with one gate of each
// kind, and a parent instantiating the leaf at offsets (0,0) and (2,2).
func testCircuitBytes() []byte {
	w := &wire{}
	w.header()
	w.u64(2) // segments

	// segment 0: the leaf
	w.u64(2).u64(2) // i_len, o_len
	w.u64(0)        // no children
	w.u64(1)        // one mul gate
	w.u64(0).u64(1).u64(0)
	w.u8(1).elem(3) // constant coefficient 3
	w.u64(1)        // one add gate
	w.u64(0).u64(1)
	w.u8(2) // random coefficient
	w.u64(1)
	w.u64(0) // one const gate at output 0
	w.u8(1).elem(2)
	w.u64(1) // one custom gate
	w.u64(circuit.GateTypeLinear)
	w.u64(2).u64(1).u64(0) // two inputs, only the first is retained
	w.u64(1)               // output
	w.u8(3).u64(0)         // public input 0

	// segment 1: the parent
	w.u64(4).u64(4)
	w.u64(1)                      // one child
	w.u64(0).u64(2)               // leaf, two allocations
	w.u64(0).u64(0).u64(2).u64(2) // offsets
	w.u64(0).u64(0).u64(0).u64(0) // no own gates

	w.u64(1).u64(1) // one layer, rooted at segment 1
	return w.b
}

func TestLoadAndFlatten(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	rc, err := circuit.LoadRecursiveCircuit[m31.M31, m31.Simd](testCircuitBytes(), cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(rc.Header.NumPublicInputs, qt.Equals, uint64(1))
	c.Assert(rc.Header.NumActualOutputs, qt.Equals, uint64(1))
	c.Assert(rc.Header.FieldMod.Uint64(), qt.Equals, uint64(m31.Mod))
	c.Assert(rc.Segments, qt.HasLen, 2)

	flat, err := rc.Flatten()
	c.Assert(err, qt.IsNil)
	c.Assert(flat.Layers, qt.HasLen, 1)

	layer := flat.Layers[0]
	c.Assert(layer.InputVarNum, qt.Equals, 2)
	c.Assert(layer.OutputVarNum, qt.Equals, 2)

	// Two allocations of the leaf double every gate list.
	c.Assert(layer.Mul, qt.HasLen, 2)
	c.Assert(layer.Add, qt.HasLen, 2)
	c.Assert(layer.Cst, qt.HasLen, 2)
	c.Assert(layer.Uni, qt.HasLen, 2)

	// The second allocation shifts wire ids by (2, 2).
	c.Assert(layer.Mul[1].IIds, qt.Equals, [2]int{2, 3})
	c.Assert(layer.Mul[1].OId, qt.Equals, 2)
	c.Assert(layer.Mul[0].Coef.Equal(cfg.Broadcast(m31.New(3))), qt.IsTrue)

	// Random coefficients decode as SIMD zero until filled.
	c.Assert(layer.Add[0].CoefKind, qt.Equals, circuit.CoefRandom)
	c.Assert(layer.Add[0].Coef.IsZero(), qt.IsTrue)

	// The custom gate keeps only its first input and its public-input index.
	c.Assert(layer.Uni[0].IIds[0], qt.Equals, 1)
	c.Assert(layer.Uni[1].IIds[0], qt.Equals, 3)
	c.Assert(layer.Uni[0].CoefKind, qt.Equals, circuit.CoefPublicInput)
	c.Assert(layer.Uni[0].PubIdx, qt.Equals, 0)

	// All wire ids stay inside the padded sizes.
	for _, g := range layer.Mul {
		c.Assert(g.IIds[0] < 1<<layer.InputVarNum, qt.IsTrue)
		c.Assert(g.IIds[1] < 1<<layer.InputVarNum, qt.IsTrue)
		c.Assert(g.OId < 1<<layer.OutputVarNum, qt.IsTrue)
	}
}

func TestLoadErrors(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	load := func(data []byte) error {
		_, err := circuit.LoadCircuit[m31.M31, m31.Simd](data, cfg)
		return err
	}

	c.Run("bad magic", func(c *qt.C) {
		data := testCircuitBytes()
		data[0] ^= 0xff
		c.Assert(load(data), qt.ErrorMatches, ".*bad magic.*")
	})

	c.Run("truncated", func(c *qt.C) {
		data := testCircuitBytes()
		c.Assert(load(data[:len(data)-4]), qt.ErrorMatches, ".*truncated.*")
	})

	c.Run("unknown coef type", func(c *qt.C) {
		w := &wire{}
		w.header()
		w.u64(1)
		w.u64(2).u64(2).u64(0)
		w.u64(1).u64(0).u64(1).u64(0).u8(9) // coef tag 9 does not exist
		c.Assert(load(w.b), qt.ErrorMatches, ".*unknown coef type.*")
	})

	c.Run("non power of two size", func(c *qt.C) {
		w := &wire{}
		w.header()
		w.u64(1)
		w.u64(3).u64(2)
		c.Assert(load(w.b), qt.ErrorMatches, ".*not powers of two.*")
	})

	c.Run("cycle", func(c *qt.C) {
		w := &wire{}
		w.header()
		w.u64(1)
		w.u64(2).u64(2)
		w.u64(1).u64(0).u64(1).u64(0).u64(0) // child of itself
		w.u64(0).u64(0).u64(0).u64(0)
		w.u64(1).u64(0)
		c.Assert(load(w.b), qt.ErrorMatches, ".*cycle.*")
	})

	c.Run("layer id out of range", func(c *qt.C) {
		w := &wire{}
		w.header()
		w.u64(0)        // no segments
		w.u64(1).u64(5) // layer points nowhere
		c.Assert(load(w.b), qt.ErrorMatches, ".*out of range.*")
	})

	c.Run("wire id out of range", func(c *qt.C) {
		w := &wire{}
		w.header()
		w.u64(1)
		w.u64(2).u64(2).u64(0)
		w.u64(1)
		w.u64(5).u64(1).u64(0) // input wire 5 in a 2-wire segment
		w.u8(1).elem(1)
		w.u64(0).u64(0).u64(0)
		w.u64(1).u64(0)
		c.Assert(load(w.b), qt.ErrorMatches, ".*out of range.*")
	})
}

// Flattening preserves the total gate count summed over leaf instantiations.
func TestFlattenGateCount(t *testing.T) {
	c := qt.New(t)
	cfg := gkr.M31ExtConfig{}

	rc, err := circuit.LoadRecursiveCircuit[m31.M31, m31.Simd](testCircuitBytes(), cfg)
	c.Assert(err, qt.IsNil)

	leafGates := len(rc.Segments[0].GateMuls) + len(rc.Segments[0].GateAdds) +
		len(rc.Segments[0].GateCsts) + len(rc.Segments[0].GateUnis)

	flat, err := rc.Flatten()
	c.Assert(err, qt.IsNil)
	flatGates := 0
	for _, l := range flat.Layers {
		flatGates += len(l.Mul) + len(l.Add) + len(l.Cst) + len(l.Uni)
	}
	c.Assert(flatGates, qt.Equals, 2*leafGates)
}
