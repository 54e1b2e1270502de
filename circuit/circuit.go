package circuit

import (
	"fmt"
	"math/rand/v2"

	"github.com/holiman/uint256"

	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/log"
	"github.com/PolyhedraZK/expander-go/transcript"
)

// Layer is the flat per-layer form: wire indices already globally offset,
// inputs packed across SIMD lanes.
type Layer[CF field.Element[CF], SF field.Simd[SF, CF]] struct {
	InputVarNum  int
	OutputVarNum int

	InputVals []SF
	// OutputVals is populated only for the terminal layer, after evaluation.
	OutputVals []SF

	Mul []Gate[SF]
	Add []Gate[SF]
	Cst []Gate[SF]
	Uni []Gate[SF]
}

func (l *Layer[CF, SF]) checkWireBounds() error {
	inSize := 1 << l.InputVarNum
	outSize := 1 << l.OutputVarNum
	check := func(g *Gate[SF], numInputs int) error {
		for i := 0; i < numInputs; i++ {
			if g.IIds[i] < 0 || g.IIds[i] >= inSize {
				return fmt.Errorf("circuit: input wire %d out of range [0, %d)", g.IIds[i], inSize)
			}
		}
		if g.OId < 0 || g.OId >= outSize {
			return fmt.Errorf("circuit: output wire %d out of range [0, %d)", g.OId, outSize)
		}
		return nil
	}
	for i := range l.Mul {
		if err := check(&l.Mul[i], 2); err != nil {
			return err
		}
	}
	for i := range l.Add {
		if err := check(&l.Add[i], 1); err != nil {
			return err
		}
	}
	for i := range l.Cst {
		if err := check(&l.Cst[i], 0); err != nil {
			return err
		}
	}
	for i := range l.Uni {
		if err := check(&l.Uni[i], 1); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate applies the layer's gates to its input values and returns the
// output vector of length 2^OutputVarNum.
func (l *Layer[CF, SF]) Evaluate() ([]SF, error) {
	if len(l.InputVals) != 1<<l.InputVarNum {
		return nil, fmt.Errorf("circuit: layer has %d input values, want %d", len(l.InputVals), 1<<l.InputVarNum)
	}
	res := make([]SF, 1<<l.OutputVarNum)
	for i := range l.Mul {
		g := &l.Mul[i]
		res[g.OId] = res[g.OId].Add(l.InputVals[g.IIds[0]].Mul(l.InputVals[g.IIds[1]]).Mul(g.Coef))
	}
	for i := range l.Add {
		g := &l.Add[i]
		res[g.OId] = res[g.OId].Add(l.InputVals[g.IIds[0]].Mul(g.Coef))
	}
	for i := range l.Cst {
		g := &l.Cst[i]
		res[g.OId] = res[g.OId].Add(g.Coef)
	}
	for i := range l.Uni {
		g := &l.Uni[i]
		in := l.InputVals[g.IIds[0]]
		switch g.GateType {
		case GateTypePow5:
			// two squarings then a multiply
			pow4 := in.Square().Square()
			res[g.OId] = res[g.OId].Add(pow4.Mul(in).Mul(g.Coef))
		case GateTypeLinear:
			res[g.OId] = res[g.OId].Add(in.Mul(g.Coef))
		default:
			return nil, fmt.Errorf("circuit: unknown gate type %d", g.GateType)
		}
	}
	return res, nil
}

// GateList names one of a layer's four gate lists.
type GateList uint8

const (
	ListMul GateList = iota
	ListAdd
	ListCst
	ListUni
)

// CoefLoc locates one gate coefficient as (layer, list, position). Locators
// survive circuit clones, unlike references into gate storage.
type CoefLoc struct {
	Layer int
	List  GateList
	Pos   int
}

// PubCoefLoc pairs a public-input index with the coefficient slot it fills.
type PubCoefLoc struct {
	Idx int
	Loc CoefLoc
}

// Circuit is the ordered flat layers, input layer first.
type Circuit[CF field.Element[CF], SF field.Simd[SF, CF]] struct {
	Header Header
	Layers []*Layer[CF, SF]

	specialCoefsIdentified bool
	rndCoefs               []CoefLoc
	pubCoefs               []PubCoefLoc
}

// LogInputSize is the input layer's variable count.
func (c *Circuit[CF, SF]) LogInputSize() int {
	return c.Layers[0].InputVarNum
}

// Input returns the input layer's values.
func (c *Circuit[CF, SF]) Input() []SF {
	return c.Layers[0].InputVals
}

func (c *Circuit[CF, SF]) coefSlot(loc CoefLoc) *SF {
	l := c.Layers[loc.Layer]
	switch loc.List {
	case ListMul:
		return &l.Mul[loc.Pos].Coef
	case ListAdd:
		return &l.Add[loc.Pos].Coef
	case ListCst:
		return &l.Cst[loc.Pos].Coef
	default:
		return &l.Uni[loc.Pos].Coef
	}
}

// IdentifySpecialCoefs rebuilds the indices of random and public-input
// coefficients. Locators stay valid across clones; Clone runs this again on
// the copy when the source had it run.
func (c *Circuit[CF, SF]) IdentifySpecialCoefs() {
	c.rndCoefs = c.rndCoefs[:0]
	c.pubCoefs = c.pubCoefs[:0]
	for li, l := range c.Layers {
		collect := func(list GateList, gates []Gate[SF]) {
			for gi := range gates {
				switch gates[gi].CoefKind {
				case CoefRandom:
					c.rndCoefs = append(c.rndCoefs, CoefLoc{Layer: li, List: list, Pos: gi})
				case CoefPublicInput:
					c.pubCoefs = append(c.pubCoefs, PubCoefLoc{
						Idx: gates[gi].PubIdx,
						Loc: CoefLoc{Layer: li, List: list, Pos: gi},
					})
				}
			}
		}
		collect(ListAdd, l.Add)
		collect(ListMul, l.Mul)
		collect(ListCst, l.Cst)
		collect(ListUni, l.Uni)
	}
	c.specialCoefsIdentified = true
}

// FillRndCoefs draws one circuit-field challenge per random coefficient and
// broadcasts it into the coefficient's SIMD lanes.
func (c *Circuit[CF, SF]) FillRndCoefs(t *transcript.Transcript, bc Broadcaster[CF, SF]) error {
	if !c.specialCoefsIdentified {
		return fmt.Errorf("circuit: special coefs not identified")
	}
	for _, loc := range c.rndCoefs {
		*c.coefSlot(loc) = bc.Broadcast(transcript.Challenge[CF](t))
	}
	return nil
}

// FillPubCoefs copies the indexed public-input values into every
// public-input coefficient.
func (c *Circuit[CF, SF]) FillPubCoefs(publicInputs []SF) error {
	if !c.specialCoefsIdentified {
		return fmt.Errorf("circuit: special coefs not identified")
	}
	for _, pc := range c.pubCoefs {
		if pc.Idx >= len(publicInputs) {
			return fmt.Errorf("circuit: public input index %d out of range [0, %d)", pc.Idx, len(publicInputs))
		}
		*c.coefSlot(pc.Loc) = publicInputs[pc.Idx]
	}
	return nil
}

// Evaluate runs the circuit layer by layer: each layer's outputs become the
// next layer's inputs, and the terminal layer's outputs are recorded.
// Idempotent for fixed layer-0 inputs.
func (c *Circuit[CF, SF]) Evaluate() error {
	for i := 0; i < len(c.Layers)-1; i++ {
		res, err := c.Layers[i].Evaluate()
		if err != nil {
			return err
		}
		next := c.Layers[i+1]
		if len(res) != 1<<next.InputVarNum {
			return fmt.Errorf("circuit: layer %d emits %d values but layer %d expects %d",
				i, len(res), i+1, 1<<next.InputVarNum)
		}
		next.InputVals = res
	}
	last := c.Layers[len(c.Layers)-1]
	out, err := last.Evaluate()
	if err != nil {
		return err
	}
	last.OutputVals = out
	log.Debugw("circuit evaluated", "layers", len(c.Layers), "outputs", len(out))
	return nil
}

// Clone deep-copies the circuit. Coefficient locators are re-identified when
// the source had them identified.
func (c *Circuit[CF, SF]) Clone() *Circuit[CF, SF] {
	clone := &Circuit[CF, SF]{Header: c.Header}
	for _, l := range c.Layers {
		nl := &Layer[CF, SF]{
			InputVarNum:  l.InputVarNum,
			OutputVarNum: l.OutputVarNum,
			InputVals:    append([]SF(nil), l.InputVals...),
			OutputVals:   append([]SF(nil), l.OutputVals...),
			Mul:          append([]Gate[SF](nil), l.Mul...),
			Add:          append([]Gate[SF](nil), l.Add...),
			Cst:          append([]Gate[SF](nil), l.Cst...),
			Uni:          append([]Gate[SF](nil), l.Uni...),
		}
		clone.Layers = append(clone.Layers, nl)
	}
	if c.specialCoefsIdentified {
		clone.IdentifySpecialCoefs()
	}
	return clone
}

// SetRandomInputForTest fills layer 0 with pseudo-random inputs. Test-only.
func (c *Circuit[CF, SF]) SetRandomInputForTest(rng *rand.Rand) {
	var zero SF
	vals := make([]SF, 1<<c.LogInputSize())
	for i := range vals {
		vals[i] = zero.RandomUnsafe(rng)
	}
	c.Layers[0].InputVals = vals
}

// LoadWitnessBytes parses a witness stream: header, then per witness the
// private inputs followed by the public inputs, one 256-bit wire element
// each. Private inputs become the layer-0 values, packed across SIMD lanes
// (one witness per lane); public inputs fill the public-input coefficients.
func (c *Circuit[CF, SF]) LoadWitnessBytes(data []byte) error {
	r := &reader{buf: data}

	numWitnesses, err := r.readUint64()
	if err != nil {
		return err
	}
	numInputs, err := r.readUint64()
	if err != nil {
		return err
	}
	numPublicInputs, err := r.readUint64()
	if err != nil {
		return err
	}
	var limbs [4]uint64
	for i := range limbs {
		if limbs[i], err = r.readUint64(); err != nil {
			return err
		}
	}
	if mod := (uint256.Int(limbs)); !mod.Eq(&c.Header.FieldMod) {
		log.Warnf("witness field modulus %s differs from circuit header %s",
			mod.Hex(), c.Header.FieldMod.Hex())
	}
	log.Debugw("witness header",
		"witnesses", numWitnesses, "inputs", numInputs, "publicInputs", numPublicInputs)

	var zero SF
	simdSize := zero.SimdSize()
	if int(numWitnesses) != simdSize {
		log.Warnf("witness count %d does not match simd size %d, padding/ignoring will occur",
			numWitnesses, simdSize)
	}

	var zeroScalar CF
	privateInputs := make([][]CF, simdSize)
	publicInputs := make([][]CF, simdSize)
	for i := range privateInputs {
		privateInputs[i] = make([]CF, numInputs)
		publicInputs[i] = make([]CF, numPublicInputs)
		for j := range privateInputs[i] {
			privateInputs[i][j] = zeroScalar.Zero()
		}
		for j := range publicInputs[i] {
			publicInputs[i][j] = zeroScalar.Zero()
		}
	}

	// Extra witnesses beyond the pack width are ignored, missing ones leave
	// their lanes zero.
	toRead := int(numWitnesses)
	if toRead > simdSize {
		toRead = simdSize
	}
	for i := 0; i < toRead; i++ {
		for j := uint64(0); j < numInputs; j++ {
			if privateInputs[i][j], err = readWireElem[CF](r); err != nil {
				return err
			}
		}
		for j := uint64(0); j < numPublicInputs; j++ {
			if publicInputs[i][j], err = readWireElem[CF](r); err != nil {
				return err
			}
		}
	}

	if err := c.FillPubCoefs(packLanes[CF, SF](publicInputs)); err != nil {
		return err
	}
	c.Layers[0].InputVals = packLanes[CF, SF](privateInputs)
	return nil
}

// packLanes transposes per-lane scalar rows (simdSize x n) into a SIMD
// vector of length n.
func packLanes[CF field.Element[CF], SF field.Simd[SF, CF]](rows [][]CF) []SF {
	var zero SF
	simdSize := zero.SimdSize()
	if len(rows) == 0 {
		return nil
	}
	n := len(rows[0])
	out := make([]SF, n)
	scalars := make([]CF, simdSize)
	for i := 0; i < n; i++ {
		for j := 0; j < simdSize; j++ {
			scalars[j] = rows[j][i]
		}
		out[i] = zero.FromScalars(scalars)
	}
	return out
}
