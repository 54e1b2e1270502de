package circuit

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/PolyhedraZK/expander-go/field"
	"github.com/PolyhedraZK/expander-go/log"
	"github.com/PolyhedraZK/expander-go/util"
)

// MagicNum is the circuit file magic, ASCII "CIRCUIT4" read little-endian.
const MagicNum uint64 = 3770719418566461763

// Broadcaster lifts a circuit-field scalar into the SIMD field. Satisfied by
// the gkr configuration presets.
type Broadcaster[CF any, SF any] interface {
	Broadcast(CF) SF
}

// SegmentID indexes into RecursiveCircuit.Segments.
type SegmentID = int

// Allocation places a child segment at fixed offsets in its parent's input
// and output wire space.
type Allocation struct {
	IOffset int
	OOffset int
}

// ChildSeg is one child segment with all the allocations it is instantiated
// at.
type ChildSeg struct {
	ID     SegmentID
	Allocs []Allocation
}

// Segment is a reusable sub-circuit: child instantiations plus its own gate
// lists.
type Segment[CF field.Element[CF], SF field.Simd[SF, CF]] struct {
	IVarNum int
	OVarNum int

	ChildSegs []ChildSeg

	GateMuls []Gate[SF]
	GateAdds []Gate[SF]
	GateCsts []Gate[SF]
	GateUnis []Gate[SF]
}

func (s *Segment[CF, SF]) containsGates() bool {
	return len(s.GateMuls) > 0 || len(s.GateAdds) > 0 || len(s.GateCsts) > 0 || len(s.GateUnis) > 0
}

// Header carries the circuit-file counters recorded for the verifier. The
// field modulus is kept as a 256-bit integer so callers can match it against
// the field they instantiated the loader with.
type Header struct {
	FieldMod            uint256.Int
	NumPublicInputs     uint64
	NumActualOutputs    uint64
	ExpectedZeroOutputs uint64
}

// RecursiveCircuit is the segment DAG as decoded from the wire format,
// before flattening.
type RecursiveCircuit[CF field.Element[CF], SF field.Simd[SF, CF]] struct {
	Header   Header
	Segments []Segment[CF, SF]
	LayerIDs []SegmentID
}

func readSegment[CF field.Element[CF], SF field.Simd[SF, CF]](r *reader, bc Broadcaster[CF, SF]) (Segment[CF, SF], error) {
	var seg Segment[CF, SF]

	iLen, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	oLen, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	if !util.IsPowerOfTwo(iLen) || !util.IsPowerOfTwo(oLen) {
		return seg, fmt.Errorf("circuit: segment sizes %d/%d are not powers of two", iLen, oLen)
	}
	seg.IVarNum = util.Log2(iLen)
	seg.OVarNum = util.Log2(oLen)

	childNum, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	for i := uint64(0); i < childNum; i++ {
		childID, err := r.readUint64()
		if err != nil {
			return seg, err
		}
		allocNum, err := r.readUint64()
		if err != nil {
			return seg, err
		}
		child := ChildSeg{ID: int(childID)}
		for j := uint64(0); j < allocNum; j++ {
			iOff, err := r.readUint64()
			if err != nil {
				return seg, err
			}
			oOff, err := r.readUint64()
			if err != nil {
				return seg, err
			}
			child.Allocs = append(child.Allocs, Allocation{IOffset: int(iOff), OOffset: int(oOff)})
		}
		seg.ChildSegs = append(seg.ChildSegs, child)
	}

	mulNum, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	for i := uint64(0); i < mulNum; i++ {
		g, err := readGate(r, 2, bc)
		if err != nil {
			return seg, err
		}
		seg.GateMuls = append(seg.GateMuls, g)
	}

	addNum, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	for i := uint64(0); i < addNum; i++ {
		g, err := readGate(r, 1, bc)
		if err != nil {
			return seg, err
		}
		seg.GateAdds = append(seg.GateAdds, g)
	}

	cstNum, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	for i := uint64(0); i < cstNum; i++ {
		g, err := readGate(r, 0, bc)
		if err != nil {
			return seg, err
		}
		seg.GateCsts = append(seg.GateCsts, g)
	}

	uniNum, err := r.readUint64()
	if err != nil {
		return seg, err
	}
	for i := uint64(0); i < uniNum; i++ {
		g, err := readUniGate(r, bc)
		if err != nil {
			return seg, err
		}
		seg.GateUnis = append(seg.GateUnis, g)
	}

	log.Debugw("segment decoded",
		"mul", mulNum, "add", addNum, "const", cstNum, "uni", uniNum,
		"iVarNum", seg.IVarNum, "oVarNum", seg.OVarNum)
	return seg, nil
}

// readUniGate decodes a custom-gate record: gate type, input count, inputs
// (only the first is retained), output, coefficient.
func readUniGate[CF field.Element[CF], SF field.Simd[SF, CF]](r *reader, bc Broadcaster[CF, SF]) (Gate[SF], error) {
	var g Gate[SF]
	gateType, err := r.readUint64()
	if err != nil {
		return g, err
	}
	inLen, err := r.readUint64()
	if err != nil {
		return g, err
	}
	if inLen == 0 {
		return g, fmt.Errorf("circuit: custom gate with no inputs at offset %d", r.off)
	}
	for i := uint64(0); i < inLen; i++ {
		id, err := r.readUint64()
		if err != nil {
			return g, err
		}
		if i == 0 {
			g.IIds[0] = int(id)
		}
	}
	oid, err := r.readUint64()
	if err != nil {
		return g, err
	}
	g.OId = int(oid)
	g.GateType = gateType
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

// LoadRecursiveCircuit decodes the segment DAG from the circuit wire format.
func LoadRecursiveCircuit[CF field.Element[CF], SF field.Simd[SF, CF]](data []byte, bc Broadcaster[CF, SF]) (*RecursiveCircuit[CF, SF], error) {
	r := &reader{buf: data}

	magic, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	if magic != MagicNum {
		return nil, fmt.Errorf("circuit: bad magic %d, want %d", magic, MagicNum)
	}

	rc := &RecursiveCircuit[CF, SF]{}
	var limbs [4]uint64
	for i := range limbs {
		if limbs[i], err = r.readUint64(); err != nil {
			return nil, err
		}
	}
	rc.Header.FieldMod = uint256.Int(limbs)
	if rc.Header.NumPublicInputs, err = r.readUint64(); err != nil {
		return nil, err
	}
	if rc.Header.NumActualOutputs, err = r.readUint64(); err != nil {
		return nil, err
	}
	if rc.Header.ExpectedZeroOutputs, err = r.readUint64(); err != nil {
		return nil, err
	}

	segNum, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < segNum; i++ {
		seg, err := readSegment(r, bc)
		if err != nil {
			return nil, err
		}
		rc.Segments = append(rc.Segments, seg)
	}

	layerNum, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < layerNum; i++ {
		id, err := r.readUint64()
		if err != nil {
			return nil, err
		}
		if int(id) >= len(rc.Segments) {
			return nil, fmt.Errorf("circuit: layer segment id %d out of range", id)
		}
		rc.LayerIDs = append(rc.LayerIDs, int(id))
	}
	return rc, nil
}

// leafAllocations walks the DAG below id and returns, per leaf segment (one
// that carries gates itself), every composed allocation along the paths that
// reach it. Offsets accumulate additively. Cycles in the child graph are a
// decode error.
func (rc *RecursiveCircuit[CF, SF]) leafAllocations(id SegmentID, onPath []bool) (map[SegmentID][]Allocation, error) {
	if onPath[id] {
		return nil, fmt.Errorf("circuit: segment %d participates in a cycle", id)
	}
	onPath[id] = true
	defer func() { onPath[id] = false }()

	seg := &rc.Segments[id]
	ret := make(map[SegmentID][]Allocation)
	if seg.containsGates() {
		ret[id] = []Allocation{{}}
	}
	for _, child := range seg.ChildSegs {
		if child.ID < 0 || child.ID >= len(rc.Segments) {
			return nil, fmt.Errorf("circuit: child segment id %d out of range", child.ID)
		}
		leaves, err := rc.leafAllocations(child.ID, onPath)
		if err != nil {
			return nil, err
		}
		for leafID, leafAllocs := range leaves {
			for _, ca := range child.Allocs {
				for _, la := range leafAllocs {
					ret[leafID] = append(ret[leafID], Allocation{
						IOffset: ca.IOffset + la.IOffset,
						OOffset: ca.OOffset + la.OOffset,
					})
				}
			}
		}
	}
	return ret, nil
}

// Flatten resolves the segment DAG into the flat per-layer circuit. Every
// wire index is checked against the layer's padded sizes.
func (rc *RecursiveCircuit[CF, SF]) Flatten() (*Circuit[CF, SF], error) {
	c := &Circuit[CF, SF]{Header: rc.Header}
	onPath := make([]bool, len(rc.Segments))

	for _, layerID := range rc.LayerIDs {
		layerSeg := &rc.Segments[layerID]
		leaves, err := rc.leafAllocations(layerID, onPath)
		if err != nil {
			return nil, err
		}
		layer := &Layer[CF, SF]{
			InputVarNum:  layerSeg.IVarNum,
			OutputVarNum: layerSeg.OVarNum,
		}

		leafIDs := make([]SegmentID, 0, len(leaves))
		for leafID := range leaves {
			leafIDs = append(leafIDs, leafID)
		}
		sort.Ints(leafIDs)

		for _, leafID := range leafIDs {
			leafSeg := &rc.Segments[leafID]
			for _, alloc := range leaves[leafID] {
				for _, g := range leafSeg.GateMuls {
					g.IIds[0] += alloc.IOffset
					g.IIds[1] += alloc.IOffset
					g.OId += alloc.OOffset
					layer.Mul = append(layer.Mul, g)
				}
				for _, g := range leafSeg.GateAdds {
					g.IIds[0] += alloc.IOffset
					g.OId += alloc.OOffset
					layer.Add = append(layer.Add, g)
				}
				for _, g := range leafSeg.GateCsts {
					g.OId += alloc.OOffset
					layer.Cst = append(layer.Cst, g)
				}
				for _, g := range leafSeg.GateUnis {
					g.IIds[0] += alloc.IOffset
					g.OId += alloc.OOffset
					layer.Uni = append(layer.Uni, g)
				}
			}
		}

		if err := layer.checkWireBounds(); err != nil {
			return nil, err
		}
		log.Debugw("layer flattened",
			"layer", len(c.Layers),
			"mul", len(layer.Mul), "add", len(layer.Add),
			"const", len(layer.Cst), "uni", len(layer.Uni),
			"iVarNum", layer.InputVarNum, "oVarNum", layer.OutputVarNum)
		c.Layers = append(c.Layers, layer)
	}

	c.IdentifySpecialCoefs()
	return c, nil
}

// LoadCircuit decodes and flattens a circuit in one step.
func LoadCircuit[CF field.Element[CF], SF field.Simd[SF, CF]](data []byte, bc Broadcaster[CF, SF]) (*Circuit[CF, SF], error) {
	rc, err := LoadRecursiveCircuit(data, bc)
	if err != nil {
		return nil, err
	}
	return rc.Flatten()
}
