package circuit

import (
	"encoding/binary"
	"fmt"

	"github.com/PolyhedraZK/expander-go/field"
)

// reader is a cursor over the little-endian wire format. All decode errors
// carry the byte offset they occurred at.
type reader struct {
	buf []byte
	off int
}

func (r *reader) readByte() (byte, error) {
	if r.off+1 > len(r.buf) {
		return 0, fmt.Errorf("circuit: truncated stream at offset %d", r.off)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) readUint64() (uint64, error) {
	if r.off+8 > len(r.buf) {
		return 0, fmt.Errorf("circuit: truncated stream at offset %d", r.off)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) readElemBytes() ([field.WireElemSize]byte, error) {
	var buf [field.WireElemSize]byte
	if r.off+field.WireElemSize > len(r.buf) {
		return buf, fmt.Errorf("circuit: truncated stream at offset %d", r.off)
	}
	copy(buf[:], r.buf[r.off:])
	r.off += field.WireElemSize
	return buf, nil
}

// readWireElem decodes one 256-bit wire-format field element.
func readWireElem[CF field.Element[CF]](r *reader) (CF, error) {
	var zero CF
	buf, err := r.readElemBytes()
	if err != nil {
		return zero, err
	}
	e, err := zero.FromECCBytes(buf)
	if err != nil {
		return zero, fmt.Errorf("%w (offset %d)", err, r.off-field.WireElemSize)
	}
	return e, nil
}
