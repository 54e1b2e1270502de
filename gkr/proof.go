package gkr

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/PolyhedraZK/expander-go/field"
)

// Proof is the raw transcript byte stream: the round polynomial evaluations
// and terminal v-claims of every layer, in the exact order the transcript
// absorbed them. The verifier is defined by replaying it.
type Proof struct {
	Bytes []byte
}

// Envelope wraps a proof for storage: the field it was produced over, the
// serialized opening claim, and the raw stream.
type Envelope struct {
	Field    string `cbor:"field"`
	ClaimedV []byte `cbor:"claimed_v"`
	Proof    []byte `cbor:"proof"`
}

// Seal packs a proof and its opening claim into a serializable envelope.
func Seal[ChF field.Element[ChF], F field.Simd[F, ChF]](claimedV F, proof *Proof) *Envelope {
	return &Envelope{
		Field:    claimedV.Name(),
		ClaimedV: claimedV.Bytes(),
		Proof:    append([]byte(nil), proof.Bytes...),
	}
}

// Open unpacks an envelope produced by Seal over the same field.
func Open[ChF field.Element[ChF], F field.Simd[F, ChF]](env *Envelope) (F, *Proof, error) {
	var zero F
	if env.Field != zero.Name() {
		return zero, nil, fmt.Errorf("gkr: envelope field %q, want %q", env.Field, zero.Name())
	}
	claimedV, err := zero.SetBytes(env.ClaimedV)
	if err != nil {
		return zero, nil, fmt.Errorf("gkr: bad claimed value: %w", err)
	}
	return claimedV, &Proof{Bytes: append([]byte(nil), env.Proof...)}, nil
}

// Marshal serializes the envelope as CBOR.
func (e *Envelope) Marshal() ([]byte, error) {
	return cbor.Marshal(e)
}

// UnmarshalEnvelope decodes a CBOR envelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("gkr: bad proof envelope: %w", err)
	}
	return &e, nil
}
