// Package transcript implements the deterministic Fiat-Shamir sponge used to
// derive prover challenges. Every byte absorbed is also recorded verbatim:
// the recorded stream is the proof, and a verifier replaying the same bytes
// derives the same challenge sequence.
package transcript

import (
	"crypto/sha256"

	"github.com/PolyhedraZK/expander-go/field"
)

// domainTag separates challenge derivation from plain state chaining.
var domainTag = []byte("expander-challenge")

// Transcript is a SHA-256 sponge. Absorbed bytes accumulate in a pending
// buffer; drawing a challenge hashes the running state together with the
// pending bytes and the domain tag, and the digest becomes the new state.
type Transcript struct {
	state   [32]byte
	pending []byte
	proof   []byte
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// AppendBytes absorbs raw bytes and records them in the proof stream.
func (t *Transcript) AppendBytes(b []byte) {
	t.pending = append(t.pending, b...)
	t.proof = append(t.proof, b...)
}

// ProofBytes returns the recorded proof stream: every absorbed byte in
// absorption order.
func (t *Transcript) ProofBytes() []byte {
	return t.proof
}

// challengeState advances the sponge and returns the fresh state.
func (t *Transcript) challengeState() [32]byte {
	h := sha256.New()
	h.Write(t.state[:])
	h.Write(t.pending)
	h.Write(domainTag)
	sum := h.Sum(nil)
	copy(t.state[:], sum)
	t.pending = t.pending[:0]
	return t.state
}

// AppendField absorbs a field element's canonical serialization.
func AppendField[E field.Element[E]](t *Transcript, e E) {
	t.AppendBytes(e.Bytes())
}

// Challenge draws a field element challenge from the sponge.
func Challenge[E field.Element[E]](t *Transcript) E {
	var z E
	return z.FromUniformBytes(t.challengeState())
}
