// Package util holds small helpers shared by tests and tools.
package util

import (
	"crypto/rand"
	"fmt"
	"math/bits"
)

// RandomBytes generates a random byte slice of length n.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

// RandomHex generates a hex string encoding n random bytes (2n characters).
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Log2 returns log2(n) for a power-of-two n.
func Log2(n uint64) int {
	return bits.TrailingZeros64(n)
}
