package booking

import "math/rand/v2"

// IDAlphabet is the symbol set reservation IDs are drawn from.
const IDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the number of symbols in a reservation ID.
const IDLength = 5

// IDGenerator returns a fresh public reservation identifier.
type IDGenerator func() string

// GenerateID returns IDLength symbols drawn uniformly from IDAlphabet.
// The source is not cryptographic and nothing checks the store for an
// existing record with the same ID.
func GenerateID() string {
	b := make([]byte, IDLength)
	for i := range b {
		b[i] = IDAlphabet[rand.IntN(len(IDAlphabet))]
	}
	return string(b)
}
