package store

import (
	"crypto/rand"
	"math/big"
)

const (
	idLength   = 9
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewID returns a short uppercase alphanumeric token. At 36^9 possible
// values collisions are negligible for a history capped at a few dozen.
func NewID() string {
	buf := make([]byte, idLength)
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("store: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf)
}
