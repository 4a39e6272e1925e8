// Package random supplies the entropy behind generated signing secrets.
package random

import (
	"crypto/rand"
	"math/big"
)

// Random draws secret material. Tests substitute a scripted source so
// generated secrets are predictable.
type Random interface {
	// String returns length characters drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// Crypto draws from crypto/rand
type Crypto struct{}

var _ Random = Crypto{}

// New returns the crypto/rand source
func New() Crypto {
	return Crypto{}
}

func (Crypto) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		// crypto/rand.Reader does not fail on supported platforms
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("random: " + err.Error())
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
