// Package credentials generates the username and password of the temporary
// superuser. Every character is drawn uniformly from a fixed alphabet using
// crypto/rand.
package credentials

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/dmitrijs2005/runas/internal/common"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	symbols      = "~!@#$%^&*-_=+?"

	// UsernameAlphabet is the set of characters of the random username part.
	UsernameAlphabet = alphanumeric
	// PasswordAlphabet is the set of characters of generated passwords.
	PasswordAlphabet = alphanumeric + symbols

	usernameLength = 8
)

// Generator produces temporary credentials. The zero value is not usable,
// construct it with NewGenerator.
type Generator struct {
	random io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{random: rand.Reader}
}

// Username returns the marker prefix followed by 8 random alphanumeric
// characters.
func (g *Generator) Username() string {
	b := g.pick(UsernameAlphabet, usernameLength)
	return common.UsernamePrefix + string(b)
}

// Password returns length random characters. The caller owns the returned
// slice and must wipe it with common.WipeByteArray.
func (g *Generator) Password(length int) []byte {
	return g.pick(PasswordAlphabet, length)
}

func (g *Generator) pick(alphabet string, n int) []byte {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(g.random, max)
		if err != nil {
			// entropy failure is not recoverable for a credential generator
			panic(err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return out
}
