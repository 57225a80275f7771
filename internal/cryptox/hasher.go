// Package cryptox holds the password hashing schemes understood by the file
// realm. A scheme is selected by name, the same name the node settings use
// for xpack.security.authc.password_hashing.algorithm.
package cryptox

import (
	"bytes"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/runas/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultAlgorithm is used when the node settings do not name one.
const DefaultAlgorithm = "bcrypt"

const (
	bcryptDefaultCost = 10
	bcryptMinCost     = 4
	bcryptMaxCost     = 14

	pbkdf2Prefix        = "{PBKDF2}"
	pbkdf2DefaultRounds = 10000
	pbkdf2SaltLength    = 32
	pbkdf2KeyLength     = 32
)

var pbkdf2Rounds = []int{1000, 10000, 50000, 100000, 500000, 1000000}

// ErrUnknownAlgorithm is returned by ResolveHasher for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")

// Hasher turns a clear-text password into the digest stored in the users file.
type Hasher interface {
	// Name returns the algorithm name the hasher was resolved from.
	Name() string
	// Hash returns the stored form of password. It does not retain password.
	Hash(password []byte) ([]byte, error)
	// Verify reports whether hash was produced from password.
	Verify(password, hash []byte) bool
}

// ResolveHasher returns the hasher for name. Names are case-insensitive:
// bcrypt, bcrypt4 .. bcrypt14, pbkdf2, pbkdf2_1000 .. pbkdf2_1000000.
func ResolveHasher(name string) (Hasher, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "bcrypt":
		return &bcryptHasher{name: n, cost: bcryptDefaultCost}, nil
	case strings.HasPrefix(n, "bcrypt"):
		cost, err := strconv.Atoi(strings.TrimPrefix(n, "bcrypt"))
		if err != nil || cost < bcryptMinCost || cost > bcryptMaxCost {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
		}
		return &bcryptHasher{name: n, cost: cost}, nil
	case n == "pbkdf2":
		return &pbkdf2Hasher{name: n, rounds: pbkdf2DefaultRounds}, nil
	case strings.HasPrefix(n, "pbkdf2_"):
		rounds, err := strconv.Atoi(strings.TrimPrefix(n, "pbkdf2_"))
		if err != nil || !supportedRounds(rounds) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
		}
		return &pbkdf2Hasher{name: n, rounds: rounds}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

func supportedRounds(r int) bool {
	for _, v := range pbkdf2Rounds {
		if v == r {
			return true
		}
	}
	return false
}

type bcryptHasher struct {
	name string
	cost int
}

func (h *bcryptHasher) Name() string { return h.name }

func (h *bcryptHasher) Hash(password []byte) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword(password, h.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return hash, nil
}

func (h *bcryptHasher) Verify(password, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

// pbkdf2Hasher writes {PBKDF2}<rounds>$<base64 salt>$<base64 key> using
// HMAC-SHA512.
type pbkdf2Hasher struct {
	name   string
	rounds int
}

func (h *pbkdf2Hasher) Name() string { return h.name }

func (h *pbkdf2Hasher) Hash(password []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(pbkdf2SaltLength)
	key := pbkdf2.Key(password, salt, h.rounds, pbkdf2KeyLength, sha512.New)
	defer common.WipeByteArray(key)

	var b bytes.Buffer
	b.WriteString(pbkdf2Prefix)
	b.WriteString(strconv.Itoa(h.rounds))
	b.WriteByte('$')
	b.WriteString(base64.StdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.StdEncoding.EncodeToString(key))
	return b.Bytes(), nil
}

func (h *pbkdf2Hasher) Verify(password, hash []byte) bool {
	s, ok := strings.CutPrefix(string(hash), pbkdf2Prefix)
	if !ok {
		return false
	}
	parts := strings.Split(s, "$")
	if len(parts) != 3 {
		return false
	}
	rounds, err := strconv.Atoi(parts[0])
	if err != nil || rounds <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := pbkdf2.Key(password, salt, rounds, len(want), sha512.New)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, want) == 1
}
