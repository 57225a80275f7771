package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHasher_Names(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"bcrypt", false},
		{"BCRYPT", false},
		{"bcrypt4", false},
		{"bcrypt14", false},
		{"bcrypt3", true},
		{"bcrypt15", true},
		{"bcryptx", true},
		{"pbkdf2", false},
		{"pbkdf2_1000", false},
		{"PBKDF2_100000", false},
		{"pbkdf2_1234", true},
		{"ssha256", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ResolveHasher(tt.name)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.name), h.Name())
		})
	}
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	h, err := ResolveHasher("bcrypt4")
	require.NoError(t, err)

	hash, err := h.Hash([]byte("p@ssw0rd"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hash), "$2a$04$"), string(hash))
	assert.True(t, h.Verify([]byte("p@ssw0rd"), hash))
	assert.False(t, h.Verify([]byte("other"), hash))
}

func TestPBKDF2_FormatAndVerify(t *testing.T) {
	h, err := ResolveHasher("pbkdf2_1000")
	require.NoError(t, err)

	hash, err := h.Hash([]byte("p@ssw0rd"))
	require.NoError(t, err)

	s := string(hash)
	require.True(t, strings.HasPrefix(s, "{PBKDF2}1000$"), s)
	assert.Len(t, strings.Split(strings.TrimPrefix(s, "{PBKDF2}"), "$"), 3)

	assert.True(t, h.Verify([]byte("p@ssw0rd"), hash))
	assert.False(t, h.Verify([]byte("p@ssw0rD"), hash))
}

func TestPBKDF2_SaltedHashesDiffer(t *testing.T) {
	h, err := ResolveHasher("pbkdf2_1000")
	require.NoError(t, err)

	a, err := h.Hash([]byte("same"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPBKDF2_VerifyRejectsMalformed(t *testing.T) {
	h, err := ResolveHasher("pbkdf2")
	require.NoError(t, err)

	for _, bad := range []string{
		"",
		"$2a$10$abc",
		"{PBKDF2}abc$c2FsdA==$a2V5",
		"{PBKDF2}1000$c2FsdA==",
		"{PBKDF2}1000$!!!$a2V5",
	} {
		assert.False(t, h.Verify([]byte("x"), []byte(bad)), bad)
	}
}
