package hasher

import (
	"strings"
	"testing"

	"github.com/layer-3/todo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	passwords := []string{"pw123", "password123", " spaced out ", "ünïcödé", "!@#$%^&*()"}
	for _, p := range passwords {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))

		ok, err := h.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q", p)
	}
}

func TestBcryptHasher_VerifyMismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{"wrong password", "wrongpassword"},
		{"empty password", ""},
		{"similar password", "password124"},
		{"prefix", "password12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.password, hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBcryptHasher_HashUnique(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash1, err := h.Hash("password123")
	require.NoError(t, err)
	hash2, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "salt must differ per call")
}

func TestBcryptHasher_VerifyInvalidHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "not-a-hash", "$2a$04$short", "plaintext-password-stored-by-mistake-xxxxxxxxxxxxxxxxxxxxxxxxx"} {
		_, err := h.Verify("password", hash)
		assert.ErrorIs(t, err, core.ErrInvalidStoredHash, "hash %q", hash)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestBcryptHasher_VerifyRejectsLongerInput(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	password := strings.Repeat("a", 72)

	hash, err := h.Hash(password)
	require.NoError(t, err)

	ok, err := h.Verify(password, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(password+"x", hash)
	require.NoError(t, err)
	assert.False(t, ok, "bytes past 72 must not be ignored")
}

func TestBcryptHasher_CostClamp(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(100).cost)
	assert.Equal(t, DefaultCost, NewBcryptHasher(DefaultCost).cost)
}

func TestBcryptHasher_NeedsRehash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("password123")
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(hash))
	assert.True(t, NewBcryptHasher(bcrypt.MinCost+1).NeedsRehash(hash))
	assert.True(t, h.NeedsRehash("invalid-hash"))
}
