package ports

import "github.com/layer-3/todo/core"

// Tokenizer issues and verifies bearer tokens
type Tokenizer interface {
	// Issue signs a token for identifier valid for core.TokenTTL
	Issue(identifier string) (core.Token, error)

	// Verify returns the identifier a token was issued for, or one of
	// core.ErrTokenMissing, core.ErrTokenExpired, core.ErrTokenMalformed
	Verify(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)

	// Verify returns false on mismatch and an error only for a corrupt hash
	Verify(plaintext, hash string) (bool, error)

	NeedsRehash(hash string) bool
}
