package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the registered claims carried by an access token.
// Subject holds the user identifier.
type AccessClaims struct {
	jwt.RegisteredClaims
}
