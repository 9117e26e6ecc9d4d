package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
)

const AudienceAccess = "todo:access"

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock overrides the time source used for issuing and verifying
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		j.now = now
	}
}

// NewJWTTokenizer creates a new JWT tokenizer signing with secret
func NewJWTTokenizer(secret []byte, opts ...Option) (*JWTTokenizer, error) {
	if len(secret) == 0 {
		return nil, core.ErrSigningKey
	}

	j := &JWTTokenizer{
		secret: secret,
		ttl:    core.TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// Issue creates a signed access token for identifier
func (j *JWTTokenizer) Issue(identifier string) (core.Token, error) {
	// NumericDate has second precision; truncating keeps exp == iat + ttl
	now := j.now().Truncate(time.Second)
	expiresAt := now.Add(j.ttl)

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return core.Token{}, fmt.Errorf("failed to sign access token: %w: %v", core.ErrSigningKey, err)
	}

	return core.Token{
		Value:      signedToken,
		Identifier: identifier,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
	}, nil
}

// Verify checks the signature and expiry of an access token and returns its subject
func (j *JWTTokenizer) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", core.ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithAudience(AudienceAccess),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", core.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", core.ErrTokenMalformed, err)
	}

	if !token.Valid {
		return "", core.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || claims.Subject == "" {
		return "", core.ErrTokenMalformed
	}

	return claims.Subject, nil
}
