package core

import "time"

// TokenTTL is the fixed validity window of an access token
const TokenTTL = time.Hour

// Credentials are the identifier/password pair presented on login
type Credentials struct {
	Identifier string // Username or email
	Password   string // Plaintext, never persisted
}

// Validate reports ErrInvalidInput when either field is empty.
// Whitespace is kept as given in both fields.
func (c Credentials) Validate() error {
	if c.Identifier == "" || c.Password == "" {
		return ErrInvalidInput
	}
	return nil
}

// StoredUser is a persisted account record
type StoredUser struct {
	Identifier   string    `json:"identifier"`
	PasswordHash string    `json:"password_hash"` // Never returned to callers
	CreatedAt    time.Time `json:"created_at"`
}

// Token is a signed bearer token bound to an identity
type Token struct {
	Value      string    // Encoded and signed token
	Identifier string    // Identity the token was issued for
	IssuedAt   time.Time // When the token was issued
	ExpiresAt  time.Time // IssuedAt + TokenTTL
}

// AuthOutcome tells which branch of the login-or-register flow succeeded
type AuthOutcome int

const (
	OutcomeAuthenticated AuthOutcome = iota + 1
	OutcomeRegistered
)

func (o AuthOutcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// AuthResult is the result of a successful login-or-register call
type AuthResult struct {
	Success bool
	Message string
	Token   *Token
	Outcome AuthOutcome
}
