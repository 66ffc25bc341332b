package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims carry a persisted session as standard claims
type SessionClaims struct {
	jwt.RegisteredClaims
	Simulated bool `json:"sim,omitempty"`
}
