package tokenizer

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const AudienceSession = "walletlink:session"

// JWTCodec stores sessions as ES256-signed tokens. The expiry claim mirrors
// the session TTL so a token outliving its session never decodes.
type JWTCodec struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
	now     func() time.Time
}

// NewJWTCodec creates a new JWT session codec
func NewJWTCodec(signKey *ecdsa.PrivateKey, ttl time.Duration) *JWTCodec {
	return &JWTCodec{signKey: signKey, ttl: ttl, now: time.Now}
}

var _ ports.SessionCodec = (*JWTCodec)(nil)

// LoadSigningKey reads a PEM encoded EC private key
func LoadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	return key, nil
}

// Encode converts a Session to a signed JWT
func (j *JWTCodec) Encode(session core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Account,
			ID:        session.RequestID,
			IssuedAt:  jwt.NewNumericDate(session.ConnectedAt),
			ExpiresAt: jwt.NewNumericDate(session.ConnectedAt.Add(j.ttl)),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Simulated: session.Simulated,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Decode verifies a JWT and converts it back to a Session
func (j *JWTCodec) Decode(raw string) (core.Session, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession), jwt.WithTimeFunc(j.now), jwt.WithIssuedAt())
	if err != nil {
		return core.Session{}, fmt.Errorf("%w: %w", core.ErrSessionCorrupted, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.IssuedAt == nil {
		return core.Session{}, core.ErrSessionCorrupted
	}

	return core.Session{
		Account:     claims.Subject,
		RequestID:   claims.ID,
		ConnectedAt: claims.IssuedAt.Time,
		Simulated:   claims.Simulated,
	}, nil
}
