package token

import (
	"encoding/hex"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Validator validates tokens and returns their claims.
type Validator interface {
	ValidateToken(token string) (*Claims, error)
}

// pasetoValidator verifies PASETO v4 public tokens issued by the auth service.
type pasetoValidator struct {
	publicKey paseto.V4AsymmetricPublicKey
	now       func() time.Time
}

// newPasetoValidator expects a hex-encoded 32-byte Ed25519 public key.
func newPasetoValidator(cfg Config) (Validator, error) {
	keyBytes, err := hex.DecodeString(cfg.PublicKey)
	if err != nil || len(keyBytes) != 32 {
		return nil, ErrInvalidPublicKey
	}

	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromBytes(keyBytes)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	return &pasetoValidator{publicKey: publicKey, now: time.Now}, nil
}

func (v *pasetoValidator) ValidateToken(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Public(v.publicKey, tokenString, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject, err := token.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}

	now := v.now()
	exp, err := token.GetExpiration()
	if err == nil && now.After(exp) {
		return nil, ErrExpiredToken
	}
	nbf, err := token.GetNotBefore()
	if err == nil && now.Before(nbf) {
		return nil, ErrInvalidToken
	}
	iat, _ := token.GetIssuedAt()

	role, _ := token.GetString("role")
	tokenType, _ := token.GetString("type")

	var permissions []string
	_ = token.Get("permissions", &permissions) //nolint:errcheck // absent permissions mean none

	return &Claims{
		UserID:      subject,
		Role:        role,
		Permissions: permissions,
		Type:        tokenType,
		IssuedAt:    iat,
		ExpiresAt:   exp,
		NotBefore:   nbf,
		token:       token,
	}, nil
}
