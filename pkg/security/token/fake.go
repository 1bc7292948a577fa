package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// staticValidator accepts any token and returns fixed claims.
type staticValidator struct {
	claims Claims
}

func newStaticValidator(claims Claims) Validator {
	return &staticValidator{claims: claims}
}

func (v *staticValidator) ValidateToken(string) (*Claims, error) {
	claims := v.claims
	return &claims, nil
}

// adminClaims are returned when validation is disabled.
func adminClaims() Claims {
	return Claims{
		UserID:      "test-user",
		Role:        "admin",
		Permissions: []string{WildcardPermission},
		Type:        TypeAccess,
	}
}

// encodedValidator decodes base64 JSON tokens produced by GenerateTestToken.
type encodedValidator struct{}

type encodedPayload struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Type        string   `json:"type"`
}

func newEncodedValidator() Validator {
	return encodedValidator{}
}

func (encodedValidator) ValidateToken(token string) (*Claims, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var payload encodedPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	now := time.Now()
	return &Claims{
		UserID:      payload.UserID,
		Role:        payload.Role,
		Permissions: payload.Permissions,
		Type:        payload.Type,
		IssuedAt:    now,
		ExpiresAt:   now.Add(24 * time.Hour),
		NotBefore:   now,
	}, nil
}

// GenerateTestToken creates an access token understood by the WithTestValidator module.
func GenerateTestToken(userID, role string, permissions []string) string {
	data, err := json.Marshal(encodedPayload{
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
		Type:        TypeAccess,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to marshal test token: %v", err))
	}
	return base64.StdEncoding.EncodeToString(data)
}

// GenerateAdminTestToken creates a test token with the wildcard permission.
func GenerateAdminTestToken() string {
	return GenerateTestToken("test-admin", "admin", []string{WildcardPermission})
}
